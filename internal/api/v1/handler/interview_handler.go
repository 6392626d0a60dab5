package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// InterviewHandler handles the turn loop: asking the next question and
// submitting answers.
type InterviewHandler struct {
	interviewService service.InterviewService
	validate         *validator.Validate
	logger           zerolog.Logger
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviewService service.InterviewService, validate *validator.Validate, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService, validate: validate, logger: logger}
}

// RegisterRoutes registers the turn loop endpoints.
func (h *InterviewHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /chat/next", authMw(http.HandlerFunc(h.NextQuestion)))
	mux.Handle("POST /messages", authMw(http.HandlerFunc(h.SubmitAnswer)))
}

// NextQuestion godoc
// @Summary Generate and persist the next interviewer question
// @Description Advances the session's question counter. Refused once the question budget is spent.
// @Tags interview
// @Accept json
// @Produce json
// @Param chat body dto.NextQuestionDTO true "Next question request"
// @Success 200 {object} dto.NextQuestionResponseDTO
// @Failure 400 {string} string "question budget exhausted"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "session not found"
// @Failure 409 {string} string "concurrent turn in progress"
// @Router /chat/next [post]
func (h *InterviewHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.NextQuestionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	question, count, err := h.interviewService.NextQuestion(r.Context(), req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, service.ErrTurnBudgetExhausted):
			http.Error(w, "question budget exhausted", http.StatusBadRequest)
		case errors.Is(err, service.ErrTurnConflict):
			http.Error(w, "concurrent turn in progress", http.StatusConflict)
		default:
			h.logger.Error().Err(err).Msg("failed to produce next question")
			http.Error(w, "failed to produce next question", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, dto.NextQuestionResponseDTO{Question: question, QuestionCount: count})
}

// SubmitAnswer godoc
// @Summary Submit a candidate answer
// @Description Persists the answer, scores it, optionally records a coaching tip, and chains the next question.
// @Tags interview
// @Accept json
// @Produce json
// @Param message body dto.AnswerSubmitDTO true "Answer submission"
// @Param coaching query bool false "Request a coaching tip for this answer"
// @Success 200 {object} dto.AnswerSubmitResponseDTO
// @Failure 400 {string} string "invalid request payload"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "session not found"
// @Failure 409 {string} string "concurrent turn in progress"
// @Router /messages [post]
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.AnswerSubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	coaching := r.URL.Query().Get("coaching") == "true"

	result, err := h.interviewService.SubmitAnswer(r.Context(), req.SessionID, userID, req.Content, coaching)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, service.ErrTurnConflict):
			http.Error(w, "concurrent turn in progress", http.StatusConflict)
		default:
			h.logger.Error().Err(err).Msg("failed to submit answer")
			http.Error(w, "failed to submit answer", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, dto.AnswerSubmitResponseDTO{OK: true, Ended: result.Ended, Eval: result.Eval})
}
