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

// SummaryHandler handles feedback summary compilation.
type SummaryHandler struct {
	summaryService service.SummaryService
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService service.SummaryService, validate *validator.Validate, logger zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, validate: validate, logger: logger}
}

// RegisterRoutes registers the summary endpoint.
func (h *SummaryHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /summary", authMw(http.HandlerFunc(h.Compile)))
}

// Compile godoc
// @Summary Compile the session's feedback summary
// @Description Builds the summary from the full transcript and stores it on the session. Re-running overwrites.
// @Tags summary
// @Accept json
// @Produce json
// @Param summary body dto.SummaryCompileDTO true "Summary request"
// @Success 200 {object} dto.SummaryResponseDTO
// @Failure 400 {string} string "invalid request payload"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "session not found"
// @Router /summary [post]
func (h *SummaryHandler) Compile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.SummaryCompileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.summaryService.Compile(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to compile summary")
		http.Error(w, "failed to compile summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.SummaryResponseDTO{FeedbackSummary: summary})
}
