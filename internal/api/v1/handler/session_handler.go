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

// SessionHandler handles session creation, sharing and the public read view.
type SessionHandler struct {
	sessionService service.SessionService
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, validate *validator.Validate, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, validate: validate, logger: logger}
}

// RegisterRoutes registers the session endpoints. The public slug route is
// deliberately outside the auth middleware.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /sessions", authMw(http.HandlerFunc(h.Create)))
	mux.Handle("POST /sessions/share", authMw(http.HandlerFunc(h.Share)))
	mux.Handle("GET /p/{slug}", http.HandlerFunc(h.Public))
}

// Create godoc
// @Summary Start a new interview session
// @Description Consumes one unit of the monthly quota and creates a session for the chosen persona.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body dto.SessionCreateDTO true "Session creation request"
// @Success 201 {object} dto.SessionResponseDTO
// @Failure 400 {string} string "invalid persona"
// @Failure 401 {string} string "unauthorized"
// @Failure 402 {string} string "monthly quota exhausted"
// @Failure 500 {string} string "failed to create session"
// @Router /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.SessionCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	var companyName, roleTitle *string
	if req.CompanyName != "" {
		companyName = &req.CompanyName
	}
	if req.RoleTitle != "" {
		roleTitle = &req.RoleTitle
	}

	id, err := h.sessionService.Create(r.Context(), userID, req.Persona, companyName, roleTitle, req.RoleProfile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPersona):
			http.Error(w, "invalid persona", http.StatusBadRequest)
		case errors.Is(err, service.ErrQuotaExceeded):
			http.Error(w, err.Error(), http.StatusPaymentRequired)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to create session")
			http.Error(w, "failed to create session", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// Share godoc
// @Summary Toggle a session's public share link
// @Description Enabling mints (or returns the existing) slug; disabling clears it so the old link stops resolving.
// @Tags sessions
// @Accept json
// @Produce json
// @Param share body dto.ShareToggleDTO true "Share toggle request"
// @Success 200 {object} dto.ShareResponseDTO
// @Failure 400 {string} string "invalid request payload"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "session not found"
// @Router /sessions/share [post]
func (h *SessionHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.ShareToggleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	slug, err := h.sessionService.ToggleShare(r.Context(), req.SessionID, userID, *req.MakePublic)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to toggle share")
			http.Error(w, "failed to toggle share", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, dto.ShareResponseDTO{PublicSlug: slug})
}

// Public godoc
// @Summary Read a shared session summary by slug
// @Description Unauthenticated. Returns the feedback summary and the per-answer score series.
// @Tags sessions
// @Produce json
// @Param slug path string true "Public share slug"
// @Success 200 {object} dto.PublicSummaryResponseDTO
// @Failure 404 {string} string "not found"
// @Router /p/{slug} [get]
func (h *SessionHandler) Public(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	summary, err := h.sessionService.GetPublic(r.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error().Err(err).Msg("failed to load shared session")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.PublicSummaryResponseDTO{
		Persona:         summary.Persona,
		RoleTitle:       summary.RoleTitle,
		FeedbackSummary: summary.FeedbackSummary,
		Scores:          summary.Scores,
	})
}
