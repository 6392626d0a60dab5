package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ProfileHandler handles job description extraction.
type ProfileHandler struct {
	profileService service.ProfileService
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService, validate *validator.Validate, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, validate: validate, logger: logger}
}

// RegisterRoutes registers the extraction endpoint.
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /profile/extract", authMw(http.HandlerFunc(h.Extract)))
}

// Extract godoc
// @Summary Distill a job description into a structured role profile
// @Description Extraction is best-effort: on any failure the profile comes back empty and the caller proceeds without it.
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body dto.ProfileExtractDTO true "Extraction request"
// @Success 200 {object} dto.ProfileExtractResponseDTO
// @Failure 400 {string} string "invalid request payload"
// @Failure 401 {string} string "unauthorized"
// @Router /profile/extract [post]
func (h *ProfileHandler) Extract(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.ProfileExtractDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	profile := h.profileService.Extract(r.Context(), req.JobDescription)
	writeJSON(w, http.StatusOK, dto.ProfileExtractResponseDTO{RoleProfile: *profile})
}
