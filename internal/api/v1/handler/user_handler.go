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

// UserHandler handles user sync and profile endpoints.
type UserHandler struct {
	userService service.UserService
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, validate *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{userService: userService, validate: validate, logger: logger}
}

// RegisterRoutes registers the user endpoints.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /users/sync", authMw(http.HandlerFunc(h.Sync)))
	mux.Handle("GET /users/me", authMw(http.HandlerFunc(h.Me)))
}

// Sync godoc
// @Summary Mirror the signed-in user into the local users table
// @Description Upserts the email to external-user-id mapping after sign-in. Idempotent.
// @Tags users
// @Accept json
// @Produce json
// @Param user body dto.UserSyncDTO true "User sync request"
// @Success 200 {object} map[string]bool
// @Failure 400 {string} string "invalid request payload"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "failed to sync user"
// @Router /users/sync [post]
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.UserSyncDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.userService.Sync(r.Context(), req.Email, userID); err != nil {
		h.logger.Error().Err(err).Msg("failed to sync user")
		http.Error(w, "failed to sync user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me godoc
// @Summary Get the caller's plan and quota state
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to fetch user")
		http.Error(w, "failed to fetch user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserResponseDTO{
		Plan:                     user.Plan,
		MonthlyInterviewsUsed:    user.MonthlyInterviewsUsed,
		MonthlyLimit:             service.FreeMonthlyLimit,
		MonthlyResetAt:           user.MonthlyResetAt,
		StripeSubscriptionStatus: user.StripeSubscriptionStatus,
	})
}
