package handler

import (
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// BillingHandler handles checkout, portal and the Stripe webhook.
type BillingHandler struct {
	billingService *service.BillingService
	logger         zerolog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService *service.BillingService, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{billingService: billingService, logger: logger}
}

// RegisterRoutes registers the billing endpoints. The webhook route carries
// no auth; Stripe authenticates with its signature header instead.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /billing/checkout", authMw(http.HandlerFunc(h.Checkout)))
	mux.Handle("POST /billing/portal", authMw(http.HandlerFunc(h.Portal)))
	mux.Handle("POST /billing/webhook", http.HandlerFunc(h.billingService.HandleWebhook))
}

// Checkout godoc
// @Summary Initiate a Stripe Checkout session for the pro plan
// @Description Creates a Stripe Checkout session and returns its URL.
// @Tags billing
// @Produce json
// @Success 200 {object} dto.CheckoutResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "failed to create checkout session"
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	email, _ := r.Context().Value(middleware.EmailContextKey).(string)

	url, err := h.billingService.CreateCheckoutSession(r.Context(), userID, email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create checkout session")
		http.Error(w, "failed to create checkout session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponseDTO{URL: url})
}

// Portal godoc
// @Summary Create a Stripe Customer Portal session
// @Description Generates a Stripe Customer Portal session URL for the authenticated user.
// @Tags billing
// @Produce json
// @Success 200 {object} dto.CheckoutResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "failed to create portal session"
// @Router /billing/portal [post]
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	url, err := h.billingService.CreatePortalSession(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create portal session")
		http.Error(w, "failed to create portal session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponseDTO{URL: url})
}
