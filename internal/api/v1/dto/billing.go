package dto

// CheckoutResponseDTO carries the Stripe-hosted URL the frontend redirects
// to.
type CheckoutResponseDTO struct {
	URL string `json:"url"`
}
