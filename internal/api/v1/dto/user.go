package dto

import "time"

// UserSyncDTO is sent by the frontend after sign-in to mirror the identity
// provider's user record.
type UserSyncDTO struct {
	Email string `json:"email" validate:"required,email"`
}

// UserResponseDTO is returned in API responses
type UserResponseDTO struct {
	Plan                     string     `json:"plan"`
	MonthlyInterviewsUsed    int        `json:"monthly_interviews_used"`
	MonthlyLimit             int        `json:"monthly_limit"`
	MonthlyResetAt           *time.Time `json:"monthly_reset_at,omitempty"`
	StripeSubscriptionStatus *string    `json:"stripe_subscription_status,omitempty"`
}
