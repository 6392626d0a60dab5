package model

import "time"

// Plan tiers. Everything that is not pro is treated as free.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User represents a user row. The external id comes from the identity
// provider; everything else is owned by this service.
type User struct {
	ID                       string     `db:"id" json:"id"`
	ExternalUserID           string     `db:"external_user_id" json:"external_user_id"`
	Email                    string     `db:"email" json:"email"`
	Plan                     string     `db:"plan" json:"plan"`
	MonthlyInterviewsUsed    int        `db:"monthly_interviews_used" json:"monthly_interviews_used"`
	MonthlyResetAt           *time.Time `db:"monthly_reset_at" json:"monthly_reset_at,omitempty"`
	StripeCustomerID         *string    `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionStatus *string    `db:"stripe_subscription_status" json:"stripe_subscription_status,omitempty"`
	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updated_at"`
}
