package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BillingFields is the full overwrite a billing event applies to a user row.
// Applying the same fields twice leaves the row in the same end state.
type BillingFields struct {
	Plan                     string
	StripeCustomerID         *string
	StripeSubscriptionStatus *string
	// ResetUsage zeroes the monthly counter and moves the reset timestamp
	// to MonthStart (used on checkout completion).
	ResetUsage bool
	MonthStart time.Time
}

type UserRepository interface {
	// UpsertByEmail creates or re-links a user row, keyed on email.
	UpsertByEmail(ctx context.Context, email, externalUserID string) error
	// GetByExternalID returns nil, nil when no row exists.
	GetByExternalID(ctx context.Context, externalUserID string) (*model.User, error)
	// FindExternalIDByEmail returns "" when no row matches (exact match only).
	FindExternalIDByEmail(ctx context.Context, email string) (string, error)
	// ResetMonthlyUsage performs the lazy month rollover. The update is
	// conditional on the stored reset timestamp being unset or stale, so
	// concurrent calls cannot double-reset.
	ResetMonthlyUsage(ctx context.Context, externalUserID string, monthStart time.Time) error
	// ConsumeInterview atomically increments the monthly counter, but only
	// while the user is under the free limit or on the pro plan. The
	// rows-affected count is the verdict.
	ConsumeInterview(ctx context.Context, externalUserID string, freeLimit int) (bool, error)
	// UpdateBilling overwrites the plan/billing fields. Returns false when
	// no row matched the external id.
	UpdateBilling(ctx context.Context, externalUserID string, fields BillingFields) (bool, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a new UserRepository.
func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) UpsertByEmail(ctx context.Context, email, externalUserID string) error {
	const q = `
        INSERT INTO users (email, external_user_id)
        VALUES ($1, $2)
        ON CONFLICT (email) DO UPDATE
        SET external_user_id = EXCLUDED.external_user_id,
            updated_at = NOW()
    `
	if _, err := r.pool.Exec(ctx, q, email, externalUserID); err != nil {
		return fmt.Errorf("upserting user %s: %w", email, err)
	}
	return nil
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalUserID string) (*model.User, error) {
	const q = `
        SELECT id, external_user_id, email, plan, monthly_interviews_used,
               monthly_reset_at, stripe_customer_id, stripe_subscription_status,
               created_at, updated_at
        FROM users
        WHERE external_user_id = $1
    `
	var u model.User
	err := r.pool.QueryRow(ctx, q, externalUserID).Scan(
		&u.ID,
		&u.ExternalUserID,
		&u.Email,
		&u.Plan,
		&u.MonthlyInterviewsUsed,
		&u.MonthlyResetAt,
		&u.StripeCustomerID,
		&u.StripeSubscriptionStatus,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user by external id %s: %w", externalUserID, err)
	}
	return &u, nil
}

func (r *userRepo) FindExternalIDByEmail(ctx context.Context, email string) (string, error) {
	const q = `SELECT external_user_id FROM users WHERE email = $1`
	var externalID string
	err := r.pool.QueryRow(ctx, q, email).Scan(&externalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("lookup user by email: %w", err)
	}
	return externalID, nil
}

func (r *userRepo) ResetMonthlyUsage(ctx context.Context, externalUserID string, monthStart time.Time) error {
	const q = `
        UPDATE users
        SET monthly_interviews_used = 0,
            monthly_reset_at = $2,
            updated_at = NOW()
        WHERE external_user_id = $1
          AND (monthly_reset_at IS NULL OR monthly_reset_at < $2)
    `
	if _, err := r.pool.Exec(ctx, q, externalUserID, monthStart); err != nil {
		return fmt.Errorf("resetting monthly usage for user %s: %w", externalUserID, err)
	}
	return nil
}

func (r *userRepo) ConsumeInterview(ctx context.Context, externalUserID string, freeLimit int) (bool, error) {
	const q = `
        UPDATE users
        SET monthly_interviews_used = monthly_interviews_used + 1,
            updated_at = NOW()
        WHERE external_user_id = $1
          AND (plan = 'pro' OR monthly_interviews_used < $2)
    `
	tag, err := r.pool.Exec(ctx, q, externalUserID, freeLimit)
	if err != nil {
		return false, fmt.Errorf("consuming interview for user %s: %w", externalUserID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepo) UpdateBilling(ctx context.Context, externalUserID string, fields BillingFields) (bool, error) {
	var q string
	var args []interface{}

	if fields.ResetUsage {
		q = `
            UPDATE users
            SET plan = $2,
                stripe_customer_id = $3,
                stripe_subscription_status = $4,
                monthly_interviews_used = 0,
                monthly_reset_at = $5,
                updated_at = NOW()
            WHERE external_user_id = $1
        `
		args = []interface{}{externalUserID, fields.Plan, fields.StripeCustomerID, fields.StripeSubscriptionStatus, fields.MonthStart}
	} else {
		q = `
            UPDATE users
            SET plan = $2,
                stripe_customer_id = $3,
                stripe_subscription_status = $4,
                updated_at = NOW()
            WHERE external_user_id = $1
        `
		args = []interface{}{externalUserID, fields.Plan, fields.StripeCustomerID, fields.StripeSubscriptionStatus}
	}

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("updating billing fields for user %s: %w", externalUserID, err)
	}
	return tag.RowsAffected() > 0, nil
}
