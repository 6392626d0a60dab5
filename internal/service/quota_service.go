package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/repository"

	"github.com/rs/zerolog"
)

// FreeMonthlyLimit is how many interviews a free-plan user may create per
// calendar month.
const FreeMonthlyLimit = 2

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrQuotaExceeded = errors.New("over plan limit")
)

// QuotaService gates session creation on the user's monthly quota.
type QuotaService interface {
	// CheckAndConsume performs the lazy month rollover, then consumes one
	// quota unit. Returns ErrQuotaExceeded (with a human-readable reason)
	// without consuming anything when the free limit is reached.
	CheckAndConsume(ctx context.Context, externalUserID string) error
}

type quotaService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewQuotaService creates a QuotaService with a scoped logger.
func NewQuotaService(userRepo repository.UserRepository, logger zerolog.Logger) QuotaService {
	return &quotaService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "QuotaService").Logger(),
		now:      time.Now,
	}
}

func (s *quotaService) CheckAndConsume(ctx context.Context, externalUserID string) error {
	user, err := s.userRepo.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return fmt.Errorf("resolving user for quota check: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	monthStart := startOfMonth(s.now())
	if user.MonthlyResetAt == nil || user.MonthlyResetAt.Before(monthStart) {
		if err := s.userRepo.ResetMonthlyUsage(ctx, externalUserID, monthStart); err != nil {
			return fmt.Errorf("monthly rollover: %w", err)
		}
	}

	// Single conditional increment; separate read-then-write would let two
	// concurrent calls both pass the check.
	allowed, err := s.userRepo.ConsumeInterview(ctx, externalUserID, FreeMonthlyLimit)
	if err != nil {
		return fmt.Errorf("consuming interview quota: %w", err)
	}
	if !allowed {
		s.logger.Info().Str("external_user_id", externalUserID).Msg("Interview quota exhausted")
		return fmt.Errorf("%w: free plan allows %d interviews per month", ErrQuotaExceeded, FreeMonthlyLimit)
	}
	return nil
}

// startOfMonth returns the first instant of t's calendar month in UTC.
func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
