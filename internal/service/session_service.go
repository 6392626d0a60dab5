package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidPersona  = errors.New("invalid persona")
	ErrForbidden       = errors.New("forbidden")
)

// PublicSummary is the unauthenticated view of a shared session: the
// terminal summary plus the per-answer overall-score series for the chart.
type PublicSummary struct {
	Persona         string `json:"persona"`
	RoleTitle       string `json:"role_title,omitempty"`
	FeedbackSummary string `json:"feedback_summary"`
	Scores          []int  `json:"scores"`
}

// SessionService owns the interview session lifecycle outside the turn loop:
// the quota-gated creation and the share-slug toggle.
type SessionService interface {
	Create(ctx context.Context, externalUserID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error)
	// ToggleShare returns the slug (nil after disabling). Enabling when a
	// slug already exists is a no-op returning the existing slug.
	ToggleShare(ctx context.Context, sessionID, externalUserID string, makePublic bool) (*string, error)
	// GetPublic reads a shared session by slug without authentication.
	GetPublic(ctx context.Context, slug string) (*PublicSummary, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	quota       QuotaService
	logger      zerolog.Logger
}

// NewSessionService creates a SessionService with a scoped logger.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	quota QuotaService,
	logger zerolog.Logger,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		quota:       quota,
		logger:      logger.With().Str("service", "SessionService").Logger(),
	}
}

func (s *sessionService) Create(ctx context.Context, externalUserID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error) {
	if !slices.Contains(CreatablePersonas, persona) {
		return "", ErrInvalidPersona
	}

	owner, err := s.userRepo.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return "", fmt.Errorf("resolving session owner: %w", err)
	}
	if owner == nil {
		return "", ErrUserNotFound
	}

	// Quota is consumed before the insert; a disallowed request must not
	// leave a session behind.
	if err := s.quota.CheckAndConsume(ctx, externalUserID); err != nil {
		return "", err
	}

	id, err := s.sessionRepo.Create(ctx, owner.ID, persona, companyName, roleTitle, profile)
	if err != nil {
		s.logger.Error().Err(err).Str("external_user_id", externalUserID).Msg("Failed to create interview session")
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

func (s *sessionService) ToggleShare(ctx context.Context, sessionID, externalUserID string, makePublic bool) (*string, error) {
	owner, err := s.userRepo.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("resolving requester: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.UserID != owner.ID {
		return nil, ErrForbidden
	}

	if !makePublic {
		if err := s.sessionRepo.SetPublicSlug(ctx, sessionID, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if sess.PublicSlug != nil && *sess.PublicSlug != "" {
		return sess.PublicSlug, nil
	}

	slug, err := newShareSlug()
	if err != nil {
		return nil, fmt.Errorf("generating share slug: %w", err)
	}
	if err := s.sessionRepo.SetPublicSlug(ctx, sessionID, &slug); err != nil {
		return nil, err
	}
	return &slug, nil
}

func (s *sessionService) GetPublic(ctx context.Context, slug string) (*PublicSummary, error) {
	sess, err := s.sessionRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("fetching session by slug: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	messages, err := s.messageRepo.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("listing shared transcript: %w", err)
	}

	summary := &PublicSummary{Persona: sess.Persona, Scores: []int{}}
	if sess.RoleTitle != nil {
		summary.RoleTitle = *sess.RoleTitle
	}
	if sess.FeedbackSummary != nil {
		summary.FeedbackSummary = *sess.FeedbackSummary
	}
	for _, m := range messages {
		if m.Role != model.RoleCandidate || m.Eval == nil {
			continue
		}
		summary.Scores = append(summary.Scores, m.Eval.OverallScore)
	}
	return summary, nil
}

// newShareSlug generates an unguessable token for the public URL. It is
// random, never derived from the session id.
func newShareSlug() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
