package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"app/internal/repository"

	"github.com/rs/zerolog"
)

// SummaryService reduces a completed transcript into the terminal feedback
// artifact. Compiling twice overwrites; it never errors for being repeated.
type SummaryService interface {
	Compile(ctx context.Context, sessionID string) (string, error)
}

type summaryService struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	chat        ChatClient
	logger      zerolog.Logger
	timeout     time.Duration
}

// NewSummaryService creates a SummaryService with a scoped logger.
func NewSummaryService(
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	chat ChatClient,
	timeout time.Duration,
	logger zerolog.Logger,
) SummaryService {
	return &summaryService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		chat:        chat,
		logger:      logger.With().Str("service", "SummaryService").Logger(),
		timeout:     timeout,
	}
}

func (s *summaryService) Compile(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		return "", ErrSessionNotFound
	}

	messages, err := s.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("loading transcript: %w", err)
	}

	var transcript strings.Builder
	for _, m := range messages {
		transcript.WriteString(strings.ToUpper(m.Role))
		transcript.WriteString(": ")
		transcript.WriteString(m.Content)
		transcript.WriteString("\n")
	}

	summary := s.generateSummary(ctx, transcript.String())

	if err := s.sessionRepo.SetFeedbackSummary(ctx, sessionID, summary); err != nil {
		return "", fmt.Errorf("persisting summary: %w", err)
	}
	return summary, nil
}

func (s *summaryService) generateSummary(ctx context.Context, transcript string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.chat.Complete(ctx, []ChatMessage{
		{Role: "system", Content: "You are a concise interview coach."},
		{Role: "user", Content: summaryInstruction + transcript},
	})
	summary := strings.TrimSpace(content)
	if err != nil || summary == "" {
		if err != nil {
			s.logger.Warn().Err(err).Msg("Summary generation failed, using generic summary")
		}
		return genericSummary
	}
	return summary
}
