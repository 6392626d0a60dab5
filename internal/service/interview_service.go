package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrTurnBudgetExhausted = errors.New("max questions reached")
	ErrTurnConflict        = errors.New("concurrent turn in progress")
)

// historyWindow bounds how much transcript is replayed to the generator.
const historyWindow = 8

// SubmitResult is the outcome of one answer submission. Ended is set when
// the answer was the session's last (turn budget exhausted).
type SubmitResult struct {
	Eval  *model.EvaluationRecord
	Ended bool
}

// InterviewService is the turn engine: it validates the turn budget, builds
// generator context from the transcript, persists the interviewer question
// and advances the counter, and runs the answer pipeline.
type InterviewService interface {
	// NextQuestion returns the persisted question along with the advanced
	// question counter.
	NextQuestion(ctx context.Context, sessionID string) (string, int, error)
	SubmitAnswer(ctx context.Context, sessionID, externalUserID, content string, coaching bool) (*SubmitResult, error)
}

type interviewService struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	evaluator   EvaluatorService
	chat        ChatClient
	logger      zerolog.Logger
	timeout     time.Duration
}

// NewInterviewService creates an InterviewService with a scoped logger.
func NewInterviewService(
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	evaluator EvaluatorService,
	chat ChatClient,
	timeout time.Duration,
	logger zerolog.Logger,
) InterviewService {
	return &interviewService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		evaluator:   evaluator,
		chat:        chat,
		logger:      logger.With().Str("service", "InterviewService").Logger(),
		timeout:     timeout,
	}
}

func (s *interviewService) NextQuestion(ctx context.Context, sessionID string) (string, int, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return "", 0, fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		return "", 0, ErrSessionNotFound
	}
	if sess.QuestionCount >= model.MaxQuestions {
		return "", sess.QuestionCount, ErrTurnBudgetExhausted
	}

	persona := resolvePersona(sess.Persona)
	question := s.generateQuestion(ctx, sess, persona)

	ok, err := s.sessionRepo.AppendInterviewerQuestion(ctx, sessionID, question, sess.QuestionCount)
	if err != nil {
		return "", 0, fmt.Errorf("persisting interviewer turn: %w", err)
	}
	if !ok {
		return "", sess.QuestionCount, ErrTurnConflict
	}
	return question, sess.QuestionCount + 1, nil
}

// generateQuestion asks the generator for the next question and falls back
// to the canned persona bank on any failure, including timeout and empty
// output.
func (s *interviewService) generateQuestion(ctx context.Context, sess *model.InterviewSession, persona string) string {
	system := strings.Join([]string{
		systemBase,
		personaPrompts[persona],
		companyRoleBlock(sess.CompanyName, sess.RoleTitle, sess.RoleProfile),
	}, "\n\n")

	turnPrompt := nextTurnPrompt
	if sess.QuestionCount == 0 {
		turnPrompt = firstTurnPrompt
	}

	messages := []ChatMessage{{Role: "system", Content: system}}
	history, err := s.messageRepo.ListWindow(ctx, sess.ID, historyWindow)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to load history window, generating without it")
	}
	for _, m := range history {
		// Prior interviewer turns are the model's own prior output.
		role := "user"
		if m.Role == model.RoleInterviewer {
			role = "assistant"
		}
		messages = append(messages, ChatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: turnPrompt})

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	content, err := s.chat.Complete(genCtx, messages)
	question := strings.TrimSpace(content)
	if err != nil || question == "" {
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Generator failed, using fallback question")
		}
		return fallbackQuestion(persona, sess.QuestionCount)
	}
	return question
}

func (s *interviewService) SubmitAnswer(ctx context.Context, sessionID, externalUserID, content string, coaching bool) (*SubmitResult, error) {
	owner, err := s.userRepo.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("resolving answer author: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.UserID != owner.ID {
		return nil, ErrForbidden
	}

	msgID, err := s.messageRepo.Append(ctx, sessionID, model.RoleCandidate, content)
	if err != nil {
		return nil, fmt.Errorf("saving candidate answer: %w", err)
	}

	question := s.lastQuestion(ctx, sessionID)

	// Scoring is best-effort: the evaluator degrades internally and a failed
	// attach only costs the chart a point.
	rec := s.evaluator.Evaluate(ctx, question, content)
	if err := s.messageRepo.AttachEval(ctx, msgID, rec); err != nil {
		s.logger.Error().Err(err).Str("message_id", msgID).Msg("Failed to attach evaluation record")
	}

	// Optional stage: a coaching tip failure must not abort the next
	// question.
	if coaching {
		if tip, ok := s.evaluator.CoachingTip(ctx, question, content); ok {
			if _, err := s.messageRepo.Append(ctx, sessionID, model.RoleInterviewer, "Coach: "+tip); err != nil {
				s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to save coaching tip")
			}
		}
	}

	if _, _, err := s.NextQuestion(ctx, sessionID); err != nil {
		if errors.Is(err, ErrTurnBudgetExhausted) {
			return &SubmitResult{Eval: rec, Ended: true}, nil
		}
		return nil, err
	}
	return &SubmitResult{Eval: rec}, nil
}

// lastQuestion returns the most recent interviewer message, or "" when the
// lookup fails; the evaluator tolerates a missing question.
func (s *interviewService) lastQuestion(ctx context.Context, sessionID string) string {
	history, err := s.messageRepo.ListWindow(ctx, sessionID, historyWindow)
	if err != nil {
		return ""
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleInterviewer && !strings.HasPrefix(history[i].Content, "Coach: ") {
			return history[i].Content
		}
	}
	return ""
}
