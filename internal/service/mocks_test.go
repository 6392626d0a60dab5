package service

import (
	"context"
	"errors"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var testLogger = zerolog.Nop()

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepo struct {
	upsertByEmailFunc         func(ctx context.Context, email, externalUserID string) error
	getByExternalIDFunc       func(ctx context.Context, externalUserID string) (*model.User, error)
	findExternalIDByEmailFunc func(ctx context.Context, email string) (string, error)
	resetMonthlyUsageFunc     func(ctx context.Context, externalUserID string, monthStart time.Time) error
	consumeInterviewFunc      func(ctx context.Context, externalUserID string, freeLimit int) (bool, error)
	updateBillingFunc         func(ctx context.Context, externalUserID string, fields repository.BillingFields) (bool, error)
}

func (m *mockUserRepo) UpsertByEmail(ctx context.Context, email, externalUserID string) error {
	if m.upsertByEmailFunc != nil {
		return m.upsertByEmailFunc(ctx, email, externalUserID)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepo) GetByExternalID(ctx context.Context, externalUserID string) (*model.User, error) {
	if m.getByExternalIDFunc != nil {
		return m.getByExternalIDFunc(ctx, externalUserID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) FindExternalIDByEmail(ctx context.Context, email string) (string, error) {
	if m.findExternalIDByEmailFunc != nil {
		return m.findExternalIDByEmailFunc(ctx, email)
	}
	return "", errors.New("not implemented")
}

func (m *mockUserRepo) ResetMonthlyUsage(ctx context.Context, externalUserID string, monthStart time.Time) error {
	if m.resetMonthlyUsageFunc != nil {
		return m.resetMonthlyUsageFunc(ctx, externalUserID, monthStart)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepo) ConsumeInterview(ctx context.Context, externalUserID string, freeLimit int) (bool, error) {
	if m.consumeInterviewFunc != nil {
		return m.consumeInterviewFunc(ctx, externalUserID, freeLimit)
	}
	return false, errors.New("not implemented")
}

func (m *mockUserRepo) UpdateBilling(ctx context.Context, externalUserID string, fields repository.BillingFields) (bool, error) {
	if m.updateBillingFunc != nil {
		return m.updateBillingFunc(ctx, externalUserID, fields)
	}
	return false, errors.New("not implemented")
}

// =============================================================================
// Mock SessionRepository
// =============================================================================

type mockSessionRepo struct {
	createFunc                    func(ctx context.Context, userID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error)
	getByIDFunc                   func(ctx context.Context, sessionID string) (*model.InterviewSession, error)
	getBySlugFunc                 func(ctx context.Context, slug string) (*model.InterviewSession, error)
	appendInterviewerQuestionFunc func(ctx context.Context, sessionID, content string, observedCount int) (bool, error)
	setFeedbackSummaryFunc        func(ctx context.Context, sessionID, summary string) error
	setPublicSlugFunc             func(ctx context.Context, sessionID string, slug *string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, persona, companyName, roleTitle, profile)
	}
	return "", errors.New("not implemented")
}

func (m *mockSessionRepo) GetByID(ctx context.Context, sessionID string) (*model.InterviewSession, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepo) GetBySlug(ctx context.Context, slug string) (*model.InterviewSession, error) {
	if m.getBySlugFunc != nil {
		return m.getBySlugFunc(ctx, slug)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepo) AppendInterviewerQuestion(ctx context.Context, sessionID, content string, observedCount int) (bool, error) {
	if m.appendInterviewerQuestionFunc != nil {
		return m.appendInterviewerQuestionFunc(ctx, sessionID, content, observedCount)
	}
	return false, errors.New("not implemented")
}

func (m *mockSessionRepo) SetFeedbackSummary(ctx context.Context, sessionID, summary string) error {
	if m.setFeedbackSummaryFunc != nil {
		return m.setFeedbackSummaryFunc(ctx, sessionID, summary)
	}
	return errors.New("not implemented")
}

func (m *mockSessionRepo) SetPublicSlug(ctx context.Context, sessionID string, slug *string) error {
	if m.setPublicSlugFunc != nil {
		return m.setPublicSlugFunc(ctx, sessionID, slug)
	}
	return errors.New("not implemented")
}

// =============================================================================
// Mock MessageRepository
// =============================================================================

type mockMessageRepo struct {
	appendFunc        func(ctx context.Context, sessionID, role, content string) (string, error)
	attachEvalFunc    func(ctx context.Context, messageID string, rec *model.EvaluationRecord) error
	listBySessionFunc func(ctx context.Context, sessionID string) ([]model.Message, error)
	listWindowFunc    func(ctx context.Context, sessionID string, limit int) ([]model.Message, error)
}

func (m *mockMessageRepo) Append(ctx context.Context, sessionID, role, content string) (string, error) {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, sessionID, role, content)
	}
	return "", errors.New("not implemented")
}

func (m *mockMessageRepo) AttachEval(ctx context.Context, messageID string, rec *model.EvaluationRecord) error {
	if m.attachEvalFunc != nil {
		return m.attachEvalFunc(ctx, messageID, rec)
	}
	return errors.New("not implemented")
}

func (m *mockMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Message, error) {
	if m.listBySessionFunc != nil {
		return m.listBySessionFunc(ctx, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMessageRepo) ListWindow(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	if m.listWindowFunc != nil {
		return m.listWindowFunc(ctx, sessionID, limit)
	}
	return nil, errors.New("not implemented")
}

// =============================================================================
// Mock ChatClient
// =============================================================================

type mockChatClient struct {
	completeFunc func(ctx context.Context, messages []ChatMessage) (string, error)
}

func (m *mockChatClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, messages)
	}
	return "", errors.New("not implemented")
}

// stubEvaluator returns fixed results so turn-loop tests do not depend on
// evaluator behavior.
type stubEvaluator struct {
	record *model.EvaluationRecord
	tip    string
	hasTip bool
}

func (s *stubEvaluator) Evaluate(ctx context.Context, question, answer string) *model.EvaluationRecord {
	if s.record != nil {
		return s.record
	}
	return neutralEvaluation()
}

func (s *stubEvaluator) CoachingTip(ctx context.Context, question, answer string) (string, bool) {
	return s.tip, s.hasTip
}
