package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowAllQuota is a QuotaService that always consumes successfully.
type allowAllQuota struct{ err error }

func (q *allowAllQuota) CheckAndConsume(ctx context.Context, externalUserID string) error {
	return q.err
}

func ownerRepo(internalID string) *mockUserRepo {
	return &mockUserRepo{getByExternalIDFunc: func(ctx context.Context, id string) (*model.User, error) {
		return &model.User{ID: internalID, ExternalUserID: id, Plan: model.PlanFree}, nil
	}}
}

func TestCreateRejectsUnknownPersona(t *testing.T) {
	svc := NewSessionService(&mockSessionRepo{}, &mockMessageRepo{}, ownerRepo("u1"), &allowAllQuota{}, testLogger)

	for _, persona := range []string{"", "Pirate", "Mentor"} {
		_, err := svc.Create(context.Background(), "ext-1", persona, nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidPersona, persona)
	}
}

func TestCreateBlockedByQuota(t *testing.T) {
	var inserted bool
	sessions := &mockSessionRepo{createFunc: func(ctx context.Context, userID, persona string, c, r *string, p *model.RoleProfile) (string, error) {
		inserted = true
		return "s1", nil
	}}
	quotaErr := errors.New("wrapped: " + ErrQuotaExceeded.Error())
	svc := NewSessionService(sessions, &mockMessageRepo{}, ownerRepo("u1"), &allowAllQuota{err: quotaErr}, testLogger)

	_, err := svc.Create(context.Background(), "ext-1", PersonaHR, nil, nil, nil)
	assert.Equal(t, quotaErr, err)
	// The disallowed request must not leave a session behind.
	assert.False(t, inserted)
}

func TestCreatePassesOwnerRowID(t *testing.T) {
	sessions := &mockSessionRepo{createFunc: func(ctx context.Context, userID, persona string, c, r *string, p *model.RoleProfile) (string, error) {
		assert.Equal(t, "internal-42", userID)
		assert.Equal(t, PersonaTechnical, persona)
		return "s1", nil
	}}
	svc := NewSessionService(sessions, &mockMessageRepo{}, ownerRepo("internal-42"), &allowAllQuota{}, testLogger)

	id, err := svc.Create(context.Background(), "ext-1", PersonaTechnical, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
}

func TestToggleShareEnableIsIdempotent(t *testing.T) {
	existing := "abc123def456"
	sessions := &mockSessionRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.InterviewSession, error) {
			return &model.InterviewSession{ID: id, UserID: "u1", PublicSlug: &existing}, nil
		},
		setPublicSlugFunc: func(ctx context.Context, id string, slug *string) error {
			t.Fatal("existing slug must be reused, not rewritten")
			return nil
		},
	}
	svc := NewSessionService(sessions, &mockMessageRepo{}, ownerRepo("u1"), &allowAllQuota{}, testLogger)

	slug, err := svc.ToggleShare(context.Background(), "s1", "ext-1", true)
	require.NoError(t, err)
	require.NotNil(t, slug)
	assert.Equal(t, existing, *slug)
}

func TestToggleShareMintsSlug(t *testing.T) {
	var stored *string
	sessions := &mockSessionRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.InterviewSession, error) {
			return &model.InterviewSession{ID: id, UserID: "u1"}, nil
		},
		setPublicSlugFunc: func(ctx context.Context, id string, slug *string) error {
			stored = slug
			return nil
		},
	}
	svc := NewSessionService(sessions, &mockMessageRepo{}, ownerRepo("u1"), &allowAllQuota{}, testLogger)

	slug, err := svc.ToggleShare(context.Background(), "s1", "ext-1", true)
	require.NoError(t, err)
	require.NotNil(t, slug)
	// 6 random bytes, hex encoded.
	assert.Len(t, *slug, 12)
	assert.Equal(t, slug, stored)
}

func TestToggleShareDisableClearsSlug(t *testing.T) {
	existing := "abc123def456"
	var cleared bool
	sessions := &mockSessionRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.InterviewSession, error) {
			return &model.InterviewSession{ID: id, UserID: "u1", PublicSlug: &existing}, nil
		},
		setPublicSlugFunc: func(ctx context.Context, id string, slug *string) error {
			cleared = slug == nil
			return nil
		},
	}
	svc := NewSessionService(sessions, &mockMessageRepo{}, ownerRepo("u1"), &allowAllQuota{}, testLogger)

	slug, err := svc.ToggleShare(context.Background(), "s1", "ext-1", false)
	require.NoError(t, err)
	assert.Nil(t, slug)
	assert.True(t, cleared)
}

func TestToggleShareForbiddenForNonOwner(t *testing.T) {
	sessions := &mockSessionRepo{getByIDFunc: func(ctx context.Context, id string) (*model.InterviewSession, error) {
		return &model.InterviewSession{ID: id, UserID: "someone-else"}, nil
	}}
	svc := NewSessionService(sessions, &mockMessageRepo{}, ownerRepo("u1"), &allowAllQuota{}, testLogger)

	_, err := svc.ToggleShare(context.Background(), "s1", "ext-1", true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetPublicUnknownSlug(t *testing.T) {
	sessions := &mockSessionRepo{getBySlugFunc: func(ctx context.Context, slug string) (*model.InterviewSession, error) {
		return nil, nil
	}}
	svc := NewSessionService(sessions, &mockMessageRepo{}, ownerRepo("u1"), &allowAllQuota{}, testLogger)

	_, err := svc.GetPublic(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetPublicScoreSeries(t *testing.T) {
	summary := "Solid interview overall."
	role := "Platform Engineer"
	sessions := &mockSessionRepo{getBySlugFunc: func(ctx context.Context, slug string) (*model.InterviewSession, error) {
		return &model.InterviewSession{ID: "s1", Persona: PersonaManager, RoleTitle: &role, FeedbackSummary: &summary}, nil
	}}
	messages := &mockMessageRepo{listBySessionFunc: func(ctx context.Context, sessionID string) ([]model.Message, error) {
		return []model.Message{
			{Role: model.RoleInterviewer, Content: "Q1"},
			{Role: model.RoleCandidate, Content: "A1", Eval: &model.EvaluationRecord{OverallScore: 4}},
			{Role: model.RoleInterviewer, Content: "Q2"},
			// Unevaluated answers contribute no point.
			{Role: model.RoleCandidate, Content: "A2"},
			{Role: model.RoleCandidate, Content: "A3", Eval: &model.EvaluationRecord{OverallScore: 2}},
		}, nil
	}}
	svc := NewSessionService(sessions, messages, ownerRepo("u1"), &allowAllQuota{}, testLogger)

	pub, err := svc.GetPublic(context.Background(), "abc123def456")
	require.NoError(t, err)
	assert.Equal(t, PersonaManager, pub.Persona)
	assert.Equal(t, role, pub.RoleTitle)
	assert.Equal(t, summary, pub.FeedbackSummary)
	assert.Equal(t, []int{4, 2}, pub.Scores)
}
