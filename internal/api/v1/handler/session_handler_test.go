package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeSessionService is a canned SessionService for handler tests.
type fakeSessionService struct {
	createFunc      func(ctx context.Context, externalUserID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error)
	toggleShareFunc func(ctx context.Context, sessionID, externalUserID string, makePublic bool) (*string, error)
	getPublicFunc   func(ctx context.Context, slug string) (*service.PublicSummary, error)
}

func (f *fakeSessionService) Create(ctx context.Context, externalUserID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error) {
	return f.createFunc(ctx, externalUserID, persona, companyName, roleTitle, profile)
}

func (f *fakeSessionService) ToggleShare(ctx context.Context, sessionID, externalUserID string, makePublic bool) (*string, error) {
	return f.toggleShareFunc(ctx, sessionID, externalUserID, makePublic)
}

func (f *fakeSessionService) GetPublic(ctx context.Context, slug string) (*service.PublicSummary, error) {
	return f.getPublicFunc(ctx, slug)
}

// fakeAuth injects a fixed user identity, standing in for the JWT middleware.
func fakeAuth(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newSessionMux(svc service.SessionService, userID string) *http.ServeMux {
	h := NewSessionHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, fakeAuth(userID))
	return mux
}

func TestCreateSessionEndpoint(t *testing.T) {
	svc := &fakeSessionService{createFunc: func(ctx context.Context, externalUserID, persona string, c, r *string, p *model.RoleProfile) (string, error) {
		assert.Equal(t, "ext-1", externalUserID)
		assert.Equal(t, "Technical", persona)
		require.NotNil(t, c)
		assert.Equal(t, "Acme", *c)
		return "sess-42", nil
	}}
	mux := newSessionMux(svc, "ext-1")

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"persona":"Technical","company_name":"Acme"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sess-42", gjson.Get(rec.Body.String(), "session_id").String())
}

func TestCreateSessionQuotaMapsTo402(t *testing.T) {
	svc := &fakeSessionService{createFunc: func(ctx context.Context, externalUserID, persona string, c, r *string, p *model.RoleProfile) (string, error) {
		return "", service.ErrQuotaExceeded
	}}
	mux := newSessionMux(svc, "ext-1")

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"persona":"HR"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestCreateSessionMissingPersonaFailsValidation(t *testing.T) {
	svc := &fakeSessionService{createFunc: func(ctx context.Context, externalUserID, persona string, c, r *string, p *model.RoleProfile) (string, error) {
		t.Fatal("service must not be called for an invalid payload")
		return "", nil
	}}
	mux := newSessionMux(svc, "ext-1")

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"company_name":"Acme"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShareEndpointRequiresMakePublic(t *testing.T) {
	svc := &fakeSessionService{toggleShareFunc: func(ctx context.Context, sessionID, externalUserID string, makePublic bool) (*string, error) {
		t.Fatal("service must not be called for an invalid payload")
		return nil, nil
	}}
	mux := newSessionMux(svc, "ext-1")

	req := httptest.NewRequest(http.MethodPost, "/sessions/share", strings.NewReader(`{"session_id":"s1"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShareEndpointDisable(t *testing.T) {
	svc := &fakeSessionService{toggleShareFunc: func(ctx context.Context, sessionID, externalUserID string, makePublic bool) (*string, error) {
		assert.Equal(t, "s1", sessionID)
		assert.False(t, makePublic)
		return nil, nil
	}}
	mux := newSessionMux(svc, "ext-1")

	req := httptest.NewRequest(http.MethodPost, "/sessions/share", strings.NewReader(`{"session_id":"s1","make_public":false}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "public_slug").Type == gjson.Null)
}

func TestShareEndpointForbidden(t *testing.T) {
	svc := &fakeSessionService{toggleShareFunc: func(ctx context.Context, sessionID, externalUserID string, makePublic bool) (*string, error) {
		return nil, service.ErrForbidden
	}}
	mux := newSessionMux(svc, "ext-1")

	req := httptest.NewRequest(http.MethodPost, "/sessions/share", strings.NewReader(`{"session_id":"s1","make_public":true}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicEndpoint(t *testing.T) {
	svc := &fakeSessionService{getPublicFunc: func(ctx context.Context, slug string) (*service.PublicSummary, error) {
		assert.Equal(t, "abc123def456", slug)
		return &service.PublicSummary{Persona: "HR", FeedbackSummary: "Well done.", Scores: []int{4, 3}}, nil
	}}
	mux := newSessionMux(svc, "")

	req := httptest.NewRequest(http.MethodGet, "/p/abc123def456", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "Well done.", gjson.Get(body, "feedback_summary").String())
	assert.Equal(t, int64(4), gjson.Get(body, "scores.0").Int())
}

func TestPublicEndpointUnknownSlug(t *testing.T) {
	svc := &fakeSessionService{getPublicFunc: func(ctx context.Context, slug string) (*service.PublicSummary, error) {
		return nil, service.ErrSessionNotFound
	}}
	mux := newSessionMux(svc, "")

	req := httptest.NewRequest(http.MethodGet, "/p/nope", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
