package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncUpserts(t *testing.T) {
	var gotEmail, gotID string
	repo := &mockUserRepo{upsertByEmailFunc: func(ctx context.Context, email, externalUserID string) error {
		gotEmail, gotID = email, externalUserID
		return nil
	}}

	err := NewUserService(repo).Sync(context.Background(), "jane@example.com", "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", gotEmail)
	assert.Equal(t, "ext-1", gotID)
}

func TestSyncWrapsRepoError(t *testing.T) {
	repo := &mockUserRepo{upsertByEmailFunc: func(ctx context.Context, email, externalUserID string) error {
		return errors.New("unique violation")
	}}
	err := NewUserService(repo).Sync(context.Background(), "jane@example.com", "ext-1")
	assert.Error(t, err)
}

func TestGetUnknownUser(t *testing.T) {
	repo := &mockUserRepo{getByExternalIDFunc: func(ctx context.Context, id string) (*model.User, error) {
		return nil, nil
	}}
	_, err := NewUserService(repo).Get(context.Background(), "ext-1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetReturnsRow(t *testing.T) {
	repo := &mockUserRepo{getByExternalIDFunc: func(ctx context.Context, id string) (*model.User, error) {
		return &model.User{ID: "u1", ExternalUserID: id, Plan: model.PlanPro}, nil
	}}
	u, err := NewUserService(repo).Get(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, u.Plan)
}
