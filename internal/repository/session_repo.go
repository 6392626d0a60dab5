package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository interface {
	Create(ctx context.Context, userID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error)
	// GetByID returns nil, nil when no row exists.
	GetByID(ctx context.Context, sessionID string) (*model.InterviewSession, error)
	// GetBySlug returns nil, nil when no session carries the slug.
	GetBySlug(ctx context.Context, slug string) (*model.InterviewSession, error)
	// AppendInterviewerQuestion inserts the interviewer message and advances
	// the turn counter in one transaction. The increment is conditional on
	// the counter still holding observedCount and staying under the budget;
	// returns false (and persists nothing) when a concurrent turn won.
	AppendInterviewerQuestion(ctx context.Context, sessionID, content string, observedCount int) (bool, error)
	SetFeedbackSummary(ctx context.Context, sessionID, summary string) error
	SetPublicSlug(ctx context.Context, sessionID string, slug *string) error
}

type sessionRepo struct {
	pool *pgxpool.Pool
}

// NewSessionRepo creates a new SessionRepository.
func NewSessionRepo(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepo{pool: pool}
}

func (r *sessionRepo) Create(ctx context.Context, userID, persona string, companyName, roleTitle *string, profile *model.RoleProfile) (string, error) {
	var profileJSON []byte
	if profile != nil {
		var err error
		profileJSON, err = json.Marshal(profile)
		if err != nil {
			return "", fmt.Errorf("marshaling role profile: %w", err)
		}
	}

	const q = `
        INSERT INTO interview_sessions (user_id, persona, company_name, role_title, role_profile_json, question_count)
        VALUES ($1, $2, $3, $4, $5, 0)
        RETURNING id
    `
	var id string
	if err := r.pool.QueryRow(ctx, q, userID, persona, companyName, roleTitle, profileJSON).Scan(&id); err != nil {
		return "", fmt.Errorf("creating interview session: %w", err)
	}
	return id, nil
}

const sessionColumns = `
        SELECT id, user_id, persona, company_name, role_title, role_profile_json,
               question_count, feedback_summary, public_slug, created_at
        FROM interview_sessions
`

func (r *sessionRepo) GetByID(ctx context.Context, sessionID string) (*model.InterviewSession, error) {
	return r.getOne(ctx, sessionColumns+` WHERE id = $1`, sessionID)
}

func (r *sessionRepo) GetBySlug(ctx context.Context, slug string) (*model.InterviewSession, error) {
	return r.getOne(ctx, sessionColumns+` WHERE public_slug = $1`, slug)
}

func (r *sessionRepo) getOne(ctx context.Context, query, arg string) (*model.InterviewSession, error) {
	var s model.InterviewSession
	var rawProfile []byte
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&s.ID,
		&s.UserID,
		&s.Persona,
		&s.CompanyName,
		&s.RoleTitle,
		&rawProfile,
		&s.QuestionCount,
		&s.FeedbackSummary,
		&s.PublicSlug,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch interview session: %w", err)
	}
	if len(rawProfile) > 0 {
		var profile model.RoleProfile
		if err := json.Unmarshal(rawProfile, &profile); err != nil {
			return nil, fmt.Errorf("unmarshal role_profile_json for session %s: %w", s.ID, err)
		}
		s.RoleProfile = &profile
	}
	return &s, nil
}

func (r *sessionRepo) AppendInterviewerQuestion(ctx context.Context, sessionID, content string, observedCount int) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("starting transaction for interviewer turn: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const insertQ = `INSERT INTO messages (session_id, role, content) VALUES ($1, 'interviewer', $2)`
	if _, err := tx.Exec(ctx, insertQ, sessionID, content); err != nil {
		return false, fmt.Errorf("inserting interviewer message for session %s: %w", sessionID, err)
	}

	const updateQ = `
        UPDATE interview_sessions
        SET question_count = question_count + 1
        WHERE id = $1
          AND question_count = $2
          AND question_count < $3
    `
	tag, err := tx.Exec(ctx, updateQ, sessionID, observedCount, model.MaxQuestions)
	if err != nil {
		return false, fmt.Errorf("advancing turn counter for session %s: %w", sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		// A concurrent turn advanced the counter first; the rollback also
		// discards the message insert.
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing interviewer turn for session %s: %w", sessionID, err)
	}
	return true, nil
}

func (r *sessionRepo) SetFeedbackSummary(ctx context.Context, sessionID, summary string) error {
	const q = `UPDATE interview_sessions SET feedback_summary = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, sessionID, summary); err != nil {
		return fmt.Errorf("setting feedback summary for session %s: %w", sessionID, err)
	}
	return nil
}

func (r *sessionRepo) SetPublicSlug(ctx context.Context, sessionID string, slug *string) error {
	const q = `UPDATE interview_sessions SET public_slug = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, sessionID, slug); err != nil {
		return fmt.Errorf("setting public slug for session %s: %w", sessionID, err)
	}
	return nil
}
