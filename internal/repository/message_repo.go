package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository interface {
	// Append inserts a transcript entry and returns its id.
	Append(ctx context.Context, sessionID, role, content string) (string, error)
	// AttachEval stores the evaluation record on a message. Only the first
	// attachment sticks; a message that already carries one is left alone.
	AttachEval(ctx context.Context, messageID string, rec *model.EvaluationRecord) error
	// ListBySession returns the full transcript, oldest first.
	ListBySession(ctx context.Context, sessionID string) ([]model.Message, error)
	// ListWindow returns the most recent limit messages, oldest first.
	ListWindow(ctx context.Context, sessionID string, limit int) ([]model.Message, error)
}

type messageRepo struct {
	pool *pgxpool.Pool
}

// NewMessageRepo creates a new MessageRepository.
func NewMessageRepo(pool *pgxpool.Pool) MessageRepository {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Append(ctx context.Context, sessionID, role, content string) (string, error) {
	const q = `
        INSERT INTO messages (session_id, role, content)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	var id string
	if err := r.pool.QueryRow(ctx, q, sessionID, role, content).Scan(&id); err != nil {
		return "", fmt.Errorf("appending %s message to session %s: %w", role, sessionID, err)
	}
	return id, nil
}

func (r *messageRepo) AttachEval(ctx context.Context, messageID string, rec *model.EvaluationRecord) error {
	evalJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling evaluation record: %w", err)
	}
	const q = `
        UPDATE messages
        SET eval_json = $2::jsonb
        WHERE id = $1
          AND eval_json IS NULL
    `
	if _, err := r.pool.Exec(ctx, q, messageID, evalJSON); err != nil {
		return fmt.Errorf("attaching evaluation to message %s: %w", messageID, err)
	}
	return nil
}

func (r *messageRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Message, error) {
	const q = `
        SELECT id, session_id, role, content, eval_json, ts
        FROM messages
        WHERE session_id = $1
        ORDER BY ts, id
    `
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages for session %s: %w", sessionID, err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *messageRepo) ListWindow(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	const q = `
        SELECT id, session_id, role, content, eval_json, ts
        FROM messages
        WHERE session_id = $1
        ORDER BY ts DESC, id DESC
        LIMIT $2
    `
	rows, err := r.pool.Query(ctx, q, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying message window for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	// Reverse back to chronological order (oldest first).
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMessages(rows pgxRows) ([]model.Message, error) {
	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var rawEval []byte
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &rawEval, &m.TS); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		if len(rawEval) > 0 {
			var rec model.EvaluationRecord
			if err := json.Unmarshal(rawEval, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal eval_json for message %s: %w", m.ID, err)
			}
			m.Eval = &rec
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}
	return messages, nil
}
