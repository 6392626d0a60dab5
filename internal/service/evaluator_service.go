package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"app/internal/model"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// EvaluatorService scores candidate answers. It is pure with respect to
// state: text in, structured text out; callers persist the result. Neither
// method ever fails the caller — the generator output is untrusted and every
// failure mode degrades to a fixed fallback.
type EvaluatorService interface {
	Evaluate(ctx context.Context, question, answer string) *model.EvaluationRecord
	// CoachingTip returns a short tip and whether one was produced.
	CoachingTip(ctx context.Context, question, answer string) (string, bool)
}

type evaluatorService struct {
	chat    ChatClient
	logger  zerolog.Logger
	timeout time.Duration
}

// NewEvaluatorService creates an EvaluatorService with a scoped logger.
func NewEvaluatorService(chat ChatClient, timeout time.Duration, logger zerolog.Logger) EvaluatorService {
	return &evaluatorService{
		chat:    chat,
		logger:  logger.With().Str("service", "EvaluatorService").Logger(),
		timeout: timeout,
	}
}

func (s *evaluatorService) Evaluate(ctx context.Context, question, answer string) *model.EvaluationRecord {
	content, err := s.complete(ctx, evaluatorPrompt, question, answer)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Evaluator call failed, returning neutral record")
		return neutralEvaluation()
	}

	raw, ok := extractJSONObject(content)
	if !ok || !gjson.Get(raw, "scores").Exists() {
		s.logger.Warn().Msg("Evaluator output had no parseable score structure, returning neutral record")
		return neutralEvaluation()
	}

	var rec model.EvaluationRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn().Err(err).Msg("Evaluator output did not match the record shape, returning neutral record")
		return neutralEvaluation()
	}
	return &rec
}

func (s *evaluatorService) CoachingTip(ctx context.Context, question, answer string) (string, bool) {
	content, err := s.complete(ctx, coachingPrompt, question, answer)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Coaching call failed, skipping tip")
		return "", false
	}
	raw, ok := extractJSONObject(content)
	if !ok {
		return "", false
	}
	tip := gjson.Get(raw, "tip").String()
	if tip == "" {
		return "", false
	}
	return tip, true
}

func (s *evaluatorService) complete(ctx context.Context, rubric, question, answer string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if question == "" {
		question = "(not provided)"
	}
	user := rubric + "\n\nQuestion:\n" + question + "\n\nAnswer:\n" + answer
	return s.chat.Complete(ctx, []ChatMessage{
		{Role: "system", Content: "You return only JSON."},
		{Role: "user", Content: user},
	})
}

// extractJSONObject tolerates prose around the generator's JSON by taking
// the first '{' through the last '}' and validating the slice.
func extractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	raw := content[start : end+1]
	if !gjson.Valid(raw) {
		return "", false
	}
	return raw, true
}
