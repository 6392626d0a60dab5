package dto

import "app/internal/model"

// AnswerSubmitDTO is a candidate answer to the most recent interviewer
// question.
type AnswerSubmitDTO struct {
	SessionID string `json:"session_id" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

// AnswerSubmitResponseDTO acknowledges the answer. Ended reports that the
// question budget is exhausted and no follow-up question was produced.
type AnswerSubmitResponseDTO struct {
	OK    bool                    `json:"ok"`
	Ended bool                    `json:"ended"`
	Eval  *model.EvaluationRecord `json:"eval_json,omitempty"`
}

// MessageResponseDTO is one transcript entry.
type MessageResponseDTO struct {
	ID      string                  `json:"id"`
	Role    string                  `json:"role"`
	Content string                  `json:"content"`
	Eval    *model.EvaluationRecord `json:"eval_json,omitempty"`
}
