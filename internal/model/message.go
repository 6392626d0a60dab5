package model

import "time"

// Message author roles.
const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
)

// EvaluationScores holds the six rubric sub-scores, each on a 1-5 scale.
type EvaluationScores struct {
	Relevance int `json:"relevance"`
	Star      int `json:"star"`
	Specifics int `json:"specifics"`
	Reasoning int `json:"reasoning"`
	Clarity   int `json:"clarity"`
	RoleFit   int `json:"roleFit"`
}

// EvaluationRecord is the structured score attached to a candidate answer.
type EvaluationRecord struct {
	Scores         EvaluationScores `json:"scores"`
	OverallScore   int              `json:"overallScore"`
	BriefFeedback  string           `json:"briefFeedback"`
	ImprovedAnswer string           `json:"improvedAnswer"`
}

// Message is one transcript entry. Messages are append-only; the only
// permitted update is attaching the evaluation record once.
type Message struct {
	ID        string            `db:"id" json:"id"`
	SessionID string            `db:"session_id" json:"session_id"`
	Role      string            `db:"role" json:"role"`
	Content   string            `db:"content" json:"content"`
	Eval      *EvaluationRecord `db:"eval_json" json:"eval_json,omitempty"`
	TS        time.Time         `db:"ts" json:"ts"`
}
