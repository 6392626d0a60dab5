package model

import "time"

// MaxQuestions is the hard cap of interviewer turns per session.
const MaxQuestions = 8

// RoleProfile is the structured profile extracted from a job description.
type RoleProfile struct {
	Competencies           []string `json:"competencies"`
	SkillsKeywords         []string `json:"skillsKeywords"`
	Responsibilities       []string `json:"responsibilities"`
	CommunicationStyleHint string   `json:"communicationStyleHint"`
}

// InterviewSession is the authoritative record of one mock interview:
// persona, role context, the turn counter, and the terminal artifacts.
type InterviewSession struct {
	ID              string       `db:"id" json:"id"`
	UserID          string       `db:"user_id" json:"user_id"`
	Persona         string       `db:"persona" json:"persona"`
	CompanyName     *string      `db:"company_name" json:"company_name,omitempty"`
	RoleTitle       *string      `db:"role_title" json:"role_title,omitempty"`
	RoleProfile     *RoleProfile `db:"role_profile_json" json:"role_profile_json,omitempty"`
	QuestionCount   int          `db:"question_count" json:"question_count"`
	FeedbackSummary *string      `db:"feedback_summary" json:"feedback_summary,omitempty"`
	PublicSlug      *string      `db:"public_slug" json:"public_slug,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
}
