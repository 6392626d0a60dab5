package dto

import (
	"time"

	"app/internal/model"
)

// SessionCreateDTO is used for incoming create requests
type SessionCreateDTO struct {
	Persona     string             `json:"persona" validate:"required"`
	CompanyName string             `json:"company_name"`
	RoleTitle   string             `json:"role_title"`
	RoleProfile *model.RoleProfile `json:"role_profile"`
}

// SessionResponseDTO is returned in API responses
type SessionResponseDTO struct {
	SessionID     string    `json:"session_id"`
	Persona       string    `json:"persona"`
	CompanyName   string    `json:"company_name,omitempty"`
	RoleTitle     string    `json:"role_title,omitempty"`
	QuestionCount int       `json:"question_count"`
	PublicSlug    *string   `json:"public_slug,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ShareToggleDTO flips a session's public visibility. MakePublic is a
// pointer so an omitted field fails validation instead of silently
// unsharing.
type ShareToggleDTO struct {
	SessionID  string `json:"session_id" validate:"required"`
	MakePublic *bool  `json:"make_public" validate:"required"`
}

type ShareResponseDTO struct {
	PublicSlug *string `json:"public_slug"`
}

// PublicSummaryResponseDTO is the read-only shared view of a finished
// session.
type PublicSummaryResponseDTO struct {
	Persona         string `json:"persona"`
	RoleTitle       string `json:"role_title,omitempty"`
	FeedbackSummary string `json:"feedback_summary"`
	Scores          []int  `json:"scores"`
}
