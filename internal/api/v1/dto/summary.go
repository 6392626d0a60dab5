package dto

// SummaryCompileDTO asks for the terminal feedback summary of a session.
type SummaryCompileDTO struct {
	SessionID string `json:"session_id" validate:"required"`
}

type SummaryResponseDTO struct {
	FeedbackSummary string `json:"feedback_summary"`
}
