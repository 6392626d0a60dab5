package dto

// NextQuestionDTO requests the next interviewer question for a session.
type NextQuestionDTO struct {
	SessionID string `json:"session_id" validate:"required"`
}

// NextQuestionResponseDTO carries the freshly persisted interviewer turn.
type NextQuestionResponseDTO struct {
	Question      string `json:"question"`
	QuestionCount int    `json:"question_count"`
}
