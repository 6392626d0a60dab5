package dto

import "app/internal/model"

// ProfileExtractDTO is a raw job description to be distilled into a role
// profile.
type ProfileExtractDTO struct {
	JobDescription string `json:"job_description" validate:"required"`
}

type ProfileExtractResponseDTO struct {
	RoleProfile model.RoleProfile `json:"role_profile"`
}
