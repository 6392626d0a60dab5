package service

import (
	"context"
	"strings"
	"time"

	"app/internal/model"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// ProfileService extracts a structured role profile from a pasted job
// description. Extraction is best-effort: any failure yields an empty
// profile so the creation flow keeps moving.
type ProfileService interface {
	Extract(ctx context.Context, jobDescription string) *model.RoleProfile
}

type profileService struct {
	chat    ChatClient
	logger  zerolog.Logger
	timeout time.Duration
}

// NewProfileService creates a ProfileService with a scoped logger.
func NewProfileService(chat ChatClient, timeout time.Duration, logger zerolog.Logger) ProfileService {
	return &profileService{
		chat:    chat,
		logger:  logger.With().Str("service", "ProfileService").Logger(),
		timeout: timeout,
	}
}

func (s *profileService) Extract(ctx context.Context, jobDescription string) *model.RoleProfile {
	empty := &model.RoleProfile{
		Competencies:     []string{},
		SkillsKeywords:   []string{},
		Responsibilities: []string{},
	}
	if strings.TrimSpace(jobDescription) == "" {
		return empty
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.chat.Complete(ctx, []ChatMessage{
		{Role: "system", Content: "You extract concise JSON only."},
		{Role: "user", Content: jdExtractorPrompt + "\n\n---\n" + jobDescription},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("JD extraction failed, returning empty profile")
		return empty
	}

	raw, ok := extractJSONObject(content)
	if !ok {
		return empty
	}
	return &model.RoleProfile{
		Competencies:           stringList(gjson.Get(raw, "competencies")),
		SkillsKeywords:         stringList(gjson.Get(raw, "skillsKeywords")),
		Responsibilities:       stringList(gjson.Get(raw, "responsibilities")),
		CommunicationStyleHint: gjson.Get(raw, "communicationStyleHint").String(),
	}
}

func stringList(res gjson.Result) []string {
	items := []string{}
	for _, v := range res.Array() {
		if s := v.String(); s != "" {
			items = append(items, s)
		}
	}
	return items
}
