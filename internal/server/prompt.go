package server

import (
	_ "embed"
	"strings"

	"github.com/sagkhr23/linkdin-auto-reply/internal/generation"
	"github.com/sagkhr23/linkdin-auto-reply/internal/persona"
)

//go:embed prompt.md
var promptTemplate string

// BuildPrompt fills the drafting prompt for one request.
func BuildPrompt(p *persona.Persona, req generation.Request) string {
	if p == nil {
		p = &persona.Persona{}
	}

	replacer := strings.NewReplacer(
		"{{USER_NAME}}", p.UserName,
		"{{PHONE_NUMBER}}", p.PhoneNumber,
		"{{RESUME_LINK}}", p.ResumeLink,
		"{{RESUME}}", p.Resume,
		"{{ABOUT}}", p.About,
		"{{SENDER_HEADLINE}}", deref(req.SenderHeadline),
		"{{THREAD_CONTEXT}}", deref(req.ThreadContext),
		"{{MESSAGE}}", req.Message,
	)
	return replacer.Replace(promptTemplate)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
