package classifier

import (
	"strings"

	"github.com/sagkhr23/linkdin-auto-reply/internal/thread"
)

const (
	StageHeadline = "headline"
	StageText     = "text"
)

// Stage is one step of the ordered classification heuristic.
type Stage interface {
	Name() string
	// Applies reports whether the stage takes part in classifying msg.
	Applies(msg thread.Message) bool
	// Match returns the first keyword found, if any.
	Match(msg thread.Message) (string, bool)
}

type headlineStage struct {
	keywords []string
}

func (s *headlineStage) Name() string { return StageHeadline }

func (s *headlineStage) Applies(msg thread.Message) bool {
	_, ok := msg.Headline()
	return ok
}

func (s *headlineStage) Match(msg thread.Message) (string, bool) {
	headline, _ := msg.Headline()
	return containsAny(headline, s.keywords)
}

type textStage struct {
	keywords []string
	always   bool
}

func (s *textStage) Name() string { return StageText }

func (s *textStage) Applies(msg thread.Message) bool {
	if s.always {
		return true
	}
	_, hasHeadline := msg.Headline()
	return !hasHeadline
}

func (s *textStage) Match(msg thread.Message) (string, bool) {
	return containsAny(msg.Text, s.keywords)
}

func containsAny(s string, keywords []string) (string, bool) {
	lower := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}
