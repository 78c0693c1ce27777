// Package classifier decides whether a thread message is recruiter outreach.
package classifier

import (
	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/thread"
)

// Decision is the outcome of classifying one message. Stage and Keyword are
// diagnostics only; Recruiter is the result.
type Decision struct {
	Recruiter bool
	Stage     string
	Keyword   string
}

// Classifier evaluates its stages in order. The first stage that applies
// decides, unless the keyword set enables fallthrough on a miss.
type Classifier struct {
	stages      []Stage
	fallThrough bool
	logger      *zap.Logger
}

// New creates a classifier from a keyword set. A nil set means the built-in one.
func New(set *KeywordSet, logger *zap.Logger) *Classifier {
	if set == nil {
		set = DefaultKeywords()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Classifier{
		stages: []Stage{
			&headlineStage{keywords: set.Headline},
			&textStage{keywords: set.Text, always: set.Fallthrough},
		},
		fallThrough: set.Fallthrough,
		logger:      logger,
	}
}

// Classify returns the decision for msg. It is pure: the same message always
// yields the same decision.
func (c *Classifier) Classify(msg thread.Message) Decision {
	decision := Decision{}

	for _, stage := range c.stages {
		if !stage.Applies(msg) {
			continue
		}

		decision.Stage = stage.Name()
		if keyword, ok := stage.Match(msg); ok {
			decision.Recruiter = true
			decision.Keyword = keyword
			break
		}

		if !c.fallThrough {
			break
		}
	}

	c.logger.Debug("classified message",
		zap.Bool("recruiter", decision.Recruiter),
		zap.String("stage", decision.Stage),
		zap.String("keyword", decision.Keyword),
	)

	return decision
}

// IsRecruiter is Classify reduced to its boolean result.
func (c *Classifier) IsRecruiter(msg thread.Message) bool {
	return c.Classify(msg).Recruiter
}
