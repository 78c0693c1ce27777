// Package thread reads the latest message of a conversation and its sender
// metadata from a document.
package thread

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/utils"
)

const (
	// DefaultMessageSelector matches every message event of a LinkedIn thread, oldest first.
	DefaultMessageSelector = ".msg-s-message-list__event"
	// DefaultHeadlineSelector matches the occupation line of the sender profile card.
	DefaultHeadlineSelector = ".msg-s-profile-card__occupation"

	maxLogLength = 120
)

// Message is the signal extracted from a thread: the most recent message and,
// when the document shows one, the sender headline.
type Message struct {
	Text           string
	SenderHeadline *string
}

// Headline returns the trimmed sender headline and whether it is present.
// A blank headline counts as absent.
func (m Message) Headline() (string, bool) {
	if m.SenderHeadline == nil {
		return "", false
	}
	headline := strings.TrimSpace(*m.SenderHeadline)
	return headline, headline != ""
}

// DocumentReader is the read-only view of a document the extractor needs.
type DocumentReader interface {
	// TextsOf returns the rendered text of every node matching selector in document order.
	TextsOf(ctx context.Context, selector string) ([]string, error)
	// TextOf returns the rendered text of the first node matching selector.
	TextOf(ctx context.Context, selector string) (string, bool, error)
}

// Selectors locate the thread nodes in the document.
type Selectors struct {
	Messages string `mapstructure:"messages"`
	Headline string `mapstructure:"headline"`
}

// DefaultSelectors returns the LinkedIn messaging selectors.
func DefaultSelectors() Selectors {
	return Selectors{
		Messages: DefaultMessageSelector,
		Headline: DefaultHeadlineSelector,
	}
}

func (s Selectors) withDefaults() Selectors {
	defaults := DefaultSelectors()
	if strings.TrimSpace(s.Messages) == "" {
		s.Messages = defaults.Messages
	}
	if strings.TrimSpace(s.Headline) == "" {
		s.Headline = defaults.Headline
	}
	return s
}

// Extractor produces a Message from a document. It never mutates the document.
type Extractor struct {
	reader    DocumentReader
	selectors Selectors
	logger    *zap.Logger
}

// NewExtractor creates an extractor over the provided reader. Empty selectors fall back to the defaults.
func NewExtractor(reader DocumentReader, selectors Selectors, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		reader:    reader,
		selectors: selectors.withDefaults(),
		logger:    logger,
	}
}

// Extract returns the latest message of the thread. The boolean is false when
// no message is present; read failures are logged and reported the same way.
func (e *Extractor) Extract(ctx context.Context) (Message, bool) {
	texts, err := e.reader.TextsOf(ctx, e.selectors.Messages)
	if err != nil {
		e.logger.Warn("reading thread messages", zap.String("selector", e.selectors.Messages), zap.Error(err))
		return Message{}, false
	}

	if len(texts) == 0 {
		return Message{}, false
	}

	// The document lists messages chronologically, so the last node is the newest one.
	text := strings.TrimSpace(texts[len(texts)-1])
	if text == "" {
		return Message{}, false
	}

	msg := Message{Text: text}

	headline, found, err := e.reader.TextOf(ctx, e.selectors.Headline)
	switch {
	case err != nil:
		e.logger.Debug("reading sender headline", zap.String("selector", e.selectors.Headline), zap.Error(err))
	case found:
		if headline = strings.TrimSpace(headline); headline != "" {
			msg.SenderHeadline = &headline
		}
	}

	e.logger.Debug("extracted thread signal",
		zap.Int("messages", len(texts)),
		zap.String("message_preview", utils.TruncateForLog(msg.Text, maxLogLength)),
		zap.Bool("headline_present", msg.SenderHeadline != nil),
	)

	return msg, true
}
