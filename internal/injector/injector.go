// Package injector inserts a generated reply into the compose field of a
// document, preferring a clipboard paste and falling back to a direct write.
package injector

import (
	"context"
	"html"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultPrimarySelector matches the editable LinkedIn compose box.
	DefaultPrimarySelector = `div.msg-form__contenteditable[contenteditable="true"]`
	// DefaultSecondarySelector is the looser fallback for the compose box.
	DefaultSecondarySelector = `div.msg-form__contenteditable`
)

// Clipboard is the system clipboard as a single mutable text slot.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// Field is the editable element that receives the reply.
type Field interface {
	Focus(ctx context.Context) error
	SelectAll(ctx context.Context) error
	Paste(ctx context.Context) error
	SetHTML(ctx context.Context, markup string) error
	// NotifyInput emits a synthetic input event so page listeners see the change.
	NotifyInput(ctx context.Context) error
}

// Document locates the field and reports input focus.
type Document interface {
	HasFocus(ctx context.Context) (bool, error)
	Find(ctx context.Context, selector string) (Field, bool, error)
}

// Selectors locate the compose field, primary first.
type Selectors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
}

// DefaultSelectors returns the LinkedIn compose box selectors.
func DefaultSelectors() Selectors {
	return Selectors{Primary: DefaultPrimarySelector, Secondary: DefaultSecondarySelector}
}

// Result describes one run of the machine.
type Result struct {
	Final State
	Trace []State
	// Mutated is true once a paste or direct write into the field succeeded.
	Mutated bool
	// Restored is true when a captured clipboard snapshot was written back.
	Restored bool
	// Err holds the last field error seen on a fallback write, if any.
	Err error
}

// Injector runs the insertion state machine.
type Injector struct {
	doc       Document
	clipboard Clipboard
	selectors Selectors
	logger    *zap.Logger
}

// New creates an injector. Empty selectors fall back to the defaults.
func New(doc Document, clipboard Clipboard, selectors Selectors, logger *zap.Logger) *Injector {
	defaults := DefaultSelectors()
	if strings.TrimSpace(selectors.Primary) == "" {
		selectors.Primary = defaults.Primary
	}
	if strings.TrimSpace(selectors.Secondary) == "" {
		selectors.Secondary = defaults.Secondary
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Injector{doc: doc, clipboard: clipboard, selectors: selectors, logger: logger}
}

type run struct {
	*Injector
	reply    string
	reason   string
	field    Field
	snapshot *string
	result   Result
}

func (r *run) enter(s State) {
	r.result.Trace = append(r.result.Trace, s)
	r.result.Final = s
}

// Inject places reply into the compose field. It never fails the caller: the
// returned Result says which terminal state was reached.
func (i *Injector) Inject(ctx context.Context, reply, reason string) Result {
	r := &run{Injector: i, reply: reply, reason: reason}
	state := StateStart
	r.enter(state)

	for !state.Terminal() {
		state = r.step(ctx, state)
		r.enter(state)
	}

	r.logger.Info("reply injection finished",
		zap.Stringer("state", r.result.Final),
		zap.String("reason", reason),
		zap.Bool("mutated", r.result.Mutated),
		zap.Bool("clipboard_restored", r.result.Restored),
	)

	return r.result
}

func (r *run) step(ctx context.Context, state State) State {
	switch state {
	case StateStart:
		field, ok := r.locate(ctx)
		if !ok {
			r.logger.Info("no input box found")
			return StateNoTarget
		}
		r.field = field
		return StateFocusCheck

	case StateFocusCheck:
		focused, err := r.doc.HasFocus(ctx)
		if err != nil {
			r.logger.Debug("focus check failed, treating document as unfocused", zap.Error(err))
		}
		if err != nil || !focused {
			r.logger.Info("document not focused, using fallback insert")
			r.directInsert(ctx)
			return StateUnfocusedFallback
		}
		return StateFocusedPath

	case StateFocusedPath:
		return StateClipboardCapture

	case StateClipboardCapture:
		previous, err := r.clipboard.ReadText(ctx)
		if err != nil {
			r.logger.Debug("clipboard read unavailable, restoration disabled", zap.Error(err))
		} else {
			r.snapshot = &previous
		}
		return StateClipboardWrite

	case StateClipboardWrite:
		if err := r.clipboard.WriteText(ctx, r.reply); err != nil {
			r.logger.Info("could not write to clipboard, falling back to direct insert", zap.Error(err))
			r.directInsert(ctx)
			return StateDirectFallback
		}
		return StatePaste

	case StatePaste:
		if err := r.paste(ctx); err != nil {
			r.logger.Info("paste failed, falling back to direct insert", zap.Error(err))
			r.directInsert(ctx)
			r.restore(ctx)
			return StateDirectFallback
		}
		return StateRestoreClipboard

	case StateRestoreClipboard:
		r.restore(ctx)
		return StateDone
	}

	return StateDone
}

func (r *run) locate(ctx context.Context) (Field, bool) {
	for _, selector := range []string{r.selectors.Primary, r.selectors.Secondary} {
		field, ok, err := r.doc.Find(ctx, selector)
		if err != nil {
			r.logger.Debug("querying input box", zap.String("selector", selector), zap.Error(err))
			continue
		}
		if ok {
			return field, true
		}
	}
	return nil, false
}

func (r *run) paste(ctx context.Context) error {
	if err := r.field.Focus(ctx); err != nil {
		return err
	}
	if err := r.field.SelectAll(ctx); err != nil {
		return err
	}
	if err := r.field.Paste(ctx); err != nil {
		return err
	}
	r.result.Mutated = true

	// The paste usually fires its own input event; a second one is harmless.
	if err := r.field.NotifyInput(ctx); err != nil {
		r.logger.Debug("dispatching input event", zap.Error(err))
	}
	return nil
}

func (r *run) directInsert(ctx context.Context) {
	if err := r.field.SetHTML(ctx, ToFieldHTML(r.reply)); err != nil {
		r.logger.Warn("direct insert failed", zap.Error(err))
		r.result.Err = err
		return
	}
	r.result.Mutated = true
	if err := r.field.NotifyInput(ctx); err != nil {
		r.logger.Debug("dispatching input event", zap.Error(err))
	}
}

func (r *run) restore(ctx context.Context) {
	if r.snapshot == nil {
		return
	}
	// Restoration is best effort: on failure the reply stays on the clipboard.
	if err := r.clipboard.WriteText(ctx, *r.snapshot); err != nil {
		r.logger.Debug("restoring clipboard failed", zap.Error(err))
		return
	}
	r.result.Restored = true
}

// ToFieldHTML renders reply as contenteditable markup: HTML-escaped, with
// newlines turned into line breaks.
func ToFieldHTML(reply string) string {
	escaped := html.EscapeString(reply)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
