package injector

import (
	"context"
	"errors"
)

type fakeClipboard struct {
	content  string
	readErr  error
	writeErr error
	// failWritesAfter makes writes fail once this many have succeeded; <0 disables it.
	failWritesAfter int
	reads           int
	writes          []string
}

func newClipboard(content string) *fakeClipboard {
	return &fakeClipboard{content: content, failWritesAfter: -1}
}

func (c *fakeClipboard) ReadText(context.Context) (string, error) {
	c.reads++
	if c.readErr != nil {
		return "", c.readErr
	}
	return c.content, nil
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	if c.failWritesAfter >= 0 && len(c.writes) >= c.failWritesAfter {
		return errors.New("clipboard permission revoked")
	}
	c.writes = append(c.writes, text)
	c.content = text
	return nil
}

func (c *fakeClipboard) touched() bool {
	return c.reads > 0 || len(c.writes) > 0
}

type fakeField struct {
	clipboard *fakeClipboard
	html      string
	focused   bool
	selected  bool
	pasteErr  error
	setErr    error
	mutations int
	inputs    int
}

func (f *fakeField) Focus(context.Context) error {
	f.focused = true
	return nil
}

func (f *fakeField) SelectAll(context.Context) error {
	f.selected = true
	return nil
}

func (f *fakeField) Paste(context.Context) error {
	if f.pasteErr != nil {
		return f.pasteErr
	}
	f.html = ToFieldHTML(f.clipboard.content)
	f.mutations++
	return nil
}

func (f *fakeField) SetHTML(_ context.Context, markup string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.html = markup
	f.mutations++
	return nil
}

func (f *fakeField) NotifyInput(context.Context) error {
	f.inputs++
	return nil
}

type fakeDocument struct {
	focused  bool
	focusErr error
	fields   map[string]*fakeField
	queries  []string
}

func (d *fakeDocument) HasFocus(context.Context) (bool, error) {
	return d.focused, d.focusErr
}

func (d *fakeDocument) Find(_ context.Context, selector string) (Field, bool, error) {
	d.queries = append(d.queries, selector)
	f, ok := d.fields[selector]
	if !ok {
		return nil, false, nil
	}
	return f, true, nil
}
