package browser

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"

	"github.com/sagkhr23/linkdin-auto-reply/internal/injector"
)

// Page adapts a rod page to the document interfaces of the pipeline.
type Page struct {
	page *rod.Page
}

func NewPage(p *rod.Page) *Page {
	return &Page{page: p}
}

// TextsOf returns the rendered text of every element matching selector.
func (p *Page) TextsOf(ctx context.Context, selector string) ([]string, error) {
	elements, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}

	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("read text of %q: %w", selector, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// TextOf returns the rendered text of the first element matching selector.
func (p *Page) TextOf(ctx context.Context, selector string) (string, bool, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil || !has {
		return "", false, err
	}

	text, err := el.Text()
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (p *Page) HasFocus(ctx context.Context) (bool, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.hasFocus()`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (p *Page) Find(ctx context.Context, selector string) (injector.Field, bool, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil || !has {
		return nil, false, err
	}
	return &field{page: p.page, el: el}, true, nil
}

// errPasteIgnored is returned when the paste shortcut left the field unchanged.
var errPasteIgnored = errors.New("paste shortcut did not change the field")

type field struct {
	page *rod.Page
	el   *rod.Element
}

func (f *field) Focus(ctx context.Context) error {
	return f.el.Context(ctx).Focus()
}

func (f *field) SelectAll(ctx context.Context) error {
	_, err := f.el.Context(ctx).Eval(`() => document.execCommand('selectAll', false, null)`)
	return err
}

// Paste sends the platform paste shortcut to the focused element and fails
// when the field content did not change.
func (f *field) Paste(ctx context.Context) error {
	before, err := f.innerHTML(ctx)
	if err != nil {
		return err
	}

	if err := f.page.Context(ctx).KeyActions().Press(pasteModifier(runtime.GOOS)).Type(input.KeyV).Do(); err != nil {
		return err
	}

	after, err := f.innerHTML(ctx)
	if err != nil {
		return err
	}
	if after == before {
		return errPasteIgnored
	}
	return nil
}

func (f *field) innerHTML(ctx context.Context) (string, error) {
	res, err := f.el.Context(ctx).Eval(`() => this.innerHTML`)
	if err != nil {
		return "", fmt.Errorf("read field content: %w", err)
	}
	return res.Value.Str(), nil
}

func pasteModifier(goos string) input.Key {
	if goos == "darwin" {
		return input.MetaLeft
	}
	return input.ControlLeft
}

func (f *field) SetHTML(ctx context.Context, markup string) error {
	_, err := f.el.Context(ctx).Eval(`(markup) => { this.innerHTML = markup }`, markup)
	return err
}

func (f *field) NotifyInput(ctx context.Context) error {
	_, err := f.el.Context(ctx).Eval(`() => this.dispatchEvent(new InputEvent('input', { bubbles: true }))`)
	return err
}
