package browser

import (
	"context"

	"github.com/atotto/clipboard"
)

// Swapped in tests.
var (
	readAll  = clipboard.ReadAll
	writeAll = clipboard.WriteAll
)

// SystemClipboard is the operating system clipboard. Paste shortcuts sent to
// a local browser read from it.
type SystemClipboard struct{}

func (SystemClipboard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return readAll()
}

func (SystemClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAll(text)
}
