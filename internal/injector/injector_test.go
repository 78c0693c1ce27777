package injector

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func setup(focused bool, clipboard *fakeClipboard, selector string) (*fakeDocument, *fakeField) {
	field := &fakeField{clipboard: clipboard}
	doc := &fakeDocument{focused: focused, fields: map[string]*fakeField{}}
	if selector != "" {
		doc.fields[selector] = field
	}
	return doc, field
}

func assertTrace(t *testing.T, got Result, want ...State) {
	t.Helper()
	if !reflect.DeepEqual(got.Trace, want) {
		t.Fatalf("unexpected trace:\n got  %v\n want %v", got.Trace, want)
	}
	if got.Final != want[len(want)-1] {
		t.Fatalf("unexpected final state %v", got.Final)
	}
}

func TestFocusedPasteRestoresClipboard(t *testing.T) {
	clipboard := newClipboard("previous content")
	doc, field := setup(true, clipboard, DefaultPrimarySelector)

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "Thanks for reaching out!", "interested")

	assertTrace(t, result,
		StateStart, StateFocusCheck, StateFocusedPath, StateClipboardCapture,
		StateClipboardWrite, StatePaste, StateRestoreClipboard, StateDone,
	)

	if field.html != "Thanks for reaching out!" {
		t.Fatalf("unexpected field content %q", field.html)
	}
	if !field.focused || !field.selected {
		t.Fatalf("expected field to be focused and selected before paste")
	}
	if field.mutations != 1 {
		t.Fatalf("expected exactly one mutation, got %d", field.mutations)
	}
	if field.inputs != 1 {
		t.Fatalf("expected one input notification, got %d", field.inputs)
	}
	if clipboard.content != "previous content" || !result.Restored {
		t.Fatalf("expected clipboard restored, got %q (restored=%v)", clipboard.content, result.Restored)
	}
}

func TestUnfocusedWritesDirectlyWithoutClipboard(t *testing.T) {
	clipboard := newClipboard("untouched")
	doc, field := setup(false, clipboard, DefaultPrimarySelector)

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "Hi <Anna>,\n\nThanks!", "r")

	assertTrace(t, result, StateStart, StateFocusCheck, StateUnfocusedFallback)

	if field.html != "Hi &lt;Anna&gt;,<br><br>Thanks!" {
		t.Fatalf("unexpected field content %q", field.html)
	}
	if field.inputs != 1 || field.mutations != 1 {
		t.Fatalf("expected one mutation and one input event, got %d/%d", field.mutations, field.inputs)
	}
	if clipboard.touched() {
		t.Fatalf("clipboard must not be touched when unfocused")
	}
}

func TestFocusErrorIsTreatedAsUnfocused(t *testing.T) {
	clipboard := newClipboard("x")
	doc, _ := setup(true, clipboard, DefaultPrimarySelector)
	doc.focusErr = errors.New("target closed")

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")
	if result.Final != StateUnfocusedFallback || clipboard.touched() {
		t.Fatalf("expected unfocused fallback without clipboard, got %v", result.Final)
	}
}

func TestNoTarget(t *testing.T) {
	clipboard := newClipboard("x")
	doc, field := setup(true, clipboard, "")

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")

	assertTrace(t, result, StateStart, StateNoTarget)
	if !reflect.DeepEqual(doc.queries, []string{DefaultPrimarySelector, DefaultSecondarySelector}) {
		t.Fatalf("expected both selectors to be queried, got %v", doc.queries)
	}
	if field.mutations != 0 || clipboard.touched() {
		t.Fatalf("nothing must change without a target")
	}
	if result.Mutated {
		t.Fatalf("NO_TARGET must not count as inserted")
	}
}

func TestSecondarySelectorFallback(t *testing.T) {
	clipboard := newClipboard("")
	doc, field := setup(false, clipboard, DefaultSecondarySelector)

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")
	if result.Final != StateUnfocusedFallback || field.html != "reply" {
		t.Fatalf("expected reply in secondary field, got %v %q", result.Final, field.html)
	}
}

func TestClipboardWriteFailureFallsBackWithoutPaste(t *testing.T) {
	clipboard := newClipboard("previous")
	clipboard.writeErr = errors.New("write denied")
	doc, field := setup(true, clipboard, DefaultPrimarySelector)

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "line1\nline2", "r")

	assertTrace(t, result,
		StateStart, StateFocusCheck, StateFocusedPath, StateClipboardCapture,
		StateClipboardWrite, StateDirectFallback,
	)
	if field.focused {
		t.Fatalf("paste sequence must not start after a failed write")
	}
	if field.html != "line1<br>line2" || field.inputs != 1 {
		t.Fatalf("unexpected fallback write %q (inputs=%d)", field.html, field.inputs)
	}
	if clipboard.content != "previous" {
		t.Fatalf("clipboard changed: %q", clipboard.content)
	}
}

func TestClipboardReadFailureDisablesRestore(t *testing.T) {
	clipboard := newClipboard("secret")
	clipboard.readErr = errors.New("read denied")
	doc, field := setup(true, clipboard, DefaultPrimarySelector)

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")

	if result.Final != StateDone || result.Restored {
		t.Fatalf("expected DONE without restore, got %v restored=%v", result.Final, result.Restored)
	}
	if field.html != "reply" {
		t.Fatalf("unexpected field content %q", field.html)
	}
	// Without a snapshot the reply is knowingly left on the clipboard.
	if clipboard.content != "reply" || len(clipboard.writes) != 1 {
		t.Fatalf("unexpected clipboard writes %v", clipboard.writes)
	}
}

func TestRestoreFailureIsIgnored(t *testing.T) {
	clipboard := newClipboard("previous")
	clipboard.failWritesAfter = 1
	doc, field := setup(true, clipboard, DefaultPrimarySelector)

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")

	if result.Final != StateDone || result.Restored {
		t.Fatalf("expected DONE without restore, got %v restored=%v", result.Final, result.Restored)
	}
	if field.html != "reply" || clipboard.content != "reply" {
		t.Fatalf("expected reply inserted and left on clipboard, got %q / %q", field.html, clipboard.content)
	}
}

func TestPasteFailureFallsBackAndRestores(t *testing.T) {
	clipboard := newClipboard("previous")
	doc, field := setup(true, clipboard, DefaultPrimarySelector)
	field.pasteErr = errors.New("key event rejected")

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")

	assertTrace(t, result,
		StateStart, StateFocusCheck, StateFocusedPath, StateClipboardCapture,
		StateClipboardWrite, StatePaste, StateDirectFallback,
	)
	if field.html != "reply" || field.mutations != 1 {
		t.Fatalf("expected a single direct write, got %q (%d)", field.html, field.mutations)
	}
	if clipboard.content != "previous" || !result.Restored {
		t.Fatalf("expected clipboard restored after paste failure")
	}
}

func TestDirectInsertErrorIsReported(t *testing.T) {
	clipboard := newClipboard("")
	doc, field := setup(false, clipboard, DefaultPrimarySelector)
	field.setErr = errors.New("node detached")

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")
	if result.Final != StateUnfocusedFallback || result.Err == nil {
		t.Fatalf("expected fallback state with error, got %+v", result)
	}
	if result.Mutated || field.html != "" {
		t.Fatalf("a failed direct write must not count as a mutation, got %+v", result)
	}
}

func TestFailedFallbackAfterPasteIsNotMutated(t *testing.T) {
	clipboard := newClipboard("previous")
	doc, field := setup(true, clipboard, DefaultPrimarySelector)
	field.pasteErr = errors.New("key event rejected")
	field.setErr = errors.New("node detached")

	result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r")

	if result.Final != StateDirectFallback || result.Mutated {
		t.Fatalf("expected unmutated DIRECT_FALLBACK, got %+v", result)
	}
	if clipboard.content != "previous" || !result.Restored {
		t.Fatalf("expected clipboard restored, got %q", clipboard.content)
	}
}

func TestSuccessfulPathsAreMutated(t *testing.T) {
	for _, focused := range []bool{true, false} {
		clipboard := newClipboard("")
		doc, _ := setup(focused, clipboard, DefaultPrimarySelector)

		if result := New(doc, clipboard, Selectors{}, nil).Inject(context.Background(), "reply", "r"); !result.Mutated {
			t.Fatalf("focused=%v: expected mutation, got %+v", focused, result)
		}
	}
}

func TestTwoRunsLeaveClipboardUnchanged(t *testing.T) {
	clipboard := newClipboard("clean state")
	doc, field := setup(true, clipboard, DefaultPrimarySelector)
	inj := New(doc, clipboard, Selectors{}, nil)

	for i := 0; i < 2; i++ {
		result := inj.Inject(context.Background(), "same reply", "r")
		if result.Final != StateDone {
			t.Fatalf("run %d: unexpected final state %v", i, result.Final)
		}
		if clipboard.content != "clean state" {
			t.Fatalf("run %d: clipboard left as %q", i, clipboard.content)
		}
	}

	if field.html != "same reply" {
		t.Fatalf("unexpected field content %q", field.html)
	}
}

func TestStateNames(t *testing.T) {
	t.Parallel()

	if StateRestoreClipboard.String() != "RESTORE_CLIPBOARD" || State(99).String() != "UNKNOWN" {
		t.Fatalf("unexpected state names")
	}
	for _, s := range []State{StateNoTarget, StateUnfocusedFallback, StateDirectFallback, StateDone} {
		if !s.Terminal() {
			t.Fatalf("%v must be terminal", s)
		}
	}
	if StatePaste.Terminal() {
		t.Fatalf("PASTE is not terminal")
	}
}
