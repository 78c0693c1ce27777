package injector

// State is a step of the insertion state machine.
type State int

const (
	StateStart State = iota
	StateNoTarget
	StateFocusCheck
	StateUnfocusedFallback
	StateFocusedPath
	StateClipboardCapture
	StateClipboardWrite
	StatePaste
	StateRestoreClipboard
	StateDirectFallback
	StateDone
)

var stateNames = map[State]string{
	StateStart:             "START",
	StateNoTarget:          "NO_TARGET",
	StateFocusCheck:        "FOCUS_CHECK",
	StateUnfocusedFallback: "UNFOCUSED_FALLBACK",
	StateFocusedPath:       "FOCUSED_PATH",
	StateClipboardCapture:  "CLIPBOARD_CAPTURE",
	StateClipboardWrite:    "CLIPBOARD_WRITE",
	StatePaste:             "PASTE",
	StateRestoreClipboard:  "RESTORE_CLIPBOARD",
	StateDirectFallback:    "DIRECT_FALLBACK",
	StateDone:              "DONE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Terminal reports whether the machine stops in s.
func (s State) Terminal() bool {
	switch s {
	case StateNoTarget, StateUnfocusedFallback, StateDirectFallback, StateDone:
		return true
	default:
		return false
	}
}
