package tui

import (
	"fmt"
	"time"

	"github.com/pders01/lull/internal/action"
)

const (
	SymbolCanceling = "..."
	SymbolSucceeded = "✓"
	SymbolFailed    = "⚠"
	SymbolError     = "✗"
)

// SymbolProcessing stands in for the spinner outside the TUI.
const SymbolProcessing = "⋯"

// symbol is the unstyled artifact for s. Neutral renders as nothing.
func symbol(s action.Status, spinnerView string) string {
	switch s.Mode {
	case action.ModeCanceling:
		return SymbolCanceling
	case action.ModeProcessing:
		return spinnerView
	case action.ModeDone:
		switch {
		case s.Err != nil:
			return SymbolError
		case s.Succeeded():
			return SymbolSucceeded
		default:
			return SymbolFailed
		}
	}
	return ""
}

// Indicator renders the artifact shown next to the input for s.
func Indicator(s action.Status, spinnerView string) string {
	sym := symbol(s, spinnerView)
	if sym == "" || s.Mode == action.ModeProcessing {
		return sym
	}
	return kindOf(s).style().Render(sym)
}

// Label is a plain-text rendering of s for line-oriented output.
func Label(s action.Status) string {
	sym := symbol(s, SymbolProcessing)
	switch {
	case s.Err != nil:
		return fmt.Sprintf("%s %s %v", s.Mode, sym, s.Err)
	case sym == "":
		return string(s.Mode)
	default:
		return fmt.Sprintf("%s %s", s.Mode, sym)
	}
}

func MsgOperation(name string, debounce time.Duration) string {
	return fmt.Sprintf("%s • debounce %s", name, debounce)
}

func MsgSettled(input string, s action.Status) string {
	return fmt.Sprintf("%q → %s", truncateMiddle(input, 32), Label(s))
}
