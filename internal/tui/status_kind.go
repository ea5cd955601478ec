package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/lull/internal/action"
)

// StatusKind indicates severity for status artifacts.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func kindOf(s action.Status) StatusKind {
	switch {
	case s.Mode != action.ModeDone:
		return StatusInfo
	case s.Err != nil:
		return StatusError
	case s.Succeeded():
		return StatusSuccess
	default:
		return StatusWarn
	}
}

func (k StatusKind) style() lipgloss.Style {
	switch k {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}
