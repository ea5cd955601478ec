package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/pders01/lull/internal/action"
	"github.com/pders01/lull/internal/pubsub"
)

// Description is the markdown shown above the input.
const Description = `# Async action with debouncing

The right side of the input shows a status that changes while you type and
reports the result of an async operation run with debouncing.

The status has 4 modes:

1. **neutral**: blank
2. **canceling**: ` + "`...`" + `, shown while you are typing
3. **processing**: a spinner, shown while the operation runs
4. **done**: ` + SymbolSucceeded + ` or ` + SymbolFailed + `, based on the operation result
`

type statusMsg struct {
	status action.Status
}

type statusClosedMsg struct{}

type descriptionRenderedMsg struct {
	content string
	width   int
	err     error
}

// listenForStatus returns a tea.Cmd that reads one status update from ch.
func listenForStatus(ch <-chan pubsub.Event[action.Status]) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return statusClosedMsg{}
		}
		return statusMsg{status: ev.Payload}
	}
}

// renderDescription renders Description for the given wrap width. The raw
// markdown is used when the renderer fails.
func renderDescription(width int) tea.Cmd {
	return func() tea.Msg {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrapWidth(width)),
		)
		if err != nil {
			return descriptionRenderedMsg{content: Description, width: width, err: wrapErr("creating renderer", err)}
		}

		out, err := r.Render(Description)
		if err != nil {
			return descriptionRenderedMsg{content: Description, width: width, err: wrapErr("rendering description", err)}
		}
		return descriptionRenderedMsg{content: out, width: width}
	}
}

func wrapWidth(width int) int {
	w := (width * 9) / 10
	if w > 100 {
		w = 100
	}
	if w < 20 {
		w = 20
	}
	return w
}
