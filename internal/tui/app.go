package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/lull/internal/action"
	"github.com/pders01/lull/internal/config"
	"github.com/pders01/lull/internal/debuglog"
	"github.com/pders01/lull/internal/pubsub"
)

// Controller is the part of *action.Controller the UI drives.
type Controller interface {
	Submit(input string)
	Status() action.Status
	Subscribe(ctx context.Context) <-chan pubsub.Event[action.Status]
	Debounce() time.Duration
}

type App struct {
	config      *config.Config
	controller  Controller
	opName      string
	keyHandler  *KeyHandler
	textInput   textinput.Model
	spinner     spinner.Model
	help        help.Model
	view        View
	status      action.Status
	lastInput   string
	events      <-chan pubsub.Event[action.Status]
	cancel      context.CancelFunc
	description string
	descWidth   int
	width       int
	height      int
	err         error
	log         *debuglog.FieldLogger
}

func NewApp(ctrl Controller, cfg *config.Config, opName string) *App {
	ti := textinput.New()
	ti.Placeholder = cfg.UI.Placeholder
	ti.SetValue(cfg.UI.Initial)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(SecondaryColor)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:      cfg,
		controller:  ctrl,
		opName:      opName,
		textInput:   ti,
		spinner:     s,
		help:        help.New(),
		view:        ViewInput,
		status:      ctrl.Status(),
		lastInput:   ti.Value(),
		events:      ctrl.Subscribe(ctx),
		cancel:      cancel,
		description: Description,
		width:       80,
		log:         debuglog.WithFields(map[string]any{"component": "tui"}),
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		listenForStatus(a.events),
		renderDescription(a.width),
		textinput.Blink,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width

		inputWidth := msg.Width - 12
		if inputWidth < 20 {
			inputWidth = 20
		}
		a.textInput.Width = inputWidth

		if abs(a.descWidth-msg.Width) > 10 {
			a.descWidth = msg.Width
			return a, renderDescription(msg.Width)
		}
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case statusMsg:
		prev := a.status
		a.status = msg.status
		if msg.status.Mode == action.ModeDone {
			a.err = msg.status.Err
		}
		cmds := []tea.Cmd{listenForStatus(a.events)}
		if msg.status.Mode == action.ModeProcessing && prev.Mode != action.ModeProcessing {
			cmds = append(cmds, a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)

	case statusClosedMsg:
		a.events = nil
		return a, nil

	case spinner.TickMsg:
		if a.status.Mode != action.ModeProcessing {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case descriptionRenderedMsg:
		a.description = msg.content
		a.descWidth = msg.width
		if msg.err != nil {
			a.log.Warnf("description: %v", msg.err)
			a.err = msg.err
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.textInput, cmd = a.textInput.Update(msg)
	return a, cmd
}

// submitIfChanged forwards the input to the controller when it differs from
// the last value submitted.
func (a *App) submitIfChanged() tea.Cmd {
	value := a.textInput.Value()
	if value == a.lastInput {
		return nil
	}
	a.lastInput = value
	a.err = nil
	a.controller.Submit(value)
	return nil
}

func (a *App) quit() tea.Cmd {
	a.cancel()
	return tea.Quit
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewHelp:
		content = lipgloss.JoinVertical(
			lipgloss.Left,
			renderHeader("› keys", "", a.width),
			"",
			a.help.FullHelpView(a.keyHandler.keys.FullHelp()),
			"",
			renderHelp("esc: back"),
		)
	default:
		content = lipgloss.JoinVertical(
			lipgloss.Left,
			strings.TrimRight(a.description, "\n"),
			"",
			renderInputFrame(
				a.textInput.View(),
				Indicator(a.status, a.spinner.View()),
				a.textInput.Focused(),
				a.textInput.Width,
			),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width-2), a.statusBar())
}

func (a *App) statusBar() string {
	if a.err != nil {
		return StatusBarStyle.Width(a.width).Render(
			ErrorMessageStyle.Render(truncateEnd(fmt.Sprintf("%s %v", SymbolError, a.err), a.width-4)),
		)
	}

	left := renderMuted(MsgOperation(a.opName, a.controller.Debounce()))
	right := a.help.ShortHelpView(a.keyHandler.keys.ShortHelp())
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
