package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/lull/internal/config"
)

// keyMap implements help.KeyMap.
type keyMap struct {
	Quit  key.Binding
	Clear key.Binding
	Help  key.Binding
}

func newKeyMap(cfg config.KeyConfig) keyMap {
	or := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys(or(cfg.Quit, "ctrl+c"), "esc"),
			key.WithHelp(or(cfg.Quit, "ctrl+c")+"/esc", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys(or(cfg.Clear, "ctrl+u")),
			key.WithHelp(or(cfg.Clear, "ctrl+u"), "clear"),
		),
		Help: key.NewBinding(
			key.WithKeys(or(cfg.Help, "f1")),
			key.WithHelp(or(cfg.Help, "f1"), "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Clear}, {k.Help, k.Quit}}
}

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: newKeyMap(cfg.Keys)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, kh.keys.Quit):
		if kh.app.view == ViewHelp && msg.String() == "esc" {
			kh.app.view = ViewInput
			return kh.app, nil
		}
		return kh.app, kh.app.quit()

	case key.Matches(msg, kh.keys.Help):
		if kh.app.view == ViewHelp {
			kh.app.view = ViewInput
		} else {
			kh.app.view = ViewHelp
		}
		return kh.app, nil

	case key.Matches(msg, kh.keys.Clear):
		kh.app.textInput.SetValue("")
		return kh.app, kh.app.submitIfChanged()
	}

	if kh.app.view != ViewInput {
		return kh.app, nil
	}
	return kh.delegateToTextInput(msg)
}

// delegateToTextInput lets the text input handle the key and submits the
// new value if the key changed it.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	kh.app.textInput, cmd = kh.app.textInput.Update(msg)
	return kh.app, tea.Batch(cmd, kh.app.submitIfChanged())
}
