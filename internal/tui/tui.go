package tui

import (
	"valos-cli/internal/api"
	"valos-cli/internal/notify"
	"valos-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive UI. The client's 401 hook and the notify
// publisher are wired to the program's message queue so both cross-cutting
// signals arrive as ordinary messages in the update loop.
func Run(client *api.Client, cfg *store.GlobalConfig) error {
	applyColorProfilePreference()
	theme := ""
	if cfg.TUI != nil {
		theme = cfg.TUI.Theme
	}
	applyThemePreference(theme)

	m := newAppModel(client, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	prevHook := client.OnUnauthorized
	client.OnUnauthorized = func() {
		if prevHook != nil {
			prevHook()
		}
		p.Send(unauthorizedMsg{})
	}
	cancel := m.pub.Subscribe(func(e notify.Event) {
		p.Send(collectionChangedMsg{collection: e.Collection})
	})
	defer cancel()

	_, err := p.Run()
	return err
}
