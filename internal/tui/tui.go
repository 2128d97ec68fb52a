package tui

import (
	"toolbar-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Options configures the settings panel. DB is the already-loaded toolbar; Store is where edits
// and reorders are written back.
type Options struct {
	Store  store.Store
	DB     *store.DB
	Config store.Config
	Logger *zap.Logger
}

// Run opens the toolbar settings panel in the terminal and blocks until it is closed.
func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference(opts.Config.TUI.Glyphs)

	p := newPanel(opts.Store, opts.DB, opts.Config, opts.Logger)
	defer p.ctl.Close()

	m := newAppModel(p)
	_, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	).Run()
	return err
}
