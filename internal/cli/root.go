package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"toolbar-cli/internal/format"
	"toolbar-cli/internal/store"
	"toolbar-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	Verbose    bool

	cfg *store.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "toolbar",
		Short:        "Toolbar button settings (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the settings panel (drag rows to reorder)
  toolbar

  # Scriptable commands
  toolbar buttons list --format text
  toolbar buttons move btn-abc12345 --before btn-def67890

  # Direct button lookup (shortcut for: toolbar buttons show <button-id>)
  toolbar btn-abc12345
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := format.Check(app.Format); err != nil {
			return writeErr(cmd, fmt.Errorf("%w: %v", errUsage, err))
		}
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		level := cfg.Log.Level
		if app.Verbose {
			level = "debug"
		}
		app.log = newLogger(cmd.ErrOrStderr(), level)
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TOOLBAR_DIR", ""), "Path to store dir (default: ~/.toolbar/data)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TOOLBAR_FORMAT", "json"), "Output format ("+format.JSON+"|"+format.Text+")")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging to stderr")

	cmd.AddCommand(newButtonsCmd(app))
	cmd.AddCommand(newLayoutCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(ctx context.Context, app *App) error {
	db, s, err := loadDB(ctx, app)
	if err != nil {
		return err
	}
	cfgDir, err := store.ConfigDir()
	if err != nil {
		return err
	}
	// The terminal belongs to the TUI; logs go to a file instead.
	log, closeLog, err := newFileLogger(cfgDir, app.cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()
	return tui.Run(tui.Options{Store: s, DB: db, Config: *app.cfg, Logger: log})
}

func loadDB(ctx context.Context, app *App) (*store.DB, store.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}

	s := store.Store{Dir: dir}
	db, err := s.Load(ctx)
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
