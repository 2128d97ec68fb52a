package cli

import (
	"toolbar-cli/internal/format"
	"toolbar-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings (~/.toolbar/config.json)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective config (file + TOOLBAR_* env)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: app.cfg, Meta: map[string]any{"path": path, "keys": store.ConfigKeys()}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one key in config.json",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.SetConfigValue(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("config updated", zap.String("key", args[0]), zap.String("value", args[1]))
			return writeOut(cmd, app, format.Envelope{Data: cfg})
		},
	})
	return cmd
}
