package cli

import (
	"strconv"
	"strings"

	"toolbar-cli/internal/format"
	"toolbar-cli/internal/overflow"

	"github.com/spf13/cobra"
)

// layoutTable lists every slot of a layout: bar, overflow layers, then hidden buttons.
type layoutTable struct {
	overflow.Layout
}

func (v layoutTable) Table() ([]string, [][]string) {
	rows := [][]string{}
	for _, s := range v.Visible {
		rows = append(rows, []string{"bar", strconv.Itoa(s.X), s.Label, s.ID})
	}
	if v.More {
		rows = append(rows, []string{"bar", strconv.Itoa(v.Width - overflow.MoreWidth), "…", "more"})
	}
	for i, layer := range v.Layers {
		for _, s := range layer {
			rows = append(rows, []string{"overflow " + strconv.Itoa(i+1), strconv.Itoa(s.X), s.Label, s.ID})
		}
	}
	if len(v.Hidden) > 0 {
		rows = append(rows, []string{"hidden", "", strings.Join(v.Hidden, " "), ""})
	}
	return []string{"WHERE", "X", "BUTTON", "ID"}, rows
}

func newLayoutCmd(app *App) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show which buttons fit on the bar and which overflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			w := app.cfg.Toolbar.Width
			if cmd.Flags().Changed("width") {
				w = width
			}
			return writeOut(cmd, app, format.Envelope{Data: layoutTable{overflow.Compute(db.Sorted(), w)}})
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Bar width in cells (default: toolbar.width)")
	return cmd
}
