package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"toolbar-cli/internal/format"
	"toolbar-cli/internal/model"
	"toolbar-cli/internal/overflow"
	"toolbar-cli/internal/reorder"
	"toolbar-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buttonTable is a list of buttons that renders as a table with --format text.
type buttonTable []model.Button

func (l buttonTable) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(l))
	for _, b := range l {
		flags := []string{}
		if !b.Enabled {
			flags = append(flags, "off")
		}
		if b.Pinned {
			flags = append(flags, "pinned")
		}
		rows = append(rows, []string{
			strconv.Itoa(b.SortKey), b.ID, b.Label(), string(b.Kind), b.Action, strings.Join(flags, ","),
		})
	}
	return []string{"#", "ID", "BUTTON", "KIND", "ACTION", "FLAGS"}, rows
}

func newButtonsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "buttons",
		Aliases: []string{"button", "btn"},
		Short:   "Manage toolbar buttons",
	}
	cmd.AddCommand(newButtonsListCmd(app))
	cmd.AddCommand(newButtonsShowCmd(app))
	cmd.AddCommand(newButtonsAddCmd(app))
	cmd.AddCommand(newButtonsEditCmd(app))
	cmd.AddCommand(newButtonsRemoveCmd(app))
	cmd.AddCommand(newButtonsEnableCmd(app, true))
	cmd.AddCommand(newButtonsEnableCmd(app, false))
	cmd.AddCommand(newButtonsMoveCmd(app))
	return cmd
}

func newButtonsListCmd(app *App) *cobra.Command {
	var enabledOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List buttons in toolbar order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := []model.Button{}
			for _, b := range db.Sorted() {
				if enabledOnly && !b.Enabled {
					continue
				}
				out = append(out, b)
			}
			return writeOut(cmd, app, format.Envelope{Data: buttonTable(out)})
		},
	}
	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Only enabled buttons")
	return cmd
}

func newButtonsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <button-id>",
		Short: "Show one button",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, ok := db.FindButton(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("button", args[0]))
			}
			return writeOut(cmd, app, format.Envelope{Data: buttonTable{*b}})
		},
	}
}

type buttonFlags struct {
	name   string
	icon   string
	kind   string
	action string
	width  int
	pinned bool
}

func (f *buttonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Button name")
	cmd.Flags().StringVar(&f.icon, "icon", "", "Short text glyph shown before the name")
	cmd.Flags().StringVar(&f.kind, "kind", string(model.ButtonKindCommand), "builtin|command|template")
	cmd.Flags().StringVar(&f.action, "action", "", "Builtin action id, command id or template text")
	cmd.Flags().IntVar(&f.width, "width", 2, "Cells the button takes on the bar")
	cmd.Flags().BoolVar(&f.pinned, "pinned", false, "Keep the button first; pinned buttons cannot be moved")
}

func newButtonsAddCmd(app *App) *cobra.Command {
	var f buttonFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a button at the end of the toolbar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := db.AddButton(model.Button{
				Name:    strings.TrimSpace(f.name),
				Icon:    strings.TrimSpace(f.icon),
				Kind:    model.ButtonKind(f.kind),
				Action:  f.action,
				Width:   f.width,
				Enabled: true,
				Pinned:  f.pinned,
			}, time.Now().UTC())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(cmd.Context(), db); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("button added", zap.String("id", b.ID), zap.String("name", b.Name))
			// Re-read: pinned buttons change position on save.
			saved, _ := db.FindButton(b.ID)
			return writeOut(cmd, app, format.Envelope{Data: saved})
		},
	}
	f.register(cmd)
	return cmd
}

func newButtonsEditCmd(app *App) *cobra.Command {
	var f buttonFlags
	cmd := &cobra.Command{
		Use:   "edit <button-id>",
		Short: "Change a button's fields (only flags that are passed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, ok := db.FindButton(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("button", args[0]))
			}
			next := *b
			fl := cmd.Flags()
			if fl.Changed("name") {
				next.Name = strings.TrimSpace(f.name)
			}
			if fl.Changed("icon") {
				next.Icon = strings.TrimSpace(f.icon)
			}
			if fl.Changed("kind") {
				next.Kind = model.ButtonKind(f.kind)
			}
			if fl.Changed("action") {
				next.Action = f.action
			}
			if fl.Changed("width") {
				next.Width = f.width
			}
			if fl.Changed("pinned") {
				next.Pinned = f.pinned
			}
			if err := store.ValidateButton(next); err != nil {
				return writeErr(cmd, err)
			}
			next.UpdatedAt = time.Now().UTC()
			*b = next
			if err := s.Save(cmd.Context(), db); err != nil {
				return writeErr(cmd, err)
			}
			saved, _ := db.FindButton(next.ID)
			return writeOut(cmd, app, format.Envelope{Data: saved})
		},
	}
	f.register(cmd)
	return cmd
}

func newButtonsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <button-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a button",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := db.RemoveButton(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(cmd.Context(), db); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("button removed", zap.String("id", args[0]))
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"id": args[0], "removed": true}})
		},
	}
}

func newButtonsEnableCmd(app *App, enabled bool) *cobra.Command {
	use, short := "enable", "Show a button on the toolbar"
	if !enabled {
		use, short = "disable", "Hide a button from the toolbar (it keeps its position)"
	}
	return &cobra.Command{
		Use:   use + " <button-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, ok := db.FindButton(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("button", args[0]))
			}
			if b.Enabled != enabled {
				b.Enabled = enabled
				b.UpdatedAt = time.Now().UTC()
				if err := s.Save(cmd.Context(), db); err != nil {
					return writeErr(cmd, err)
				}
			}
			saved, _ := db.FindButton(args[0])
			return writeOut(cmd, app, format.Envelope{Data: saved})
		},
	}
}

type moveResult struct {
	ID      string   `json:"id"`
	From    int      `json:"from"`
	To      int      `json:"to"`
	Changed bool     `json:"changed"`
	Order   []string `json:"order"`
	// Visible is the toolbar after the move, so scripts can see what spilled into overflow.
	Visible []string `json:"visible"`
}

func newButtonsMoveCmd(app *App) *cobra.Command {
	var before string
	var after string
	var to int
	cmd := &cobra.Command{
		Use:   "move <button-id>",
		Short: "Reorder a button (pinned buttons stay first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, s, err := loadDB(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if _, ok := db.FindButton(id); !ok {
				return writeErr(cmd, errNotFound("button", id))
			}
			n := 0
			if before != "" {
				n++
			}
			if after != "" {
				n++
			}
			if cmd.Flags().Changed("to") {
				n++
			}
			if n != 1 {
				return writeErr(cmd, fmt.Errorf("%w: provide exactly one of --before, --after or --to", errUsage))
			}

			order := db.ReorderItems()
			slot := to
			if before != "" || after != "" {
				target := reorder.InsertionTarget{RefID: before, Before: true}
				if after != "" {
					target = reorder.InsertionTarget{RefID: after, Before: false}
				}
				if target.RefID == id {
					return writeErr(cmd, fmt.Errorf("%w: cannot move a button relative to itself", errUsage))
				}
				sl, ok := reorder.SlotFor(order, id, target)
				if !ok {
					return writeErr(cmd, errNotFound("button", target.RefID))
				}
				slot = sl
			}

			res, err := reorder.Plan(order, id, slot, reorder.DefaultIsReorderable)
			if err != nil {
				return writeErr(cmd, err)
			}

			out := moveResult{ID: id, From: res.FromIndex, To: res.ToIndex, Changed: res.Changed, Order: res.IDs()}
			committer := reorder.Committer{
				Logger: app.log,
				RecomputeDerivedState: func(next []reorder.Item) {
					db.ApplyOrder(next, time.Now().UTC())
				},
				Persist: func(next []reorder.Item) error {
					return s.SaveOrder(ctx, next)
				},
				Render: func([]reorder.Item) {
					out.Visible = overflow.Compute(db.Sorted(), app.cfg.Toolbar.Width).VisibleIDs()
				},
				OnReordered: func(ids []string) {
					app.log.Info("button moved", zap.String("id", id), zap.Int("from", res.FromIndex), zap.Int("to", res.ToIndex))
				},
			}
			if err := committer.Commit(res); err != nil {
				return writeErr(cmd, err)
			}
			if !res.Changed {
				out.Visible = overflow.Compute(db.Sorted(), app.cfg.Toolbar.Width).VisibleIDs()
			}
			return writeOut(cmd, app, format.Envelope{Data: out})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Move before button id")
	cmd.Flags().StringVar(&after, "after", "", "Move after button id")
	cmd.Flags().IntVar(&to, "to", 0, "Move to a 0-based position")
	return cmd
}
