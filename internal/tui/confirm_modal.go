package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// confirmDialog is a yes/no modal. Destructive dialogs start on Cancel and draw the confirm
// button in the error color.
type confirmDialog struct {
	title        string
	body         string
	confirmLabel string
	cancelLabel  string
	destructive  bool
	focus        confirmModalFocus
}

func newDeleteDialog(name string) confirmDialog {
	return confirmDialog{
		title:        "Delete button",
		body:         "Remove " + strconv.Quote(name) + " from the toolbar?",
		confirmLabel: "Delete",
		cancelLabel:  "Cancel",
		destructive:  true,
		focus:        confirmFocusCancel,
	}
}

func (d *confirmDialog) toggleFocus() {
	if d.focus == confirmFocusConfirm {
		d.focus = confirmFocusCancel
	} else {
		d.focus = confirmFocusConfirm
	}
}

// handle applies a key. It reports whether the dialog closed and whether it was confirmed.
func (d *confirmDialog) handle(k string) (closed, confirmed bool) {
	switch k {
	case "tab", "shift+tab", "left", "right", "h", "l":
		d.toggleFocus()
	case "y":
		return true, true
	case "enter":
		return true, d.focus == confirmFocusConfirm
	case "esc", "n", "q":
		return true, false
	}
	return false, false
}

func (d confirmDialog) view(width int) string {
	btn := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	focused := btn.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	if d.destructive {
		focused = focused.Foreground(colorErrorFg)
	}

	confirm, cancel := btn.Render(d.confirmLabel), btn.Render(d.cancelLabel)
	if d.focus == confirmFocusConfirm {
		confirm = focused.Render(d.confirmLabel)
	} else {
		cancel = focused.Render(d.cancelLabel)
	}
	gap := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	row := lipgloss.JoinHorizontal(lipgloss.Top, confirm, gap, cancel)

	hint := styleMuted().Width(modalBodyWidth(width)).Render("y: " + strings.ToLower(d.confirmLabel) + "   tab: switch   enter: select   esc: cancel")
	return renderModalBox(width, d.title, strings.Join([]string{d.body, "", row, "", hint}, "\n"))
}
