package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine renders a labelled text input as exactly one line of bodyW cells. A view that
// wraps would look like the input inserted a newline while typing.
func renderInputLine(bodyW int, label string, inputView string, focused bool) string {
	if bodyW < 10 {
		bodyW = 10
	}
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	lbl := styleMuted().Render(label)
	if focused {
		lbl = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(label)
	}
	lblW := xansi.StringWidth(lbl)

	line := lipgloss.PlaceHorizontal(
		bodyW-lblW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW-lblW {
		// Terminate styling so a cut escape sequence cannot bleed into the rest of the modal.
		line = xansi.Cut(line, 0, bodyW-lblW) + "\x1b[0m"
	}
	return lbl + line
}
