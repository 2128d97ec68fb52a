package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height lines tall,
// so overlays can replace whole lines without shifting the rest of the screen.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		lines[i] = fitLine(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

// fitLine cuts or pads ln to width cells.
func fitLine(ln string, width int) string {
	w := xansi.StringWidth(ln)
	if w > width {
		switch {
		case width <= 0:
			return ""
		case width == 1:
			ln = xansi.Cut(ln, 0, 1)
		default:
			ln = xansi.Cut(ln, 0, width-1) + "…"
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

const modalMaxWidth = 64

func modalBodyWidth(screenW int) int {
	w := screenW - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderModalBox draws a titled, padded box. Borders are avoided: some terminals show
// background artifacts when bordered content sits on a colored surface.
func renderModalBox(screenW int, title, content string) string {
	bodyW := modalBodyWidth(screenW)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Width(bodyW+2).
		Padding(0, 1).
		Render(title)
	body := lipgloss.NewStyle().
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Width(bodyW+2).
		Padding(1, 1).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// overlayCenter draws box over the middle of base (both are full-line strings).
func overlayCenter(base string, box string, width, height int) string {
	baseLines := strings.Split(normalizePane(base, width, height), "\n")
	boxLines := strings.Split(box, "\n")
	top := (height - len(boxLines)) / 2
	if top < 0 {
		top = 0
	}
	boxW := 0
	for _, l := range boxLines {
		if w := xansi.StringWidth(l); w > boxW {
			boxW = w
		}
	}
	left := (width - boxW) / 2
	if left < 0 {
		left = 0
	}
	for i, l := range boxLines {
		y := top + i
		if y >= len(baseLines) {
			break
		}
		row := baseLines[y]
		right := xansi.Cut(row, left+boxW, width)
		baseLines[y] = fitLine(xansi.Cut(row, 0, left)+fitLine(l, boxW)+right, width)
	}
	return strings.Join(baseLines, "\n")
}
