package format

import (
	"io"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// MaxCellWidth caps a table column; longer cells are truncated with an ellipsis.
const MaxCellWidth = 40

// Tabler is implemented by payloads that have a natural table form.
type Tabler interface {
	Table() (headers []string, rows [][]string)
}

// WriteText renders v as an aligned table when it is a Tabler or an Envelope around one.
// Anything else is written as indented JSON.
func WriteText(w io.Writer, v any) error {
	if env, ok := v.(Envelope); ok {
		if t, ok := env.Data.(Tabler); ok {
			v = t
		}
	}
	t, ok := v.(Tabler)
	if !ok {
		return WriteJSON(w, v, true)
	}
	headers, rows := t.Table()
	_, err := io.WriteString(w, RenderTable(headers, rows))
	return err
}

// RenderTable aligns columns by display width, so wide glyphs and ANSI styling line up.
func RenderTable(headers []string, rows [][]string) string {
	all := append([][]string{headers}, rows...)
	widths := make([]int, len(headers))
	for _, r := range all {
		for i := range widths {
			if i < len(r) {
				if n := xansi.StringWidth(clip(r[i])); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	var b strings.Builder
	for _, r := range all {
		var line strings.Builder
		for i := range widths {
			cell := ""
			if i < len(r) {
				cell = clip(r[i])
			}
			line.WriteString(cell)
			if i < len(widths)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-xansi.StringWidth(cell)+2))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func clip(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if xansi.StringWidth(s) <= MaxCellWidth {
		return s
	}
	return xansi.Truncate(s, MaxCellWidth, "…")
}
