package tui

import (
	"toolbar-cli/internal/reorder"
)

const (
	// rowHeight is the number of screen lines per button row (label line + action line).
	rowHeight = 2
	// handleWidth is the grab column at the left of every row, grip plus a space.
	handleWidth = 3
)

// listSurface is the on-screen button list in cell coordinates. It implements reorder.Surface:
// while a row is lifted, the other rows flow around a placeholder gap and the lifted row is
// drawn at floatTop.
type listSurface struct {
	ids []string
	// top is the screen line of the first row; scroll is the number of rows scrolled off.
	top    int
	scroll int

	lifted      string
	placeholder int
	floatTop    float64
}

func (l *listSurface) Lift(id string, box reorder.Rect, slot int) {
	l.lifted = id
	l.placeholder = slot
	l.floatTop = box.Top
}

func (l *listSurface) Float(id string, top float64) {
	l.floatTop = top
}

func (l *listSurface) MovePlaceholder(slot int) {
	l.placeholder = slot
}

func (l *listSurface) Settle(id string, slot int) {
	sibs := l.siblings(id)
	if slot > len(sibs) {
		slot = len(sibs)
	}
	next := append([]string{}, sibs[:slot]...)
	next = append(next, id)
	next = append(next, sibs[slot:]...)
	l.ids = next
	l.lifted = ""
	l.placeholder = 0
}

func (l *listSurface) siblings(id string) []string {
	out := make([]string, 0, len(l.ids))
	for _, x := range l.ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// rows is the current flow: ids in order, with "" marking the placeholder while a row is lifted.
func (l *listSurface) rows() []string {
	if l.lifted == "" {
		return l.ids
	}
	sibs := l.siblings(l.lifted)
	slot := l.placeholder
	if slot > len(sibs) {
		slot = len(sibs)
	}
	out := append([]string{}, sibs[:slot]...)
	out = append(out, "")
	return append(out, sibs[slot:]...)
}

func (l *listSurface) rowTop(i int) float64 {
	return float64(l.top + (i-l.scroll)*rowHeight)
}

func (l *listSurface) bounds(id string) (reorder.Rect, bool) {
	if id == "" {
		return reorder.Rect{}, false
	}
	if l.lifted == id {
		return reorder.Rect{Top: l.floatTop, Bottom: l.floatTop + rowHeight}, true
	}
	for i, x := range l.rows() {
		if x == id {
			top := l.rowTop(i)
			return reorder.Rect{Top: top, Bottom: top + rowHeight}, true
		}
	}
	return reorder.Rect{}, false
}

// rowAt returns the id of the row under screen line y, ignoring the lifted row.
func (l *listSurface) rowAt(y int) (string, bool) {
	if y < l.top {
		return "", false
	}
	i := (y-l.top)/rowHeight + l.scroll
	rows := l.rows()
	if i < 0 || i >= len(rows) || rows[i] == "" {
		return "", false
	}
	return rows[i], true
}

func (l *listSurface) indexOf(id string) int {
	for i, x := range l.ids {
		if x == id {
			return i
		}
	}
	return -1
}

// rowElement is the reorder.Element of one rendered row.
type rowElement struct {
	list *listSurface
	id   string
}

func (e rowElement) Bounds() (reorder.Rect, bool) { return e.list.bounds(e.id) }
