// Package overflow packs the toolbar's buttons into the visible bar and the overflow menu.
package overflow

import "toolbar-cli/internal/model"

const (
	// MoreWidth is the width of the "more" button shown once anything overflows.
	MoreWidth = 1
	gap       = 1
)

// Slot is one placed button.
type Slot struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	X     int    `json:"x"`
	Width int    `json:"width"`
}

type Layout struct {
	Width   int      `json:"width"`
	Visible []Slot   `json:"visible"`
	More    bool     `json:"more"`
	Layers  [][]Slot `json:"layers"`
	// Hidden lists disabled buttons, which are never placed.
	Hidden []string `json:"hidden"`
}

// VisibleIDs returns the ids on the bar, left to right.
func (l Layout) VisibleIDs() []string {
	out := make([]string, 0, len(l.Visible))
	for _, s := range l.Visible {
		out = append(out, s.ID)
	}
	return out
}

// OverflowIDs returns the overflowed ids, layer by layer.
func (l Layout) OverflowIDs() []string {
	var out []string
	for _, layer := range l.Layers {
		for _, s := range layer {
			out = append(out, s.ID)
		}
	}
	return out
}

// Compute lays buttons out in the given order. Pinned buttons stay on the bar even when they
// alone exceed width. Once one button spills, every later one spills too.
func Compute(buttons []model.Button, width int) Layout {
	out := Layout{Width: width, Visible: []Slot{}, Layers: [][]Slot{}, Hidden: []string{}}

	var enabled []model.Button
	for _, b := range buttons {
		if !b.Enabled {
			out.Hidden = append(out.Hidden, b.ID)
			continue
		}
		enabled = append(enabled, b)
	}
	if len(enabled) == 0 {
		return out
	}

	if rowWidth(enabled) <= width {
		out.Visible = place(enabled)
		return out
	}

	budget := width - MoreWidth - gap
	used := 0
	split := 0
	for i, b := range enabled {
		need := cellWidth(b)
		if used > 0 {
			need += gap
		}
		if !b.Pinned && used+need > budget {
			break
		}
		used += need
		split = i + 1
	}
	out.Visible = place(enabled[:split])
	out.More = split < len(enabled)
	out.Layers = pack(enabled[split:], width)
	return out
}

func cellWidth(b model.Button) int {
	if b.Width < 1 {
		return 1
	}
	return b.Width
}

func rowWidth(bs []model.Button) int {
	w := 0
	for i, b := range bs {
		if i > 0 {
			w += gap
		}
		w += cellWidth(b)
	}
	return w
}

func place(bs []model.Button) []Slot {
	out := make([]Slot, 0, len(bs))
	x := 0
	for _, b := range bs {
		out = append(out, Slot{ID: b.ID, Label: b.Label(), X: x, Width: cellWidth(b)})
		x += cellWidth(b) + gap
	}
	return out
}

// pack fills layers left to right; a button wider than width gets a layer of its own.
func pack(bs []model.Button, width int) [][]Slot {
	layers := [][]Slot{}
	var cur []model.Button
	for _, b := range bs {
		next := append(append([]model.Button{}, cur...), b)
		if len(cur) > 0 && rowWidth(next) > width {
			layers = append(layers, place(cur))
			cur = []model.Button{b}
			continue
		}
		cur = next
	}
	if len(cur) > 0 {
		layers = append(layers, place(cur))
	}
	return layers
}
