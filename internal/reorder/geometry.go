package reorder

// DefaultTolerance is the capture band that extends a candidate's before/after zones past its
// top and bottom edges.
const DefaultTolerance = 20

// Rect is the vertical extent of a rendered row.
type Rect struct {
	Top    float64
	Bottom float64
}

func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Center() float64 { return (r.Top + r.Bottom) / 2 }

// Candidate is one sibling row considered by the hit test.
type Candidate struct {
	ID     string
	Top    float64
	Bottom float64
}

// InsertionTarget names the row the dragged item would land next to.
type InsertionTarget struct {
	RefID  string
	Before bool
}

// ComputeInsertionTarget hit-tests pointerY against candidates, which must be given in visual
// top-to-bottom order. The candidate with excludeID (the dragged row) is skipped. ok is false when
// no candidate captures the pointer; callers leave the placeholder where it is in that case.
func ComputeInsertionTarget(pointerY float64, candidates []Candidate, excludeID string, tolerance float64) (target InsertionTarget, ok bool) {
	var first, last *Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.ID == excludeID {
			continue
		}
		if first == nil {
			first = c
		}
		last = c

		center := (c.Top + c.Bottom) / 2
		if pointerY < center && pointerY > c.Top-tolerance {
			return InsertionTarget{RefID: c.ID, Before: true}, true
		}
		if pointerY > center && pointerY < c.Bottom+tolerance {
			return InsertionTarget{RefID: c.ID, Before: false}, true
		}
	}
	if first == nil {
		return InsertionTarget{}, false
	}

	// Outside every capture band: only the list extremities still resolve.
	if pointerY <= first.Top-tolerance {
		return InsertionTarget{RefID: first.ID, Before: true}, true
	}
	if pointerY >= last.Bottom+tolerance {
		return InsertionTarget{RefID: last.ID, Before: false}, true
	}
	return InsertionTarget{}, false
}
