package reorder

import (
	"fmt"

	"go.uber.org/zap"
)

// Item is one reorderable row as the list owner sees it.
type Item struct {
	ID      string
	SortKey int
	Enabled bool
	Pinned  bool
}

// DefaultIsReorderable treats pinned items as fixed.
func DefaultIsReorderable(it Item) bool { return !it.Pinned }

// PlanResult is the outcome of dropping an item into a slot.
type PlanResult struct {
	// Order is the full list in its new visual order, with sort keys 1..n. When Changed is false
	// it is the input order untouched.
	Order     []Item
	DraggedID string
	FromIndex int
	ToIndex   int
	Changed   bool
}

// IDs returns the ids of Order.
func (r PlanResult) IDs() []string { return ItemIDs(r.Order) }

func ItemIDs(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// Plan computes the order that results from dropping draggedID at slot, where slot indexes the
// siblings (the list without the dragged item). Non-reorderable items hold their index: the
// reorderable items are reordered among the remaining positions, so a slot next to a fixed item
// lands on the nearest position that is not fixed. ToIndex is the dragged item's final index.
func Plan(order []Item, draggedID string, slot int, reorderable func(Item) bool) (PlanResult, error) {
	if reorderable == nil {
		reorderable = DefaultIsReorderable
	}
	from := indexOf(order, draggedID)
	if from < 0 {
		return PlanResult{}, fmt.Errorf("plan %s: %w", draggedID, ErrItemNotFound)
	}
	dragged := order[from]
	if !reorderable(dragged) {
		return PlanResult{}, fmt.Errorf("plan %s: %w", draggedID, ErrNotReorderable)
	}

	slot = ClampSlot(len(order)-1, slot)
	// rank is the dragged item's place among the reorderable items once dropped: one past every
	// reorderable sibling before slot.
	rank, sib := 0, 0
	movable := make([]Item, 0, len(order))
	for i, it := range order {
		if i == from {
			continue
		}
		if reorderable(it) {
			if sib < slot {
				rank++
			}
			movable = append(movable, it)
		}
		sib++
	}
	movable = append(movable, Item{})
	copy(movable[rank+1:], movable[rank:])
	movable[rank] = dragged

	next := make([]Item, len(order))
	to, m := 0, 0
	for i, it := range order {
		if i != from && !reorderable(it) {
			next[i] = it
			continue
		}
		next[i] = movable[m]
		if movable[m].ID == draggedID {
			to = i
		}
		m++
	}

	res := PlanResult{DraggedID: draggedID, FromIndex: from, ToIndex: to}
	if to == from {
		res.Order = order
		return res, nil
	}
	for i := range next {
		next[i].SortKey = i + 1
	}
	res.Order = next
	res.Changed = true
	return res, nil
}

// ClampSlot bounds slot to [0, siblings].
func ClampSlot(siblings, slot int) int {
	if slot < 0 {
		return 0
	}
	if slot > siblings {
		return siblings
	}
	return slot
}

// SlotFor converts a hit-test target into a sibling slot for draggedID.
func SlotFor(order []Item, draggedID string, target InsertionTarget) (int, bool) {
	slot := 0
	for _, it := range order {
		if it.ID == draggedID {
			continue
		}
		if it.ID == target.RefID {
			if !target.Before {
				slot++
			}
			return slot, true
		}
		slot++
	}
	return 0, false
}

// Normalize reassigns contiguous sort keys in the current order of items.
func Normalize(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].SortKey = i + 1
	}
	return out
}

func indexOf(order []Item, id string) int {
	for i := range order {
		if order[i].ID == id {
			return i
		}
	}
	return -1
}

// Committer hands a changed order to the list owner. Callbacks run in a fixed order: derived
// state, persistence, render, then the reordered notification. None of them can undo the commit.
type Committer struct {
	RecomputeDerivedState func([]Item)
	Persist               func([]Item) error
	Render                func([]Item)
	OnReordered           func(ids []string)
	OnError               func(error)
	Logger                *zap.Logger
}

// Commit applies res. A no-op plan calls nothing. A persist failure is reported to OnError and
// returned as *PersistError; the remaining callbacks still run.
func (c Committer) Commit(res PlanResult) error {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if !res.Changed {
		log.Debug("reorder commit skipped", zap.String("item", res.DraggedID), zap.Int("index", res.FromIndex))
		return nil
	}

	order := make([]Item, len(res.Order))
	copy(order, res.Order)
	ids := ItemIDs(order)

	if c.RecomputeDerivedState != nil {
		c.RecomputeDerivedState(order)
	}

	var perr error
	if c.Persist != nil {
		if err := c.Persist(order); err != nil {
			perr = &PersistError{Order: ids, Err: err}
			log.Warn("reorder persist failed", zap.String("item", res.DraggedID), zap.Error(err))
			if c.OnError != nil {
				c.OnError(perr)
			}
		}
	}

	if c.Render != nil {
		c.Render(order)
	}
	if c.OnReordered != nil {
		c.OnReordered(ids)
	}
	log.Debug("reorder committed",
		zap.String("item", res.DraggedID),
		zap.Int("from", res.FromIndex),
		zap.Int("to", res.ToIndex),
		zap.Strings("order", ids),
	)
	return perr
}
