package reorder

import (
	"go.uber.org/zap"
)

// Session is one active drag. It lives from drag start until drop or abort.
type Session struct {
	ItemID     string
	PointerID  int
	SourceSlot int
	OriginY    float64
	CurrentY   float64

	box       Rect
	slot      int
	target    InsertionTarget
	hasTarget bool
}

// Slot is the placeholder's current index among the rows other than the dragged one.
func (s *Session) Slot() int { return s.slot }

// Top is where the lifted row's top edge is drawn: the pointer sits at the row's vertical center.
func (s *Session) Top() float64 { return s.CurrentY - s.box.Height()/2 }

// Box is the lifted row's bounds at drag start.
func (s *Session) Box() Rect { return s.box }

// Native reports whether the session came from a grab handle rather than a long press.
func (s *Session) Native() bool { return s.PointerID == nativePointerID }

// Target is the last insertion target the hit test resolved, if any.
func (s *Session) Target() (InsertionTarget, bool) { return s.target, s.hasTarget }

func (c *Controller) begin(id string, pointerID int, y float64) error {
	if c.session != nil {
		c.log.Debug("drag start ignored", zap.String("item", id), zap.String("active", c.session.ItemID))
		return ErrSessionActive
	}
	e := c.find(id)
	if e == nil {
		return ErrItemNotFound
	}
	if !c.opts.IsReorderable(e.item) {
		return ErrNotReorderable
	}
	box, ok := e.el.Bounds()
	if !ok {
		return ErrElementDetached
	}

	// Rows before the dragged one keep their index once it is removed, so its own index is the
	// placeholder's starting slot.
	slot := c.indexOf(id)
	s := &Session{
		ItemID:     id,
		PointerID:  pointerID,
		SourceSlot: slot,
		OriginY:    y,
		CurrentY:   y,
		box:        box,
		slot:       slot,
	}
	c.session = s

	c.opts.Surface.Lift(id, box, slot)
	c.opts.Surface.Float(id, s.Top())
	if c.opts.Feedback != nil {
		c.opts.Feedback()
	}
	c.notifySession(true)
	c.log.Debug("drag started", zap.String("item", id), zap.Int("slot", slot), zap.Float64("y", y))
	return nil
}

// move tracks the pointer 1:1. Only the lifted row moves here; hit testing waits for the next
// frame.
func (c *Controller) move(y float64) {
	s := c.session
	s.CurrentY = y
	c.opts.Surface.Float(s.ItemID, s.Top())
	if c.framePending {
		return
	}
	c.framePending = true
	c.sched.RequestFrame(c.frame)
}

// frame hit tests for whichever session is active when it runs. A frame requested by a session
// that has since ended serves the next one.
func (c *Controller) frame() {
	c.framePending = false
	s := c.session
	if s == nil {
		return
	}

	// Reads first.
	lifted := c.find(s.ItemID)
	if lifted == nil {
		c.abort("lifted row missing")
		return
	}
	if _, ok := lifted.el.Bounds(); !ok {
		c.abort("lifted row detached")
		return
	}
	cands := make([]Candidate, 0, len(c.entries))
	for _, e := range c.entries {
		if e.item.ID == s.ItemID {
			continue
		}
		r, ok := e.el.Bounds()
		if !ok {
			continue
		}
		cands = append(cands, Candidate{ID: e.item.ID, Top: r.Top, Bottom: r.Bottom})
	}

	target, ok := ComputeInsertionTarget(s.CurrentY, cands, s.ItemID, c.cfg.Tolerance)
	if !ok {
		return
	}
	order := c.Order()
	raw, ok := SlotFor(order, s.ItemID, target)
	if !ok {
		return
	}
	res, err := Plan(order, s.ItemID, raw, c.opts.IsReorderable)
	if err != nil {
		c.log.Debug("hit test plan failed", zap.Error(err))
		return
	}
	s.target, s.hasTarget = target, true

	// Then the single write.
	if res.ToIndex != s.slot {
		s.slot = res.ToIndex
		c.opts.Surface.MovePlaceholder(s.slot)
	}
}

func (c *Controller) drop() {
	s := c.end()
	c.opts.Surface.Settle(s.ItemID, s.slot)
	c.notifySession(false)

	res, err := Plan(c.Order(), s.ItemID, s.slot, c.opts.IsReorderable)
	if err != nil {
		c.log.Warn("drop plan failed", zap.String("item", s.ItemID), zap.Error(err))
		return
	}
	if !res.Changed {
		c.log.Debug("drop at origin", zap.String("item", s.ItemID), zap.Int("slot", s.slot))
		return
	}
	c.applyOrder(res.Order)
	_ = c.committer.Commit(res)
}

// abort restores the lifted row to where it started. Nothing is committed.
func (c *Controller) abort(reason string) {
	s := c.end()
	c.opts.Surface.Settle(s.ItemID, s.SourceSlot)
	c.notifySession(false)
	c.log.Debug("drag aborted", zap.String("item", s.ItemID), zap.String("reason", reason))
}

func (c *Controller) end() *Session {
	s := c.session
	c.session = nil
	c.classifier.Reset()
	return s
}

func (c *Controller) notifySession(active bool) {
	if c.opts.OnSessionStateChange != nil {
		c.opts.OnSessionStateChange(active)
	}
}
