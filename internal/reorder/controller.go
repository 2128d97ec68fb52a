// Package reorder implements drag reordering of a flat vertical list: press classification,
// the drag session with its placeholder, hit testing, and the commit of the new order.
package reorder

import (
	"sort"

	"go.uber.org/zap"
)

// Element is a rendered row registered with the controller.
type Element interface {
	// Bounds reports the row's current box. ok is false once the row left the layout.
	Bounds() (r Rect, ok bool)
}

// Surface is the rendered list. The controller only mutates it through these calls while a
// session is active.
type Surface interface {
	// Lift takes id out of normal flow and puts a placeholder of the same height at slot.
	Lift(id string, box Rect, slot int)
	// Float positions the lifted row so its top edge sits at top.
	Float(id string, top float64)
	// MovePlaceholder moves the placeholder to slot among the remaining rows.
	MovePlaceholder(slot int)
	// Settle puts id back into normal flow at slot and removes the placeholder.
	Settle(id string, slot int)
}

// Options wires a Controller to its host. Scheduler and Surface are required.
type Options struct {
	Config    Config
	Scheduler Scheduler
	Surface   Surface
	Logger    *zap.Logger

	// Feedback is pulsed when a drag starts (haptics, bell, flash).
	Feedback func()

	IsReorderable         func(Item) bool
	RecomputeDerivedState func([]Item)
	Persist               func([]Item) error
	Render                func([]Item)

	OnReordered          func(ids []string)
	OnSessionStateChange func(active bool)
	OnTap                func(id string)
	OnError              func(error)
}

type entry struct {
	item Item
	el   Element
	seq  int
}

// Controller owns the gesture and drag state of one list. Controllers are independent: a host
// with several lists creates one per list. All methods must be called from the host's event loop.
type Controller struct {
	cfg   Config
	opts  Options
	log   *zap.Logger
	sched Scheduler

	entries []*entry
	seq     int

	classifier *Classifier
	session    *Session
	committer  Committer
	closed     bool
	// framePending is set while a hit-test frame is queued. At most one is in flight per
	// controller, across sessions.
	framePending bool
}

func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IsReorderable == nil {
		opts.IsReorderable = DefaultIsReorderable
	}
	c := &Controller{
		cfg:   opts.Config.withDefaults(),
		opts:  opts,
		log:   opts.Logger,
		sched: opts.Scheduler,
	}
	c.classifier = NewClassifier(c.cfg, c.sched, c.onGesture)
	c.committer = Committer{
		RecomputeDerivedState: opts.RecomputeDerivedState,
		Persist:               opts.Persist,
		Render:                opts.Render,
		OnReordered:           opts.OnReordered,
		OnError:               opts.OnError,
		Logger:                opts.Logger,
	}
	return c
}

// Attach registers el as the rendered row of item. Attaching an id that is already registered
// replaces its element. The returned function detaches it; detaching any row while a drag is
// active aborts the drag.
func (c *Controller) Attach(item Item, el Element) (detach func()) {
	c.seq++
	seq := c.seq
	if e := c.find(item.ID); e != nil {
		e.item = item
		e.el = el
		e.seq = seq
	} else {
		c.entries = append(c.entries, &entry{item: item, el: el, seq: seq})
		if c.session == nil {
			c.sortEntries()
		}
	}
	return func() { c.detach(item.ID, seq) }
}

func (c *Controller) detach(id string, seq int) {
	for i, e := range c.entries {
		if e.item.ID != id || e.seq != seq {
			continue
		}
		if c.session != nil {
			c.abort("row detached")
		}
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
		return
	}
}

// SetItems replaces the item data of attached rows (matched by id) and re-sorts by sort key.
// It fails with ErrSessionActive while a drag is in progress.
func (c *Controller) SetItems(items []Item) error {
	if c.session != nil {
		return ErrSessionActive
	}
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, e := range c.entries {
		if it, ok := byID[e.item.ID]; ok {
			e.item = it
		}
	}
	c.sortEntries()
	return nil
}

// Order returns the attached items in display order.
func (c *Controller) Order() []Item {
	out := make([]Item, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.item)
	}
	return out
}

// Active reports whether a drag session is in progress.
func (c *Controller) Active() bool { return c.session != nil }

// Session returns the active session, or nil.
func (c *Controller) Session() *Session { return c.session }

// Cancel aborts any press or drag in progress. Nothing is committed.
func (c *Controller) Cancel() {
	if c.session != nil {
		c.abort("cancelled")
	}
	c.classifier.Reset()
}

// Blur is Cancel for focus loss.
func (c *Controller) Blur() {
	if c.session != nil {
		c.abort("focus lost")
	}
	c.classifier.Reset()
}

// Close tears the controller down: it aborts any drag, disarms timers and forgets every row.
// A closed controller ignores input.
func (c *Controller) Close() {
	c.Cancel()
	c.entries = nil
	c.closed = true
}

// Touch returns the long-press input adapter.
func (c *Controller) Touch() TouchAdapter { return TouchAdapter{c: c} }

// Pointer returns the native-drag input adapter.
func (c *Controller) Pointer() PointerAdapter { return PointerAdapter{c: c} }

func (c *Controller) onGesture(g Gesture) {
	switch g.Kind {
	case GestureDragStart:
		if err := c.begin(g.ItemID, g.PointerID, g.Y); err != nil {
			c.log.Debug("drag start declined", zap.String("item", g.ItemID), zap.Error(err))
			c.classifier.Reset()
		}
	case GestureTap:
		c.log.Debug("tap", zap.String("item", g.ItemID), zap.Duration("held", g.Held))
		if c.opts.OnTap != nil {
			c.opts.OnTap(g.ItemID)
		}
	default:
		c.log.Debug("press declined", zap.String("item", g.ItemID))
	}
}

func (c *Controller) find(id string) *entry {
	for _, e := range c.entries {
		if e.item.ID == id {
			return e
		}
	}
	return nil
}

func (c *Controller) indexOf(id string) int {
	for i, e := range c.entries {
		if e.item.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) sortEntries() {
	sort.SliceStable(c.entries, func(i, j int) bool {
		a, b := c.entries[i], c.entries[j]
		if a.item.SortKey != b.item.SortKey {
			return a.item.SortKey < b.item.SortKey
		}
		return a.seq < b.seq
	})
}

// applyOrder rearranges entries to match order (same ids) and takes over its sort keys.
func (c *Controller) applyOrder(order []Item) {
	pos := make(map[string]int, len(order))
	for i, it := range order {
		pos[it.ID] = i
	}
	for _, e := range c.entries {
		if i, ok := pos[e.item.ID]; ok {
			e.item = order[i]
		}
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		pi, iok := pos[c.entries[i].item.ID]
		pj, jok := pos[c.entries[j].item.ID]
		if iok && jok {
			return pi < pj
		}
		return iok && !jok
	})
}

// TouchAdapter feeds long-press input into the controller.
type TouchAdapter struct{ c *Controller }

// PointerEvent is one touch or mouse sample. ItemID is only read on Down.
type PointerEvent struct {
	PointerID int
	ItemID    string
	Y         float64
}

// Down starts a press on ev.ItemID. A second pointer going down while a drag is active aborts
// that drag and starts nothing; one going down during a pending press is ignored.
func (a TouchAdapter) Down(ev PointerEvent) {
	c := a.c
	if c.closed {
		return
	}
	if s := c.session; s != nil {
		if ev.PointerID != s.PointerID {
			c.abort("second pointer")
		}
		return
	}
	if c.classifier.Busy() {
		return
	}
	e := c.find(ev.ItemID)
	if e == nil {
		return
	}
	c.classifier.Down(ev.PointerID, ev.ItemID, ev.Y, c.opts.IsReorderable(e.item))
}

func (a TouchAdapter) Move(ev PointerEvent) {
	c := a.c
	if s := c.session; s != nil {
		if ev.PointerID == s.PointerID {
			c.move(ev.Y)
		}
		return
	}
	c.classifier.Move(ev.PointerID, ev.Y)
}

func (a TouchAdapter) Up(ev PointerEvent) {
	c := a.c
	if s := c.session; s != nil {
		if ev.PointerID == s.PointerID {
			c.drop()
		}
		return
	}
	c.classifier.Up(ev.PointerID, ev.Y)
}

// Cancel handles a platform pointer-cancel: any drag is aborted, a pending press is dropped.
func (a TouchAdapter) Cancel(ev PointerEvent) {
	c := a.c
	if s := c.session; s != nil && ev.PointerID == s.PointerID {
		c.abort("pointer cancel")
	}
	if c.classifier.Busy() && c.classifier.PointerID() == ev.PointerID {
		c.classifier.Cancel()
	}
}

// PointerAdapter feeds native drag input (a discrete grab handle) into the controller. Drags
// start immediately; there is no long-press window.
type PointerAdapter struct{ c *Controller }

// DragStart grabs itemID. It reports whether a session started.
func (a PointerAdapter) DragStart(itemID string, y float64) bool {
	c := a.c
	if c.closed {
		return false
	}
	if c.session != nil {
		c.log.Debug("drag start ignored", zap.String("item", itemID), zap.String("active", c.session.ItemID))
		return false
	}
	c.classifier.Reset()
	if err := c.begin(itemID, nativePointerID, y); err != nil {
		c.log.Debug("drag start declined", zap.String("item", itemID), zap.Error(err))
		return false
	}
	return true
}

func (a PointerAdapter) DragOver(y float64) {
	if a.c.session != nil {
		a.c.move(y)
	}
}

// Drop commits at the placeholder.
func (a PointerAdapter) Drop() {
	if a.c.session != nil {
		a.c.drop()
	}
}

// DragEnd finishes the native drag. It aborts when no Drop came first.
func (a PointerAdapter) DragEnd() {
	if a.c.session != nil {
		a.c.abort("drag ended without drop")
	}
}

const nativePointerID = -1
