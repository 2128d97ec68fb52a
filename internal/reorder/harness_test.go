package reorder

import (
	"sort"
	"testing"
	"time"
)

type manualTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler is a fake clock: timers fire on Advance, frames run on Flush.
type manualScheduler struct {
	now    time.Time
	timers []*manualTimer
	frames []func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *manualScheduler) Now() time.Time { return s.now }

func (s *manualScheduler) After(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) RequestFrame(fn func()) { s.frames = append(s.frames, fn) }

func (s *manualScheduler) Advance(d time.Duration) {
	s.now = s.now.Add(d)
	due := []*manualTimer{}
	for _, t := range s.timers {
		if !t.stopped && !t.fired && !t.at.After(s.now) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
	}
}

func (s *manualScheduler) pendingTimers() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (s *manualScheduler) Flush() {
	frames := s.frames
	s.frames = nil
	for _, fn := range frames {
		fn()
	}
}

type settleCall struct {
	ID   string
	Slot int
}

// fakeList lays rows out top to bottom with a fixed height, the way a browser would lay out
// a column of equal rows with a placeholder gap while one row floats.
type fakeList struct {
	rowH float64
	ids  []string

	lifted      string
	placeholder int
	floatTop    float64

	floats  []float64
	lifts   int
	moves   int
	settles []settleCall
	gone    map[string]bool
}

func newFakeList(rowH float64, ids ...string) *fakeList {
	return &fakeList{rowH: rowH, ids: append([]string{}, ids...), gone: map[string]bool{}}
}

func (l *fakeList) Lift(id string, box Rect, slot int) {
	l.lifted = id
	l.placeholder = slot
	l.lifts++
}

func (l *fakeList) Float(id string, top float64) {
	l.floatTop = top
	l.floats = append(l.floats, top)
}

func (l *fakeList) MovePlaceholder(slot int) {
	l.placeholder = slot
	l.moves++
}

func (l *fakeList) Settle(id string, slot int) {
	sibs := l.siblings(id)
	next := append([]string{}, sibs[:slot]...)
	next = append(next, id)
	next = append(next, sibs[slot:]...)
	l.ids = next
	l.lifted = ""
	l.settles = append(l.settles, settleCall{ID: id, Slot: slot})
}

func (l *fakeList) siblings(id string) []string {
	out := []string{}
	for _, x := range l.ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func (l *fakeList) bounds(id string) (Rect, bool) {
	if l.gone[id] {
		return Rect{}, false
	}
	if l.lifted == id {
		return Rect{Top: l.floatTop, Bottom: l.floatTop + l.rowH}, true
	}
	rows := l.ids
	if l.lifted != "" {
		sibs := l.siblings(l.lifted)
		rows = append([]string{}, sibs[:l.placeholder]...)
		rows = append(rows, "")
		rows = append(rows, sibs[l.placeholder:]...)
	}
	for i, x := range rows {
		if x == id {
			top := float64(i) * l.rowH
			return Rect{Top: top, Bottom: top + l.rowH}, true
		}
	}
	return Rect{}, false
}

// centerY returns the y of a row's vertical center in the resting layout.
func (l *fakeList) centerY(id string) float64 {
	r, _ := l.bounds(id)
	return r.Center()
}

type fakeElement struct {
	list *fakeList
	id   string
}

func (e fakeElement) Bounds() (Rect, bool) { return e.list.bounds(e.id) }

type harness struct {
	t     *testing.T
	ctl   *Controller
	list  *fakeList
	sched *manualScheduler

	persisted [][]string
	rendered  [][]string
	derived   [][]string
	reordered [][]string
	calls     []string
	taps      []string
	states    []bool
	errs      []error
	pulses    int

	persistErr error
}

func newHarness(t *testing.T, items ...Item) *harness {
	t.Helper()
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	h := &harness{t: t, list: newFakeList(40, ids...), sched: newManualScheduler()}
	h.ctl = NewController(Options{
		Config:    DefaultConfig(),
		Scheduler: h.sched,
		Surface:   h.list,
		Feedback:  func() { h.pulses++ },
		RecomputeDerivedState: func(order []Item) {
			h.calls = append(h.calls, "derive")
			h.derived = append(h.derived, ItemIDs(order))
		},
		Persist: func(order []Item) error {
			h.calls = append(h.calls, "persist")
			h.persisted = append(h.persisted, ItemIDs(order))
			return h.persistErr
		},
		Render: func(order []Item) {
			h.calls = append(h.calls, "render")
			h.rendered = append(h.rendered, ItemIDs(order))
			h.list.ids = ItemIDs(order)
		},
		OnReordered:          func(ids []string) { h.reordered = append(h.reordered, ids) },
		OnSessionStateChange: func(active bool) { h.states = append(h.states, active) },
		OnTap:                func(id string) { h.taps = append(h.taps, id) },
		OnError:              func(err error) { h.errs = append(h.errs, err) },
	})
	for _, it := range items {
		h.ctl.Attach(it, fakeElement{list: h.list, id: it.ID})
	}
	return h
}

func items(ids ...string) []Item {
	out := make([]Item, 0, len(ids))
	for i, id := range ids {
		out = append(out, Item{ID: id, SortKey: i + 1, Enabled: true})
	}
	return out
}

// longPress presses id at its center and holds past the threshold.
func (h *harness) longPress(pointerID int, id string) float64 {
	h.t.Helper()
	y := h.list.centerY(id)
	h.ctl.Touch().Down(PointerEvent{PointerID: pointerID, ItemID: id, Y: y})
	h.sched.Advance(DefaultPressThreshold)
	if !h.ctl.Active() {
		h.t.Fatalf("expected drag session after long-press on %s", id)
	}
	return y
}

func (h *harness) moveTo(pointerID int, y float64) {
	h.ctl.Touch().Move(PointerEvent{PointerID: pointerID, Y: y})
	h.sched.Flush()
}
