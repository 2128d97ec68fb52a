package reorder

import (
	"math"
	"time"
)

const (
	DefaultPressThreshold      = 300 * time.Millisecond
	DefaultMoveCancelThreshold = 10
)

// Config holds the tunables of the gesture system. Zero fields fall back to the defaults.
type Config struct {
	// PressThreshold is how long a press must be held before it becomes a drag.
	PressThreshold time.Duration
	// MoveCancelThreshold is the vertical travel that turns a pending press into a scroll.
	MoveCancelThreshold float64
	// Tolerance is the hit-test capture band (see ComputeInsertionTarget).
	Tolerance float64
}

func DefaultConfig() Config {
	return Config{
		PressThreshold:      DefaultPressThreshold,
		MoveCancelThreshold: DefaultMoveCancelThreshold,
		Tolerance:           DefaultTolerance,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PressThreshold <= 0 {
		c.PressThreshold = d.PressThreshold
	}
	if c.MoveCancelThreshold <= 0 {
		c.MoveCancelThreshold = d.MoveCancelThreshold
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	return c
}

// Timer is a pending callback armed through a Scheduler.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the timer was still pending.
	Stop() bool
}

// Scheduler delivers deferred callbacks on the host's event loop. Callbacks must never run
// concurrently with other controller calls.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Timer
	// RequestFrame runs fn before the next paint.
	RequestFrame(fn func())
}

type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureTap
	GestureDragStart
)

func (k GestureKind) String() string {
	switch k {
	case GestureTap:
		return "tap"
	case GestureDragStart:
		return "drag-start"
	default:
		return "none"
	}
}

// Gesture is the classification of one press.
type Gesture struct {
	Kind      GestureKind
	ItemID    string
	PointerID int
	Y         float64
	Held      time.Duration
}

type pressState int

const (
	pressIdle pressState = iota
	pressPending
	pressScrolling
	pressDragging
)

// Classifier turns the press/move/release stream of one primary pointer into at most one
// Gesture per press. Presses on items that cannot be dragged never arm the timer and can only
// become taps.
type Classifier struct {
	cfg   Config
	sched Scheduler
	emit  func(Gesture)

	state     pressState
	pointerID int
	itemID    string
	originY   float64
	lastY     float64
	startedAt time.Time
	timer     Timer
}

func NewClassifier(cfg Config, sched Scheduler, emit func(Gesture)) *Classifier {
	if emit == nil {
		emit = func(Gesture) {}
	}
	return &Classifier{cfg: cfg.withDefaults(), sched: sched, emit: emit}
}

// Busy reports whether a press is being tracked.
func (c *Classifier) Busy() bool { return c.state != pressIdle }

// Dragging reports whether the tracked press already became a drag.
func (c *Classifier) Dragging() bool { return c.state == pressDragging }

// PointerID returns the tracked pointer; only meaningful while Busy.
func (c *Classifier) PointerID() int { return c.pointerID }

// Down starts tracking a press. It returns false (and changes nothing) when another pointer is
// already being tracked.
func (c *Classifier) Down(pointerID int, itemID string, y float64, draggable bool) bool {
	if c.state != pressIdle {
		return false
	}
	c.stopTimer()
	c.state = pressPending
	c.pointerID = pointerID
	c.itemID = itemID
	c.originY = y
	c.lastY = y
	c.startedAt = c.sched.Now()
	if draggable {
		c.timer = c.sched.After(c.cfg.PressThreshold, c.fire)
	}
	return true
}

// Move records pointer travel. Travel past the cancel threshold while the press is pending
// disarms the timer; the platform keeps handling the scroll.
func (c *Classifier) Move(pointerID int, y float64) {
	if c.state == pressIdle || pointerID != c.pointerID {
		return
	}
	c.lastY = y
	if c.state != pressPending {
		return
	}
	if math.Abs(y-c.originY) > c.cfg.MoveCancelThreshold {
		c.stopTimer()
		c.state = pressScrolling
	}
}

// Up ends the press. A release before any drag started is a tap.
func (c *Classifier) Up(pointerID int, y float64) {
	if c.state == pressIdle || pointerID != c.pointerID {
		return
	}
	prev := c.state
	g := c.gesture(GestureTap, y)
	c.Reset()
	if prev == pressDragging {
		return
	}
	c.emit(g)
}

// Cancel abandons the press without classifying it as a tap.
func (c *Classifier) Cancel() {
	if c.state == pressIdle {
		return
	}
	prev := c.state
	g := c.gesture(GestureNone, c.lastY)
	c.Reset()
	if prev == pressDragging {
		return
	}
	c.emit(g)
}

// Reset drops all press state and disarms the timer.
func (c *Classifier) Reset() {
	c.stopTimer()
	c.state = pressIdle
	c.pointerID = 0
	c.itemID = ""
}

func (c *Classifier) fire() {
	c.timer = nil
	if c.state != pressPending {
		return
	}
	c.state = pressDragging
	c.emit(c.gesture(GestureDragStart, c.lastY))
}

func (c *Classifier) gesture(kind GestureKind, y float64) Gesture {
	return Gesture{
		Kind:      kind,
		ItemID:    c.itemID,
		PointerID: c.pointerID,
		Y:         y,
		Held:      c.sched.Now().Sub(c.startedAt),
	}
}

func (c *Classifier) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
