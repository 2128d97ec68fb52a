package tui

import (
	"sort"
	"time"

	"toolbar-cli/internal/reorder"

	tea "github.com/charmbracelet/bubbletea"
)

// timerFiredMsg and frameMsg carry scheduler callbacks back into Update, so every controller
// callback runs on the program's event loop.
type timerFiredMsg struct{ id int }

type frameMsg struct{ id int }

// teaScheduler implements reorder.Scheduler on top of tea.Tick. Calls made during Update queue
// commands; Update returns them via drain.
type teaScheduler struct {
	now           func() time.Time
	frameInterval time.Duration

	seq    int
	timers map[int]*teaTimer
	frames map[int]func()
	queued []tea.Cmd
}

type teaTimer struct {
	s  *teaScheduler
	id int
	fn func()
}

func (t *teaTimer) Stop() bool {
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}

func newTeaScheduler(frameInterval time.Duration) *teaScheduler {
	if frameInterval <= 0 {
		frameInterval = 16 * time.Millisecond
	}
	return &teaScheduler{
		now:           time.Now,
		frameInterval: frameInterval,
		timers:        map[int]*teaTimer{},
		frames:        map[int]func(){},
	}
}

func (s *teaScheduler) Now() time.Time { return s.now() }

func (s *teaScheduler) After(d time.Duration, fn func()) reorder.Timer {
	s.seq++
	t := &teaTimer{s: s, id: s.seq, fn: fn}
	s.timers[t.id] = t
	id := t.id
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg { return timerFiredMsg{id: id} }))
	return t
}

func (s *teaScheduler) RequestFrame(fn func()) {
	s.seq++
	id := s.seq
	s.frames[id] = fn
	s.queued = append(s.queued, tea.Tick(s.frameInterval, func(time.Time) tea.Msg { return frameMsg{id: id} }))
}

// fire runs a timer callback unless the timer was stopped.
func (s *teaScheduler) fire(id int) {
	t, ok := s.timers[id]
	if !ok {
		return
	}
	delete(s.timers, id)
	t.fn()
}

func (s *teaScheduler) runFrame(id int) {
	fn, ok := s.frames[id]
	if !ok {
		return
	}
	delete(s.frames, id)
	fn()
}

// queue adds a command for the next drain.
func (s *teaScheduler) queue(cmd tea.Cmd) {
	s.queued = append(s.queued, cmd)
}

// drain returns the commands queued since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

func (s *teaScheduler) pendingTimers() []int {
	return sortedKeys(s.timers)
}

func (s *teaScheduler) pendingFrames() []int {
	return sortedKeys(s.frames)
}

func sortedKeys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
