package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"toolbar-cli/internal/model"
	"toolbar-cli/internal/overflow"
	"toolbar-cli/internal/reorder"
	"toolbar-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// panel is the mutable state behind the settings screen. The bubbletea model is copied on every
// Update, so the controller's callbacks close over this pointer instead of the model.
type panel struct {
	store store.Store
	db    *store.DB
	cfg   store.Config
	log   *zap.Logger
	now   func() time.Time

	sched   *teaScheduler
	surface *listSurface
	ctl     *reorder.Controller
	detach  map[string]func()

	layout    overflow.Layout
	cursor    int
	dragging  bool
	lastMoved string
	// flashing is set on drag start and cleared by the liftFlashDoneMsg carrying flashSeq.
	flashing bool
	flashSeq int

	status    string
	statusErr bool

	lastDBModTime  time.Time
	lastWALModTime time.Time
}

func newPanel(s store.Store, db *store.DB, cfg store.Config, log *zap.Logger) *panel {
	if log == nil {
		log = zap.NewNop()
	}
	p := &panel{
		store:   s,
		db:      db,
		cfg:     cfg,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		sched:   newTeaScheduler(cfg.Reorder.FrameInterval()),
		surface: &listSurface{top: listTop},
		detach:  map[string]func(){},
	}
	p.ctl = reorder.NewController(reorder.Options{
		Config:                cfg.Reorder.Core(),
		Scheduler:             p.sched,
		Surface:               p.surface,
		Logger:                log.Named("reorder"),
		Feedback:              p.flashLift,
		RecomputeDerivedState: p.recompute,
		Persist:               p.persist,
		Render:                p.render,
		OnReordered:           p.reordered,
		OnSessionStateChange:  p.sessionChanged,
		OnTap:                 p.tap,
		OnError:               p.fail,
	})
	p.sync()
	p.captureStoreModTimes()
	return p
}

// liftFlashDuration is how long a freshly lifted row is drawn with the lift marker.
const liftFlashDuration = 180 * time.Millisecond

// flashLift marks the lifted row until a liftFlashDoneMsg for this drag start arrives.
func (p *panel) flashLift() {
	p.flashing = true
	p.flashSeq++
	seq := p.flashSeq
	p.sched.queue(tea.Tick(liftFlashDuration, func(time.Time) tea.Msg { return liftFlashDoneMsg{seq: seq} }))
}

// sync re-attaches every button row and recomputes the layout from db. It is a no-op during a
// drag; the next sync after the drop picks up any change.
func (p *panel) sync() {
	if p.ctl.Active() {
		return
	}
	items := p.db.ReorderItems()
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[it.ID] = true
		p.detach[it.ID] = p.ctl.Attach(it, rowElement{list: p.surface, id: it.ID})
	}
	for id, detach := range p.detach {
		if !seen[id] {
			detach()
			delete(p.detach, id)
		}
	}
	_ = p.ctl.SetItems(items)
	p.surface.ids = reorder.ItemIDs(items)
	p.layout = overflow.Compute(p.db.Sorted(), p.cfg.Toolbar.Width)
	p.clampCursor()
}

func (p *panel) clampCursor() {
	n := len(p.surface.ids)
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *panel) selectedID() string {
	if p.cursor < 0 || p.cursor >= len(p.surface.ids) {
		return ""
	}
	return p.surface.ids[p.cursor]
}

func (p *panel) selected() (*model.Button, bool) {
	return p.db.FindButton(p.selectedID())
}

func (p *panel) setStatus(msg string) {
	p.status = msg
	p.statusErr = false
}

func (p *panel) recompute(order []reorder.Item) {
	p.db.ApplyOrder(order, p.now())
	p.layout = overflow.Compute(p.db.Sorted(), p.cfg.Toolbar.Width)
}

func (p *panel) persist(order []reorder.Item) error {
	if err := p.store.SaveOrder(context.Background(), order); err != nil {
		return err
	}
	p.captureStoreModTimes()
	return nil
}

func (p *panel) render(order []reorder.Item) {
	p.surface.ids = reorder.ItemIDs(order)
}

func (p *panel) reordered(ids []string) {
	for i, id := range ids {
		if id == p.movedID() {
			p.cursor = i
		}
	}
	if !p.statusErr {
		if b, ok := p.db.FindButton(p.movedID()); ok {
			p.setStatus(fmt.Sprintf("Moved %s to position %d", b.Name, p.cursor+1))
		}
	}
}

// movedID is the row the last drag or keyboard move picked up.
func (p *panel) movedID() string { return p.lastMoved }

func (p *panel) sessionChanged(active bool) {
	p.dragging = active
	if s := p.ctl.Session(); active && s != nil {
		p.lastMoved = s.ItemID
		if i := p.surface.indexOf(s.ItemID); i >= 0 {
			p.cursor = i
		}
		p.setStatus("Dragging… release to drop, esc to cancel")
		return
	}
	if p.status != "" && !p.statusErr {
		p.status = ""
	}
}

func (p *panel) tap(id string) {
	if i := p.surface.indexOf(id); i >= 0 {
		p.cursor = i
	}
}

func (p *panel) fail(err error) {
	var perr *reorder.PersistError
	if errors.As(err, &perr) {
		p.status = "Order not saved: " + perr.Err.Error()
	} else {
		p.status = err.Error()
	}
	p.statusErr = true
	p.log.Warn("panel error", zap.Error(err))
}

// moveSelected moves the selected row by delta slots through the same plan and commit path as
// a drag.
func (p *panel) moveSelected(delta int) {
	if p.ctl.Active() {
		return
	}
	id := p.selectedID()
	if id == "" {
		return
	}
	order := p.ctl.Order()
	res, err := reorder.Plan(order, id, p.cursor+delta, nil)
	if err != nil {
		if errors.Is(err, reorder.ErrNotReorderable) {
			p.setStatus("Pinned buttons cannot be moved")
		}
		return
	}
	if !res.Changed {
		return
	}
	p.lastMoved = id
	p.status, p.statusErr = "", false
	c := reorder.Committer{
		RecomputeDerivedState: p.recompute,
		Persist:               p.persist,
		Render:                p.render,
		OnReordered:           p.reordered,
		OnError:               p.fail,
		Logger:                p.log.Named("reorder"),
	}
	_ = c.Commit(res)
	_ = p.ctl.SetItems(res.Order)
}

// save writes the whole toolbar and resyncs the rows. Errors go to the status line.
func (p *panel) save(what string) bool {
	if err := p.store.Save(context.Background(), p.db); err != nil {
		p.fail(err)
		return false
	}
	p.captureStoreModTimes()
	p.sync()
	p.setStatus(what)
	return true
}

func (p *panel) toggleSelected() {
	b, ok := p.selected()
	if !ok {
		return
	}
	b.Enabled = !b.Enabled
	b.UpdatedAt = p.now()
	state := "shown"
	if !b.Enabled {
		state = "hidden"
	}
	p.save(fmt.Sprintf("%s %s", b.Name, state))
}

func (p *panel) deleteSelected() {
	b, ok := p.selected()
	if !ok {
		return
	}
	name := b.Name
	if err := p.db.RemoveButton(b.ID); err != nil {
		p.fail(err)
		return
	}
	p.save("Deleted " + name)
}

// upsert adds b when its id is empty, otherwise replaces the stored button with the same id.
func (p *panel) upsert(b model.Button) error {
	if b.ID == "" {
		added, err := p.db.AddButton(b, p.now())
		if err != nil {
			return err
		}
		p.lastMoved = added.ID
		if p.save("Added " + added.Name) {
			p.cursor = p.surface.indexOf(added.ID)
		}
		return nil
	}
	cur, ok := p.db.FindButton(b.ID)
	if !ok {
		return &store.NotFoundError{Kind: "button", ID: b.ID}
	}
	b.CreatedAt = cur.CreatedAt
	b.SortKey = cur.SortKey
	b.UpdatedAt = p.now()
	if err := store.ValidateButton(b); err != nil {
		return err
	}
	*cur = b
	p.save("Saved " + b.Name)
	return nil
}

// reload replaces the in-memory toolbar with the stored one (CLI edits made elsewhere).
func (p *panel) reload() {
	if p.ctl.Active() {
		return
	}
	db, err := p.store.Load(context.Background())
	if err != nil {
		p.fail(err)
		return
	}
	p.db = db
	p.captureStoreModTimes()
	p.sync()
	p.setStatus("Reloaded")
}

func (p *panel) captureStoreModTimes() {
	p.lastDBModTime = fileModTime(p.store.Path())
	p.lastWALModTime = fileModTime(p.store.Path() + "-wal")
}

// storeChanged reports whether another process wrote the database since our last read or write.
func (p *panel) storeChanged() bool {
	return fileModTime(p.store.Path()).After(p.lastDBModTime) ||
		fileModTime(p.store.Path()+"-wal").After(p.lastWALModTime)
}

func fileModTime(path string) time.Time {
	st, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return st.ModTime()
}
