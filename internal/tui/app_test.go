package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"toolbar-cli/internal/model"
	"toolbar-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func testConfig() store.Config {
	return store.Config{
		Reorder: store.ReorderConfig{PressThresholdMs: 300, MoveCancelThreshold: 0.5, Tolerance: 1, FrameIntervalMs: 16},
		Toolbar: store.ToolbarConfig{Width: 40},
		TUI:     store.TUIConfig{Glyphs: "unicode"},
		Log:     store.LogConfig{Level: "info"},
	}
}

// newTestModel seeds buttons a..d (rows at screen lines 3, 5, 7 and 9) in a temp store.
func newTestModel(t *testing.T, pinned ...string) appModel {
	t.Helper()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	isPinned := map[string]bool{}
	for _, id := range pinned {
		isPinned[id] = true
	}
	db := &store.DB{Version: 1}
	for i, id := range []string{"btn-a", "btn-b", "btn-c", "btn-d"} {
		db.Buttons = append(db.Buttons, model.Button{
			ID: id, Name: strings.ToUpper(id[4:]), Kind: model.ButtonKindBuiltin, Action: "act-" + id[4:],
			Width: 2, SortKey: i + 1, Enabled: true, Pinned: isPinned[id], CreatedAt: now, UpdatedAt: now,
		})
	}
	s := store.Store{Dir: t.TempDir()}
	if err := s.Save(context.Background(), db); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	loaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	p := newPanel(s, loaded, testConfig(), nil)
	p.now = func() time.Time { return now.Add(time.Hour) }
	return send(t, newAppModel(p), tea.WindowSizeMsg{Width: 80, Height: 24})
}

func send(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return am
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	button := tea.MouseButtonLeft
	if action == tea.MouseActionRelease {
		button = tea.MouseButtonNone
	}
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func fireTimers(t *testing.T, m appModel) appModel {
	t.Helper()
	for _, id := range m.p.sched.pendingTimers() {
		m = send(t, m, timerFiredMsg{id: id})
	}
	return m
}

func runFrames(t *testing.T, m appModel) appModel {
	t.Helper()
	for _, id := range m.p.sched.pendingFrames() {
		m = send(t, m, frameMsg{id: id})
	}
	return m
}

func storedOrder(t *testing.T, m appModel) []string {
	t.Helper()
	db, err := m.p.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ids := []string{}
	for _, b := range db.Sorted() {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestMouse_LongPressDragReordersAndPersists(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 10, 3))
	if m.p.ctl.Active() {
		t.Fatalf("drag must wait for the press threshold")
	}
	if got := len(m.p.sched.pendingTimers()); got != 1 {
		t.Fatalf("expected one armed press timer; got %d", got)
	}

	m = fireTimers(t, m)
	if !m.p.ctl.Active() || !m.p.dragging {
		t.Fatalf("expected an active drag after the press threshold")
	}
	if m.p.surface.lifted != "btn-a" {
		t.Fatalf("lifted = %q; want btn-a", m.p.surface.lifted)
	}

	// Line 9 is in the lower half of btn-c once btn-a leaves its slot.
	m = send(t, m, mouse(tea.MouseActionMotion, 10, 9))
	m = runFrames(t, m)
	if m.p.surface.placeholder != 2 {
		t.Fatalf("placeholder = %d; want 2", m.p.surface.placeholder)
	}

	m = send(t, m, mouse(tea.MouseActionRelease, 10, 9))
	want := []string{"btn-b", "btn-c", "btn-a", "btn-d"}
	if m.p.ctl.Active() || m.p.dragging {
		t.Fatalf("drag should end on release")
	}
	if diff := cmp.Diff(want, m.p.surface.ids); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, storedOrder(t, m)); diff != "" {
		t.Fatalf("stored order mismatch (-want +got):\n%s", diff)
	}
	if m.p.cursor != 2 || m.p.status != "Moved A to position 3" {
		t.Fatalf("cursor=%d status=%q", m.p.cursor, m.p.status)
	}
}

func TestMouse_HandleDragStartsImmediately(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 0, 9))
	s := m.p.ctl.Session()
	if s == nil || !s.Native() || s.ItemID != "btn-d" {
		t.Fatalf("expected a native drag of btn-d; got %+v", s)
	}
	if got := len(m.p.sched.pendingTimers()); got != 0 {
		t.Fatalf("handle drags arm no press timer; got %d", got)
	}

	// Line 3 is in the upper half of btn-a.
	m = send(t, m, mouse(tea.MouseActionMotion, 0, 3))
	m = runFrames(t, m)
	m = send(t, m, mouse(tea.MouseActionRelease, 0, 3))

	want := []string{"btn-d", "btn-a", "btn-b", "btn-c"}
	if diff := cmp.Diff(want, storedOrder(t, m)); diff != "" {
		t.Fatalf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestMouse_ShortPressIsTap(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 10, 7))
	m = send(t, m, mouse(tea.MouseActionRelease, 10, 7))
	if m.p.cursor != 2 {
		t.Fatalf("tap should select btn-c; cursor=%d", m.p.cursor)
	}
	if got := len(m.p.sched.pendingTimers()); got != 0 {
		t.Fatalf("release should disarm the press timer; %d pending", got)
	}
	if m.p.ctl.Active() {
		t.Fatalf("a tap must not start a drag")
	}
}

func TestMouse_MovementBeforeThresholdCancelsPress(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 10, 5))
	m = send(t, m, mouse(tea.MouseActionMotion, 10, 7))
	if got := len(m.p.sched.pendingTimers()); got != 0 {
		t.Fatalf("travel past the cancel threshold should disarm the timer; %d pending", got)
	}
	m = send(t, m, mouse(tea.MouseActionRelease, 10, 7))
	if m.p.ctl.Active() {
		t.Fatalf("no drag expected")
	}
	if diff := cmp.Diff([]string{"btn-a", "btn-b", "btn-c", "btn-d"}, storedOrder(t, m)); diff != "" {
		t.Fatalf("order changed (-want +got):\n%s", diff)
	}
}

func TestEscCancelsDragWithoutCommit(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 10, 5))
	m = fireTimers(t, m)
	m = send(t, m, mouse(tea.MouseActionMotion, 10, 11))
	m = runFrames(t, m)
	if m.p.surface.placeholder != 3 {
		t.Fatalf("placeholder = %d; want 3", m.p.surface.placeholder)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.p.ctl.Active() || m.p.surface.lifted != "" {
		t.Fatalf("esc should abort the drag")
	}
	// The release that follows belongs to no session.
	m = send(t, m, mouse(tea.MouseActionRelease, 10, 11))

	want := []string{"btn-a", "btn-b", "btn-c", "btn-d"}
	if diff := cmp.Diff(want, m.p.surface.ids); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, storedOrder(t, m)); diff != "" {
		t.Fatalf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestBlurAbortsDrag(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 0, 3))
	if !m.p.ctl.Active() {
		t.Fatalf("expected a drag")
	}
	m = send(t, m, tea.BlurMsg{})
	if m.p.ctl.Active() || m.p.dragging {
		t.Fatalf("focus loss should abort the drag")
	}
}

func TestPinnedRowsStayPut(t *testing.T) {
	m := newTestModel(t, "btn-a")

	m = send(t, m, mouse(tea.MouseActionPress, 0, 3))
	if m.p.ctl.Active() {
		t.Fatalf("pinned rows cannot be grabbed")
	}

	m = send(t, m, keyRunes("J"))
	if m.p.status != "Pinned buttons cannot be moved" {
		t.Fatalf("status = %q", m.p.status)
	}

	// btn-b cannot move above the pinned row.
	m = send(t, m, keyRunes("j"))
	m = send(t, m, keyRunes("K"))
	if diff := cmp.Diff([]string{"btn-a", "btn-b", "btn-c", "btn-d"}, storedOrder(t, m)); diff != "" {
		t.Fatalf("order changed (-want +got):\n%s", diff)
	}
}

func TestKeyboardMovePersists(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyRunes("J"))
	m = send(t, m, keyRunes("J"))
	want := []string{"btn-b", "btn-c", "btn-a", "btn-d"}
	if diff := cmp.Diff(want, storedOrder(t, m)); diff != "" {
		t.Fatalf("stored order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, m.p.surface.ids); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if m.p.cursor != 2 {
		t.Fatalf("cursor should follow the moved row; got %d", m.p.cursor)
	}
}

func TestPersistFailureIsShownAndOrderKept(t *testing.T) {
	m := newTestModel(t)

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m.p.store = store.Store{Dir: filepath.Join(blocker, "data")}

	m = send(t, m, keyRunes("J"))
	if !m.p.statusErr || !strings.HasPrefix(m.p.status, "Order not saved: ") {
		t.Fatalf("expected a persist error in the status line; got %q (err=%v)", m.p.status, m.p.statusErr)
	}
	if diff := cmp.Diff([]string{"btn-b", "btn-a", "btn-c", "btn-d"}, m.p.surface.ids); diff != "" {
		t.Fatalf("in-memory order should stay committed (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.View(), "Order not saved") {
		t.Fatalf("status line missing from view")
	}
}

func TestForm_AddAndValidate(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyRunes("a"))
	if m.mode != modeForm || m.form == nil {
		t.Fatalf("expected the add form")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeForm || !strings.Contains(m.form.err, "Name: failed required") {
		t.Fatalf("expected a validation error; mode=%v err=%q", m.mode, m.form.err)
	}

	m.form.inputs[fieldName].SetValue("Archive")
	m.form.inputs[fieldAction].SetValue("archive-note")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Fatalf("form should close on save; err=%q", m.form.err)
	}

	db, err := m.p.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sorted := db.Sorted()
	last := sorted[len(sorted)-1]
	if len(sorted) != 5 || last.Name != "Archive" || last.Width != 2 || last.Kind != model.ButtonKindCommand {
		t.Fatalf("unexpected stored button: %+v", last)
	}
	if m.p.selectedID() != last.ID {
		t.Fatalf("new button should be selected; got %q", m.p.selectedID())
	}
}

func TestForm_EditRejectsBadWidth(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyRunes("e"))
	m.form.inputs[fieldWidth].SetValue("wide")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeForm || !strings.Contains(m.form.err, "width") {
		t.Fatalf("expected a width error; got %q", m.form.err)
	}

	m.form.inputs[fieldWidth].SetValue("4")
	m.form.inputs[fieldName].SetValue("Alpha")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	b, ok := m.p.db.FindButton("btn-a")
	if m.mode != modeList || !ok || b.Name != "Alpha" || b.Width != 4 || b.SortKey != 1 {
		t.Fatalf("edit not applied: mode=%v button=%+v", m.mode, b)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = send(t, m, keyRunes("e"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Fatalf("esc should close the form")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyRunes("j"))
	m = send(t, m, keyRunes("d"))
	if m.mode != modeConfirmDelete {
		t.Fatalf("expected the confirm modal")
	}
	if !strings.Contains(m.View(), `Remove "B" from the toolbar?`) {
		t.Fatalf("confirm modal missing from view")
	}
	// Focus starts on Cancel.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := len(storedOrder(t, m)); got != 4 {
		t.Fatalf("cancel should keep the button; %d stored", got)
	}

	m = send(t, m, keyRunes("d"))
	m = send(t, m, keyRunes("y"))
	if diff := cmp.Diff([]string{"btn-a", "btn-c", "btn-d"}, storedOrder(t, m)); diff != "" {
		t.Fatalf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleHidesFromBar(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if diff := cmp.Diff([]string{"btn-a"}, m.p.layout.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if m.p.status != "A hidden" {
		t.Fatalf("status = %q", m.p.status)
	}
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	m := newTestModel(t)

	db, err := m.p.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := db.RemoveButton("btn-d"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.p.store.Save(context.Background(), db); err != nil {
		t.Fatalf("save: %v", err)
	}

	m = send(t, m, keyRunes("r"))
	if diff := cmp.Diff([]string{"btn-a", "btn-b", "btn-c"}, m.p.surface.ids); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestView_ShowsPlaceholderWhileDragging(t *testing.T) {
	m := newTestModel(t)

	v := m.View()
	for _, want := range []string{"Toolbar", "4 buttons", glyphGrip(), "builtin: act-a"} {
		if !strings.Contains(v, want) {
			t.Fatalf("view missing %q:\n%s", want, v)
		}
	}

	m = send(t, m, mouse(tea.MouseActionPress, 0, 5))
	if !strings.Contains(m.View(), "╌") {
		t.Fatalf("expected the placeholder row while dragging")
	}
	if got := len(strings.Split(m.View(), "\n")); got != 24 {
		t.Fatalf("view should fill the screen; got %d lines", got)
	}
}

func TestView_PlaceholderShowsBelowCentredLiftedRow(t *testing.T) {
	m := newTestModel(t)

	// The grip press on line 5 lifts btn-b and centres it on the pointer: it is drawn on
	// lines 4-5 while its placeholder keeps lines 5-6.
	m = send(t, m, mouse(tea.MouseActionPress, 0, 5))
	lines := strings.Split(m.View(), "\n")
	if !strings.Contains(lines[6], "╌") {
		t.Fatalf("line 6 should show the placeholder; got %q", lines[6])
	}
	if !strings.Contains(lines[4], "B") || !strings.Contains(lines[5], "builtin: act-b") {
		t.Fatalf("lifted row should sit on lines 4-5; got %q / %q", lines[4], lines[5])
	}
}

func TestDragStartFlashesLiftedRow(t *testing.T) {
	m := newTestModel(t)
	if strings.Contains(m.View(), glyphLift()) {
		t.Fatalf("no row is lifted yet")
	}

	m = send(t, m, mouse(tea.MouseActionPress, 0, 5))
	if !m.p.flashing {
		t.Fatalf("drag start should flash the lifted row")
	}
	if !strings.Contains(m.View(), glyphLift()) {
		t.Fatalf("expected the lift marker on the lifted row:\n%s", m.View())
	}

	// A flash end from an earlier drag start is ignored.
	m = send(t, m, liftFlashDoneMsg{seq: m.p.flashSeq - 1})
	if !m.p.flashing {
		t.Fatalf("stale flash end should not clear the flash")
	}

	m = send(t, m, liftFlashDoneMsg{seq: m.p.flashSeq})
	if m.p.flashing || strings.Contains(m.View(), glyphLift()) {
		t.Fatalf("flash should clear after its duration")
	}
	if !m.p.ctl.Active() {
		t.Fatalf("the drag continues after the flash")
	}
}
