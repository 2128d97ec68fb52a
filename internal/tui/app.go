package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"toolbar-cli/internal/docs"
	"toolbar-cli/internal/model"
	"toolbar-cli/internal/reorder"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// listTop is the screen line of the first button row: title, bar preview and a rule sit above.
const listTop = 3

// footerLines is the status line plus the key help.
const footerLines = 2

// mousePointerID is the pointer id used for long presses made with the mouse.
const mousePointerID = 0

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
	modeHelp
)

type reloadTickMsg struct{}

// liftFlashDoneMsg ends the flash of the row lifted by drag start seq.
type liftFlashDoneMsg struct{ seq int }

type appModel struct {
	p *panel

	keys keyMap
	help help.Model

	width  int
	height int

	mode    mode
	form    *buttonForm
	confirm confirmDialog
}

func newAppModel(p *panel) appModel {
	return appModel{p: p, keys: defaultKeyMap(), help: help.New(), width: 80, height: 24}
}

func (m appModel) Init() tea.Cmd { return tickReload() }

func tickReload() tea.Cmd {
	return tea.Tick(750*time.Millisecond, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()

	case timerFiredMsg:
		m.p.sched.fire(msg.id)

	case frameMsg:
		m.p.sched.runFrame(msg.id)

	case liftFlashDoneMsg:
		if msg.seq == m.p.flashSeq {
			m.p.flashing = false
		}

	case reloadTickMsg:
		if m.mode == modeList && !m.p.ctl.Active() && m.p.storeChanged() {
			m.p.reload()
		}
		cmd = tickReload()

	case tea.BlurMsg:
		m.p.ctl.Blur()

	case tea.MouseMsg:
		if m.mode == modeList {
			m.handleMouse(msg)
		}

	case tea.KeyMsg:
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			m.p.ctl.Close()
			return m, tea.Quit
		}
	}
	return m, tea.Batch(cmd, m.p.sched.drain())
}

// handleMouse routes mouse input to the controller. A press on the grip column grabs the row
// at once; a press anywhere else on a row goes through the long-press classifier.
func (m *appModel) handleMouse(msg tea.MouseMsg) {
	p := m.p
	y := float64(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll(-1)
		case tea.MouseButtonWheelDown:
			m.scroll(1)
		case tea.MouseButtonLeft:
			id, ok := p.surface.rowAt(msg.Y)
			if !ok {
				return
			}
			if msg.X < handleWidth && !p.ctl.Active() {
				if !p.ctl.Pointer().DragStart(id, y) {
					p.tap(id)
				}
				return
			}
			p.ctl.Touch().Down(reorder.PointerEvent{PointerID: mousePointerID, ItemID: id, Y: y})
		}
	case tea.MouseActionMotion:
		if s := p.ctl.Session(); s != nil && s.Native() {
			p.ctl.Pointer().DragOver(y)
			return
		}
		p.ctl.Touch().Move(reorder.PointerEvent{PointerID: mousePointerID, Y: y})
	case tea.MouseActionRelease:
		if s := p.ctl.Session(); s != nil && s.Native() {
			p.ctl.Pointer().Drop()
			p.ctl.Pointer().DragEnd()
			return
		}
		p.ctl.Touch().Up(reorder.PointerEvent{PointerID: mousePointerID, Y: y})
	}
}

// scroll moves the list by delta rows. The list does not scroll under a lifted row.
func (m *appModel) scroll(delta int) {
	if m.p.ctl.Active() {
		return
	}
	s := m.p.surface
	s.scroll += delta
	if maxScroll := len(s.ids) - m.visibleRows(); s.scroll > maxScroll {
		s.scroll = maxScroll
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	p := m.p
	switch m.mode {
	case modeForm:
		done, cmd := m.form.update(p, msg)
		if done {
			m.form = nil
			m.mode = modeList
			m.ensureCursorVisible()
		}
		return cmd, false

	case modeConfirmDelete:
		closed, confirmed := m.confirm.handle(msg.String())
		if confirmed {
			p.deleteSelected()
		}
		if closed {
			m.mode = modeList
			m.ensureCursorVisible()
		}
		return nil, false

	case modeHelp:
		m.mode = modeList
		return nil, false
	}

	if key.Matches(msg, m.keys.Quit) {
		return nil, true
	}
	// While a row is lifted only esc does anything.
	if p.ctl.Active() || p.dragging {
		if key.Matches(msg, m.keys.Cancel) {
			p.ctl.Cancel()
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		p.ctl.Cancel()
	case key.Matches(msg, m.keys.Up):
		p.cursor--
		p.clampCursor()
	case key.Matches(msg, m.keys.Down):
		p.cursor++
		p.clampCursor()
	case key.Matches(msg, m.keys.MoveUp):
		p.moveSelected(-1)
	case key.Matches(msg, m.keys.MoveDown):
		p.moveSelected(1)
	case key.Matches(msg, m.keys.Toggle):
		p.toggleSelected()
	case key.Matches(msg, m.keys.Add):
		m.form = newButtonForm(nil)
		m.mode = modeForm
	case key.Matches(msg, m.keys.Edit):
		if b, ok := p.selected(); ok {
			m.form = newButtonForm(b)
			m.mode = modeForm
		}
	case key.Matches(msg, m.keys.Delete):
		if b, ok := p.selected(); ok {
			m.confirm = newDeleteDialog(b.Name)
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.Reload):
		p.reload()
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}
	m.ensureCursorVisible()
	return nil, false
}

func (m *appModel) visibleRows() int {
	n := (m.height - listTop - footerLines) / rowHeight
	if n < 1 {
		n = 1
	}
	return n
}

func (m *appModel) ensureCursorVisible() {
	if m.p.ctl.Active() {
		return
	}
	s := m.p.surface
	rows := m.visibleRows()
	if m.p.cursor < s.scroll {
		s.scroll = m.p.cursor
	}
	if m.p.cursor >= s.scroll+rows {
		s.scroll = m.p.cursor - rows + 1
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
}

func (m appModel) View() string {
	w, h := m.width, m.height
	lines := []string{
		m.viewTitle(w),
		m.viewBar(),
		styleMuted().Render(strings.Repeat(glyphHRule(), w)),
	}
	lines = append(lines, m.viewRows(w, h-listTop-footerLines)...)
	lines = append(lines, m.viewStatus(w), m.help.View(m.keys))
	base := normalizePane(strings.Join(lines, "\n"), w, h)

	switch m.mode {
	case modeForm:
		if m.form != nil {
			return overlayCenter(base, m.form.view(w), w, h)
		}
	case modeConfirmDelete:
		return overlayCenter(base, m.confirm.view(w), w, h)
	case modeHelp:
		md, _ := docs.Get("reorder")
		body := strings.TrimRight(renderMarkdown(md, modalBodyWidth(w)), "\n")
		return overlayCenter(base, renderModalBox(w, "Reordering", body), w, h)
	}
	return base
}

func (m appModel) viewTitle(w int) string {
	p := m.p
	left := styleTitle().Render("Toolbar")
	info := fmt.Sprintf("%d buttons", len(p.db.Buttons))
	if n := len(p.layout.OverflowIDs()); n > 0 {
		info += fmt.Sprintf(", %d in overflow", n)
	}
	if n := len(p.layout.Hidden); n > 0 {
		info += fmt.Sprintf(", %d hidden", n)
	}
	right := styleMuted().Render(info)
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// viewBar previews the toolbar at the configured width, with the "more" button when anything
// overflows.
func (m appModel) viewBar() string {
	l := m.p.layout
	var b strings.Builder
	x := 0
	for _, s := range l.Visible {
		if s.X > x {
			b.WriteString(strings.Repeat(" ", s.X-x))
			x = s.X
		}
		b.WriteString(styleBarButton().Render(fitLine(s.Label, s.Width)))
		x += s.Width
	}
	if l.More {
		if pad := l.Width - x - 1; pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(styleBarButton().Render(glyphMore()))
	}
	return b.String()
}

func (m appModel) viewRows(w, height int) []string {
	if height < 0 {
		height = 0
	}
	p := m.p
	s := p.surface
	out := make([]string, height)
	rows := s.rows()
	selected := p.selectedID()
	for i := s.scroll; i < len(rows); i++ {
		at := (i - s.scroll) * rowHeight
		if at+rowHeight > height {
			break
		}
		id := rows[i]
		if id == "" {
			// Both lines are drawn: the lifted row is centred on the pointer and usually covers one.
			gap := stylePlaceholder().Render(fitLine("  "+strings.Repeat("╌", w/2), w))
			out[at], out[at+1] = gap, gap
			continue
		}
		b, ok := p.db.FindButton(id)
		if !ok {
			continue
		}
		first, second := renderRow(*b, w)
		switch {
		case id == selected && !p.dragging:
			first, second = styleSelected().Render(first), styleSelected().Render(second)
		case !b.Enabled:
			first, second = styleMuted().Render(first), styleMuted().Render(second)
		}
		out[at], out[at+1] = first, second
	}

	if s.lifted != "" {
		if b, ok := p.db.FindButton(s.lifted); ok {
			first, second := renderRow(*b, w)
			st := styleLifted()
			if p.flashing {
				first = fitLine(glyphLift()+strings.TrimPrefix(first, glyphGrip()), w)
				st = styleLiftFlash()
			}
			at := int(math.Round(s.floatTop)) - listTop
			for j, ln := range []string{first, second} {
				if y := at + j; y >= 0 && y < height {
					out[y] = st.Render(ln)
				}
			}
		}
	}
	return out
}

// renderRow draws a button as two lines of exactly w cells: grip, checkbox and label, then the
// kind and action.
func renderRow(b model.Button, w int) (string, string) {
	grip := glyphGrip()
	if b.Pinned {
		grip = strings.Repeat(" ", handleWidth-1)
	}
	first := grip + " " + glyphCheck(b.Enabled) + " " + b.Label()
	if b.Pinned {
		first += " " + glyphPinned()
	}
	second := strings.Repeat(" ", handleWidth) + string(b.Kind) + ": " + b.Action
	return fitLine(first, w), fitLine(second, w)
}

func (m appModel) viewStatus(w int) string {
	if m.p.status == "" {
		return ""
	}
	if m.p.statusErr {
		return styleError().Render(fitLine(m.p.status, w))
	}
	return styleMuted().Render(fitLine(m.p.status, w))
}
