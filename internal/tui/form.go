package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"toolbar-cli/internal/model"
	"toolbar-cli/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldName = iota
	fieldIcon
	fieldKind
	fieldAction
	fieldWidth
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name   ", "Icon   ", "Kind   ", "Action ", "Width  "}

// buttonForm is the add/edit modal. id is empty when adding.
type buttonForm struct {
	id      string
	enabled bool
	pinned  bool

	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newButtonForm(b *model.Button) *buttonForm {
	f := &buttonForm{enabled: true}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		f.inputs[i] = in
	}
	f.inputs[fieldName].Placeholder = "Daily note"
	f.inputs[fieldIcon].CharLimit = 8
	f.inputs[fieldKind].Placeholder = "builtin | command | template"
	f.inputs[fieldAction].CharLimit = 512
	f.inputs[fieldAction].Placeholder = "open-daily-note"
	f.inputs[fieldWidth].CharLimit = 2
	f.inputs[fieldWidth].Placeholder = "2"

	if b != nil {
		f.id = b.ID
		f.enabled = b.Enabled
		f.pinned = b.Pinned
		f.inputs[fieldName].SetValue(b.Name)
		f.inputs[fieldIcon].SetValue(b.Icon)
		f.inputs[fieldKind].SetValue(string(b.Kind))
		f.inputs[fieldAction].SetValue(b.Action)
		f.inputs[fieldWidth].SetValue(strconv.Itoa(b.Width))
	} else {
		f.inputs[fieldKind].SetValue(string(model.ButtonKindCommand))
	}
	f.inputs[fieldName].Focus()
	return f
}

func (f *buttonForm) title() string {
	if f.id == "" {
		return "Add button"
	}
	return "Edit button"
}

func (f *buttonForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

// button builds the button from the inputs. Width is the only field parsed here; everything else
// is checked by store validation on save.
func (f *buttonForm) button() (model.Button, error) {
	b := model.Button{
		ID:      f.id,
		Name:    strings.TrimSpace(f.inputs[fieldName].Value()),
		Icon:    strings.TrimSpace(f.inputs[fieldIcon].Value()),
		Kind:    model.ButtonKind(strings.ToLower(strings.TrimSpace(f.inputs[fieldKind].Value()))),
		Action:  strings.TrimSpace(f.inputs[fieldAction].Value()),
		Enabled: f.enabled,
		Pinned:  f.pinned,
	}
	if w := strings.TrimSpace(f.inputs[fieldWidth].Value()); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return b, fmt.Errorf("width: %q is not a number", w)
		}
		b.Width = n
	}
	return b, nil
}

// update handles a key while the form is open. done reports that the modal should close.
func (f *buttonForm) update(p *panel, msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return true, nil
	case "tab", "down":
		return false, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return false, f.setFocus(f.focus - 1)
	case "enter":
		b, err := f.button()
		if err == nil {
			err = p.upsert(b)
		}
		if err != nil {
			f.err = formError(err)
			return false, nil
		}
		return true, nil
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func formError(err error) string {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return strings.Join(verr.Fields, "; ")
	}
	return err.Error()
}

func (f *buttonForm) view(screenW int) string {
	bodyW := modalBodyWidth(screenW)
	lines := make([]string, 0, fieldCount+4)
	for i := range f.inputs {
		f.inputs[i].Width = bodyW - len(fieldLabels[i]) - 3
		lines = append(lines, renderInputLine(bodyW, fieldLabels[i], f.inputs[i].View(), i == f.focus))
	}
	lines = append(lines, "")
	if f.err != "" {
		lines = append(lines, styleError().Width(bodyW).Render(f.err), "")
	}
	lines = append(lines, styleMuted().Width(bodyW).Render("tab: next field   enter: save   esc: cancel"))
	return renderModalBox(screenW, f.title(), strings.Join(lines, "\n"))
}
