package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldKey = iota
	fieldValue
	fieldExpiry
	fieldCount
)

// AddForm collects key, value and expiry for a new entry. Input is not validated
// here; the submitted text goes to the add intent as typed.
type AddForm struct {
	inputs    [fieldCount]textinput.Model
	focus     int
	Submitted bool
	Canceled  bool
	// Pending is set while the add intent runs.
	Pending bool
	// Err is the last rejection, shown under the fields.
	Err   string
	theme *Theme
}

// NewAddForm creates a form with the key field focused.
func NewAddForm(theme *Theme) AddForm {
	f := AddForm{theme: theme}
	f.inputs[fieldKey] = newInput(theme, "Key    ", "session:42", 256)
	f.inputs[fieldValue] = newInput(theme, "Value  ", "alice", 4096)
	f.inputs[fieldExpiry] = newInput(theme, "Expiry ", "seconds", 12)
	f.inputs[fieldKey].Focus()
	return f
}

// Values returns the raw field contents.
func (f AddForm) Values() (key, value, expiry string) {
	return f.inputs[fieldKey].Value(), f.inputs[fieldValue].Value(), f.inputs[fieldExpiry].Value()
}

// Update handles navigation and typing. Enter on the last field submits.
func (f AddForm) Update(msg tea.Msg) (AddForm, tea.Cmd) {
	if f.Pending {
		return f, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			f.Canceled = true
			return f, nil
		case "tab", "down":
			return f.move(1), textinput.Blink
		case "shift+tab", "up":
			return f.move(-1), textinput.Blink
		case "enter":
			if f.focus < fieldExpiry {
				return f.move(1), textinput.Blink
			}
			f.Submitted = true
			f.Err = ""
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f AddForm) move(delta int) AddForm {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
	return f
}

// View renders the form.
func (f AddForm) View() string {
	t := f.theme
	lines := []string{t.Title.Render("Add entry"), ""}
	for i := range f.inputs {
		lines = append(lines, f.inputs[i].View())
	}
	lines = append(lines, "")
	switch {
	case f.Pending:
		lines = append(lines, t.Subtle.Render("saving..."))
	case f.Err != "":
		lines = append(lines, t.ErrorStyle.Render(f.Err))
	}
	lines = append(lines, t.Subtle.Render("tab to move • enter to save • esc to cancel"))
	return t.Box.Render(lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n")))
}
