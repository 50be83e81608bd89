package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// fieldSpec describes one input of a [form].
type fieldSpec struct {
	name   string
	label  string
	secret bool
	limit  int
	hint   string
}

type field struct {
	fieldSpec
	input textinput.Model
}

// form is an ordered set of text inputs with a single focused field.
type form struct {
	fields []field
	focus  int
	errs   map[string]string
}

func newForm(specs ...fieldSpec) form {
	f := form{fields: make([]field, len(specs)), errs: map[string]string{}}
	for i, spec := range specs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = spec.hint
		if spec.limit > 0 {
			in.CharLimit = spec.limit
		}
		if spec.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields[i] = field{fieldSpec: spec, input: in}
	}
	return f
}

// focusFirst focuses the first field and returns the cursor blink command.
func (f *form) focusFirst() tea.Cmd {
	f.focus = 0
	return f.refocus()
}

func (f *form) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.fields {
		if i == f.focus {
			cmd = f.fields[i].input.Focus()
			continue
		}
		f.fields[i].input.Blur()
	}
	return cmd
}

func (f *form) next() tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.focus = (f.focus + 1) % len(f.fields)
	return f.refocus()
}

func (f *form) prev() tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	return f.refocus()
}

// onLast reports whether the focused field is the last one.
func (f *form) onLast() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(name string) string {
	for _, fd := range f.fields {
		if fd.name == name {
			return fd.input.Value()
		}
	}
	return ""
}

func (f *form) set(name, value string) {
	for i := range f.fields {
		if f.fields[i].name == name {
			f.fields[i].input.SetValue(value)
		}
	}
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
	f.errs = map[string]string{}
	f.focus = 0
}

// setErrors replaces the inline validation messages; empty messages are dropped.
func (f *form) setErrors(errs map[string]string) bool {
	f.errs = map[string]string{}
	for k, v := range errs {
		if v != "" {
			f.errs[k] = v
		}
	}
	return len(f.errs) == 0
}

func (f *form) view() string {
	var b strings.Builder
	for i, fd := range f.fields {
		label := styles.label.Render(fd.label)
		if i == f.focus {
			label = styles.focus.Render(fd.label)
		}
		b.WriteString(label + " " + fd.input.View() + "\n")
		if msg := f.errs[fd.name]; msg != "" {
			b.WriteString(styles.label.Render("") + " " + styles.err.Render(msg) + "\n")
		}
	}
	return b.String()
}
