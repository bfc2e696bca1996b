package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopfront/internal/form"
)

// fieldKind selects the widget rendered for a form field.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldPassword
	fieldTextarea
	fieldCheckbox
)

// fieldSpec describes one field of a form screen.
type fieldSpec struct {
	name        string
	label       string
	placeholder string
	kind        fieldKind
	charLimit   int
	hint        string // rendered under the field, e.g. the password policy
}

// formField pairs a spec with its widget state.
type formField struct {
	spec    fieldSpec
	input   textinput.Model
	area    textarea.Model
	checked bool
}

// formView renders a form.Controller as a column of labeled fields with a
// submit button, and routes key events into the controller so its values and
// error clearing stay in sync with every keystroke.
type formView struct {
	ctrl         *form.Controller
	fields       []formField
	focus        int // index into fields; len(fields) means the submit button
	showPassword bool
	submitLabel  string
	busyLabel    string
}

func newFormView(ctrl *form.Controller, specs []fieldSpec, submitLabel, busyLabel string) formView {
	fields := make([]formField, 0, len(specs))
	for _, spec := range specs {
		f := formField{spec: spec}
		switch spec.kind {
		case fieldTextarea:
			ta := textarea.New()
			ta.Placeholder = spec.placeholder
			ta.CharLimit = spec.charLimit
			ta.SetHeight(4)
			ta.SetWidth(48)
			f.area = ta
		case fieldCheckbox:
			f.checked = ctrl.Flag(spec.name)
		default:
			ti := textinput.New()
			ti.Placeholder = spec.placeholder
			ti.CharLimit = spec.charLimit
			ti.Width = 44
			if spec.kind == fieldPassword {
				ti.EchoMode = textinput.EchoPassword
				ti.EchoCharacter = '•'
			}
			ti.SetValue(ctrl.Value(spec.name))
			f.input = ti
		}
		fields = append(fields, f)
	}

	fv := formView{
		ctrl:        ctrl,
		fields:      fields,
		submitLabel: submitLabel,
		busyLabel:   busyLabel,
	}
	fv.setFocus(0)
	return fv
}

// submitMsg reports a finished submission back to the page that issued it.
type submitMsg struct {
	formName string
	err      error
}

// Update handles key events. The returned command is non-nil when the user
// triggered a submission.
func (f formView) Update(msg tea.Msg) (formView, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateFocused(msg)
	}

	switch key.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return f, nil
	case "shift+tab", "up":
		// Textareas own the up/down keys for cursor movement.
		if key.String() == "up" && f.focusedKind() == fieldTextarea {
			return f.updateFocused(msg)
		}
		f.setFocus(f.focus - 1)
		return f, nil
	case "ctrl+y":
		f.showPassword = !f.showPassword
		f.applyEchoMode()
		return f, nil
	case "ctrl+s":
		return f, f.submitCmd()
	case " ":
		if f.focusedKind() == fieldCheckbox {
			fld := &f.fields[f.focus]
			fld.checked = !fld.checked
			f.ctrl.SetFlag(fld.spec.name, fld.checked)
			return f, nil
		}
	case "enter":
		switch {
		case f.focus == len(f.fields):
			return f, f.submitCmd()
		case f.focusedKind() == fieldTextarea:
			return f.updateFocused(msg)
		default:
			f.setFocus(f.focus + 1)
			return f, nil
		}
	}
	return f.updateFocused(msg)
}

func (f formView) updateFocused(msg tea.Msg) (formView, tea.Cmd) {
	if f.focus >= len(f.fields) {
		return f, nil
	}
	fld := &f.fields[f.focus]
	var cmd tea.Cmd
	switch fld.spec.kind {
	case fieldTextarea:
		fld.area, cmd = fld.area.Update(msg)
		f.ctrl.SetField(fld.spec.name, fld.area.Value())
	case fieldCheckbox:
		// Toggled via the space key in Update.
	default:
		fld.input, cmd = fld.input.Update(msg)
		f.ctrl.SetField(fld.spec.name, fld.input.Value())
	}
	return f, cmd
}

func (f *formView) submitCmd() tea.Cmd {
	if f.ctrl.InFlight() {
		return nil
	}
	ctrl := f.ctrl
	return func() tea.Msg {
		return submitMsg{formName: ctrl.Name(), err: ctrl.Submit(context.Background())}
	}
}

func (f *formView) focusedKind() fieldKind {
	if f.focus >= len(f.fields) {
		return fieldKind(-1)
	}
	return f.fields[f.focus].spec.kind
}

func (f *formView) setFocus(idx int) {
	if idx < 0 {
		idx = len(f.fields)
	}
	if idx > len(f.fields) {
		idx = 0
	}
	f.focus = idx
	for i := range f.fields {
		fld := &f.fields[i]
		switch fld.spec.kind {
		case fieldTextarea:
			if i == idx {
				fld.area.Focus()
			} else {
				fld.area.Blur()
			}
		case fieldCheckbox:
		default:
			if i == idx {
				fld.input.Focus()
			} else {
				fld.input.Blur()
			}
		}
	}
}

func (f *formView) applyEchoMode() {
	for i := range f.fields {
		fld := &f.fields[i]
		if fld.spec.kind != fieldPassword {
			continue
		}
		if f.showPassword {
			fld.input.EchoMode = textinput.EchoNormal
		} else {
			fld.input.EchoMode = textinput.EchoPassword
		}
	}
}

// resetWidgets clears the widgets after the controller reset itself on a
// successful submission.
func (f *formView) resetWidgets() {
	for i := range f.fields {
		fld := &f.fields[i]
		switch fld.spec.kind {
		case fieldTextarea:
			fld.area.SetValue(f.ctrl.Value(fld.spec.name))
		case fieldCheckbox:
			fld.checked = f.ctrl.Flag(fld.spec.name)
		default:
			fld.input.SetValue(f.ctrl.Value(fld.spec.name))
		}
	}
	f.showPassword = false
	f.applyEchoMode()
	f.setFocus(0)
}

// loadValues pushes the controller's current values into the widgets, used
// when a form is prefilled (the edit screen).
func (f *formView) loadValues() {
	f.resetWidgets()
}

// View renders the form column.
func (f *formView) View(styles Styles) string {
	var b strings.Builder
	submitted := f.ctrl.Submitted()

	for i := range f.fields {
		fld := &f.fields[i]
		name := fld.spec.name
		fieldErr := f.ctrl.FieldError(name)

		label := styles.Label.Render(fld.spec.label) + " " + styles.Required.Render("*")
		if submitted && fieldErr == "" && f.hasValue(fld) {
			label = styles.FieldOK.Render(fld.spec.label) + " " + styles.Required.Render("*")
		}
		b.WriteString(label)
		b.WriteString("\n")

		switch fld.spec.kind {
		case fieldTextarea:
			b.WriteString(fld.area.View())
		case fieldCheckbox:
			mark := "[ ]"
			if fld.checked {
				mark = "[x]"
			}
			line := mark + " " + fld.spec.placeholder
			if i == f.focus {
				line = styles.StatusDetail.Render(line)
			}
			b.WriteString(line)
		default:
			b.WriteString(fld.input.View())
		}
		b.WriteString("\n")

		if fieldErr != "" {
			b.WriteString(styles.FieldError.Render(fieldErr))
			b.WriteString("\n")
		}
		if fld.spec.hint != "" {
			b.WriteString(styles.Hint.Render(fld.spec.hint))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(f.renderButton(styles))
	return b.String()
}

func (f *formView) renderButton(styles Styles) string {
	label := f.submitLabel
	style := styles.ButtonInactive
	switch {
	case f.ctrl.InFlight():
		label = f.busyLabel
		style = styles.ButtonDisabled
	case f.focus == len(f.fields):
		style = styles.ButtonActive
	}
	return style.Render("[ " + label + " ]")
}

func (f *formView) hasValue(fld *formField) bool {
	if fld.spec.kind == fieldCheckbox {
		return fld.checked
	}
	return strings.TrimSpace(f.ctrl.Value(fld.spec.name)) != ""
}
