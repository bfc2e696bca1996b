package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formPage wraps a formView with the heading chrome the auth and contact
// screens share.
type formPage struct {
	title    string
	subtitle string
	form     formView
}

func newFormPage(title, subtitle string, form formView) formPage {
	return formPage{title: title, subtitle: subtitle, form: form}
}

func (p formPage) Update(msg tea.Msg) (formPage, tea.Cmd) {
	if done, ok := msg.(submitMsg); ok {
		if done.formName == p.form.ctrl.Name() && done.err == nil {
			p.form.resetWidgets()
		}
		return p, nil
	}
	var cmd tea.Cmd
	p.form, cmd = p.form.Update(msg)
	return p, cmd
}

func (p formPage) View(styles Styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(p.title),
		styles.Subtitle.Render(p.subtitle),
		"",
		p.form.View(styles),
		"",
		styles.Footer.Render("tab: next field  ·  space: toggle  ·  enter/ctrl+s: submit  ·  ctrl+y: show password"),
	)
}
