package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DialogLevel selects the dialog icon and accent color.
type DialogLevel int

const (
	DialogSuccess DialogLevel = iota
	DialogError
	DialogConfirm
)

// DialogRequest is one pending modal dialog. For confirmations, the answer
// is delivered on resp; informational dialogs respond true on dismissal.
type DialogRequest struct {
	Level DialogLevel
	Title string
	Text  string
	resp  chan bool
}

// Respond delivers the user's choice. Safe to call once per request.
func (r *DialogRequest) Respond(answer bool) {
	if r.resp != nil {
		r.resp <- answer
	}
}

// dialogMsg carries a dialog request into the update loop.
type dialogMsg struct {
	req *DialogRequest
}

// DialogSink implements notify.Sink on top of the Bubble Tea program. The
// controllers run inside command goroutines, so Confirm can block on the
// response channel while the update loop keeps rendering; the answer arrives
// when the user picks one in the modal.
type DialogSink struct {
	mu sync.RWMutex
	p  *tea.Program
}

// SetProgram attaches the running program. Calls made before attachment are
// dropped (nothing is on screen to show them).
func (s *DialogSink) SetProgram(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

func (s *DialogSink) program() *tea.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

// Success shows a success dialog. Does not wait for dismissal.
func (s *DialogSink) Success(title, text string) {
	if p := s.program(); p != nil {
		p.Send(dialogMsg{req: &DialogRequest{Level: DialogSuccess, Title: title, Text: text}})
	}
}

// Error shows an error dialog. Does not wait for dismissal.
func (s *DialogSink) Error(title, text string) {
	if p := s.program(); p != nil {
		p.Send(dialogMsg{req: &DialogRequest{Level: DialogError, Title: title, Text: text}})
	}
}

// Confirm shows a yes/no dialog and blocks until the user answers. Must not
// be called from the update loop itself; the controllers call it from
// command goroutines.
func (s *DialogSink) Confirm(title, text string) bool {
	p := s.program()
	if p == nil {
		return false
	}
	req := &DialogRequest{
		Level: DialogConfirm,
		Title: title,
		Text:  text,
		resp:  make(chan bool, 1),
	}
	p.Send(dialogMsg{req: req})
	return <-req.resp
}

// renderDialog draws the modal centered in the given area.
func renderDialog(req *DialogRequest, styles Styles, width, height int) string {
	var accent lipgloss.Style
	var hint string
	switch req.Level {
	case DialogSuccess:
		accent = styles.DialogSuccess
		hint = "enter: ok"
	case DialogError:
		accent = styles.DialogError
		hint = "enter: ok"
	case DialogConfirm:
		accent = styles.DialogWarning
		hint = "y: yes, delete it!  ·  n: cancel"
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		accent.Render(req.Title),
		"",
		styles.DialogTitle.Render(req.Text),
		"",
		styles.Hint.Render(hint),
	)
	box := styles.DialogBox.Width(min(width-8, 64)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
