// Package notify abstracts the user-facing outcome dialogs. The interactive
// UI shows modal dialogs; headless commands log instead; tests record.
package notify

import "go.uber.org/zap"

// Sink receives the outcome of every user action exactly once. Confirm
// blocks until the user answers and returns their choice.
type Sink interface {
	Success(title, text string)
	Error(title, text string)
	Confirm(title, text string) bool
}

// LogSink reports outcomes through a zap logger. Confirm answers with a
// fixed response, which lets non-interactive commands run unattended.
type LogSink struct {
	Log           *zap.Logger
	ConfirmAnswer bool
}

// NewLogSink returns a sink that logs outcomes and auto-approves
// confirmations.
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{Log: log, ConfirmAnswer: true}
}

func (s *LogSink) Success(title, text string) {
	s.Log.Info(title, zap.String("detail", text))
}

func (s *LogSink) Error(title, text string) {
	s.Log.Error(title, zap.String("detail", text))
}

func (s *LogSink) Confirm(title, text string) bool {
	s.Log.Info(title, zap.String("detail", text), zap.Bool("answer", s.ConfirmAnswer))
	return s.ConfirmAnswer
}
