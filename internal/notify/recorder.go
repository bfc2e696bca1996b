package notify

import "sync"

// EventLevel distinguishes recorded dialog types.
type EventLevel string

const (
	LevelSuccess EventLevel = "success"
	LevelError   EventLevel = "error"
	LevelConfirm EventLevel = "confirm"
)

// Event is one recorded sink call.
type Event struct {
	Level EventLevel
	Title string
	Text  string
}

// Recorder captures sink calls for assertions in tests. The zero value is
// usable; Answer controls what Confirm returns.
type Recorder struct {
	mu     sync.Mutex
	events []Event

	// Answer is returned by Confirm. Defaults to false (decline).
	Answer bool
}

func (r *Recorder) Success(title, text string) { r.record(LevelSuccess, title, text) }
func (r *Recorder) Error(title, text string)   { r.record(LevelError, title, text) }

func (r *Recorder) Confirm(title, text string) bool {
	r.record(LevelConfirm, title, text)
	return r.Answer
}

func (r *Recorder) record(level EventLevel, title, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Title: title, Text: text})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event, or a zero Event when none were
// recorded.
func (r *Recorder) Last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}

// Count returns how many events of the given level were recorded.
func (r *Recorder) Count(level EventLevel) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Level == level {
			n++
		}
	}
	return n
}
