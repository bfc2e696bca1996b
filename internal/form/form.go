// Package form implements the shared state controller behind every form
// screen: current values, per-field errors, the submitted flag, and the
// submit pipeline (validate locally, run the submit action, report the
// outcome through the notification sink exactly once per attempt).
package form

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"shopfront/internal/catalog"
	"shopfront/internal/notify"
	"shopfront/internal/validate"
)

var (
	// ErrInFlight is returned when Submit is called while a previous
	// submission has not finished. No sink call is made: the attempt never
	// entered the pipeline.
	ErrInFlight = errors.New("form: a submission is already in flight")

	// ErrValidation is returned when local validation rejected the form.
	ErrValidation = errors.New("form: validation failed")
)

// Action performs the submit side effect once local validation has passed.
// It returns the success detail text shown to the user. A nil action is not
// allowed; forms without a backend use an action that completes locally.
type Action func(ctx context.Context, s validate.Snapshot) (string, error)

// Config assembles a Controller. Sink and Rules are required.
type Config struct {
	Name          string            // form name, used in logs
	DefaultValues map[string]string // initial text field values
	DefaultFlags  map[string]bool   // initial checkbox values
	Rules         validate.RuleSet
	Action        Action
	SuccessTitle  string
	// FieldAliases remaps backend error field names onto form field names,
	// e.g. the register backend validates "name" which the form splits into
	// a first name field.
	FieldAliases map[string]string
	Sink         notify.Sink
	Logger       *zap.Logger
}

// Controller owns one form's state. Methods are safe for concurrent use;
// the UI reads state from its render loop while Submit runs in a command
// goroutine.
type Controller struct {
	mu        sync.Mutex
	name      string
	defValues map[string]string
	defFlags  map[string]bool
	values    map[string]string
	flags     map[string]bool
	errs      map[string]string
	submitted bool
	inflight  bool

	rules        validate.RuleSet
	action       Action
	successTitle string
	aliases      map[string]string
	sink         notify.Sink
	log          *zap.Logger
}

// NewController creates a form controller with its fields set to defaults.
func NewController(cfg Config) *Controller {
	c := &Controller{
		name:         cfg.Name,
		defValues:    cfg.DefaultValues,
		defFlags:     cfg.DefaultFlags,
		rules:        cfg.Rules,
		action:       cfg.Action,
		successTitle: cfg.SuccessTitle,
		aliases:      cfg.FieldAliases,
		sink:         cfg.Sink,
		log:          cfg.Logger,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.successTitle == "" {
		c.successTitle = "Success!"
	}
	c.resetLocked()
	return c
}

// Name returns the form name given at construction.
func (c *Controller) Name() string {
	return c.name
}

// SetField overwrites one text field. If an error was recorded for the
// field it is cleared optimistically, without re-validating.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
	delete(c.errs, name)
}

// SetFlag overwrites one checkbox field and clears its error.
func (c *Controller) SetFlag(name string, value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[name] = value
	delete(c.errs, name)
}

// Value returns the current value of a text field.
func (c *Controller) Value(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Flag returns the current value of a checkbox field.
func (c *Controller) Flag(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags[name]
}

// FieldError returns the recorded error for a field, or "".
func (c *Controller) FieldError(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs[name]
}

// Errors returns a copy of the current field error map.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// Submitted reports whether a submit attempt has been made since the last
// reset. The UI uses it to decide whether to style fields as valid/invalid.
func (c *Controller) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}

// InFlight reports whether a submission is currently running. The UI
// disables the submit control while this is true.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Reset restores defaults and clears errors and the submitted flag.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.values = make(map[string]string, len(c.defValues))
	for k, v := range c.defValues {
		c.values[k] = v
	}
	c.flags = make(map[string]bool, len(c.defFlags))
	for k, v := range c.defFlags {
		c.flags[k] = v
	}
	c.errs = make(map[string]string)
	c.submitted = false
}

// snapshot is an immutable copy handed to validation and the action, so the
// lock is not held across the network call.
type snapshot struct {
	values map[string]string
	flags  map[string]bool
}

func (s snapshot) Value(name string) string { return s.values[name] }
func (s snapshot) Flag(name string) bool    { return s.flags[name] }

func (c *Controller) snapshotLocked() snapshot {
	s := snapshot{
		values: make(map[string]string, len(c.values)),
		flags:  make(map[string]bool, len(c.flags)),
	}
	for k, v := range c.values {
		s.values[k] = v
	}
	for k, v := range c.flags {
		s.flags[k] = v
	}
	return s
}

// Submit runs the full pipeline: validate, call the action, report the
// outcome. Exactly one sink call is made per attempt that enters the
// pipeline. On success the form resets to defaults. Returns nil on success,
// ErrValidation when local rules rejected the form, ErrInFlight when a
// previous submission is still running, or the action's error.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.inflight {
		c.mu.Unlock()
		c.log.Debug("submit rejected, request already in flight", zap.String("form", c.name))
		return ErrInFlight
	}
	c.submitted = true

	snap := c.snapshotLocked()
	errs := c.rules(snap)
	if len(errs) > 0 {
		c.errs = errs
		c.mu.Unlock()
		c.log.Debug("local validation failed",
			zap.String("form", c.name),
			zap.Int("fields", len(errs)))
		c.sink.Error("Validation Error", "Please fix the errors in the form before submitting.")
		return ErrValidation
	}

	c.errs = make(map[string]string)
	c.inflight = true
	c.mu.Unlock()

	detail, err := c.action(ctx, snap)

	c.mu.Lock()
	c.inflight = false
	if err != nil {
		c.mergeServerErrorsLocked(err)
		c.mu.Unlock()
		c.log.Warn("submit failed",
			zap.String("form", c.name),
			zap.String("kind", catalog.KindOf(err).String()),
			zap.Error(err))
		title, text := failureDialog(err)
		c.sink.Error(title, text)
		return err
	}
	c.resetLocked()
	c.mu.Unlock()

	c.log.Info("submit succeeded", zap.String("form", c.name))
	c.sink.Success(c.successTitle, detail)
	return nil
}

// mergeServerErrorsLocked maps backend field errors onto form fields where
// the names correspond, applying the configured aliases.
func (c *Controller) mergeServerErrorsLocked(err error) {
	fields := catalog.FieldErrors(err)
	if len(fields) == 0 {
		return
	}
	for field, msg := range fields {
		if alias, ok := c.aliases[field]; ok {
			field = alias
		}
		c.errs[field] = msg
	}
}

// failureDialog maps the failure taxonomy onto the dialog shown to the user.
func failureDialog(err error) (title, text string) {
	var re *catalog.RequestError
	message := ""
	if errors.As(err, &re) {
		message = re.Message
	}
	switch catalog.KindOf(err) {
	case catalog.KindValidation:
		if message == "" {
			message = "Please check your input and try again."
		}
		return "Validation Error", message
	case catalog.KindServer:
		return "Server Error", "Something went wrong on our end. Please try again later."
	case catalog.KindUnreachable:
		return "Network Error", "Unable to connect to the server. Please check your internet connection."
	default:
		if message == "" {
			message = "An unexpected error occurred. Please try again."
		}
		return "Error", message
	}
}
