package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/catalog"
	"shopfront/internal/notify"
	"shopfront/internal/validate"
)

func newTestController(t *testing.T, action Action) (*Controller, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	ctrl := NewController(Config{
		Name:         "login",
		DefaultFlags: map[string]bool{validate.FieldRememberMe: false},
		Rules:        validate.Login,
		Action:       action,
		SuccessTitle: "Login Successful!",
		Sink:         rec,
	})
	return ctrl, rec
}

func fillValid(ctrl *Controller) {
	ctrl.SetField(validate.FieldEmail, "ada@example.com")
	ctrl.SetField(validate.FieldPassword, "hunter22")
}

func TestSubmit_LocalValidationFailure(t *testing.T) {
	called := 0
	ctrl, rec := newTestController(t, func(ctx context.Context, s validate.Snapshot) (string, error) {
		called++
		return "", nil
	})

	err := ctrl.Submit(context.Background())
	require.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, called, "action must not run when local validation fails")
	assert.True(t, ctrl.Submitted())
	assert.Equal(t, "Email is required", ctrl.FieldError(validate.FieldEmail))
	assert.Equal(t, "Password is required", ctrl.FieldError(validate.FieldPassword))

	events := rec.Events()
	require.Len(t, events, 1, "exactly one sink call per attempt")
	assert.Equal(t, notify.LevelError, events[0].Level)
	assert.Equal(t, "Validation Error", events[0].Title)
	assert.Equal(t, "Please fix the errors in the form before submitting.", events[0].Text)
}

func TestSubmit_SuccessResetsForm(t *testing.T) {
	ctrl, rec := newTestController(t, func(ctx context.Context, s validate.Snapshot) (string, error) {
		return "Welcome back!", nil
	})
	fillValid(ctrl)
	ctrl.SetFlag(validate.FieldRememberMe, true)

	require.NoError(t, ctrl.Submit(context.Background()))

	assert.Empty(t, ctrl.Value(validate.FieldEmail), "values reset to defaults on success")
	assert.False(t, ctrl.Flag(validate.FieldRememberMe), "flags reset to defaults on success")
	assert.False(t, ctrl.Submitted())
	assert.Empty(t, ctrl.Errors())

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.Event{
		Level: notify.LevelSuccess,
		Title: "Login Successful!",
		Text:  "Welcome back!",
	}, events[0])
}

func TestSubmit_ActionSeesSnapshot(t *testing.T) {
	var seen string
	var remember bool
	ctrl, _ := newTestController(t, func(ctx context.Context, s validate.Snapshot) (string, error) {
		seen = s.Value(validate.FieldEmail)
		remember = s.Flag(validate.FieldRememberMe)
		return "ok", nil
	})
	fillValid(ctrl)
	ctrl.SetFlag(validate.FieldRememberMe, true)

	require.NoError(t, ctrl.Submit(context.Background()))
	assert.Equal(t, "ada@example.com", seen)
	assert.True(t, remember)
}

func TestSubmit_InFlightGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	ctrl, rec := newTestController(t, func(ctx context.Context, s validate.Snapshot) (string, error) {
		close(entered)
		<-release
		return "done", nil
	})
	fillValid(ctrl)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, ctrl.Submit(context.Background()))
	}()

	<-entered
	assert.True(t, ctrl.InFlight())

	// A second attempt while the first is running is rejected without
	// touching the sink.
	err := ctrl.Submit(context.Background())
	require.ErrorIs(t, err, ErrInFlight)

	close(release)
	wg.Wait()

	assert.False(t, ctrl.InFlight())
	events := rec.Events()
	require.Len(t, events, 1, "only the first attempt reports")
	assert.Equal(t, notify.LevelSuccess, events[0].Level)
}

func TestSubmit_ServerValidationMergesFields(t *testing.T) {
	serverErr := &catalog.RequestError{
		Kind:    catalog.KindValidation,
		Status:  422,
		Message: "The given data was invalid.",
		Fields: map[string]string{
			"email": "The email has already been taken.",
		},
	}
	ctrl, rec := newTestController(t, func(ctx context.Context, s validate.Snapshot) (string, error) {
		return "", serverErr
	})
	fillValid(ctrl)

	err := ctrl.Submit(context.Background())
	require.ErrorIs(t, err, serverErr)

	assert.Equal(t, "The email has already been taken.", ctrl.FieldError(validate.FieldEmail))
	assert.False(t, ctrl.InFlight())

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.LevelError, events[0].Level)
	assert.Equal(t, "Validation Error", events[0].Title)
	assert.Equal(t, "The given data was invalid.", events[0].Text)
}

func TestSubmit_FieldAliasRemapsServerError(t *testing.T) {
	rec := &notify.Recorder{}
	ctrl := NewController(Config{
		Name:         "register",
		Rules:        func(validate.Snapshot) validate.Errors { return nil },
		FieldAliases: map[string]string{"name": validate.FieldFirstName},
		Action: func(ctx context.Context, s validate.Snapshot) (string, error) {
			return "", &catalog.RequestError{
				Kind:    catalog.KindValidation,
				Status:  422,
				Message: "The given data was invalid.",
				Fields:  map[string]string{"name": "The name field is required."},
			}
		},
		Sink: rec,
	})

	require.Error(t, ctrl.Submit(context.Background()))
	assert.Equal(t, "The name field is required.", ctrl.FieldError(validate.FieldFirstName))
	assert.Empty(t, ctrl.FieldError("name"))
}

func TestSubmit_FailureDialogsByKind(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantTitle string
		wantText  string
	}{
		{
			name:      "unreachable",
			err:       &catalog.RequestError{Kind: catalog.KindUnreachable, Err: errors.New("dial tcp: refused")},
			wantTitle: "Network Error",
			wantText:  "Unable to connect to the server. Please check your internet connection.",
		},
		{
			name:      "server",
			err:       &catalog.RequestError{Kind: catalog.KindServer, Status: 500, Message: "boom"},
			wantTitle: "Server Error",
			wantText:  "Something went wrong on our end. Please try again later.",
		},
		{
			name:      "unknown",
			err:       errors.New("something odd"),
			wantTitle: "Error",
			wantText:  "An unexpected error occurred. Please try again.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, rec := newTestController(t, func(ctx context.Context, s validate.Snapshot) (string, error) {
				return "", tc.err
			})
			fillValid(ctrl)

			require.Error(t, ctrl.Submit(context.Background()))
			last := rec.Last()
			assert.Equal(t, notify.LevelError, last.Level)
			assert.Equal(t, tc.wantTitle, last.Title)
			assert.Equal(t, tc.wantText, last.Text)
		})
	}
}

func TestSetField_ClearsErrorOptimistically(t *testing.T) {
	ctrl, _ := newTestController(t, func(ctx context.Context, s validate.Snapshot) (string, error) {
		return "", nil
	})

	require.ErrorIs(t, ctrl.Submit(context.Background()), ErrValidation)
	require.NotEmpty(t, ctrl.FieldError(validate.FieldEmail))

	// Typing anything clears the field's error without re-validating, even
	// if the new value is still invalid.
	ctrl.SetField(validate.FieldEmail, "still-not-an-email")
	assert.Empty(t, ctrl.FieldError(validate.FieldEmail))
	assert.NotEmpty(t, ctrl.FieldError(validate.FieldPassword), "other fields keep their errors")
}

func TestReset_RestoresDefaults(t *testing.T) {
	rec := &notify.Recorder{}
	ctrl := NewController(Config{
		Name:          "product",
		DefaultValues: map[string]string{validate.FieldAvailableQuantity: "0"},
		Rules:         validate.Product,
		Action: func(ctx context.Context, s validate.Snapshot) (string, error) {
			return "", nil
		},
		Sink: rec,
	})

	ctrl.SetField(validate.FieldName, "Widget")
	ctrl.SetField(validate.FieldAvailableQuantity, "7")
	require.ErrorIs(t, ctrl.Submit(context.Background()), ErrValidation)

	ctrl.Reset()
	assert.Empty(t, ctrl.Value(validate.FieldName))
	assert.Equal(t, "0", ctrl.Value(validate.FieldAvailableQuantity))
	assert.False(t, ctrl.Submitted())
	assert.Empty(t, ctrl.Errors())
}
