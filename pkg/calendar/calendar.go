package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNeedsSetup = errors.New("calendar credentials are not configured")
var ErrEventNotFound = errors.New("event not found")

// Remote is the calendar service the engine talks to. ListEvents returns occurrences
// already expanded for the window.
type Remote interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, input EventInput) (Event, error)
	UpdateEvent(ctx context.Context, id string, input EventInput) (Event, error)
	DeleteEvent(ctx context.Context, target DeleteTarget) error
}

// RemoteProvider hands out a Remote, or ErrNeedsSetup when no credentials exist.
type RemoteProvider interface {
	Remote(ctx context.Context) (Remote, error)
}

// DeleteTarget is either a single id (an occurrence, a singleton, or a whole series) or,
// when From is set, a series truncated so that no occurrence starts at or after From.
type DeleteTarget struct {
	ID       string
	SeriesID string
	From     time.Time
	// FromDate is set instead of From when the boundary occurrence is all-day.
	FromDate string
}

func (t DeleteTarget) Truncates() bool {
	return t.SeriesID != "" && (!t.From.IsZero() || t.FromDate != "")
}

// ValidationError is a user-facing input problem, detected before any remote call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError is a remote failure. Message is safe to show; Err holds the cause.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
