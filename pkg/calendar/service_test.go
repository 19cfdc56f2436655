package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, *StubCalendar, *time.Location) {
	cal, loc := seededCalendar(t)
	return NewService(Static(cal), loc), cal, loc
}

func TestParseRange(t *testing.T) {
	_, _, err := ParseRange("", "2024-03-16T00:00:00Z")
	assert.EqualError(t, err, "timeMin and timeMax are required")

	_, _, err = ParseRange("2024-03-09", "2024-03-16T00:00:00Z")
	assert.EqualError(t, err, "Invalid timeMin")

	_, _, err = ParseRange("2024-03-16T00:00:00Z", "2024-03-09T00:00:00Z")
	assert.EqualError(t, err, "timeMax must be after timeMin")

	from, to, err := ParseRange("2024-03-09T00:00:00Z", "2024-03-16T00:00:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC), to.UTC())
}

type unorderedRemote struct {
	StubCalendar
	events []Event
}

func (r *unorderedRemote) ListEvents(context.Context, time.Time, time.Time) ([]Event, error) {
	return append([]Event(nil), r.events...), nil
}

func TestService_EventsSortsStablyByAnchor(t *testing.T) {
	loc := warsaw(t)
	nine := time.Date(2024, 3, 12, 9, 0, 0, 0, loc)
	remote := &unorderedRemote{events: []Event{
		{ID: "late", When: Timed{Start: nine.Add(3 * time.Hour), End: nine.Add(4 * time.Hour)}},
		{ID: "tie-b", When: Timed{Start: nine, End: nine.Add(time.Hour)}},
		{ID: "allday", When: AllDay{Start: "2024-03-12", End: "2024-03-13"}},
		{ID: "tie-a", When: Timed{Start: nine.UTC(), End: nine.Add(time.Hour)}},
		{ID: "early", When: Timed{Start: nine.AddDate(0, 0, -1), End: nine.AddDate(0, 0, -1)}},
	}}
	service := NewService(Static(remote), loc)

	events, err := service.Events(context.Background(), nine.AddDate(0, 0, -2), nine.AddDate(0, 0, 2))

	require.NoError(t, err)
	assert.Equal(t, []string{"early", "tie-b", "tie-a", "allday", "late"}, ids(events))
}

func TestService_NeedsSetup(t *testing.T) {
	service := NewService(Static(nil), time.UTC)

	_, err := service.Events(context.Background(), time.Now(), time.Now().Add(time.Hour))

	assert.ErrorIs(t, err, ErrNeedsSetup)
}

func TestService_UpstreamFailuresAreGeneric(t *testing.T) {
	service, cal, _ := setupService(t)
	cause := errors.New("googleapi: Error 500: backend exploded")
	cal.Err = cause
	draft := Draft{Summary: "a", Start: "2024-01-01T08:00", End: "2024-01-01T09:00"}

	tests := []struct {
		name    string
		call    func() error
		message string
	}{
		{"list", func() error {
			_, err := service.Events(context.Background(), time.Now(), time.Now().Add(time.Hour))
			return err
		}, "Failed to load events"},
		{"create", func() error {
			_, err := service.CreateEvent(context.Background(), draft)
			return err
		}, "Failed to create event"},
		{"update", func() error {
			_, err := service.UpdateEvent(context.Background(), "S1", draft)
			return err
		}, "Failed to update event"},
		{"delete", func() error {
			return service.DeleteEvent(context.Background(), DeletionRequest{Scope: ScopeSingle, ID: "S1"})
		}, "Failed to delete event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()

			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, tt.message, upstream.Message)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestService_ValidationHappensBeforeRemoteCalls(t *testing.T) {
	service, cal, _ := setupService(t)
	cal.Err = errors.New("must not be called")

	_, err := service.CreateEvent(context.Background(), Draft{Summary: "a", Start: "garbage", End: "2024-01-01T09:00"})
	assert.EqualError(t, err, "Invalid start date")

	_, err = service.UpdateEvent(context.Background(), "", Draft{})
	assert.EqualError(t, err, "Event id is required")

	err = service.DeleteEvent(context.Background(), DeletionRequest{Scope: ScopeFuture, RecurringEventID: "S1"})
	assert.EqualError(t, err, "Occurrence start is required")

	assert.Empty(t, cal.Deleted)
	assert.Empty(t, cal.Updated)
}
