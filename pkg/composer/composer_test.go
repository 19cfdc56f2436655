package composer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/homedash/homedash/internal/utils"
	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/datetime"
	"github.com/homedash/homedash/pkg/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitterStub struct {
	err     error
	created []calendar.Draft
	updated []string
}

func (s *submitterStub) Create(_ context.Context, d calendar.Draft) (calendar.Event, error) {
	if s.err != nil {
		return calendar.Event{}, s.err
	}
	s.created = append(s.created, d)
	return calendar.Event{ID: "new", Summary: d.Summary}, nil
}

func (s *submitterStub) Update(_ context.Context, e calendar.Event, d calendar.Draft) (calendar.Event, error) {
	if s.err != nil {
		return calendar.Event{}, s.err
	}
	s.updated = append(s.updated, calendar.EditTarget(e))
	return calendar.Event{ID: calendar.EditTarget(e), Summary: d.Summary}, nil
}

func setup(t *testing.T) (*Composer, *submitterStub, *time.Location) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	clock := &utils.MockClock{FixedNow: time.Date(2024, 2, 1, 14, 10, 0, 0, loc)}
	submitter := &submitterStub{}
	return New(submitter, clock, loc, Config{NewDuration: 30 * time.Minute, AdjustDuration: time.Hour}), submitter, loc
}

func TestOpenAdd(t *testing.T) {
	c, _, _ := setup(t)
	require.Equal(t, Closed, c.State())

	c.OpenAdd()

	assert.Equal(t, Creating, c.State())
	assert.Equal(t, "", c.Draft().Summary)
	assert.Equal(t, "2024-02-01T14:30", c.Draft().Start)
	assert.Equal(t, "2024-02-01T15:00", c.Draft().End)
	assert.False(t, c.Draft().AllDay)
	assert.Equal(t, recurrence.NoRule, c.Draft().Rule())
	assert.True(t, c.RecurrenceEditable())
	assert.False(t, c.CanSubmit())
}

func TestOpenAdd_ResetsPreviousDraft(t *testing.T) {
	c, _, _ := setup(t)
	c.OpenAdd()
	require.NoError(t, c.SetSummary("Old"))
	require.NoError(t, c.SetRecurrence(recurrence.Rule{Frequency: recurrence.Daily, Interval: 2}))

	c.OpenAdd()

	assert.Equal(t, "", c.Draft().Summary)
	assert.Equal(t, recurrence.NoRule, c.Draft().Rule())
}

func TestCreateWeeklyTrash(t *testing.T) {
	// given
	c, submitter, _ := setup(t)
	c.OpenAdd()
	require.NoError(t, c.SetSummary("Trash"))

	// when the start is moved with the picker
	require.NoError(t, c.SetStartFields(datetime.EditFields{Date: "2024-01-01", Hour: "08", Minute: "00", Meridiem: datetime.AM}))
	require.NoError(t, c.SetRecurrence(recurrence.Rule{Frequency: recurrence.Weekly, Interval: 1}))

	// then the end follows one hour later
	assert.Equal(t, "2024-01-01T08:00", c.Draft().Start)
	assert.Equal(t, "2024-01-01T09:00", c.Draft().End)
	require.True(t, c.CanSubmit())

	event, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "new", event.ID)
	assert.Equal(t, Closed, c.State())
	require.Len(t, submitter.created, 1)
	assert.Equal(t, "Repeats weekly", recurrence.Describe(submitter.created[0].Rule()))
	encoded, ok := recurrence.Encode(submitter.created[0].Rule())
	assert.True(t, ok)
	assert.Equal(t, "RRULE:FREQ=WEEKLY;INTERVAL=1", encoded)
}

func TestEndCanBeOverriddenAfterStartMoved(t *testing.T) {
	c, _, _ := setup(t)
	c.OpenAdd()
	require.NoError(t, c.SetStartFields(datetime.EditFields{Date: "2024-01-01", Hour: "11", Minute: "45", Meridiem: datetime.PM}))
	assert.Equal(t, "2024-01-02T00:45", c.Draft().End)

	require.NoError(t, c.SetEndFields(datetime.EditFields{Date: "2024-01-01", Hour: "11", Minute: "59", Meridiem: datetime.PM}))

	assert.Equal(t, "2024-01-01T23:45", c.Draft().Start)
	assert.Equal(t, "2024-01-01T23:59", c.Draft().End)
}

func TestSetAllDay(t *testing.T) {
	c, _, _ := setup(t)
	c.OpenAdd()
	require.NoError(t, c.SetStart("2024-02-01T14:30"))
	require.NoError(t, c.SetEnd("2024-02-01T15:00"))

	require.NoError(t, c.SetAllDay(true))
	assert.Equal(t, "2024-02-01", c.Draft().Start)
	assert.Equal(t, "2024-02-01", c.Draft().End)
	assert.True(t, c.Draft().AllDay)

	require.NoError(t, c.SetAllDay(false))
	assert.Equal(t, "2024-02-01T14:30", c.Draft().Start)
	assert.Equal(t, "2024-02-01T15:00", c.Draft().End)
	assert.False(t, c.Draft().AllDay)
}

func TestSubmitDisallowedWhileIncomplete(t *testing.T) {
	c, submitter, _ := setup(t)
	c.OpenAdd()

	_, err := c.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, Creating, c.State())
	assert.Empty(t, submitter.created)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	c, submitter, _ := setup(t)
	submitter.err = errors.New("Failed to create event")
	c.OpenAdd()
	require.NoError(t, c.SetSummary("Dentist"))

	_, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, Creating, c.State())
	assert.Equal(t, "Dentist", c.Draft().Summary)
	assert.Equal(t, err, c.Err())
}

func TestEditOccurrence(t *testing.T) {
	c, submitter, loc := setup(t)
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, loc)
	occ := calendar.Event{
		ID:      "S1_20240601T060000Z",
		Summary: "Gym",
		When:    calendar.Timed{Start: start, End: start.Add(time.Hour)},
		Series:  &calendar.SeriesRef{MasterID: "S1"},
	}

	c.OpenEdit(occ)

	assert.Equal(t, Editing, c.State())
	assert.Equal(t, "2024-06-01T08:00", c.Draft().Start)
	assert.False(t, c.RecurrenceEditable())
	assert.ErrorIs(t, c.SetRecurrence(recurrence.Rule{Frequency: recurrence.Daily, Interval: 1}), ErrRecurrenceNotEditable)
	assert.Equal(t, calendar.SeriesNotice, c.SeriesNotice())
	assert.Equal(t, []calendar.Scope{calendar.ScopeSingle, calendar.ScopeFuture, calendar.ScopeSeries}, c.DeleteScopes())

	fields, err := c.StartFields()
	require.NoError(t, err)
	assert.Equal(t, datetime.EditFields{Date: "2024-06-01", Hour: "08", Minute: "00", Meridiem: datetime.AM}, fields)

	require.NoError(t, c.SetSummary("Pool"))
	event, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, submitter.updated)
	assert.Equal(t, "S1", event.ID)
	assert.Equal(t, Closed, c.State())
}

func TestEditSingletonHasNoSeriesNotice(t *testing.T) {
	c, _, _ := setup(t)

	c.OpenEdit(calendar.Event{ID: "E1", Summary: "Trip", When: calendar.AllDay{Start: "2024-03-10", End: "2024-03-13"}})

	assert.Equal(t, "", c.SeriesNotice())
	assert.Equal(t, "2024-03-12", c.Draft().End)
	assert.Equal(t, []calendar.Scope{calendar.ScopeSingle}, c.DeleteScopes())
}

func TestCancelDiscardsDraft(t *testing.T) {
	c, submitter, _ := setup(t)
	c.OpenAdd()
	require.NoError(t, c.SetSummary("Never saved"))

	c.Cancel()

	assert.Equal(t, Closed, c.State())
	assert.Equal(t, calendar.Draft{}, c.Draft())
	assert.Empty(t, submitter.created)
	assert.ErrorIs(t, c.SetSummary("x"), ErrNotOpen)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestComposerWithStore(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	remote := calendar.NewStubCalendar(loc)
	store := calendar.NewStore(calendar.NewService(calendar.Static(remote), loc))
	require.NoError(t, store.Load(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Date(2024, 1, 22, 0, 0, 0, 0, loc)))
	clock := &utils.MockClock{FixedNow: time.Date(2023, 12, 31, 20, 0, 0, 0, loc)}
	c := New(store, clock, loc, Config{})
	c.OpenAdd()
	require.NoError(t, c.SetSummary("Trash"))
	require.NoError(t, c.SetStartFields(datetime.EditFields{Date: "2024-01-01", Hour: "08", Minute: "00", Meridiem: datetime.AM}))
	require.NoError(t, c.SetRecurrence(recurrence.Rule{Frequency: recurrence.Weekly, Interval: 1}))

	_, err = c.Submit(context.Background())

	require.NoError(t, err)
	events := store.Events()
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, "Trash", e.Summary)
		assert.Equal(t, calendar.SeriesOccurrence, e.Kind())
	}
}

func TestSubmitSucceedsWhenReloadFails(t *testing.T) {
	// given a loaded store whose next list call times out
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	remote := calendar.NewStubCalendar(loc)
	store := calendar.NewStore(calendar.NewService(calendar.Static(remote), loc))
	from, to := time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Date(2024, 1, 8, 0, 0, 0, 0, loc)
	require.NoError(t, store.Load(context.Background(), from, to))
	remote.BeforeList = func(context.Context) error { return errors.New("list timed out") }
	clock := &utils.MockClock{FixedNow: time.Date(2024, 1, 2, 7, 40, 0, 0, loc)}
	c := New(store, clock, loc, Config{})
	c.OpenAdd()
	require.NoError(t, c.SetSummary("Trash"))

	// when
	event, err := c.Submit(context.Background())

	// then the created event is reported and the composer closes
	require.NoError(t, err)
	assert.Equal(t, Closed, c.State())
	_, stored := remote.Get(event.ID)
	assert.True(t, stored)
	assert.Error(t, store.ReloadErr())

	remote.BeforeList = nil
	events, err := remote.ListEvents(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
