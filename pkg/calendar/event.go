package calendar

import (
	"time"

	"github.com/homedash/homedash/pkg/datetime"
)

// When is either Timed or AllDay.
type When interface {
	IsAllDay() bool
	// Anchor is the instant used to place the event on a day and order it within the day.
	// All-day events anchor at noon of their start date in loc so that no UTC offset can
	// move them to a neighbouring day.
	Anchor(loc *time.Location) time.Time
	when()
}

type Timed struct {
	Start time.Time
	End   time.Time
}

func (Timed) IsAllDay() bool { return false }

func (t Timed) Anchor(loc *time.Location) time.Time { return t.Start.In(loc) }

func (Timed) when() {}

// AllDay holds calendar dates. End is exclusive, as on the wire.
type AllDay struct {
	Start string
	End   string
}

func (AllDay) IsAllDay() bool { return true }

func (a AllDay) Anchor(loc *time.Location) time.Time {
	d, err := datetime.ParseDate(a.Start)
	if err != nil {
		return time.Time{}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc)
}

func (AllDay) when() {}

// InclusiveEnd returns the last day the event covers.
func (a AllDay) InclusiveEnd() string {
	end, err := datetime.ToInclusiveEndDate(a.End)
	if err != nil || end < a.Start {
		return a.Start
	}
	return end
}

// SeriesRef points an expanded occurrence at its series master.
type SeriesRef struct {
	MasterID string
}

type Kind int

const (
	Singleton Kind = iota
	SeriesMaster
	SeriesOccurrence
)

type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	When        When
	// Recurrence is set on series masters only.
	Recurrence []string
	// Series is set on expanded occurrences only.
	Series *SeriesRef
}

func (e Event) Kind() Kind {
	if e.Series != nil {
		return SeriesOccurrence
	}
	if len(e.Recurrence) > 0 {
		return SeriesMaster
	}
	return Singleton
}

func (e Event) IsAllDay() bool {
	return e.When != nil && e.When.IsAllDay()
}

func (e Event) Anchor(loc *time.Location) time.Time {
	if e.When == nil {
		return time.Time{}
	}
	return e.When.Anchor(loc)
}

// MasterID is the id of the series this event belongs to, or "".
func (e Event) MasterID() string {
	if e.Series != nil {
		return e.Series.MasterID
	}
	if len(e.Recurrence) > 0 {
		return e.ID
	}
	return ""
}

// EventInput is the payload for create and update calls. Recurrence is only honoured on
// create.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	When        When
	Recurrence  []string
}
