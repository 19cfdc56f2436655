package layout

import (
	"fmt"
	"sort"
	"time"

	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/datetime"
)

const (
	AllDayLabel = "All day"
	FreeLabel   = "Free"
)

// Entry is an event as shown in a grid cell.
type Entry struct {
	Event calendar.Event
	Label string
}

// DayKey is the calendar date an instant falls on in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(datetime.DateLayout)
}

// BucketByDay groups the events anchored in [rangeStart, rangeEnd) by calendar day in loc.
// Within a day events are ordered by anchor; equal anchors keep their input order.
func BucketByDay(events []calendar.Event, rangeStart, rangeEnd time.Time, loc *time.Location) map[string][]calendar.Event {
	buckets := map[string][]calendar.Event{}
	for _, e := range events {
		anchor := e.Anchor(loc)
		if anchor.IsZero() || anchor.Before(rangeStart) || !anchor.Before(rangeEnd) {
			continue
		}
		key := DayKey(anchor, loc)
		buckets[key] = append(buckets[key], e)
	}
	for _, day := range buckets {
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].Anchor(loc).Before(day[j].Anchor(loc))
		})
	}
	return buckets
}

// TimeLabel is "All day" for all-day events, whatever they span, and the local time range
// otherwise.
func TimeLabel(e calendar.Event, loc *time.Location) string {
	timed, ok := e.When.(calendar.Timed)
	if !ok {
		return AllDayLabel
	}
	start, end := timed.Start.In(loc), timed.End.In(loc)
	if !end.After(start) {
		return start.Format("15:04")
	}
	return fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04"))
}

func entries(events []calendar.Event, loc *time.Location) []Entry {
	out := make([]Entry, 0, len(events))
	for _, e := range events {
		out = append(out, Entry{Event: e, Label: TimeLabel(e, loc)})
	}
	return out
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
