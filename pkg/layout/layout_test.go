package layout

import (
	"testing"
	"time"

	"github.com/homedash/homedash/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timed(id string, start time.Time, d time.Duration) calendar.Event {
	return calendar.Event{ID: id, Summary: id, When: calendar.Timed{Start: start, End: start.Add(d)}}
}

func allDay(id, start, end string) calendar.Event {
	return calendar.Event{ID: id, Summary: id, When: calendar.AllDay{Start: start, End: end}}
}

func keys(events []calendar.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestBucketByDay_AllDayStaysOnItsDateInEveryZone(t *testing.T) {
	zones := []string{"America/New_York", "Pacific/Honolulu", "UTC", "Europe/Warsaw", "Asia/Tokyo", "Pacific/Kiritimati"}
	for _, name := range zones {
		t.Run(name, func(t *testing.T) {
			loc, err := time.LoadLocation(name)
			require.NoError(t, err)
			events := []calendar.Event{allDay("H1", "2024-03-10", "2024-03-11")}
			start := time.Date(2024, 3, 4, 0, 0, 0, 0, loc)

			buckets := BucketByDay(events, start, start.AddDate(0, 0, 14), loc)

			assert.Equal(t, map[string][]calendar.Event{"2024-03-10": events}, buckets)
		})
	}
}

func TestBucketByDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, loc)
	events := []calendar.Event{
		timed("late", day.Add(20*time.Hour), time.Hour),
		timed("tie-1", day.Add(9*time.Hour), time.Hour),
		allDay("all-day", "2024-03-12", "2024-03-13"),
		timed("tie-2", day.Add(9*time.Hour), 30*time.Minute),
		timed("early", day.Add(7*time.Hour), time.Hour),
		timed("utc-next-day", time.Date(2024, 3, 13, 2, 0, 0, 0, time.UTC), time.Hour),
		timed("before-range", day.Add(-time.Minute), time.Hour),
		timed("at-range-end", day.AddDate(0, 0, 2), time.Hour),
	}

	buckets := BucketByDay(events, day, day.AddDate(0, 0, 2), loc)

	assert.Equal(t, []string{"early", "tie-1", "tie-2", "all-day", "late", "utc-next-day"}, keys(buckets["2024-03-12"]))
	assert.Len(t, buckets, 1)
}

func TestTimeLabel(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	start := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, "09:00 - 10:30", TimeLabel(timed("a", start, 90*time.Minute), loc))
	assert.Equal(t, "09:00", TimeLabel(timed("a", start, 0), loc))
	assert.Equal(t, AllDayLabel, TimeLabel(allDay("a", "2024-03-10", "2024-03-11"), loc))
	assert.Equal(t, AllDayLabel, TimeLabel(allDay("a", "2024-03-10", "2024-03-17"), loc))
}
