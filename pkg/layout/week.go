package layout

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type WeekNumber struct {
	Week int
	Year int
}

// StartOfWeek returns midnight of the Monday of the week containing date, in date's zone.
func StartOfWeek(date time.Time) time.Time {
	delta := (int(date.Weekday()) - int(time.Monday) + 7) % 7
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day.AddDate(0, 0, -delta)
}

// WeekNumberFromDate returns the ISO week of the Monday-started week containing date.
func WeekNumberFromDate(date time.Time) WeekNumber {
	year, week := StartOfWeek(date).ISOWeek()
	return WeekNumber{Year: year, Week: week}
}

// WeekNumberFromString converts ISO 8601 week format, e.g. "2025-W03".
func WeekNumberFromString(isoWeekString string) (WeekNumber, error) {
	parts := strings.Split(isoWeekString, "-")
	if len(parts) != 2 || len(parts[1]) < 2 || parts[1][0] != 'W' {
		return WeekNumber{}, fmt.Errorf("invalid ISO week format: %s", isoWeekString)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return WeekNumber{}, fmt.Errorf("invalid year: %w", err)
	}
	week, err := strconv.Atoi(parts[1][1:])
	if err != nil || week < 1 || week > 53 {
		return WeekNumber{}, fmt.Errorf("invalid week: %s", parts[1])
	}
	return WeekNumber{Year: year, Week: week}, nil
}

// Monday returns midnight of the week's Monday in loc.
func (w WeekNumber) Monday(loc *time.Location) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, loc)
	return StartOfWeek(jan4).AddDate(0, 0, (w.Week-1)*7)
}

// String returns the ISO week format ISO 8601 e.g. "2025-W03"
func (w WeekNumber) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}
