// Package datetime converts between the edit-friendly local representation used by the
// composer (date, 12-hour clock fields, all-day flag) and the wire representation sent to
// the calendar service (RFC3339 instants and calendar dates with exclusive end).
//
// Calendar-date arithmetic is done on UTC midnights so daylight-saving transitions in the
// viewer's zone never shift a date.
package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout       = "2006-01-02"
	LocalLayout      = "2006-01-02T15:04"
	localWithSeconds = "2006-01-02T15:04:05"
)

var ErrInvalidDate = errors.New("invalid date")

// Meridiem is AM or PM.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// EditFields is the decomposition of a timed instant for a segmented time picker.
type EditFields struct {
	Date     string   `json:"date"`
	Hour     string   `json:"hour"`
	Minute   string   `json:"minute"`
	Meridiem Meridiem `json:"meridiem"`
}

// Span is the start/end pair of a draft in edit representation: bare dates when AllDay,
// otherwise local date-times.
type Span struct {
	Start  string
	End    string
	AllDay bool
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func IsDateOnly(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}

// ParseLocal parses a local date-time string in loc. RFC3339 input keeps its own offset.
func ParseLocal(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{LocalLayout, localWithSeconds} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(LocalLayout)
}

// ToWireInstant converts a local date-time input into an RFC3339 instant.
func ToWireInstant(local string, loc *time.Location) (string, error) {
	t, err := ParseLocal(local, loc)
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}

// SplitForEditing decomposes an instant into 12-hour picker fields in loc. Minutes snap
// down to the quarter hour.
func SplitForEditing(instant time.Time, loc *time.Location) EditFields {
	local := instant.In(loc)
	hour := local.Hour()
	meridiem := AM
	if hour >= 12 {
		meridiem = PM
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return EditFields{
		Date:     local.Format(DateLayout),
		Hour:     fmt.Sprintf("%02d", hour12),
		Minute:   fmt.Sprintf("%02d", local.Minute()/15*15),
		Meridiem: meridiem,
	}
}

// ComposeFromEditing is the inverse of SplitForEditing. It returns a local date-time
// string with seconds dropped.
func ComposeFromEditing(f EditFields) (string, error) {
	date, err := ParseDate(f.Date)
	if err != nil {
		return "", err
	}
	hour, err := strconv.Atoi(strings.TrimSpace(f.Hour))
	if err != nil || hour < 1 || hour > 12 {
		return "", fmt.Errorf("%w: hour %q", ErrInvalidDate, f.Hour)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(f.Minute))
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: minute %q", ErrInvalidDate, f.Minute)
	}
	switch Meridiem(strings.ToUpper(string(f.Meridiem))) {
	case AM:
		if hour == 12 {
			hour = 0
		}
	case PM:
		if hour != 12 {
			hour += 12
		}
	default:
		return "", fmt.Errorf("%w: meridiem %q", ErrInvalidDate, f.Meridiem)
	}
	t := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	return t.Format(LocalLayout), nil
}

func addDays(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// ToExclusiveEndDate turns the inclusive last day of an all-day event into the wire end date.
func ToExclusiveEndDate(inclusive string) (string, error) {
	return addDays(inclusive, 1)
}

// ToInclusiveEndDate turns a wire end date back into the last day shown in the editor.
func ToInclusiveEndDate(exclusive string) (string, error) {
	return addDays(exclusive, -1)
}

// DatePart returns the YYYY-MM-DD prefix of a date or local date-time, or "".
func DatePart(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < len(DateLayout) {
		return ""
	}
	if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err != nil {
		return ""
	}
	return s[:len(DateLayout)]
}

// NextHalfHour rounds up to the next :00 or :30 strictly after now.
func NextHalfHour(now time.Time) time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	if now.Minute() < 30 {
		return base.Add(30 * time.Minute)
	}
	return base.Add(time.Hour)
}

// CoerceAllDayToggle applies the side effects of flipping the all-day switch. Turning it on
// truncates start and end to dates; turning it off gives bare dates the next half hour as
// time of day and newDuration as length.
func CoerceAllDayToggle(span Span, turningOn bool, now time.Time, newDuration time.Duration) Span {
	loc := now.Location()
	today := now.Format(DateLayout)
	if turningOn {
		start := DatePart(span.Start)
		if start == "" {
			start = today
		}
		end := DatePart(span.End)
		if end == "" {
			end = start
		}
		return Span{Start: start, End: end, AllDay: true}
	}

	out := Span{Start: span.Start, End: span.End, AllDay: false}
	slot := NextHalfHour(now)
	startDate := DatePart(span.Start)
	if startDate == "" {
		startDate = today
	}
	if IsDateOnly(span.Start) || span.Start == "" {
		d, _ := time.ParseInLocation(DateLayout, startDate, loc)
		start := time.Date(d.Year(), d.Month(), d.Day(), slot.Hour(), slot.Minute(), 0, 0, loc)
		out.Start = start.Format(LocalLayout)
	}
	if IsDateOnly(span.End) || span.End == "" {
		start, err := time.ParseInLocation(LocalLayout, out.Start, loc)
		if err != nil {
			return out
		}
		end := start.Add(newDuration)
		if endDate := DatePart(span.End); endDate > DatePart(out.Start) {
			d, _ := time.ParseInLocation(DateLayout, endDate, loc)
			end = time.Date(d.Year(), d.Month(), d.Day(), start.Hour(), start.Minute(), 0, 0, loc).Add(newDuration)
		}
		out.End = end.Format(LocalLayout)
	}
	return out
}

// AutoAdjustEnd recomputes the end of a timed event after its start changed. It accepts
// whatever ParseLocal does and works on wall-clock time. An unparseable start leaves
// previousEnd untouched.
func AutoAdjustEnd(newStart, previousEnd string, fixed time.Duration) string {
	start, err := ParseLocal(newStart, time.UTC)
	if err != nil {
		return previousEnd
	}
	return start.Add(fixed).Format(LocalLayout)
}
