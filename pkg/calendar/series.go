package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/homedash/homedash/pkg/datetime"
	"github.com/teambition/rrule-go"
)

const rrulePrefix = "RRULE:"

func isRRule(line string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), rrulePrefix)
}

func ruleBody(line string) string {
	line = strings.TrimSpace(line)
	return line[len(rrulePrefix):]
}

// TruncateRecurrence rewrites every RRULE line so the series ends before boundary. COUNT is
// dropped in favour of UNTIL. Other lines (EXDATE, RDATE) are kept as they are.
func TruncateRecurrence(lines []string, boundary time.Time) ([]string, error) {
	until := boundary.Add(-time.Second).UTC()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !isRRule(line) {
			out = append(out, line)
			continue
		}
		opt, err := rrule.StrToROption(ruleBody(line))
		if err != nil {
			return nil, fmt.Errorf("unable to parse recurrence %q: %w", line, err)
		}
		opt.Count = 0
		if opt.Until.IsZero() || opt.Until.After(until) {
			opt.Until = until
		}
		out = append(out, rrulePrefix+opt.RRuleString())
	}
	return out, nil
}

// BoundaryInstant resolves a truncation target to an instant in loc.
func BoundaryInstant(target DeleteTarget, loc *time.Location) (time.Time, error) {
	if target.FromDate == "" {
		return target.From, nil
	}
	d, err := datetime.ParseDate(target.FromDate)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}

// expandSeries lists the occurrence starts of a series master between from and to.
func expandSeries(lines []string, dtstart time.Time, from, to time.Time) ([]time.Time, error) {
	var set rrule.Set
	found := false
	for _, line := range lines {
		if !isRRule(line) {
			continue
		}
		r, err := rrule.StrToRRule(ruleBody(line))
		if err != nil {
			return nil, fmt.Errorf("unable to parse recurrence %q: %w", line, err)
		}
		r.DTStart(dtstart)
		set.RRule(r)
		found = true
	}
	if !found {
		return nil, nil
	}
	return set.Between(from, to, true), nil
}
