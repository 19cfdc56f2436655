package recurrence

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Frequency string

const (
	None    Frequency = "none"
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Rule is the structured recurrence used by the composer. A Rule with Frequency None
// means the event does not repeat; it is never encoded.
type Rule struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval"`
}

var NoRule = Rule{Frequency: None, Interval: 1}

var (
	freqPattern     = regexp.MustCompile(`(?i)(?:^|[;:])FREQ=([A-Z]+)`)
	intervalPattern = regexp.MustCompile(`(?i)(?:^|[;:])INTERVAL=([^;]*)`)
)

var units = map[Frequency]string{
	Daily:   "day",
	Weekly:  "week",
	Monthly: "month",
}

// ParseFrequency maps user input onto a known frequency. Unknown values become None.
func ParseFrequency(s string) Frequency {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily
	case Weekly:
		return Weekly
	case Monthly:
		return Monthly
	default:
		return None
	}
}

func (f Frequency) valid() bool {
	_, ok := units[f]
	return ok
}

// Encode renders the rule as a single RRULE line. It returns ok=false when the
// rule does not repeat.
func Encode(r Rule) (string, bool) {
	if !r.Frequency.valid() {
		return "", false
	}
	return fmt.Sprintf("RRULE:FREQ=%s;INTERVAL=%d", strings.ToUpper(string(r.Frequency)), clampInterval(float64(r.Interval))), true
}

// NewRule builds a rule from an unrounded interval, e.g. numeric form input. The
// interval is rounded and clamped to at least 1.
func NewRule(f Frequency, interval float64) Rule {
	return Rule{Frequency: f, Interval: clampInterval(interval)}
}

// EncodeFractional is Encode for callers holding an unrounded interval.
func EncodeFractional(f Frequency, interval float64) (string, bool) {
	return Encode(NewRule(f, interval))
}

func clampInterval(interval float64) int {
	if math.IsNaN(interval) {
		return 1
	}
	n := int(math.Round(interval))
	if n < 1 {
		return 1
	}
	return n
}

// Decode extracts frequency and interval from a rule string. Any other rule parts
// (UNTIL, COUNT, BYDAY...) are ignored. Unrecognized input decodes to NoRule.
func Decode(rule string) Rule {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return NoRule
	}
	m := freqPattern.FindStringSubmatch(rule)
	if m == nil {
		return NoRule
	}
	freq := Frequency(strings.ToLower(m[1]))
	if !freq.valid() {
		return NoRule
	}

	interval := 1
	if im := intervalPattern.FindStringSubmatch(rule); im != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(im[1])); err == nil && n >= 1 {
			interval = n
		}
	}
	return Rule{Frequency: freq, Interval: interval}
}

// DecodeFirst decodes the first RRULE line of a recurrence list, skipping EXDATE/RDATE lines.
func DecodeFirst(lines []string) Rule {
	for _, line := range lines {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "RRULE:") {
			return Decode(line)
		}
	}
	if len(lines) > 0 {
		return Decode(lines[0])
	}
	return NoRule
}

// Describe returns a short human description, or "" when the rule does not repeat.
func Describe(r Rule) string {
	unit, ok := units[r.Frequency]
	if !ok {
		return ""
	}
	if r.Interval <= 1 {
		return "Repeats " + string(r.Frequency)
	}
	return fmt.Sprintf("Repeats every %d %ss", r.Interval, unit)
}
