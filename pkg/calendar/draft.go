package calendar

import (
	"strings"
	"time"

	"github.com/homedash/homedash/pkg/datetime"
	"github.com/homedash/homedash/pkg/recurrence"
)

// Draft is the add/edit form state. Start and End are bare dates when AllDay, local
// date-times otherwise. An all-day End is the inclusive last day.
type Draft struct {
	Summary             string
	Description         string
	Location            string
	Start               string
	End                 string
	AllDay              bool
	RecurrenceFrequency recurrence.Frequency
	RecurrenceInterval  int

	// original keeps the loaded timing so an unedited timed value is sent back as the
	// exact instant and offset it came with.
	original When
}

// NewDraft is the form state for "Add": next half hour start, newDuration long, no recurrence.
func NewDraft(now time.Time, newDuration time.Duration) Draft {
	start := datetime.NextHalfHour(now)
	return Draft{
		Start:               start.Format(datetime.LocalLayout),
		End:                 start.Add(newDuration).Format(datetime.LocalLayout),
		RecurrenceFrequency: recurrence.None,
		RecurrenceInterval:  1,
	}
}

// DraftFromEvent populates the form for editing e, rendering timed values in loc.
func DraftFromEvent(e Event, loc *time.Location) Draft {
	rule := recurrence.DecodeFirst(e.Recurrence)
	d := Draft{
		Summary:             e.Summary,
		Description:         e.Description,
		Location:            e.Location,
		RecurrenceFrequency: rule.Frequency,
		RecurrenceInterval:  rule.Interval,
		original:            e.When,
	}
	switch w := e.When.(type) {
	case AllDay:
		d.AllDay = true
		d.Start = w.Start
		d.End = w.InclusiveEnd()
	case Timed:
		d.Start = datetime.FormatLocal(w.Start, loc)
		d.End = datetime.FormatLocal(w.End, loc)
	}
	return d
}

// Ready reports whether the draft may be submitted.
func (d Draft) Ready() bool {
	return strings.TrimSpace(d.Summary) != "" && strings.TrimSpace(d.Start) != "" && strings.TrimSpace(d.End) != ""
}

func (d Draft) Span() datetime.Span {
	return datetime.Span{Start: d.Start, End: d.End, AllDay: d.AllDay}
}

func (d Draft) WithSpan(s datetime.Span) Draft {
	d.Start, d.End, d.AllDay = s.Start, s.End, s.AllDay
	return d
}

// Rule is the draft's recurrence, NoRule when it does not repeat.
func (d Draft) Rule() recurrence.Rule {
	if d.RecurrenceFrequency == "" {
		return recurrence.NoRule
	}
	return recurrence.Rule{Frequency: d.RecurrenceFrequency, Interval: d.RecurrenceInterval}
}

// CreateInput validates the draft and builds the create payload, recurrence included.
func (d Draft) CreateInput(loc *time.Location) (EventInput, error) {
	input, err := d.input(loc)
	if err != nil {
		return EventInput{}, err
	}
	if rule, ok := recurrence.Encode(d.Rule()); ok {
		input.Recurrence = []string{rule}
	}
	return input, nil
}

// UpdateInput validates the draft and builds the update payload. Recurrence is never
// changed by an edit.
func (d Draft) UpdateInput(loc *time.Location) (EventInput, error) {
	return d.input(loc)
}

func (d Draft) input(loc *time.Location) (EventInput, error) {
	summary := strings.TrimSpace(d.Summary)
	if summary == "" {
		return EventInput{}, invalid("Summary is required")
	}
	if strings.TrimSpace(d.Start) == "" {
		return EventInput{}, invalid("Start is required")
	}
	if strings.TrimSpace(d.End) == "" {
		return EventInput{}, invalid("End is required")
	}
	input := EventInput{
		Summary:     summary,
		Description: d.Description,
		Location:    d.Location,
	}

	if d.AllDay {
		start := datetime.DatePart(d.Start)
		if start == "" {
			return EventInput{}, invalid("Invalid start date")
		}
		end := datetime.DatePart(d.End)
		if end == "" {
			return EventInput{}, invalid("Invalid end date")
		}
		if end < start {
			return EventInput{}, invalid("End date is before start date")
		}
		exclusive, err := datetime.ToExclusiveEndDate(end)
		if err != nil {
			return EventInput{}, invalid("Invalid end date")
		}
		input.When = AllDay{Start: start, End: exclusive}
		return input, nil
	}

	start, err := d.instant(d.Start, loc, func(t Timed) time.Time { return t.Start })
	if err != nil {
		return EventInput{}, invalid("Invalid start date")
	}
	end, err := d.instant(d.End, loc, func(t Timed) time.Time { return t.End })
	if err != nil {
		return EventInput{}, invalid("Invalid end date")
	}
	if end.Before(start) {
		return EventInput{}, invalid("End is before start")
	}
	input.When = Timed{Start: start, End: end}
	return input, nil
}

func (d Draft) instant(value string, loc *time.Location, pick func(Timed) time.Time) (time.Time, error) {
	if orig, ok := d.original.(Timed); ok {
		t := pick(orig)
		if datetime.FormatLocal(t, loc) == strings.TrimSpace(value) {
			return t, nil
		}
	}
	return datetime.ParseLocal(value, loc)
}
