package calendar

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/homedash/homedash/pkg/datetime"
)

// StubCalendar is an in-memory Remote that expands series the way the hosted calendar
// does: occurrences get "<master>_<start>" ids and point back to their master.
type StubCalendar struct {
	mu        sync.Mutex
	loc       *time.Location
	data      map[string]Event
	cancelled map[string]bool

	// Err, when set, fails every call.
	Err error
	// BeforeList runs at the start of ListEvents, outside the lock.
	BeforeList func(ctx context.Context) error

	Deleted   []DeleteTarget
	Updated   []string
	ListCalls int
}

func NewStubCalendar(loc *time.Location) *StubCalendar {
	return &StubCalendar{
		loc:       loc,
		data:      map[string]Event{},
		cancelled: map[string]bool{},
	}
}

// Put stores e as is, keeping its id.
func (c *StubCalendar) Put(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[e.ID] = e
}

func (c *StubCalendar) Get(id string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[id]
	return e, ok
}

func (c *StubCalendar) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string]Event{}
	c.cancelled = map[string]bool{}
	c.Deleted = nil
	c.Updated = nil
	c.ListCalls = 0
}

func (c *StubCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	if c.BeforeList != nil {
		if err := c.BeforeList(ctx); err != nil {
			return nil, err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListCalls++
	if c.Err != nil {
		return nil, c.Err
	}

	var events []Event
	for _, e := range c.data {
		if len(e.Recurrence) == 0 {
			if c.overlaps(e.When, timeMin, timeMax) {
				events = append(events, e)
			}
			continue
		}
		occurrences, err := c.expand(e, timeMin, timeMax)
		if err != nil {
			return nil, err
		}
		for _, o := range occurrences {
			if !c.cancelled[o.ID] {
				events = append(events, o)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		ai, aj := events[i].Anchor(c.loc), events[j].Anchor(c.loc)
		if ai.Equal(aj) {
			return events[i].ID < events[j].ID
		}
		return ai.Before(aj)
	})
	return events, nil
}

func (c *StubCalendar) bounds(w When) (time.Time, time.Time) {
	switch v := w.(type) {
	case Timed:
		return v.Start, v.End
	case AllDay:
		s, _ := time.ParseInLocation(datetime.DateLayout, v.Start, c.loc)
		e, _ := time.ParseInLocation(datetime.DateLayout, v.End, c.loc)
		return s, e
	}
	return time.Time{}, time.Time{}
}

func (c *StubCalendar) overlaps(w When, timeMin, timeMax time.Time) bool {
	start, end := c.bounds(w)
	if !end.After(start) {
		return !start.Before(timeMin) && start.Before(timeMax)
	}
	return start.Before(timeMax) && end.After(timeMin)
}

func (c *StubCalendar) expand(master Event, timeMin, timeMax time.Time) ([]Event, error) {
	start, end := c.bounds(master.When)
	length := end.Sub(start)
	starts, err := expandSeries(master.Recurrence, start, timeMin.Add(-length), timeMax)
	if err != nil {
		return nil, err
	}

	var out []Event
	for _, s := range starts {
		o := Event{
			Summary:     master.Summary,
			Description: master.Description,
			Location:    master.Location,
			Series:      &SeriesRef{MasterID: master.ID},
		}
		if master.IsAllDay() {
			local := s.In(c.loc)
			days := int(length.Round(24*time.Hour) / (24 * time.Hour))
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
			o.When = AllDay{Start: day.Format(datetime.DateLayout), End: day.AddDate(0, 0, days).Format(datetime.DateLayout)}
			o.ID = master.ID + "_" + day.Format("20060102")
		} else {
			o.When = Timed{Start: s, End: s.Add(length)}
			o.ID = master.ID + "_" + s.UTC().Format("20060102T150405Z")
		}
		if c.overlaps(o.When, timeMin, timeMax) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (c *StubCalendar) CreateEvent(_ context.Context, input EventInput) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return Event{}, c.Err
	}
	e := Event{
		ID:          strings.ReplaceAll(uuid.NewString(), "-", ""),
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		When:        input.When,
		Recurrence:  input.Recurrence,
	}
	c.data[e.ID] = e
	return e, nil
}

func (c *StubCalendar) UpdateEvent(_ context.Context, id string, input EventInput) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return Event{}, c.Err
	}
	e, ok := c.data[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	e.Summary = input.Summary
	e.Description = input.Description
	e.Location = input.Location
	e.When = input.When
	if len(input.Recurrence) > 0 {
		e.Recurrence = input.Recurrence
	}
	c.data[id] = e
	c.Updated = append(c.Updated, id)
	return e, nil
}

func (c *StubCalendar) DeleteEvent(_ context.Context, target DeleteTarget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Deleted = append(c.Deleted, target)

	if target.Truncates() {
		master, ok := c.data[target.SeriesID]
		if !ok {
			return ErrEventNotFound
		}
		boundary, err := BoundaryInstant(target, c.loc)
		if err != nil {
			return err
		}
		start, _ := c.bounds(master.When)
		if !boundary.After(start) {
			delete(c.data, master.ID)
			return nil
		}
		lines, err := TruncateRecurrence(master.Recurrence, boundary)
		if err != nil {
			return err
		}
		master.Recurrence = lines
		c.data[master.ID] = master
		return nil
	}

	if _, ok := c.data[target.ID]; ok {
		delete(c.data, target.ID)
		return nil
	}
	if i := strings.LastIndex(target.ID, "_"); i > 0 {
		if _, ok := c.data[target.ID[:i]]; ok {
			c.cancelled[target.ID] = true
			return nil
		}
	}
	return ErrEventNotFound
}
