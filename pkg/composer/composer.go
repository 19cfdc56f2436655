// Package composer drives the add/edit event form:
//
//	Closed -> Creating -> Submitting -> Closed | Creating
//	Closed -> Editing  -> Submitting -> Closed | Editing
//
// A failed submission returns to the state it came from with the error kept for display.
// A Composer is not safe for concurrent use.
package composer

import (
	"context"
	"errors"
	"time"

	"github.com/homedash/homedash/internal/utils"
	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/datetime"
	"github.com/homedash/homedash/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

type State int

const (
	Closed State = iota
	Creating
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

var (
	ErrNotOpen               = errors.New("composer is not open")
	ErrNotReady              = errors.New("draft is incomplete")
	ErrRecurrenceNotEditable = errors.New("recurrence can only be set when creating an event")
)

// Submitter persists drafts; calendar.Store is the usual one.
type Submitter interface {
	Create(ctx context.Context, draft calendar.Draft) (calendar.Event, error)
	Update(ctx context.Context, e calendar.Event, draft calendar.Draft) (calendar.Event, error)
}

type Config struct {
	// NewDuration is the length of a fresh draft and of a draft leaving all-day mode.
	NewDuration time.Duration
	// AdjustDuration is the length kept when the start is moved with the time picker.
	AdjustDuration time.Duration
}

type Composer struct {
	submitter Submitter
	clock     utils.Clock
	loc       *time.Location
	cfg       Config

	state   State
	from    State
	draft   calendar.Draft
	editing *calendar.Event
	err     error
}

func New(submitter Submitter, clock utils.Clock, loc *time.Location, cfg Config) *Composer {
	if cfg.NewDuration <= 0 {
		cfg.NewDuration = 30 * time.Minute
	}
	if cfg.AdjustDuration <= 0 {
		cfg.AdjustDuration = time.Hour
	}
	return &Composer{
		submitter: submitter,
		clock:     clock,
		loc:       loc,
		cfg:       cfg,
	}
}

func (c *Composer) State() State             { return c.state }
func (c *Composer) Draft() calendar.Draft    { return c.draft }
func (c *Composer) Err() error               { return c.err }
func (c *Composer) Editing() *calendar.Event { return c.editing }

// AdjustDuration is how long a timed event lasts when only its start is given.
func (c *Composer) AdjustDuration() time.Duration { return c.cfg.AdjustDuration }

func (c *Composer) now() time.Time {
	return c.clock.Now().In(c.loc)
}

// OpenAdd resets the form to a fresh draft.
func (c *Composer) OpenAdd() {
	c.state = Creating
	c.draft = calendar.NewDraft(c.now(), c.cfg.NewDuration)
	c.editing = nil
	c.err = nil
}

// OpenEdit loads e into the form.
func (c *Composer) OpenEdit(e calendar.Event) {
	c.state = Editing
	c.draft = calendar.DraftFromEvent(e, c.loc)
	c.editing = &e
	c.err = nil
}

// Cancel discards the draft.
func (c *Composer) Cancel() {
	c.reset()
}

func (c *Composer) reset() {
	c.state = Closed
	c.draft = calendar.Draft{}
	c.editing = nil
	c.err = nil
}

func (c *Composer) open() bool {
	return c.state == Creating || c.state == Editing
}

func (c *Composer) SetSummary(s string) error {
	return c.update(func(d *calendar.Draft) { d.Summary = s })
}

func (c *Composer) SetDescription(s string) error {
	return c.update(func(d *calendar.Draft) { d.Description = s })
}

func (c *Composer) SetLocation(s string) error {
	return c.update(func(d *calendar.Draft) { d.Location = s })
}

// SetStart sets the raw start value, a date when all-day.
func (c *Composer) SetStart(s string) error {
	return c.update(func(d *calendar.Draft) { d.Start = s })
}

func (c *Composer) SetEnd(s string) error {
	return c.update(func(d *calendar.Draft) { d.End = s })
}

// SetStartFields moves the start with the segmented picker. The end follows at the
// configured distance; it can still be changed afterwards.
func (c *Composer) SetStartFields(f datetime.EditFields) error {
	start, err := datetime.ComposeFromEditing(f)
	if err != nil {
		return err
	}
	return c.update(func(d *calendar.Draft) {
		d.Start = start
		if !d.AllDay {
			d.End = datetime.AutoAdjustEnd(start, d.End, c.cfg.AdjustDuration)
		}
	})
}

func (c *Composer) SetEndFields(f datetime.EditFields) error {
	end, err := datetime.ComposeFromEditing(f)
	if err != nil {
		return err
	}
	return c.update(func(d *calendar.Draft) { d.End = end })
}

// StartFields decomposes the current timed start for the picker.
func (c *Composer) StartFields() (datetime.EditFields, error) {
	return c.fields(c.draft.Start)
}

func (c *Composer) EndFields() (datetime.EditFields, error) {
	return c.fields(c.draft.End)
}

func (c *Composer) fields(value string) (datetime.EditFields, error) {
	t, err := datetime.ParseLocal(value, c.loc)
	if err != nil {
		return datetime.EditFields{}, err
	}
	return datetime.SplitForEditing(t, c.loc), nil
}

// SetAllDay flips the all-day switch, coercing start and end to the new representation.
func (c *Composer) SetAllDay(on bool) error {
	if !c.open() {
		return ErrNotOpen
	}
	if c.draft.AllDay == on {
		return nil
	}
	span := datetime.CoerceAllDayToggle(c.draft.Span(), on, c.now(), c.cfg.NewDuration)
	c.draft = c.draft.WithSpan(span)
	return nil
}

// SetRecurrence is only allowed while creating.
func (c *Composer) SetRecurrence(rule recurrence.Rule) error {
	if !c.RecurrenceEditable() {
		return ErrRecurrenceNotEditable
	}
	c.draft.RecurrenceFrequency = rule.Frequency
	c.draft.RecurrenceInterval = rule.Interval
	return nil
}

func (c *Composer) RecurrenceEditable() bool {
	return c.state == Creating
}

// SeriesNotice warns that saving changes every occurrence of the edited series.
func (c *Composer) SeriesNotice() string {
	if c.editing == nil || c.editing.MasterID() == "" {
		return ""
	}
	return calendar.SeriesNotice
}

// DeleteScopes lists the delete options for the event being edited.
func (c *Composer) DeleteScopes() []calendar.Scope {
	if c.editing == nil {
		return nil
	}
	return calendar.AllowedScopes(*c.editing)
}

func (c *Composer) CanSubmit() bool {
	return c.open() && c.draft.Ready()
}

// Submit saves the draft. On success the composer closes; on failure it returns to the
// state it was in with the draft kept.
func (c *Composer) Submit(ctx context.Context) (calendar.Event, error) {
	if !c.open() {
		return calendar.Event{}, ErrNotOpen
	}
	if !c.draft.Ready() {
		return calendar.Event{}, ErrNotReady
	}
	c.from = c.state
	c.state = Submitting
	c.err = nil

	var event calendar.Event
	var err error
	if c.from == Editing {
		event, err = c.submitter.Update(ctx, *c.editing, c.draft)
	} else {
		event, err = c.submitter.Create(ctx, c.draft)
	}
	if err != nil {
		log.Debugf("submitting draft failed: %v", err)
		c.state = c.from
		c.err = err
		return calendar.Event{}, err
	}
	c.reset()
	return event, nil
}

func (c *Composer) update(fn func(d *calendar.Draft)) error {
	if !c.open() {
		return ErrNotOpen
	}
	fn(&c.draft)
	return nil
}
