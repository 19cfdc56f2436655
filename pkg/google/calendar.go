package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/homedash/homedash/pkg/calendar"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

const statusCancelled = "cancelled"

// Calendar is a calendar.Remote backed by one Google calendar.
type Calendar struct {
	service    *gcal.Service
	calendarId string
	loc        *time.Location
}

func NewCalendar(service *gcal.Service, calendarId string, loc *time.Location) *Calendar {
	return &Calendar{
		service:    service,
		calendarId: calendarId,
		loc:        loc,
	}
}

func (c *Calendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	var events []calendar.Event
	pageToken := ""
	for {
		call := c.service.Events.List(c.calendarId).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
		}
		for _, item := range page.Items {
			if item.Status == statusCancelled {
				continue
			}
			e, err := toEvent(item)
			if err != nil {
				log.Warnf("skipping Google event %s with unreadable dates: %v", item.Id, err)
				continue
			}
			events = append(events, e)
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	log.Debugf("Loaded %d events from %s between %s and %s", len(events), c.calendarId, timeMin, timeMax)
	return events, nil
}

func (c *Calendar) CreateEvent(ctx context.Context, input calendar.EventInput) (calendar.Event, error) {
	log.Debugf("Adding event %q to calendar %s", input.Summary, c.calendarId)
	created, err := c.service.Events.Insert(c.calendarId, c.toGoogleEvent(input)).Context(ctx).Do()
	if err != nil {
		return calendar.Event{}, fmt.Errorf("unable to insert event in Google Calendar: %w", err)
	}
	return toEvent(created)
}

func (c *Calendar) UpdateEvent(ctx context.Context, id string, input calendar.EventInput) (calendar.Event, error) {
	patch := c.toGoogleEvent(input)
	patch.ForceSendFields = []string{"Summary", "Description", "Location"}
	// Switching between all-day and timed has to clear the other representation.
	if input.When.IsAllDay() {
		patch.Start.NullFields = []string{"DateTime", "TimeZone"}
		patch.End.NullFields = []string{"DateTime", "TimeZone"}
	} else {
		patch.Start.NullFields = []string{"Date"}
		patch.End.NullFields = []string{"Date"}
	}

	updated, err := c.service.Events.Patch(c.calendarId, id, patch).Context(ctx).Do()
	if err != nil {
		return calendar.Event{}, fmt.Errorf("unable to update event %s in Google Calendar: %w", id, notFound(err))
	}
	return toEvent(updated)
}

func (c *Calendar) DeleteEvent(ctx context.Context, target calendar.DeleteTarget) error {
	if target.Truncates() {
		return c.truncateSeries(ctx, target)
	}
	if err := c.service.Events.Delete(c.calendarId, target.ID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete event %s from Google Calendar: %w", target.ID, notFound(err))
	}
	return nil
}

// truncateSeries ends the series before the boundary occurrence. A boundary at
// or before the first occurrence removes the series.
func (c *Calendar) truncateSeries(ctx context.Context, target calendar.DeleteTarget) error {
	master, err := c.service.Events.Get(c.calendarId, target.SeriesID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to read series %s: %w", target.SeriesID, notFound(err))
	}
	masterEvent, err := toEvent(master)
	if err != nil {
		return err
	}
	boundary, err := calendar.BoundaryInstant(target, c.loc)
	if err != nil {
		return err
	}

	if !boundary.After(masterEvent.Anchor(c.loc)) {
		log.Debugf("Boundary %s precedes series %s, deleting the series", boundary, target.SeriesID)
		return c.DeleteEvent(ctx, calendar.DeleteTarget{ID: target.SeriesID})
	}

	lines, err := calendar.TruncateRecurrence(master.Recurrence, boundary)
	if err != nil {
		return err
	}
	_, err = c.service.Events.Patch(c.calendarId, target.SeriesID, &gcal.Event{Recurrence: lines}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to truncate series %s: %w", target.SeriesID, err)
	}
	return nil
}

func (c *Calendar) toGoogleEvent(input calendar.EventInput) *gcal.Event {
	start, end := calendar.ToWire(input.When)
	event := &gcal.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start:       &gcal.EventDateTime{DateTime: start.DateTime, Date: start.Date},
		End:         &gcal.EventDateTime{DateTime: end.DateTime, Date: end.Date},
		Recurrence:  input.Recurrence,
	}
	// Google expands recurring timed events in an explicit zone.
	if !input.When.IsAllDay() && len(input.Recurrence) > 0 && c.loc != nil && c.loc != time.Local {
		event.Start.TimeZone = c.loc.String()
		event.End.TimeZone = c.loc.String()
	}
	return event
}

func toEvent(item *gcal.Event) (calendar.Event, error) {
	return calendar.DTOToEvent(calendar.EventDTO{
		ID:               item.Id,
		Summary:          item.Summary,
		Description:      item.Description,
		Location:         item.Location,
		Start:            dateValue(item.Start),
		End:              dateValue(item.End),
		Recurrence:       item.Recurrence,
		RecurringEventID: item.RecurringEventId,
	})
}

func dateValue(d *gcal.EventDateTime) calendar.DateValue {
	if d == nil {
		return calendar.DateValue{}
	}
	return calendar.DateValue{DateTime: d.DateTime, Date: d.Date}
}

func notFound(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return fmt.Errorf("%w: %v", calendar.ErrEventNotFound, err)
	}
	return err
}
