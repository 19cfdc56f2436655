package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const SeriesNotice = "Editing this event changes the whole series"

type Service struct {
	provider RemoteProvider
	loc      *time.Location
}

func NewService(provider RemoteProvider, loc *time.Location) *Service {
	return &Service{
		provider: provider,
		loc:      loc,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// ParseRange validates the query range of a list call.
func ParseRange(timeMin, timeMax string) (time.Time, time.Time, error) {
	if strings.TrimSpace(timeMin) == "" || strings.TrimSpace(timeMax) == "" {
		return time.Time{}, time.Time{}, invalid("timeMin and timeMax are required")
	}
	from, err := time.Parse(time.RFC3339, timeMin)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("Invalid timeMin")
	}
	to, err := time.Parse(time.RFC3339, timeMax)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("Invalid timeMax")
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, invalid("timeMax must be after timeMin")
	}
	return from, to, nil
}

// Events returns the occurrences intersecting [from, to), ordered by anchor. Equal anchors
// keep the order the remote returned them in.
func (s *Service) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	remote, err := s.provider.Remote(ctx)
	if err != nil {
		return nil, err
	}
	events, err := remote.ListEvents(ctx, from, to)
	if err != nil {
		return nil, s.upstream("Failed to load events", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Anchor(s.loc).Before(events[j].Anchor(s.loc))
	})
	return events, nil
}

func (s *Service) CreateEvent(ctx context.Context, draft Draft) (Event, error) {
	input, err := draft.CreateInput(s.loc)
	if err != nil {
		return Event{}, err
	}
	remote, err := s.provider.Remote(ctx)
	if err != nil {
		return Event{}, err
	}
	event, err := remote.CreateEvent(ctx, input)
	if err != nil {
		return Event{}, s.upstream("Failed to create event", err)
	}
	log.Debugf("created event %s", event.ID)
	return event, nil
}

// UpdateEvent patches the resource with the given id. Callers resolve occurrence ids to
// their master with EditTarget first.
func (s *Service) UpdateEvent(ctx context.Context, id string, draft Draft) (Event, error) {
	if strings.TrimSpace(id) == "" {
		return Event{}, invalid("Event id is required")
	}
	input, err := draft.UpdateInput(s.loc)
	if err != nil {
		return Event{}, err
	}
	remote, err := s.provider.Remote(ctx)
	if err != nil {
		return Event{}, err
	}
	event, err := remote.UpdateEvent(ctx, id, input)
	if err != nil {
		return Event{}, s.upstream("Failed to update event", err)
	}
	log.Debugf("updated event %s", event.ID)
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, request DeletionRequest) error {
	target, err := request.Target()
	if err != nil {
		return err
	}
	remote, err := s.provider.Remote(ctx)
	if err != nil {
		return err
	}
	if err := remote.DeleteEvent(ctx, target); err != nil {
		return s.upstream("Failed to delete event", err)
	}
	log.Debugf("deleted event (scope: %s, id: %s, series: %s)", request.Scope, target.ID, target.SeriesID)
	return nil
}

func (s *Service) upstream(message string, err error) error {
	if errors.Is(err, ErrNeedsSetup) || errors.Is(err, context.Canceled) {
		return err
	}
	log.Errorf("%s: %v", message, err)
	return &UpstreamError{Message: message, Err: err}
}

type ProviderFunc func(ctx context.Context) (Remote, error)

func (f ProviderFunc) Remote(ctx context.Context) (Remote, error) {
	return f(ctx)
}

// Static hands out r on every call, or ErrNeedsSetup when r is nil.
func Static(r Remote) RemoteProvider {
	return ProviderFunc(func(context.Context) (Remote, error) {
		if r == nil {
			return nil, fmt.Errorf("no remote calendar: %w", ErrNeedsSetup)
		}
		return r, nil
	})
}
