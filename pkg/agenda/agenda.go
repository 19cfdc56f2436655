// Package agenda assembles the dashboard views: the Today/Tomorrow feed and
// the week, month and day grids. The feed is cached until a list changes,
// the day rolls over, or the scheduled refresh runs.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/homedash/homedash/internal/event_bus"
	"github.com/homedash/homedash/internal/utils"
	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/checklist"
	"github.com/homedash/homedash/pkg/layout"
	log "github.com/sirupsen/logrus"
)

// TaskSource reads persisted lists.
type TaskSource interface {
	List(ctx context.Context, list string) ([]checklist.Item, error)
}

// ForecastProvider returns forecasts keyed by YYYY-MM-DD.
type ForecastProvider interface {
	Forecasts(ctx context.Context, from, to time.Time) (map[string]layout.Forecast, error)
}

type ForecastFunc func(ctx context.Context, from, to time.Time) (map[string]layout.Forecast, error)

func (f ForecastFunc) Forecasts(ctx context.Context, from, to time.Time) (map[string]layout.Forecast, error) {
	return f(ctx, from, to)
}

type Feed struct {
	Days        []layout.DayFeed
	NeedsSetup  bool
	GeneratedAt time.Time
}

type Week struct {
	layout.Week
	NeedsSetup bool
}

type Month struct {
	layout.Month
	NeedsSetup bool
}

type Day struct {
	Date       string
	Entries    []layout.Entry
	NeedsSetup bool
}

type Service struct {
	events     *calendar.Service
	tasks      TaskSource
	forecasts  ForecastProvider
	clock      utils.Clock
	previewCap int

	mu   sync.Mutex
	feed *Feed
	// generation counts invalidations; a rebuild that started before one is not cached.
	generation uint64
}

func NewService(events *calendar.Service, tasks TaskSource, forecasts ForecastProvider, clock utils.Clock, previewCap int) *Service {
	return &Service{
		events:     events,
		tasks:      tasks,
		forecasts:  forecasts,
		clock:      clock,
		previewCap: previewCap,
	}
}

func (s *Service) loc() *time.Location {
	return s.events.Location()
}

// Feed returns the cached Today/Tomorrow feed, rebuilding it when stale.
func (s *Service) Feed(ctx context.Context) (Feed, error) {
	today := layout.DayKey(s.clock.Now(), s.loc())
	s.mu.Lock()
	cached := s.feed
	s.mu.Unlock()
	if cached != nil && len(cached.Days) > 0 && cached.Days[0].Date == today {
		return *cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh rebuilds the feed. On failure the previous feed stays cached. A feed whose
// reads raced with an invalidation is returned but not cached.
func (s *Service) Refresh(ctx context.Context) (Feed, error) {
	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	now := s.clock.Now()
	from := utils.StartOfDay(now, s.loc())
	events, needsSetup, err := s.loadEvents(ctx, from, from.AddDate(0, 0, 2))
	if err != nil {
		return Feed{}, err
	}
	todos, err := s.loadTasks(ctx, checklist.ListTodos)
	if err != nil {
		return Feed{}, err
	}
	chores, err := s.loadTasks(ctx, checklist.ListChores)
	if err != nil {
		return Feed{}, err
	}

	feed := Feed{
		Days:        layout.TodayTomorrow(events, todos, chores, now, s.loc()),
		NeedsSetup:  needsSetup,
		GeneratedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		log.Debug("Agenda feed invalidated during rebuild, not caching it")
		return feed, nil
	}
	s.feed = &feed
	log.Debugf("Agenda feed rebuilt with %d events", len(events))
	return feed, nil
}

// Invalidate drops the cached feed and any rebuild already in flight.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.feed = nil
	s.generation++
	s.mu.Unlock()
}

// Watch invalidates the feed whenever the todo or chore list changes.
func (s *Service) Watch(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeList(bus, func(e event_bus.EventT[event_bus.ListChanged]) error {
		log.Tracef("List %s changed, invalidating agenda feed", e.Data.List)
		s.Invalidate()
		return nil
	}, checklist.ListTodos, checklist.ListChores)
}

func (s *Service) Week(ctx context.Context, date time.Time) (Week, error) {
	start, end := layout.WeekRange(date, s.loc())
	events, needsSetup, err := s.loadEvents(ctx, start, end)
	if err != nil {
		return Week{}, err
	}
	opts := layout.Options{Today: s.clock.Now(), Forecasts: s.loadForecasts(ctx, start, end)}
	return Week{Week: layout.WeekGrid(events, date, s.loc(), opts), NeedsSetup: needsSetup}, nil
}

func (s *Service) Month(ctx context.Context, date time.Time) (Month, error) {
	start, end := layout.MonthRange(date, s.loc())
	events, needsSetup, err := s.loadEvents(ctx, start, end)
	if err != nil {
		return Month{}, err
	}
	opts := layout.Options{Today: s.clock.Now(), PreviewCap: s.previewCap}
	return Month{Month: layout.MonthGrid(events, date, s.loc(), opts), NeedsSetup: needsSetup}, nil
}

func (s *Service) Day(ctx context.Context, date time.Time) (Day, error) {
	start := utils.StartOfDay(date, s.loc())
	events, needsSetup, err := s.loadEvents(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return Day{}, err
	}
	return Day{
		Date:       layout.DayKey(start, s.loc()),
		Entries:    layout.DayDetail(events, start, s.loc()),
		NeedsSetup: needsSetup,
	}, nil
}

// loadEvents degrades to an empty list when no calendar is connected.
func (s *Service) loadEvents(ctx context.Context, from, to time.Time) ([]calendar.Event, bool, error) {
	events, err := s.events.Events(ctx, from, to)
	if errors.Is(err, calendar.ErrNeedsSetup) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return events, false, nil
}

func (s *Service) loadTasks(ctx context.Context, list string) ([]layout.Task, error) {
	if s.tasks == nil {
		return nil, nil
	}
	items, err := s.tasks.List(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s: %w", list, err)
	}
	tasks := make([]layout.Task, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, layout.Task{
			ID:      item.Id.String(),
			Title:   item.Title,
			Due:     item.Due,
			DueDate: item.DueDate,
			Done:    item.Done,
		})
	}
	return tasks, nil
}

// loadForecasts is best effort; the week renders without weather on failure.
func (s *Service) loadForecasts(ctx context.Context, from, to time.Time) map[string]layout.Forecast {
	if s.forecasts == nil {
		return nil
	}
	forecasts, err := s.forecasts.Forecasts(ctx, from, to)
	if err != nil {
		log.Warnf("forecasts unavailable: %v", err)
		return nil
	}
	return forecasts
}
