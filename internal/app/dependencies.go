package app

import (
	"github.com/homedash/homedash/internal/config"
	"github.com/homedash/homedash/internal/event_bus"
	"github.com/homedash/homedash/internal/utils"
	"github.com/homedash/homedash/pkg/agenda"
	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/checklist"
	"github.com/homedash/homedash/pkg/google"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	DB       *pgxpool.Pool
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	GoogleTokens  google.TokenRepository
	GoogleAuth    *google.GoogleAuth
	GoogleService *google.ServiceImpl
	GoogleHandler *google.Handler

	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler

	ChecklistRepo    checklist.Repository
	ChecklistService *checklist.ServiceImpl
	ChecklistHandler *checklist.Handler

	AgendaService   *agenda.Service
	AgendaHandler   *agenda.Handler
	AgendaRefresher *agenda.Refresher

	unwatch func()
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}
	loc := cfg.Location()

	deps.DB = db
	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.GoogleTokens = google.NewTokenRepository(db)
	deps.GoogleAuth = google.NewGoogleAuth(deps.GoogleTokens, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, cfg.Google.CalendarId, loc)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.CalendarService = calendar.NewService(deps.GoogleService, loc)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.ChecklistRepo = checklist.NewRepository(db)
	deps.ChecklistService = checklist.NewService(deps.ChecklistRepo, deps.EventBus)
	deps.ChecklistHandler = checklist.NewHandler(deps.ChecklistService)

	// no forecast source is configured yet; the week grid renders without weather
	deps.AgendaService = agenda.NewService(deps.CalendarService, deps.ChecklistService, nil, deps.Clock, cfg.Calendar.MonthPreviewCap)
	deps.AgendaHandler = agenda.NewHandler(deps.AgendaService)
	deps.unwatch = deps.AgendaService.Watch(deps.EventBus)

	refresher, err := agenda.NewRefresher(deps.AgendaService, cfg.Agenda.Refresh)
	if err != nil {
		deps.unwatch()
		return nil, err
	}
	deps.AgendaRefresher = refresher

	return deps, nil
}

// Close releases subscriptions taken while wiring.
func (d *Dependencies) Close() {
	if d.unwatch != nil {
		d.unwatch()
	}
}
