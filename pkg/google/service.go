package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homedash/homedash/pkg/calendar"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrUnauthenticated = fmt.Errorf("%w: Google account is not connected", calendar.ErrNeedsSetup)

type CalendarItem struct {
	ID      string
	Summary string
	Primary bool
}

type Service interface {
	Remote(ctx context.Context) (calendar.Remote, error)
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
}

type ServiceImpl struct {
	auth       *GoogleAuth
	calendarId string
	loc        *time.Location
}

func NewService(auth *GoogleAuth, calendarId string, loc *time.Location) *ServiceImpl {
	return &ServiceImpl{
		auth:       auth,
		calendarId: calendarId,
		loc:        loc,
	}
}

// Remote satisfies calendar.RemoteProvider.
func (s *ServiceImpl) Remote(ctx context.Context) (calendar.Remote, error) {
	service, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	return NewCalendar(service, s.calendarId, s.loc), nil
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	googleCalendars := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
			Primary: cal.Primary,
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context) (*gcal.Service, error) {
	client, err := s.auth.getClient(ctx)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %w", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("Google account is not connected, setup is required")
		return nil, ErrUnauthenticated
	}
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, calendar.ErrNeedsSetup)
}
