package google

import (
	"net/http"

	"github.com/homedash/homedash/internal/rest"
	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		if isUnauthenticated(err) {
			rest.WriteError(w, http.StatusForbidden, "Google account is not connected", "")
			return
		}
		log.Errorf("failed to list Google calendars: %v", err)
		rest.WriteError(w, http.StatusBadGateway, "Failed to load calendars", "")
		return
	}

	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}
	rest.WriteJSON(w, http.StatusOK, calendarItems)
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
		Primary: ci.Primary,
	}
}
