package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/homedash/homedash/internal/rest"
	"github.com/homedash/homedash/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

// EventRequest is the body of POST and PUT. Start and End are local date-times, RFC3339
// instants, or bare dates when AllDay is set. For all-day events End is the inclusive last
// day.
type EventRequest struct {
	ID               string           `json:"id,omitempty"`
	RecurringEventID string           `json:"recurringEventId,omitempty"`
	Summary          string           `json:"summary"`
	Description      string           `json:"description,omitempty"`
	Location         string           `json:"location,omitempty"`
	Start            string           `json:"start"`
	End              string           `json:"end"`
	AllDay           bool             `json:"allDay,omitempty"`
	Recurrence       *RecurrenceInput `json:"recurrence,omitempty"`
}

// RecurrenceInput takes the interval as a plain number so form values like 2.5 are
// rounded instead of rejected.
type RecurrenceInput struct {
	Frequency string  `json:"frequency"`
	Interval  float64 `json:"interval"`
}

type eventsResponse struct {
	Events     []EventDTO `json:"events"`
	NeedsSetup bool       `json:"needsSetup,omitempty"`
}

type eventResponse struct {
	Event        EventDTO `json:"event"`
	SeriesNotice string   `json:"seriesNotice,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

func (r EventRequest) Draft() Draft {
	d := Draft{
		Summary:             r.Summary,
		Description:         r.Description,
		Location:            r.Location,
		Start:               r.Start,
		End:                 r.End,
		AllDay:              r.AllDay,
		RecurrenceFrequency: recurrence.None,
		RecurrenceInterval:  1,
	}
	if r.Recurrence != nil {
		rule := recurrence.NewRule(recurrence.ParseFrequency(r.Recurrence.Frequency), r.Recurrence.Interval)
		d.RecurrenceFrequency = rule.Frequency
		d.RecurrenceInterval = rule.Interval
	}
	return d
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := ParseRange(r.URL.Query().Get("timeMin"), r.URL.Query().Get("timeMax"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	events, err := h.service.Events(r.Context(), from, to)
	if errors.Is(err, ErrNeedsSetup) {
		rest.WriteJSON(w, http.StatusOK, eventsResponse{Events: []EventDTO{}, NeedsSetup: true})
		return
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, eventsResponse{Events: dtos})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var request EventRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	event, err := h.service.CreateEvent(r.Context(), request.Draft())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventResponse{Event: EventToDTO(event)})
}

// UpdateEvent saves the body over the event with the given id. When recurringEventId is
// sent the whole series is updated and the response says so.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var request EventRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if request.ID == "" && request.RecurringEventID == "" {
		rest.WriteError(w, http.StatusBadRequest, "Event id is required", "")
		return
	}

	target := Event{ID: request.ID}
	if request.RecurringEventID != "" {
		target.Series = &SeriesRef{MasterID: request.RecurringEventID}
	}
	event, err := h.service.UpdateEvent(r.Context(), EditTarget(target), request.Draft())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	response := eventResponse{Event: EventToDTO(event)}
	if target.Series != nil {
		response.SeriesNotice = SeriesNotice
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	var request DeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if request.Scope == "" {
		request.Scope = ScopeSingle
	}

	if err := h.service.DeleteEvent(r.Context(), request); err != nil {
		WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// WriteServiceError maps engine errors onto status codes.
func WriteServiceError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	var upstream *UpstreamError
	switch {
	case errors.As(err, &validation):
		rest.WriteError(w, http.StatusBadRequest, validation.Message, "")
	case errors.Is(err, ErrNeedsSetup):
		rest.WriteError(w, http.StatusConflict, "Calendar needs setup", "Connect a calendar account first")
	case errors.As(err, &upstream):
		rest.WriteError(w, http.StatusBadGateway, upstream.Message, "")
	case errors.Is(err, context.Canceled):
		rest.WriteError(w, http.StatusServiceUnavailable, "Request cancelled", "")
	default:
		log.Errorf("calendar request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
