package calendar

import (
	"errors"
	"time"

	"github.com/homedash/homedash/pkg/datetime"
)

// DateValue is a start or end on the wire: dateTime for timed events, date for all-day.
type DateValue struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

type EventDTO struct {
	ID               string    `json:"id"`
	Summary          string    `json:"summary,omitempty"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	Start            DateValue `json:"start"`
	End              DateValue `json:"end"`
	Recurrence       []string  `json:"recurrence,omitempty"`
	RecurringEventID string    `json:"recurringEventId,omitempty"`
}

// ToWire renders w keeping timed instants in the offset they carry.
func ToWire(w When) (DateValue, DateValue) {
	switch v := w.(type) {
	case AllDay:
		return DateValue{Date: v.Start}, DateValue{Date: v.End}
	case Timed:
		return DateValue{DateTime: v.Start.Format(time.RFC3339)}, DateValue{DateTime: v.End.Format(time.RFC3339)}
	}
	return DateValue{}, DateValue{}
}

// FromWire builds the timing of an event. An event is all-day iff start has a date and no
// dateTime.
func FromWire(start, end DateValue) (When, error) {
	if start.DateTime == "" && start.Date != "" {
		if !datetime.IsDateOnly(start.Date) {
			return nil, datetime.ErrInvalidDate
		}
		endDate := end.Date
		if endDate == "" {
			var err error
			if endDate, err = datetime.ToExclusiveEndDate(start.Date); err != nil {
				return nil, err
			}
		}
		if !datetime.IsDateOnly(endDate) {
			return nil, datetime.ErrInvalidDate
		}
		return AllDay{Start: start.Date, End: endDate}, nil
	}
	if start.DateTime == "" {
		return nil, errors.New("event has no start")
	}
	s, err := time.Parse(time.RFC3339, start.DateTime)
	if err != nil {
		return nil, datetime.ErrInvalidDate
	}
	e := s
	if end.DateTime != "" {
		if e, err = time.Parse(time.RFC3339, end.DateTime); err != nil {
			return nil, datetime.ErrInvalidDate
		}
	}
	return Timed{Start: s, End: e}, nil
}

func EventToDTO(e Event) EventDTO {
	start, end := ToWire(e.When)
	dto := EventDTO{
		ID:          e.ID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       start,
		End:         end,
		Recurrence:  e.Recurrence,
	}
	if e.Series != nil {
		dto.RecurringEventID = e.Series.MasterID
	}
	return dto
}

func DTOToEvent(dto EventDTO) (Event, error) {
	when, err := FromWire(dto.Start, dto.End)
	if err != nil {
		return Event{}, err
	}
	e := Event{
		ID:          dto.ID,
		Summary:     dto.Summary,
		Description: dto.Description,
		Location:    dto.Location,
		When:        when,
		Recurrence:  dto.Recurrence,
	}
	if dto.RecurringEventID != "" {
		e.Series = &SeriesRef{MasterID: dto.RecurringEventID}
		e.Recurrence = nil
	}
	return e, nil
}
