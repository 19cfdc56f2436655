package calendar

import (
	"errors"
	"io"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/homedash/homedash/pkg/datetime"
)

const productID = "-//homedash//calendar//EN"

// ExportICS renders events as an iCalendar feed. Occurrences are exported one VEVENT each.
func ExportICS(events []Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + "@homedash")
		ve.SetDtStampTime(stamp)
		if e.Summary != "" {
			ve.SetSummary(e.Summary)
		}
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		switch w := e.When.(type) {
		case AllDay:
			start, err := datetime.ParseDate(w.Start)
			if err != nil {
				continue
			}
			ve.SetAllDayStartAt(start)
			if end, err := datetime.ParseDate(w.End); err == nil {
				ve.SetAllDayEndAt(end)
			}
		case Timed:
			ve.SetStartAt(w.Start)
			ve.SetEndAt(w.End)
		}
		for _, line := range e.Recurrence {
			if isRRule(line) {
				ve.SetProperty(ical.ComponentPropertyRrule, ruleBody(line))
			}
		}
	}
	return cal.Serialize()
}

func (h *Handler) ExportEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := ParseRange(r.URL.Query().Get("timeMin"), r.URL.Query().Get("timeMax"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	events, err := h.service.Events(r.Context(), from, to)
	if err != nil && !errors.Is(err, ErrNeedsSetup) {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="homedash.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, ExportICS(events, time.Now().UTC()))
}
