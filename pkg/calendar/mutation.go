package calendar

import (
	"time"

	"github.com/homedash/homedash/pkg/datetime"
)

// Scope selects which occurrences of a series a delete affects.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeFuture Scope = "future"
	ScopeSeries Scope = "series"
)

// DeletionRequest is what the client sends to remove an event.
type DeletionRequest struct {
	Scope            Scope  `json:"scope"`
	ID               string `json:"id,omitempty"`
	RecurringEventID string `json:"recurringEventId,omitempty"`
	// OccurrenceStart is the boundary occurrence's start: RFC3339 for timed events,
	// YYYY-MM-DD for all-day ones.
	OccurrenceStart string `json:"start,omitempty"`
}

// AllowedScopes lists the delete scopes offered for e. Only occurrences of a series
// get future and series.
func AllowedScopes(e Event) []Scope {
	if e.Series == nil {
		return []Scope{ScopeSingle}
	}
	return []Scope{ScopeSingle, ScopeFuture, ScopeSeries}
}

func scopeAllowed(e Event, scope Scope) bool {
	for _, s := range AllowedScopes(e) {
		if s == scope {
			return true
		}
	}
	return false
}

// NewDeletionRequest builds the request for deleting e with the chosen scope.
func NewDeletionRequest(e Event, scope Scope) (DeletionRequest, error) {
	if !scopeAllowed(e, scope) {
		return DeletionRequest{}, invalid("Scope %q is not available for this event", scope)
	}
	switch scope {
	case ScopeSeries:
		return DeletionRequest{Scope: scope, ID: e.ID, RecurringEventID: e.Series.MasterID}, nil
	case ScopeFuture:
		return DeletionRequest{
			Scope:            scope,
			ID:               e.ID,
			RecurringEventID: e.Series.MasterID,
			OccurrenceStart:  startValue(e),
		}, nil
	default:
		return DeletionRequest{Scope: ScopeSingle, ID: e.ID}, nil
	}
}

func startValue(e Event) string {
	switch w := e.When.(type) {
	case AllDay:
		return w.Start
	case Timed:
		return w.Start.Format(time.RFC3339)
	}
	return ""
}

// Target resolves the request to the remote delete call.
func (r DeletionRequest) Target() (DeleteTarget, error) {
	switch r.Scope {
	case ScopeSingle:
		if r.ID == "" {
			return DeleteTarget{}, invalid("Event id is required")
		}
		return DeleteTarget{ID: r.ID}, nil
	case ScopeSeries:
		id := r.RecurringEventID
		if id == "" {
			id = r.ID
		}
		if id == "" {
			return DeleteTarget{}, invalid("Series id is required")
		}
		return DeleteTarget{ID: id}, nil
	case ScopeFuture:
		if r.RecurringEventID == "" {
			return DeleteTarget{}, invalid("Series id is required")
		}
		if r.OccurrenceStart == "" {
			return DeleteTarget{}, invalid("Occurrence start is required")
		}
		if datetime.IsDateOnly(r.OccurrenceStart) {
			return DeleteTarget{SeriesID: r.RecurringEventID, FromDate: r.OccurrenceStart}, nil
		}
		from, err := time.Parse(time.RFC3339, r.OccurrenceStart)
		if err != nil {
			return DeleteTarget{}, invalid("Invalid start date")
		}
		return DeleteTarget{SeriesID: r.RecurringEventID, From: from}, nil
	default:
		return DeleteTarget{}, invalid("Unknown scope %q", r.Scope)
	}
}

// EditTarget is the id an update of e is sent to. Occurrences always resolve to their
// series master: editing one occurrence edits the whole series.
func EditTarget(e Event) string {
	if e.Series != nil {
		return e.Series.MasterID
	}
	return e.ID
}

// ApplyOptimisticDelete removes the events the request will delete from a local list.
// The input slice is not modified.
func ApplyOptimisticDelete(events []Event, r DeletionRequest, loc *time.Location) []Event {
	target, err := r.Target()
	if err != nil {
		return append([]Event(nil), events...)
	}
	var boundary time.Time
	if target.Truncates() {
		boundary = target.From.In(loc)
		if target.FromDate != "" {
			boundary = AllDay{Start: target.FromDate}.Anchor(loc)
		}
	}

	out := make([]Event, 0, len(events))
	for _, e := range events {
		switch {
		case r.Scope == ScopeSingle:
			if e.ID == target.ID {
				continue
			}
		case r.Scope == ScopeSeries:
			if e.ID == target.ID || e.MasterID() == target.ID {
				continue
			}
		case target.Truncates():
			if e.MasterID() == target.SeriesID && !e.Anchor(loc).Before(boundary) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
