package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/homedash/homedash/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/health", health(deps.DB)).Methods("GET")

	// Calendar events
	r.HandleFunc("/api/events", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/events.ics", deps.CalendarHandler.ExportEvents).Methods("GET")

	// Todo and chore lists
	r.HandleFunc("/api/lists/{list}/items", deps.ChecklistHandler.ListItems).Methods("GET")
	r.HandleFunc("/api/lists/{list}/items", deps.ChecklistHandler.CreateItem).Methods("POST")
	r.HandleFunc("/api/lists/{list}/items/{itemId}", deps.ChecklistHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/lists/{list}/items/{itemId}", deps.ChecklistHandler.DeleteItem).Methods("DELETE")

	// Dashboard views
	r.HandleFunc("/api/agenda", deps.AgendaHandler.GetFeed).Methods("GET")
	r.HandleFunc("/api/agenda/week", deps.AgendaHandler.GetWeek).Methods("GET")
	r.HandleFunc("/api/agenda/month", deps.AgendaHandler.GetMonth).Methods("GET")
	r.HandleFunc("/api/agenda/day", deps.AgendaHandler.GetDay).Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth", deps.GoogleAuth.Status).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
}

// health answers OK while the database is reachable.
func health(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.Check(r.Context(), db); err != nil {
			log.Warnf("health check failed: %v", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}
}
