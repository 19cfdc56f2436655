package agenda

import (
	"net/http"
	"time"

	"github.com/homedash/homedash/internal/rest"
	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/datetime"
	"github.com/homedash/homedash/pkg/layout"
)

type FeedItemDTO struct {
	Kind   string             `json:"kind"`
	Title  string             `json:"title"`
	Label  string             `json:"label"`
	At     string             `json:"at"`
	Event  *calendar.EventDTO `json:"event,omitempty"`
	TaskId string             `json:"taskId,omitempty"`
}

type DayFeedDTO struct {
	Title string        `json:"title"`
	Date  string        `json:"date"`
	Items []FeedItemDTO `json:"items"`
}

type EntryDTO struct {
	Label string            `json:"label"`
	Event calendar.EventDTO `json:"event"`
}

type ForecastDTO struct {
	layout.Forecast
	Label string `json:"label"`
}

type ColumnDTO struct {
	Date        string       `json:"date"`
	Title       string       `json:"title"`
	Today       bool         `json:"today"`
	Entries     []EntryDTO   `json:"entries"`
	Placeholder string       `json:"placeholder,omitempty"`
	Forecast    *ForecastDTO `json:"forecast,omitempty"`
}

type WeekDTO struct {
	Week       string      `json:"week"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
	Columns    []ColumnDTO `json:"columns"`
	NeedsSetup bool        `json:"needsSetup,omitempty"`
}

type MonthDayDTO struct {
	Date      string     `json:"date"`
	Day       int        `json:"day"`
	InMonth   bool       `json:"inMonth"`
	Today     bool       `json:"today"`
	Preview   []EntryDTO `json:"preview"`
	More      int        `json:"more,omitempty"`
	MoreLabel string     `json:"moreLabel,omitempty"`
}

type MonthDTO struct {
	Title      string          `json:"title"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Weeks      [][]MonthDayDTO `json:"weeks"`
	NeedsSetup bool            `json:"needsSetup,omitempty"`
}

type DayDTO struct {
	Date       string     `json:"date"`
	Entries    []EntryDTO `json:"entries"`
	NeedsSetup bool       `json:"needsSetup,omitempty"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.service.Feed(r.Context())
	if err != nil {
		calendar.WriteServiceError(w, err)
		return
	}
	loc := h.service.loc()
	days := make([]DayFeedDTO, 0, len(feed.Days))
	for _, day := range feed.Days {
		dto := DayFeedDTO{Title: day.Title, Date: day.Date, Items: make([]FeedItemDTO, 0, len(day.Items))}
		for _, item := range day.Items {
			itemDTO := FeedItemDTO{
				Kind:   string(item.Kind),
				Title:  item.Title,
				Label:  item.Label,
				At:     item.At.In(loc).Format(time.RFC3339),
				TaskId: item.TaskID,
			}
			if item.Event != nil {
				e := calendar.EventToDTO(*item.Event)
				itemDTO.Event = &e
			}
			dto.Items = append(dto.Items, itemDTO)
		}
		days = append(days, dto)
	}
	rest.WriteJSON(w, http.StatusOK, map[string]any{"days": days, "needsSetup": feed.NeedsSetup})
}

// GetWeek shows the week given by ?week=YYYY-Www, or the one containing ?date.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	week, err := h.service.Week(r.Context(), date)
	if err != nil {
		calendar.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, WeekToDTO(week))
}

func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	month, err := h.service.Month(r.Context(), date)
	if err != nil {
		calendar.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, MonthToDTO(month))
}

func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	day, err := h.service.Day(r.Context(), date)
	if err != nil {
		calendar.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DayDTO{Date: day.Date, Entries: entryDTOs(day.Entries), NeedsSetup: day.NeedsSetup})
}

// dateParam reads ?date=YYYY-MM-DD in the household zone; today when absent.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	loc := h.service.loc()
	value := r.URL.Query().Get("date")
	if value == "" {
		return h.service.clock.Now().In(loc), true
	}
	d, err := datetime.ParseDate(value)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", "expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), true
}

func (h *Handler) weekParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	value := r.URL.Query().Get("week")
	if value == "" {
		return h.dateParam(w, r)
	}
	number, err := layout.WeekNumberFromString(value)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid week", "expected YYYY-Www")
		return time.Time{}, false
	}
	return number.Monday(h.service.loc()), true
}

func WeekToDTO(week Week) WeekDTO {
	dto := WeekDTO{
		Week:       week.Number.String(),
		Start:      week.Start,
		End:        week.End,
		Columns:    make([]ColumnDTO, 0, len(week.Columns)),
		NeedsSetup: week.NeedsSetup,
	}
	for _, c := range week.Columns {
		column := ColumnDTO{
			Date:        c.Date,
			Title:       c.Title,
			Today:       c.Today,
			Entries:     entryDTOs(c.Entries),
			Placeholder: c.Placeholder,
		}
		if c.Forecast != nil {
			column.Forecast = &ForecastDTO{Forecast: *c.Forecast, Label: c.Forecast.Label()}
		}
		dto.Columns = append(dto.Columns, column)
	}
	return dto
}

func MonthToDTO(month Month) MonthDTO {
	dto := MonthDTO{
		Title:      month.Title,
		Year:       month.Year,
		Month:      int(month.Month.Month),
		Weeks:      make([][]MonthDayDTO, 0, len(month.Weeks)),
		NeedsSetup: month.NeedsSetup,
	}
	for _, row := range month.Weeks {
		days := make([]MonthDayDTO, 0, len(row))
		for _, d := range row {
			days = append(days, MonthDayDTO{
				Date:      d.Date,
				Day:       d.Day,
				InMonth:   d.InMonth,
				Today:     d.Today,
				Preview:   entryDTOs(d.Preview),
				More:      d.More,
				MoreLabel: d.MoreLabel(),
			})
		}
		dto.Weeks = append(dto.Weeks, days)
	}
	return dto
}

func entryDTOs(entries []layout.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryDTO{Label: e.Label, Event: calendar.EventToDTO(e.Event)})
	}
	return out
}
