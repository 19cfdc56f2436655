package layout

import (
	"fmt"
	"time"

	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/datetime"
)

const DefaultPreviewCap = 3

// Forecast is the weather shown in a week column header.
type Forecast struct {
	MaxTemp             float64 `json:"maxTemp"`
	MinTemp             float64 `json:"minTemp"`
	PrecipitationChance int     `json:"precipitationChance"`
}

// Label renders the forecast; precipitation is only shown when there is a chance of it.
func (f Forecast) Label() string {
	label := fmt.Sprintf("%.0f°/%.0f°", f.MaxTemp, f.MinTemp)
	if f.PrecipitationChance > 0 {
		label += fmt.Sprintf(" %d%%", f.PrecipitationChance)
	}
	return label
}

type Options struct {
	Today      time.Time
	Forecasts  map[string]Forecast
	PreviewCap int
}

type Column struct {
	Date        string
	Weekday     time.Weekday
	Title       string
	Today       bool
	Entries     []Entry
	Placeholder string
	Forecast    *Forecast
}

type Week struct {
	Number  WeekNumber
	Start   string
	End     string
	Columns []Column
}

type MonthDay struct {
	Date    string
	Day     int
	InMonth bool
	Today   bool
	Preview []Entry
	More    int
	// Events holds every entry of the day for the day-detail view.
	Events []Entry
}

// MoreLabel is "+N more" when the preview is truncated.
func (d MonthDay) MoreLabel() string {
	if d.More <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", d.More)
}

type Month struct {
	Year  int
	Month time.Month
	Title string
	Weeks [][]MonthDay
}

// WeekRange is the Monday-started week containing date.
func WeekRange(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfWeek(date.In(loc))
	return start, start.AddDate(0, 0, 7)
}

// MonthRange spans the full weeks intersecting date's month: at least five rows, six when
// the month needs them.
func MonthRange(date time.Time, loc *time.Location) (time.Time, time.Time) {
	date = date.In(loc)
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, loc)
	start := StartOfWeek(first)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) - int(time.Monday) + 7) % 7
	rows := (offset + daysInMonth + 6) / 7
	if rows < 5 {
		rows = 5
	}
	return start, start.AddDate(0, 0, rows*7)
}

// DayColumns lays out days consecutive days from start, one column per day.
func DayColumns(events []calendar.Event, start time.Time, days int, loc *time.Location, opts Options) []Column {
	start = midnight(start, loc)
	end := start.AddDate(0, 0, days)
	buckets := BucketByDay(events, start, end, loc)
	today := ""
	if !opts.Today.IsZero() {
		today = DayKey(opts.Today, loc)
	}

	columns := make([]Column, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format(datetime.DateLayout)
		column := Column{
			Date:    key,
			Weekday: day.Weekday(),
			Title:   day.Format("Mon 2"),
			Today:   key == today,
			Entries: entries(buckets[key], loc),
		}
		if len(column.Entries) == 0 {
			column.Placeholder = FreeLabel
		}
		if f, ok := opts.Forecasts[key]; ok {
			column.Forecast = &f
		}
		columns = append(columns, column)
	}
	return columns
}

// WeekGrid lays out the Monday-started week containing date.
func WeekGrid(events []calendar.Event, date time.Time, loc *time.Location, opts Options) Week {
	start, end := WeekRange(date, loc)
	return Week{
		Number:  WeekNumberFromDate(start),
		Start:   start.Format(datetime.DateLayout),
		End:     end.Format(datetime.DateLayout),
		Columns: DayColumns(events, start, 7, loc, opts),
	}
}

// MonthGrid lays out date's month in Monday-first rows. Days of neighbouring months are
// populated too but flagged as outside the month.
func MonthGrid(events []calendar.Event, date time.Time, loc *time.Location, opts Options) Month {
	date = date.In(loc)
	start, end := MonthRange(date, loc)
	buckets := BucketByDay(events, start, end, loc)
	previewCap := opts.PreviewCap
	if previewCap <= 0 {
		previewCap = DefaultPreviewCap
	}
	today := ""
	if !opts.Today.IsZero() {
		today = DayKey(opts.Today, loc)
	}

	month := Month{
		Year:  date.Year(),
		Month: date.Month(),
		Title: date.Format("January 2006"),
	}
	for row := start; row.Before(end); row = row.AddDate(0, 0, 7) {
		week := make([]MonthDay, 0, 7)
		for i := 0; i < 7; i++ {
			day := row.AddDate(0, 0, i)
			key := day.Format(datetime.DateLayout)
			all := entries(buckets[key], loc)
			d := MonthDay{
				Date:    key,
				Day:     day.Day(),
				InMonth: day.Month() == date.Month(),
				Today:   key == today,
				Events:  all,
				Preview: all,
			}
			if len(all) > previewCap {
				d.Preview = all[:previewCap]
				d.More = len(all) - previewCap
			}
			week = append(week, d)
		}
		month.Weeks = append(month.Weeks, week)
	}
	return month
}

// DayDetail lists every entry of a single day.
func DayDetail(events []calendar.Event, date time.Time, loc *time.Location) []Entry {
	start := midnight(date, loc)
	return entries(BucketByDay(events, start, start.AddDate(0, 0, 1), loc)[DayKey(start, loc)], loc)
}
