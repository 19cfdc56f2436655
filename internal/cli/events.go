package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homedash/homedash/internal/config"
	"github.com/homedash/homedash/internal/database"
	"github.com/homedash/homedash/internal/utils"
	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/composer"
	"github.com/homedash/homedash/pkg/datetime"
	"github.com/homedash/homedash/pkg/google"
	"github.com/homedash/homedash/pkg/layout"
	"github.com/homedash/homedash/pkg/recurrence"
	"github.com/spf13/cobra"
)

type addOptions struct {
	summary     string
	description string
	location    string
	start       string
	end         string
	allDay      bool
	repeat      string
	interval    int
}

var (
	listFrom   string
	listDays   int
	gridDate   string
	gridWeek   string
	addOpts    addOptions
	delScope   string
	delSeries  string
	delStartAt string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show and change calendar events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming events",
	RunE:  runList,
}

var eventsWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the week containing --date",
	RunE:  runWeek,
}

var eventsMonthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show the month containing --date",
	RunE:  runMonth,
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an event",
	Long: `Create an event. --start and --end take local date-times such as
2024-03-11T09:00, or dates with --all-day. Without --start the event begins
at the next half hour. Without --end a timed event lasts the configured
default duration and an all-day event covers one day.`,
	RunE: runAdd,
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event or part of a series",
	Long: `Delete an event. Occurrences of a series accept --scope future or series
together with --series; future also needs --start, the occurrence's start.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd, eventsWeekCmd, eventsMonthCmd, eventsAddCmd, eventsDeleteCmd)

	eventsListCmd.Flags().StringVar(&listFrom, "from", "", "first day (YYYY-MM-DD, default today)")
	eventsListCmd.Flags().IntVarP(&listDays, "days", "d", 7, "number of days to list")

	eventsWeekCmd.Flags().StringVar(&gridDate, "date", "", "any day of the week (YYYY-MM-DD, default today)")
	eventsWeekCmd.Flags().StringVar(&gridWeek, "week", "", "ISO week (YYYY-Www), overrides --date")
	eventsMonthCmd.Flags().StringVar(&gridDate, "date", "", "any day of the month (YYYY-MM-DD, default today)")

	eventsAddCmd.Flags().StringVarP(&addOpts.summary, "summary", "s", "", "title")
	eventsAddCmd.Flags().StringVar(&addOpts.description, "description", "", "description")
	eventsAddCmd.Flags().StringVar(&addOpts.location, "location", "", "location")
	eventsAddCmd.Flags().StringVar(&addOpts.start, "start", "", "start")
	eventsAddCmd.Flags().StringVar(&addOpts.end, "end", "", "end, the last day for all-day events")
	eventsAddCmd.Flags().BoolVar(&addOpts.allDay, "all-day", false, "all-day event")
	eventsAddCmd.Flags().StringVar(&addOpts.repeat, "repeat", "", "daily, weekly or monthly")
	eventsAddCmd.Flags().IntVar(&addOpts.interval, "interval", 1, "repeat every n days, weeks or months")

	eventsDeleteCmd.Flags().StringVar(&delScope, "scope", string(calendar.ScopeSingle), "single, future or series")
	eventsDeleteCmd.Flags().StringVar(&delSeries, "series", "", "series id of the occurrence")
	eventsDeleteCmd.Flags().StringVar(&delStartAt, "start", "", "occurrence start (RFC3339, or YYYY-MM-DD for all-day)")
}

// engine is the calendar side of the application without the HTTP server.
type engine struct {
	cfg     config.Application
	loc     *time.Location
	service *calendar.Service
	close   func()
}

func openEngine(ctx context.Context) (*engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()
	auth := google.NewGoogleAuth(google.NewTokenRepository(db), cfg)
	service := calendar.NewService(google.NewService(auth, cfg.Google.CalendarId, loc), loc)
	return &engine{cfg: cfg, loc: loc, service: service, close: db.Close}, nil
}

// fetch degrades to no events when no calendar is connected.
func (e *engine) fetch(cmd *cobra.Command, from, to time.Time) ([]calendar.Event, error) {
	events, err := e.service.Events(cmd.Context(), from, to)
	if errors.Is(err, calendar.ErrNeedsSetup) {
		fmt.Fprintln(cmd.ErrOrStderr(), NoticeStyle.Render(needsSetupNotice))
		return nil, nil
	}
	return events, err
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	from, err := dayFlag(listFrom, time.Now(), e.loc)
	if err != nil {
		return err
	}
	events, err := e.fetch(cmd, from, from.AddDate(0, 0, max(listDays, 1)))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderEvents(events, e.loc))
	return nil
}

func runWeek(cmd *cobra.Command, args []string) error {
	e, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	now := time.Now()
	date, err := weekFlag(gridWeek, gridDate, now, e.loc)
	if err != nil {
		return err
	}
	start, end := layout.WeekRange(date, e.loc)
	events, err := e.fetch(cmd, start, end)
	if err != nil {
		return err
	}
	week := layout.WeekGrid(events, date, e.loc, layout.Options{Today: now})
	fmt.Fprint(cmd.OutOrStdout(), renderWeek(week))
	return nil
}

func runMonth(cmd *cobra.Command, args []string) error {
	e, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	now := time.Now()
	date, err := dayFlag(gridDate, now, e.loc)
	if err != nil {
		return err
	}
	start, end := layout.MonthRange(date, e.loc)
	events, err := e.fetch(cmd, start, end)
	if err != nil {
		return err
	}
	month := layout.MonthGrid(events, date, e.loc, layout.Options{Today: now, PreviewCap: e.cfg.Calendar.MonthPreviewCap})
	fmt.Fprint(cmd.OutOrStdout(), renderMonth(month))
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	e, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	c := composer.New(calendar.NewStore(e.service), utils.SystemClock{}, e.loc, composerConfig(e.cfg))
	c.OpenAdd()
	if err := fillDraft(c, addOpts, e.loc); err != nil {
		return err
	}
	event, err := c.Submit(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), HeaderStyle.Render("Created"))
	fmt.Fprintln(cmd.OutOrStdout(), eventLine(event, e.loc))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	request := calendar.DeletionRequest{
		Scope:            calendar.Scope(delScope),
		ID:               args[0],
		RecurringEventID: delSeries,
		OccurrenceStart:  delStartAt,
	}
	if err := e.service.DeleteEvent(cmd.Context(), request); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
	return nil
}

func composerConfig(cfg config.Application) composer.Config {
	return composer.Config{
		NewDuration:    time.Duration(cfg.Calendar.NewDurationMinutes) * time.Minute,
		AdjustDuration: time.Duration(cfg.Calendar.DefaultDurationMinutes) * time.Minute,
	}
}

// fillDraft copies the add flags into an open composer. A timed event without an end
// lasts the composer's adjust duration.
func fillDraft(c *composer.Composer, opts addOptions, loc *time.Location) error {
	if err := c.SetSummary(opts.summary); err != nil {
		return err
	}
	if err := c.SetDescription(opts.description); err != nil {
		return err
	}
	if err := c.SetLocation(opts.location); err != nil {
		return err
	}

	if opts.allDay {
		if err := c.SetAllDay(true); err != nil {
			return err
		}
		if opts.start != "" {
			if _, err := datetime.ParseDate(opts.start); err != nil {
				return fmt.Errorf("invalid start date %q", opts.start)
			}
			end := opts.end
			if end == "" {
				end = opts.start
			}
			if err := c.SetStart(opts.start); err != nil {
				return err
			}
			if err := c.SetEnd(end); err != nil {
				return err
			}
		}
	} else if opts.start != "" {
		start, err := datetime.ParseLocal(opts.start, loc)
		if err != nil {
			return fmt.Errorf("invalid start %q", opts.start)
		}
		end := opts.end
		if end == "" {
			end = datetime.FormatLocal(start.Add(c.AdjustDuration()), loc)
		}
		if err := c.SetStart(datetime.FormatLocal(start, loc)); err != nil {
			return err
		}
		if err := c.SetEnd(end); err != nil {
			return err
		}
	}

	if opts.repeat != "" && opts.repeat != string(recurrence.None) {
		freq := recurrence.ParseFrequency(opts.repeat)
		if freq == recurrence.None {
			return fmt.Errorf("unknown repeat %q, use daily, weekly or monthly", opts.repeat)
		}
		if err := c.SetRecurrence(recurrence.Rule{Frequency: freq, Interval: opts.interval}); err != nil {
			return err
		}
	}
	if !c.CanSubmit() {
		return errors.New("summary, start and end are required")
	}
	return nil
}

// dayFlag parses a YYYY-MM-DD flag as midnight in loc, defaulting to today.
// weekFlag picks the Monday of an ISO week when one is given and falls back to dayFlag.
func weekFlag(week, date string, now time.Time, loc *time.Location) (time.Time, error) {
	if week == "" {
		return dayFlag(date, now, loc)
	}
	number, err := layout.WeekNumberFromString(week)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week %q, expected YYYY-Www", week)
	}
	return number.Monday(loc), nil
}

func dayFlag(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return utils.StartOfDay(now, loc), nil
	}
	d, err := datetime.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}
