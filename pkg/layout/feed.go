package layout

import (
	"sort"
	"time"

	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/datetime"
)

type FeedKind string

const (
	KindEvent FeedKind = "event"
	KindTodo  FeedKind = "todo"
	KindChore FeedKind = "chore"
)

// undatedOffset places entries without a time of day at the end of their day.
const undatedOffset = 23*time.Hour + 59*time.Minute

// Task is a todo or chore as the feed sees it. Due is the instant it is due at, DueDate a
// bare calendar date for entries without a time.
type Task struct {
	ID      string
	Title   string
	Due     *time.Time
	DueDate string
	Done    bool
}

type FeedItem struct {
	Kind  FeedKind
	Title string
	Label string
	At    time.Time
	// Event is set for calendar entries, TaskID for todos and chores.
	Event  *calendar.Event
	TaskID string
}

type DayFeed struct {
	Title string
	Date  string
	Items []FeedItem
}

// TodayTomorrow builds the dashboard's two day feeds. Events, pending todos, and pending
// chores due that day are merged chronologically; on equal times events come first, then
// todos, then chores.
func TodayTomorrow(events []calendar.Event, todos, chores []Task, now time.Time, loc *time.Location) []DayFeed {
	today := midnight(now, loc)
	feeds := []DayFeed{
		{Title: "Today", Date: today.Format(datetime.DateLayout)},
		{Title: "Tomorrow", Date: today.AddDate(0, 0, 1).Format(datetime.DateLayout)},
	}
	buckets := BucketByDay(events, today, today.AddDate(0, 0, 2), loc)

	for i := range feeds {
		var items []FeedItem
		for _, e := range buckets[feeds[i].Date] {
			e := e
			items = append(items, FeedItem{
				Kind:  KindEvent,
				Title: e.Summary,
				Label: TimeLabel(e, loc),
				At:    e.Anchor(loc),
				Event: &e,
			})
		}
		items = append(items, taskItems(todos, KindTodo, feeds[i].Date, loc)...)
		items = append(items, taskItems(chores, KindChore, feeds[i].Date, loc)...)
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].At.Before(items[b].At)
		})
		feeds[i].Items = items
	}
	return feeds
}

func taskItems(tasks []Task, kind FeedKind, date string, loc *time.Location) []FeedItem {
	var items []FeedItem
	for _, task := range tasks {
		if task.Done {
			continue
		}
		at, label, ok := taskInstant(task, loc)
		if !ok || DayKey(at, loc) != date {
			continue
		}
		items = append(items, FeedItem{
			Kind:   kind,
			Title:  task.Title,
			Label:  label,
			At:     at,
			TaskID: task.ID,
		})
	}
	return items
}

func taskInstant(task Task, loc *time.Location) (time.Time, string, bool) {
	if task.Due != nil {
		return task.Due.In(loc), task.Due.In(loc).Format("15:04"), true
	}
	d, err := datetime.ParseDate(task.DueDate)
	if err != nil {
		return time.Time{}, "", false
	}
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return day.Add(undatedOffset), "", true
}
