package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/homedash/homedash/pkg/calendar"
	"github.com/homedash/homedash/pkg/layout"
	"github.com/homedash/homedash/pkg/recurrence"
)

const (
	needsSetupNotice = "No calendar connected. Sign in with Google from the dashboard settings."
	monthCellText    = 15
)

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// renderEvents prints events grouped by the day they are anchored on.
func renderEvents(events []calendar.Event, loc *time.Location) string {
	if len(events) == 0 {
		return MutedStyle.Render("No events") + "\n"
	}
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b calendar.Event) int {
		return a.Anchor(loc).Compare(b.Anchor(loc))
	})

	var b strings.Builder
	day := ""
	for _, e := range sorted {
		key := layout.DayKey(e.Anchor(loc), loc)
		if key != day {
			if day != "" {
				b.WriteString("\n")
			}
			b.WriteString(HeaderStyle.Render(key) + "\n")
			day = key
		}
		b.WriteString(eventLine(e, loc) + "\n")
	}
	return b.String()
}

func eventLine(e calendar.Event, loc *time.Location) string {
	line := "  " + TimeStyle.Render(layout.TimeLabel(e, loc)) + " " + e.Summary
	if rule := recurrence.DecodeFirst(e.Recurrence); rule.Frequency != recurrence.None {
		line += " " + MutedStyle.Render("("+recurrence.Describe(rule)+")")
	}
	if e.Series != nil {
		line += " " + MutedStyle.Render("[series "+e.Series.MasterID+"]")
	}
	return line + "  " + MutedStyle.Render(e.ID)
}

func renderWeek(week layout.Week) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Week %s", week.Number)))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  %s..%s", week.Start, week.End)) + "\n")
	for _, col := range week.Columns {
		header := HeaderStyle
		if col.Today {
			header = TodayStyle
		}
		b.WriteString("\n" + header.Render(col.Title))
		if col.Forecast != nil {
			b.WriteString("  " + MutedStyle.Render(col.Forecast.Label()))
		}
		b.WriteString("\n")
		if col.Placeholder != "" {
			b.WriteString("  " + MutedStyle.Render(col.Placeholder) + "\n")
			continue
		}
		for _, entry := range col.Entries {
			b.WriteString("  " + TimeStyle.Render(entry.Label) + " " + entry.Event.Summary + "\n")
		}
	}
	return b.String()
}

// renderMonth draws the month as a grid. Days outside the month are faint.
func renderMonth(month layout.Month) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(month.Title) + "\n\n")

	header := make([]string, 0, len(weekdayNames))
	for _, name := range weekdayNames {
		header = append(header, MonthCellStyle.Bold(true).Render(name))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...) + "\n")

	for _, week := range month.Weeks {
		cells := make([]string, 0, len(week))
		for _, day := range week {
			cells = append(cells, monthCell(day))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
	}
	return b.String()
}

func monthCell(day layout.MonthDay) string {
	style := MonthCellStyle
	switch {
	case !day.InMonth:
		style = style.Foreground(mutedColor).Faint(true)
	case day.Today:
		style = style.Bold(true).Foreground(secondaryColor)
	}
	lines := []string{fmt.Sprintf("%2d", day.Day)}
	for _, entry := range day.Preview {
		lines = append(lines, truncate(entry.Event.Summary, monthCellText))
	}
	if more := day.MoreLabel(); more != "" {
		lines = append(lines, more)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "~"
}
