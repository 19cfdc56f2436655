package cli

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	accentColor    = lipgloss.Color("#F59E0B") // Amber

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	HeaderStyle  = lipgloss.NewStyle().Bold(true)
	TodayStyle   = lipgloss.NewStyle().Bold(true).Foreground(secondaryColor)
	TimeStyle    = lipgloss.NewStyle().Foreground(secondaryColor).Width(14)
	MutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	OutsideStyle = lipgloss.NewStyle().Foreground(mutedColor).Faint(true)
	NoticeStyle  = lipgloss.NewStyle().Foreground(accentColor)

	MonthCellStyle = lipgloss.NewStyle().Width(16).PaddingRight(1)
)
