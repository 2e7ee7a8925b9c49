package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mapletrack/internal/period"
)

// mapletrack theme for mtctl output.

const (
	IconBoss     = "⚔️"
	IconCalendar = "📅"
	IconMemo     = "📝"
	IconDone     = "✅"
	IconOpen     = "⬜"
	IconInfo     = "ℹ️"
	IconError    = "🧨"
	IconBroom    = "🧹"
	IconScroll   = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("208") // maple orange
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	Day   = lipgloss.NewStyle().Width(4).Align(lipgloss.Right)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Check renders a cleared/open marker followed by label.
func Check(cleared bool, label string) string {
	if cleared {
		return IconDone + " " + Good.Render(label)
	}
	return IconOpen + " " + label
}

// CalendarGrid renders a month matrix. Days in marked get an asterisk.
func CalendarGrid(weeks [][]period.Cell, marked map[string]bool) string {
	header := make([]string, 0, 7)
	if len(weeks) > 0 {
		for _, cell := range weeks[0] {
			t, _ := period.ParseDateKey(cell.DateKey)
			header = append(header, Day.Render(t.Weekday().String()[:3]))
		}
	}
	lines := []string{H2.Render(strings.Join(header, ""))}
	for _, row := range weeks {
		var b strings.Builder
		for _, cell := range row {
			day := strings.TrimLeft(cell.DateKey[len(cell.DateKey)-2:], "0")
			if marked[cell.DateKey] {
				day += "*"
			}
			style := Day
			switch {
			case cell.IsToday:
				style = style.Inherit(Gold)
			case !cell.IsCurrentMonth:
				style = style.Inherit(Muted)
			case marked[cell.DateKey]:
				style = style.Inherit(Warn)
			}
			b.WriteString(style.Render(day))
		}
		lines = append(lines, b.String())
	}
	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Notifier prints optimistic-update toasts.
type Notifier struct {
	Out io.Writer
}

func (n Notifier) Success(msg string) {
	fmt.Fprintln(n.Out, Good.Render(IconDone+" "+msg))
}

func (n Notifier) Error(msg string) {
	fmt.Fprintln(n.Out, Bad.Render(IconError+" "+msg))
}
