package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/cwarden/wkcal/internal/calendar"
)

func (m *Model) viewWeek() string {
	if m.calendar == nil {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), "", m.renderStatusBar())
	}

	colWidth := m.columnWidth()
	columns := make([]string, 0, len(m.calendar.Days))
	for i, d := range m.calendar.Days {
		columns = append(columns, m.renderDay(i, d, colWidth))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		m.renderStatusBar(),
	)
}

// columnWidth is the inner width of a day column, border excluded.
func (m *Model) columnWidth() int {
	width := m.config.ColumnWidth
	if m.width > 0 {
		if fit := m.width/7 - 2; fit < width {
			width = fit
		}
	}
	if width < 6 {
		width = 6
	}
	return width
}

func (m *Model) renderTitle() string {
	scope := m.view.Scope
	if scope == "" {
		scope = "(global)"
	}
	title := fmt.Sprintf("wkcal  %s", scope)
	if m.calendar != nil && m.calendar.Mode == calendar.ModeDates && len(m.calendar.Days) > 0 {
		first := m.calendar.Days[0].Date
		last := m.calendar.Days[len(m.calendar.Days)-1].Date
		title += fmt.Sprintf("  %s - %s", first.Format("Jan 2"), last.Format("Jan 2, 2006"))
	}
	return m.styles.Header.Render(title)
}

func (m *Model) renderDay(index int, d calendar.Day, width int) string {
	selectedDay := index == m.selectedDay

	heading := strings.TrimSpace(d.Label + " " + d.DateLabel)
	if lipgloss.Width(heading) > width {
		heading = strings.TrimSpace(d.Short + " " + d.DateLabel)
	}
	heading = truncate.StringWithTail(heading, uint(width), "…")

	headerStyle := m.styles.Normal.Bold(true)
	if d.Weekday == time.Saturday || d.Weekday == time.Sunday {
		headerStyle = m.styles.Weekend.Bold(true)
	}
	if d.Today {
		headerStyle = m.styles.Today
	}

	lines := []string{headerStyle.Render(heading), ""}
	for i, t := range d.Tasks {
		box := "[ ] "
		if t.Completed {
			box = "[x] "
		}
		for j, line := range m.wrapTask(t.Text, width-len(box)) {
			prefix := box
			if j > 0 {
				prefix = strings.Repeat(" ", len(box))
			}
			text := prefix + line

			style := m.styles.Normal
			if t.Completed {
				style = m.styles.Completed
			}
			if selectedDay && i == m.selectedTask {
				style = m.styles.Selected
			}
			lines = append(lines, style.Render(text))
		}
	}

	border := m.styles.Border
	if selectedDay {
		border = m.styles.Active
	}
	height := m.height - 6
	if height < len(lines) {
		height = len(lines)
	}
	return border.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) wrapTask(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	if !m.config.WrapText {
		return []string{truncate.StringWithTail(text, uint(width), "…")}
	}
	return strings.Split(wordwrap.String(text, width), "\n")
}

func (m *Model) viewHelp() string {
	key := func(action, fallback string) string {
		if k, ok := m.config.KeyBindings[action]; ok {
			return k
		}
		return fallback
	}
	line := func(action, desc string) string {
		return m.styles.Help.Render(fmt.Sprintf("  %-8s - %s", key(action, "?"), desc))
	}

	help := []string{
		m.styles.Header.Render("wkcal Help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		line("prev_day", "Previous day (←)"),
		line("next_day", "Next day (→)"),
		line("prev_todo", "Previous task (↑)"),
		line("next_todo", "Next task (↓)"),
		line("prev_week", "Previous week (dates view)"),
		line("next_week", "Next week (dates view)"),
		line("today", "Go to today"),
		"",
		m.styles.Normal.Render("Actions:"),
		line("add_todo", "Add task (prefix with a day: 'fri call mom')"),
		line("toggle_todo", "Toggle completed (space, enter)"),
		line("delete_todo", "Delete task"),
		line("clear_completed", "Clear completed tasks"),
		line("toggle_view", "Switch weekday table / dates view"),
		line("toggle_week_start", "Start week on Monday / Sunday"),
		line("refresh", "Refresh"),
		line("help", "Toggle help"),
		line("quit", "Quit"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) viewInput() string {
	var sections []string

	day := "today"
	if d := m.selectedDayModel(); d != nil {
		day = d.Label
		if d.DateLabel != "" {
			day += " " + d.DateLabel
		}
	}
	sections = append(sections, m.styles.Header.Render("New Task: "+day))
	sections = append(sections, "")

	prompt := m.styles.Normal.Render("Enter task (e.g., 'buy milk' or 'tomorrow call mom'):")
	sections = append(sections, prompt)

	// Show input with cursor
	input := string(m.inputBuffer[:m.cursorPos]) + "█" + string(m.inputBuffer[m.cursorPos:])
	sections = append(sections, m.styles.Selected.Render(input))
	sections = append(sections, "")

	sections = append(sections, m.styles.Help.Render("Enter to save, Esc to cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s", m.view.Mode)
	if m.calendar != nil {
		pending, done := m.calendar.Counts()
		left += fmt.Sprintf(" | Week starts %s | %d pending, %d done", m.calendar.StartOfWeek, pending, done)
	}

	right := "? for help | q to quit"
	switch {
	case m.mode == ViewConfirmClear:
		right = m.styles.Message.Render("Clear completed tasks? (y/n)")
	case m.message != "" && m.messageErr:
		right = m.styles.Error.Render(m.message)
	case m.message != "":
		right = m.styles.Message.Render(m.message)
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	middle := strings.Repeat(" ", width)

	return m.styles.Help.Render(left + middle + right)
}
