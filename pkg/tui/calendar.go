package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

const calendarWidth = 30

var weekdayNames = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.focusedPane = (m.focusedPane + 1) % 2

	case key.Matches(msg, m.keys.Up):
		if m.focusedPane == 1 {
			if m.calCursor > 0 {
				m.calCursor--
			}
		} else {
			m.selectDate(m.selectedDate.AddDate(0, 0, -7))
		}

	case key.Matches(msg, m.keys.Down):
		if m.focusedPane == 1 {
			if m.calCursor < len(m.dayTasks())-1 {
				m.calCursor++
			}
		} else {
			m.selectDate(m.selectedDate.AddDate(0, 0, 7))
		}

	case key.Matches(msg, m.keys.Left):
		m.selectDate(m.selectedDate.AddDate(0, 0, -1))

	case key.Matches(msg, m.keys.Right):
		m.selectDate(m.selectedDate.AddDate(0, 0, 1))

	case key.Matches(msg, m.keys.Today):
		m.selectDate(m.today())

	case key.Matches(msg, m.keys.WeekView):
		m.weekView = !m.weekView

	case key.Matches(msg, m.keys.FilterPriority):
		m.calFilter.Priority = tasks.Priority(cycleOption(priorityOptions(), string(m.calFilter.Priority)))
		m.calCursor = 0

	case key.Matches(msg, m.keys.FilterCategory):
		m.calFilter.Category = tasks.Category(cycleOption(categoryOptions(), string(m.calFilter.Category)))
		m.calCursor = 0

	case key.Matches(msg, m.keys.FilterStatus):
		m.calFilter.Status = nextStatus(m.calFilter.Status)
		m.calCursor = 0

	case key.Matches(msg, m.keys.ClearFilters):
		m.calFilter = m.calFilter.Clear()
		m.calCursor = 0

	case key.Matches(msg, m.keys.Add):
		return m, m.openAddForm(m.selectedDate)

	default:
		if t, ok := m.selectedTask(); ok {
			return m.handleTaskAction(msg, t)
		}
	}
	return m, nil
}

func (m *Model) selectDate(day time.Time) {
	m.selectedDate = day
	m.calCursor = 0
}

// dayTasks returns the filtered tasks due on the selected date.
func (m Model) dayTasks() []tasks.Task {
	return tasks.SortByPriority(m.calFilter.Apply(tasks.ForDate(m.tasks, m.selectedDate)))
}

func priorityOptions() []string {
	opts := []string{""}
	for _, p := range tasks.Priorities {
		opts = append(opts, string(p))
	}
	return opts
}

func categoryOptions() []string {
	opts := []string{""}
	for _, c := range tasks.Categories {
		opts = append(opts, string(c))
	}
	return opts
}

// cycleOption returns the option after cur, wrapping around.
func cycleOption(opts []string, cur string) string {
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func nextStatus(s tasks.StatusFilter) tasks.StatusFilter {
	if s == "" {
		s = tasks.StatusAll
	}
	opts := make([]string, len(tasks.StatusFilters))
	for i, f := range tasks.StatusFilters {
		opts[i] = string(f)
	}
	return tasks.StatusFilter(cycleOption(opts, string(s)))
}

func (m Model) renderCalendar(width, height int) string {
	leftWidth := calendarWidth
	rightWidth := width - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}

	var left string
	if m.weekView {
		left = m.renderWeekStrip()
	} else {
		left = m.renderMonthGrid()
	}
	left += "\n\n" + m.renderFilterSummary()

	right := m.renderDayList(rightWidth, height)

	sepColor := ColorGrayDim
	if m.focusedPane == 1 {
		sepColor = ColorAccent
	}
	sep := lipgloss.NewStyle().Foreground(sepColor).Render("│")

	var b strings.Builder
	for i := 0; i < height; i++ {
		b.WriteString(getLine(left, i, leftWidth))
		b.WriteString(sep)
		b.WriteString(getLine(right, i, rightWidth))
		if i < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderMonthGrid() string {
	var b strings.Builder
	sel := m.selectedDate
	first := time.Date(sel.Year(), sel.Month(), 1, 0, 0, 0, 0, sel.Location())
	start := tasks.WeekDates(first)[0]
	marks := tasks.DueDates(m.calFilter.Apply(m.tasks))

	b.WriteString(HeaderStyle.Render(sel.Format("January 2006")))
	b.WriteString("\n")
	b.WriteString(CalendarHeaderStyle.Render(" " + strings.Join(weekdayNames, "  ")))
	b.WriteString("\n")

	day := start
	for week := 0; week < 6; week++ {
		for i := 0; i < 7; i++ {
			b.WriteString(m.renderDayCell(day, day.Month() == sel.Month(), marks))
			day = day.AddDate(0, 0, 1)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderWeekStrip() string {
	var b strings.Builder
	week := tasks.WeekDates(m.selectedDate)
	marks := tasks.DueDates(m.calFilter.Apply(m.tasks))

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Week of %s", week[0].Format("2 Jan"))))
	b.WriteString("\n")
	for i, day := range week {
		b.WriteString(CalendarHeaderStyle.Render(weekdayNames[i] + " "))
		b.WriteString(m.renderDayCell(day, true, marks))
		count := len(m.calFilter.Apply(tasks.ForDate(m.tasks, day)))
		if count > 0 {
			b.WriteString(FooterStyle.Render(fmt.Sprintf(" %d task(s)", count)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderDayCell renders one 4-column day cell with a task marker.
func (m Model) renderDayCell(day time.Time, inMonth bool, marks map[string]bool) string {
	num := fmt.Sprintf(" %2d", day.Day())
	mark := " "
	if marks[tasks.FormatDate(day)] {
		mark = CalendarMarkStyle.Render(IconMark)
	}

	style := CalendarDayStyle
	switch {
	case sameDay(day, m.selectedDate):
		style = CalendarSelectedStyle
	case sameDay(day, m.today()):
		style = CalendarTodayStyle
	case !inMonth:
		style = CalendarOtherMonthStyle
	}
	return style.Render(num) + mark
}

func (m Model) renderFilterSummary() string {
	prio, cat := "all", "all"
	if m.calFilter.Priority != "" {
		prio = m.calFilter.Priority.Label()
	}
	if m.calFilter.Category != "" {
		cat = m.calFilter.Category.Label()
	}
	status := string(m.calFilter.Status)
	if status == "" {
		status = string(tasks.StatusAll)
	}

	lines := []string{
		FooterStyle.Render("p priority: ") + ModalValueStyle.Render(prio),
		FooterStyle.Render("c category: ") + ModalValueStyle.Render(cat),
		FooterStyle.Render("s status:   ") + ModalValueStyle.Render(status),
	}
	if m.calFilter.Active() {
		lines = append(lines, FooterStyle.Render("x clear filters"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDayList(width, height int) string {
	var lines []string
	day := m.dayTasks()

	title := HeaderStyle.Render(m.selectedDate.Format("Monday, 2 January"))
	count := HeaderCountStyle.Render(fmt.Sprintf("  %d task(s)", len(day)))
	lines = append(lines, " "+title+count, "")

	if len(day) == 0 {
		lines = append(lines, FooterStyle.Render(" No tasks for this day. Press 'a' to add one."))
	}
	for i, t := range day {
		selected := i == m.calCursor
		lines = append(lines, m.renderTaskRow(t, selected, width, true))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
