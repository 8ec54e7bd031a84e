package tasks

import (
	"sort"
	"time"
)

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// FormatDate renders t as a due date key in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a due date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// StatusFilter narrows tasks by completion.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// StatusFilters lists the status filter values in cycling order.
var StatusFilters = []StatusFilter{StatusAll, StatusActive, StatusCompleted}

// Filter is a set of independent predicates combined with AND.
// Zero values mean the predicate is not applied.
type Filter struct {
	Mode     Mode
	Priority Priority
	Category Category
	Status   StatusFilter
}

// Active reports whether any predicate besides Mode is set.
func (f Filter) Active() bool {
	return f.Priority != "" || f.Category != "" || (f.Status != "" && f.Status != StatusAll)
}

// Clear resets every predicate except Mode.
func (f Filter) Clear() Filter {
	return Filter{Mode: f.Mode}
}

// Match reports whether t passes every predicate.
func (f Filter) Match(t Task) bool {
	if f.Mode != "" && t.Mode != f.Mode {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	switch f.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	return true
}

// Apply returns the tasks matching f, preserving order.
func (f Filter) Apply(list []Task) []Task {
	var result []Task
	for _, t := range list {
		if f.Match(t) {
			result = append(result, t)
		}
	}
	return result
}

// SortByPriority returns a copy ordered high, medium, low. Ties keep their
// relative order.
func SortByPriority(list []Task) []Task {
	result := make([]Task, len(list))
	copy(result, list)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority.Rank() < result[j].Priority.Rank()
	})
	return result
}

// ForDate returns the tasks due on day, compared by exact date key.
func ForDate(list []Task, day time.Time) []Task {
	key := FormatDate(day)
	var result []Task
	for _, t := range list {
		if t.DueDate == key {
			result = append(result, t)
		}
	}
	return result
}

// DueDates returns the set of date keys that have at least one task.
func DueDates(list []Task) map[string]bool {
	result := make(map[string]bool)
	for _, t := range list {
		if t.DueDate != "" {
			result[t.DueDate] = true
		}
	}
	return result
}

// WeekDates returns the seven days of the Monday-based week containing day.
func WeekDates(day time.Time) []time.Time {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	monday := midnight.AddDate(0, 0, -offset)

	week := make([]time.Time, 7)
	for i := range week {
		week[i] = monday.AddDate(0, 0, i)
	}
	return week
}

// Summary holds the stat card numbers for a task slice.
type Summary struct {
	Total      int
	Completed  int
	ByCategory map[Category]int
}

// Rate returns the completed share as a percentage.
func (s Summary) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// Summarize counts tasks overall, completed and per category.
func Summarize(list []Task) Summary {
	s := Summary{ByCategory: make(map[Category]int)}
	for _, t := range list {
		s.Total++
		if t.Completed {
			s.Completed++
		}
		s.ByCategory[t.Category]++
	}
	return s
}
