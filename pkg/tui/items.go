package tui

import (
	"strconv"

	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

// TaskItem is one row of the task list: either a task or a priority header.
type TaskItem struct {
	ID              string
	Name            string
	Task            tasks.Task
	Priority        tasks.Priority
	IsSectionHeader bool
}

// FlattenWithPriorityGroups sorts list by priority and emits a section
// header before each non-empty priority group.
func FlattenWithPriorityGroups(list []tasks.Task) []TaskItem {
	var result []TaskItem
	var current tasks.Priority
	for i, t := range tasks.SortByPriority(list) {
		if i == 0 || t.Priority != current {
			current = t.Priority
			result = append(result, TaskItem{
				ID:              "__header_" + string(current),
				Name:            headerName(current),
				Priority:        current,
				IsSectionHeader: true,
			})
		}
		result = append(result, taskItem(t))
	}
	return result
}

func taskItem(t tasks.Task) TaskItem {
	return TaskItem{
		ID:       strconv.FormatInt(t.ID, 10),
		Name:     t.Title,
		Task:     t,
		Priority: t.Priority,
	}
}

func headerName(p tasks.Priority) string {
	switch p {
	case tasks.PriorityHigh:
		return "HIGH PRIORITY"
	case tasks.PriorityMedium:
		return "MEDIUM PRIORITY"
	case tasks.PriorityLow:
		return "LOW PRIORITY"
	}
	return "OTHER"
}

// firstSelectable returns the index of the first non-header row at or after
// from, or -1.
func firstSelectable(items []TaskItem, from int) int {
	for i := from; i < len(items); i++ {
		if i >= 0 && !items[i].IsSectionHeader {
			return i
		}
	}
	return -1
}

// indexOfTask returns the row index holding task id, or -1.
func indexOfTask(items []TaskItem, id int64) int {
	for i, item := range items {
		if !item.IsSectionHeader && item.Task.ID == id {
			return i
		}
	}
	return -1
}
