package tasks

import (
	"github.com/stefanpenner/taskbuddy/pkg/api"
)

// FromGoal maps a remote goal onto a task, substituting defaults for
// category and priority values outside the known sets.
func FromGoal(g api.Goal) Task {
	category := Category(g.Category)
	if !category.Valid() {
		category = DefaultCategory
	}
	priority := Priority(g.Priority)
	if !priority.Valid() {
		priority = DefaultPriority
	}

	return Task{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Category:    category,
		Priority:    priority,
		Completed:   g.Status == api.GoalStatusCompleted,
		DueDate:     dueDate(g),
		Mode:        ModeFor(category),
		Progress:    g.Progress,
	}
}

// FromGoals maps a goal list, dropping soft-deleted records.
func FromGoals(goals []api.Goal) []Task {
	result := make([]Task, 0, len(goals))
	for _, g := range goals {
		if g.Status == api.GoalStatusDeleted {
			continue
		}
		result = append(result, FromGoal(g))
	}
	return result
}

func dueDate(g api.Goal) string {
	for _, d := range []*string{g.EndDate, g.StartDate} {
		if d != nil && *d != "" {
			return datePart(*d)
		}
	}
	return ""
}

// datePart trims an ISO timestamp down to its calendar date.
func datePart(s string) string {
	if len(s) >= len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// StatusFor returns the remote status string for a completion flag.
func StatusFor(completed bool) string {
	if completed {
		return api.GoalStatusCompleted
	}
	return api.GoalStatusPending
}

// ProgressFor returns the progress value written alongside a completion flag.
func ProgressFor(completed bool) int {
	if completed {
		return 100
	}
	return 0
}

// CompletionUpdate builds the partial update that flips a task's completion.
func CompletionUpdate(id int64, completed bool) api.GoalUpdate {
	status := StatusFor(completed)
	progress := ProgressFor(completed)
	return api.GoalUpdate{ID: id, Status: &status, Progress: &progress}
}

// Replace swaps the task with the same ID for updated. The slice is copied.
func Replace(list []Task, updated Task) []Task {
	result := make([]Task, len(list))
	copy(result, list)
	for i := range result {
		if result[i].ID == updated.ID {
			result[i] = updated
		}
	}
	return result
}

// Remove drops the task with the given ID. The slice is copied.
func Remove(list []Task, id int64) []Task {
	result := make([]Task, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			result = append(result, t)
		}
	}
	return result
}

// Find returns the task with the given ID.
func Find(list []Task, id int64) (Task, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
