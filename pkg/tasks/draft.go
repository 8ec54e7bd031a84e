package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stefanpenner/taskbuddy/pkg/api"
)

// ErrMissingFields is returned when a required form field is empty.
var ErrMissingFields = errors.New("fill in all required fields")

// Draft is the user input of the add and edit dialogs.
type Draft struct {
	Title       string
	Description string
	Category    Category
	Priority    Priority
	DueDate     string
}

// DraftFrom prefills a draft with an existing task.
func DraftFrom(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}

// Validate checks required fields first, then enum and date formats.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" || d.Category == "" || strings.TrimSpace(d.DueDate) == "" {
		return ErrMissingFields
	}
	if !d.Category.Valid() {
		return fmt.Errorf("unknown category %q", d.Category)
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", d.Priority)
	}
	if _, err := ParseDate(strings.TrimSpace(d.DueDate)); err != nil {
		return fmt.Errorf("invalid due date %q (use YYYY-MM-DD)", d.DueDate)
	}
	return nil
}

func (d Draft) priority() Priority {
	if d.Priority == "" {
		return DefaultPriority
	}
	return d.Priority
}

// Input converts a validated draft into a create request.
func (d Draft) Input() api.GoalInput {
	due := strings.TrimSpace(d.DueDate)
	return api.GoalInput{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Category:    string(d.Category),
		Priority:    string(d.priority()),
		Status:      api.GoalStatusPending,
		EndDate:     &due,
	}
}

// Update converts a validated draft into a full update of task id.
func (d Draft) Update(id int64) api.GoalUpdate {
	title := strings.TrimSpace(d.Title)
	description := strings.TrimSpace(d.Description)
	category := string(d.Category)
	priority := string(d.priority())
	due := strings.TrimSpace(d.DueDate)
	return api.GoalUpdate{
		ID:          id,
		Title:       &title,
		Description: &description,
		Category:    &category,
		Priority:    &priority,
		EndDate:     &due,
	}
}
