package tasks

// Category is the fixed set of task categories.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryHome     Category = "home"
	CategoryPersonal Category = "personal"
	CategoryProjects Category = "projects"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryWork, CategoryStudy, CategoryHome, CategoryPersonal, CategoryProjects}

// DefaultCategory replaces unknown remote values.
const DefaultCategory = CategoryPersonal

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the human label for a category.
func (c Category) Label() string {
	switch c {
	case CategoryWork:
		return "Work"
	case CategoryStudy:
		return "Study"
	case CategoryHome:
		return "Home"
	case CategoryPersonal:
		return "Personal"
	case CategoryProjects:
		return "Projects"
	}
	return string(c)
}

// Priority is the fixed set of task priorities.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// DefaultPriority replaces unknown remote values and is the form default.
const DefaultPriority = PriorityMedium

// Valid reports whether p is one of Priorities.
func (p Priority) Valid() bool {
	return p.Rank() < len(Priorities)
}

// Rank orders priorities: high=0, medium=1, low=2. Unknown values sort last.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i
		}
	}
	return len(Priorities)
}

// Label returns the human label for a priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

// Mode partitions tasks into the personal and study views.
type Mode string

const (
	ModePersonal Mode = "personal"
	ModeStudy    Mode = "study"
)

// ModeFor derives the mode of a category: study tasks live in study mode,
// everything else in personal mode.
func ModeFor(c Category) Mode {
	if c == CategoryStudy {
		return ModeStudy
	}
	return ModePersonal
}

// Label returns the human label for a mode.
func (m Mode) Label() string {
	if m == ModeStudy {
		return "Study"
	}
	return "Personal goals"
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == ModeStudy {
		return ModePersonal
	}
	return ModeStudy
}

// Task is the local shape of a remote goal.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	DueDate     string   `json:"dueDate,omitempty"` // YYYY-MM-DD
	Mode        Mode     `json:"mode"`
	Progress    int      `json:"progress"`
}
