package fakeapi

import (
	"time"

	"github.com/stefanpenner/taskbuddy/pkg/api"
)

// Demo credentials created by SeedDemo.
const (
	DemoEmail    = "demo@taskbuddy.app"
	DemoPassword = "demo"
	DemoUsername = "demo"
)

type demoGoal struct {
	title     string
	category  string
	priority  string
	completed bool
	offset    int // days from today
}

var demoGoals = []demoGoal{
	{"Prepare the math presentation", "study", "high", false, 0},
	{"Finish the project UI design", "projects", "high", false, 1},
	{"Learn 20 English words", "study", "medium", true, -1},
	{"Book a dentist appointment", "personal", "medium", false, 2},
	{"Hand in the physics lab report", "study", "high", false, 0},
	{"Clean the kitchen", "home", "low", false, 3},
	{"Review pull requests", "work", "medium", false, 1},
}

// SeedDemo creates the demo account with a handful of goals around today
// and a mixed notification feed. It returns the account and a token.
func (s *Server) SeedDemo(today time.Time) (api.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.addUserLocked(DemoEmail, DemoPassword, DemoUsername)
	for _, d := range demoGoals {
		due := today.AddDate(0, 0, d.offset).Format("2006-01-02")
		in := api.GoalInput{
			Title:    d.title,
			Category: d.category,
			Priority: d.priority,
			Status:   api.GoalStatusPending,
			EndDate:  &due,
		}
		if d.completed {
			in.Status = api.GoalStatusCompleted
			in.Progress = 100
		}
		s.addGoalLocked(u.ID, in)
	}

	s.notifyLocked(u.ID, "success", "Welcome to TaskBuddy!",
		"You have registered successfully. Start creating your first tasks!")
	s.notifyLocked(u.ID, "achievement", "Streak!", "You completed a task three days in a row.")
	s.notifyLocked(u.ID, "reminder", "Dentist", "Don't forget to book the appointment.")
	s.notifyLocked(u.ID, "deadline", "Due today", "Two study tasks are due today.")

	return u, s.issueTokenLocked(u.ID)
}
