package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stefanpenner/taskbuddy/pkg/api"
	"github.com/stefanpenner/taskbuddy/pkg/config"
)

// Backend is the subset of the remote client the TUI needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password, username string) (*api.AuthResponse, error)
	ListGoals(ctx context.Context) ([]api.Goal, error)
	CreateGoal(ctx context.Context, in api.GoalInput) (*api.Goal, error)
	UpdateGoal(ctx context.Context, in api.GoalUpdate) (*api.Goal, error)
	DeleteGoal(ctx context.Context, id int64) error
	ListNotifications(ctx context.Context) (*api.NotificationList, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	GetProfile(ctx context.Context) (*api.Profile, error)
	UpdateProfile(ctx context.Context, in api.ProfileUpdate) (*api.Profile, error)
}

// SessionChangedMsg is sent when the session watcher detects changes.
type SessionChangedMsg struct{}

// AuthDoneMsg carries the result of a login or registration.
type AuthDoneMsg struct {
	Resp     *api.AuthResponse
	Register bool
	Err      error
}

// GoalsLoadedMsg carries the goal list.
type GoalsLoadedMsg struct {
	Goals []api.Goal
	Err   error
}

// GoalSavedMsg carries the canonical record after a create or update.
type GoalSavedMsg struct {
	Goal    *api.Goal
	Created bool
	Verb    string // shown in the status line, e.g. "Completed"
	Err     error
}

// GoalDeletedMsg reports a finished delete.
type GoalDeletedMsg struct {
	ID  int64
	Err error
}

// NotificationsLoadedMsg carries the notification feed.
type NotificationsLoadedMsg struct {
	List *api.NotificationList
	Err  error
}

// NotificationsReadMsg reports which notifications were marked read. On a
// partial failure IDs holds the ones that succeeded.
type NotificationsReadMsg struct {
	IDs []int64
	Err error
}

// ProfileLoadedMsg carries the profile after a load or an update.
type ProfileLoadedMsg struct {
	Profile *api.Profile
	Saved   bool
	Err     error
}

// SettingsSavedMsg reports the settings written to the config file.
type SettingsSavedMsg struct {
	Settings config.Settings
	Err      error
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		resp, err := b.Login(context.Background(), email, password)
		return AuthDoneMsg{Resp: resp, Err: err}
	}
}

func (m Model) registerCmd(email, password, username string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		resp, err := b.Register(context.Background(), email, password, username)
		return AuthDoneMsg{Resp: resp, Register: true, Err: err}
	}
}

func (m Model) loadGoalsCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		goals, err := b.ListGoals(context.Background())
		return GoalsLoadedMsg{Goals: goals, Err: err}
	}
}

func (m Model) createGoalCmd(in api.GoalInput) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		g, err := b.CreateGoal(context.Background(), in)
		return GoalSavedMsg{Goal: g, Created: true, Verb: "Created", Err: err}
	}
}

func (m Model) updateGoalCmd(in api.GoalUpdate, verb string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		g, err := b.UpdateGoal(context.Background(), in)
		return GoalSavedMsg{Goal: g, Verb: verb, Err: err}
	}
}

func (m Model) deleteGoalCmd(id int64) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.DeleteGoal(context.Background(), id)
		return GoalDeletedMsg{ID: id, Err: err}
	}
}

func (m Model) loadNotificationsCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		list, err := b.ListNotifications(context.Background())
		return NotificationsLoadedMsg{List: list, Err: err}
	}
}

func (m Model) markReadCmd(ids []int64) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		var done []int64
		for _, id := range ids {
			if err := b.MarkNotificationRead(context.Background(), id); err != nil {
				return NotificationsReadMsg{IDs: done, Err: err}
			}
			done = append(done, id)
		}
		return NotificationsReadMsg{IDs: done}
	}
}

func (m Model) loadProfileCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		p, err := b.GetProfile(context.Background())
		return ProfileLoadedMsg{Profile: p, Err: err}
	}
}

func (m Model) updateProfileCmd(in api.ProfileUpdate) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		p, err := b.UpdateProfile(context.Background(), in)
		return ProfileLoadedMsg{Profile: p, Saved: true, Err: err}
	}
}

func (m Model) saveSettingsCmd(s config.Settings) tea.Cmd {
	cfg := *m.cfg
	cfg.Settings = s
	return func() tea.Msg {
		return SettingsSavedMsg{Settings: s, Err: cfg.Save()}
	}
}

// loadAllCmd refreshes every cached resource.
func (m Model) loadAllCmd() tea.Cmd {
	return tea.Batch(m.loadGoalsCmd(), m.loadNotificationsCmd(), m.loadProfileCmd())
}
