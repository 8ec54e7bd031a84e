package tui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/taskbuddy/pkg/api"
	"github.com/stefanpenner/taskbuddy/pkg/api/fakeapi"
	"github.com/stefanpenner/taskbuddy/pkg/config"
	"github.com/stefanpenner/taskbuddy/pkg/session"
	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

var testToday = time.Date(2025, 10, 14, 9, 0, 0, 0, time.Local)

type testEnv struct {
	fake    *fakeapi.Server
	session *session.Store
	client  *api.Client
	cfg     *config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := fakeapi.New(nil)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	sess, err := session.NewStore(t.TempDir())
	require.NoError(t, err)

	return &testEnv{
		fake:    fake,
		session: sess,
		client:  api.NewClient(fakeapi.Endpoints(srv.URL), sess, 5*time.Second, nil),
		cfg: &config.Config{
			TelegramBot: "TaskBody_bot",
			Settings:    config.DefaultSettings(),
			Path:        filepath.Join(t.TempDir(), config.FileName),
		},
	}
}

func (e *testEnv) model() Model {
	m := NewModel(e.client, e.session, e.cfg)
	m.now = func() time.Time { return testToday }
	m.selectedDate = m.today()
	return m
}

// setupDemoModel returns a logged-in model with the demo data loaded.
func setupDemoModel(t *testing.T) (Model, *testEnv, string) {
	t.Helper()
	env := setupTestEnv(t)
	user, token := env.fake.SeedDemo(testToday)
	require.NoError(t, env.session.Save(user, token))

	m := env.model()
	require.Equal(t, screenTasks, m.screen)
	m = drain(m, m.loadAllCmd())
	return m, env, token
}

// drain runs cmd and feeds the resulting messages back into the model.
// Only messages produced by backend calls are applied.
func drain(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(m, c)
		}
	case AuthDoneMsg, GoalsLoadedMsg, GoalSavedMsg, GoalDeletedMsg,
		NotificationsLoadedMsg, NotificationsReadMsg, ProfileLoadedMsg, SessionChangedMsg,
		SettingsSavedMsg:
		next, c := m.Update(msg)
		m = drain(next.(Model), c)
	}
	return m
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+r":
		msg = tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// pressAndDrain presses a key and applies any backend result.
func pressAndDrain(m Model, k string) Model {
	m, cmd := press(m, k)
	return drain(m, cmd)
}

// typeText sends text to the focused input, ignoring cursor blink commands.
func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func titles(list []tasks.Task) []string {
	var result []string
	for _, t := range list {
		result = append(result, t.Title)
	}
	return result
}

func TestLoginGate(t *testing.T) {
	env := setupTestEnv(t)
	env.fake.AddUser("anna@example.com", "secret", "anna")

	m := env.model()
	assert.Equal(t, screenLogin, m.screen)

	m, _ = press(m, "enter")
	assert.Equal(t, "Fill in all required fields", m.alertMsg)
	assert.Contains(t, m.View(), "Fill in all required fields")
	m, _ = press(m, "enter")
	assert.Empty(t, m.alertMsg)

	m = typeText(m, "anna@example.com")
	m, _ = press(m, "tab")
	m = typeText(m, "wrong")
	m = pressAndDrain(m, "enter")
	assert.Equal(t, screenLogin, m.screen)
	assert.True(t, m.statusIsError)
	assert.Contains(t, m.statusMsg, "Invalid email or password")

	m.form.fields[loginPassword].input.SetValue("secret")
	m = pressAndDrain(m, "enter")
	assert.Equal(t, screenTasks, m.screen)
	require.NotNil(t, m.user)
	assert.Equal(t, "anna", m.user.Username)
	assert.True(t, env.session.IsAuthenticated())
	assert.Equal(t, 0, m.unreadCount)
}

func TestRegisterFromLoginScreen(t *testing.T) {
	env := setupTestEnv(t)
	m := env.model()

	m, _ = press(m, "ctrl+r")
	assert.Equal(t, formRegister, m.form.kind)
	require.Len(t, m.form.fields, 3)

	m = typeText(m, "new@example.com")
	m, _ = press(m, "tab")
	m = typeText(m, "pw")
	m, _ = press(m, "tab")
	m = typeText(m, "newbie")
	m = pressAndDrain(m, "enter")

	assert.Equal(t, screenTasks, m.screen)
	assert.Equal(t, 1, m.unreadCount)
	require.Len(t, m.notifications, 1)
	assert.Equal(t, "success", m.notifications[0].Type)
}

func TestStoredSessionLoadsGroupedTasks(t *testing.T) {
	m, _, _ := setupDemoModel(t)

	require.Len(t, m.tasks, 7)
	var names []string
	for _, item := range m.visibleItems {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{
		"HIGH PRIORITY",
		"Finish the project UI design",
		"MEDIUM PRIORITY",
		"Review pull requests",
		"Book a dentist appointment",
		"LOW PRIORITY",
		"Clean the kitchen",
	}, names)
	assert.Equal(t, 1, m.cursor, "cursor skips the first header")

	m, _ = press(m, "j")
	assert.Equal(t, 3, m.cursor, "cursor skips section headers")

	m, _ = press(m, "]")
	assert.Equal(t, tasks.ModeStudy, m.mode)
	for _, item := range m.visibleItems {
		if !item.IsSectionHeader {
			assert.Equal(t, tasks.CategoryStudy, item.Task.Category)
		}
	}
}

func TestToggleComplete(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	sel, ok := m.selectedTask()
	require.True(t, ok)
	require.False(t, sel.Completed)

	m = pressAndDrain(m, "space")
	updated, ok := tasks.Find(m.tasks, sel.ID)
	require.True(t, ok)
	assert.True(t, updated.Completed)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, "Completed: "+sel.Title, m.statusMsg)

	user := env.fake.Users()[0]
	for _, g := range env.fake.Goals(user) {
		if g.ID == sel.ID {
			assert.Equal(t, api.GoalStatusCompleted, g.Status)
		}
	}

	m = pressAndDrain(m, "space")
	updated, _ = tasks.Find(m.tasks, sel.ID)
	assert.False(t, updated.Completed)
	assert.Equal(t, "Reopened: "+sel.Title, m.statusMsg)
}

func TestAddTaskValidationAndCreate(t *testing.T) {
	m, _, _ := setupDemoModel(t)

	m, _ = press(m, "a")
	require.Equal(t, formAddTask, m.form.kind)
	d := m.form.draft()
	assert.Equal(t, "2025-10-14", d.DueDate)
	assert.Equal(t, tasks.PriorityMedium, d.Priority)
	assert.Empty(t, d.Category)

	m, _ = press(m, "enter")
	assert.Equal(t, "Fill in all required fields", m.alertMsg)
	assert.Equal(t, formAddTask, m.form.kind, "form stays open behind the alert")
	m, _ = press(m, "esc")

	m = typeText(m, "Write essay")
	m, _ = press(m, "tab")
	m, _ = press(m, "tab")
	m, _ = press(m, "right")
	assert.Equal(t, string(tasks.CategoryWork), m.form.value(taskCategory))

	m = pressAndDrain(m, "enter")
	assert.Equal(t, formNone, m.form.kind)
	require.Len(t, m.tasks, 8)
	created := m.tasks[7]
	assert.Equal(t, "Write essay", created.Title)
	assert.Equal(t, tasks.CategoryWork, created.Category)
	assert.Equal(t, tasks.ModePersonal, created.Mode)
	assert.Equal(t, "2025-10-14", created.DueDate)

	sel, ok := m.selectedTask()
	require.True(t, ok)
	assert.Equal(t, created.ID, sel.ID)
}

func TestAddTaskRejectsBadDate(t *testing.T) {
	m, _, _ := setupDemoModel(t)
	m, _ = press(m, "a")
	m.form.fields[taskTitle].input.SetValue("x")
	m.form.fields[taskCategory].choice = 0
	m.form.fields[taskDue].input.SetValue("14.10.2025")

	m, _ = press(m, "enter")
	assert.Contains(t, m.alertMsg, "Invalid due date")
}

func TestEditPreservesID(t *testing.T) {
	m, _, _ := setupDemoModel(t)
	sel, _ := m.selectedTask()

	m, _ = press(m, "e")
	require.Equal(t, formEditTask, m.form.kind)
	assert.Equal(t, sel.ID, m.form.editID)
	assert.Equal(t, sel.Title, m.form.value(taskTitle))

	m.form.fields[taskTitle].input.SetValue("Finish the UI design")
	m.form.fields[taskPriority].choice = 2 // low
	m = pressAndDrain(m, "enter")

	require.Len(t, m.tasks, 7)
	edited, ok := tasks.Find(m.tasks, sel.ID)
	require.True(t, ok)
	assert.Equal(t, "Finish the UI design", edited.Title)
	assert.Equal(t, tasks.PriorityLow, edited.Priority)
	assert.Equal(t, "Updated: Finish the UI design", m.statusMsg)
}

func TestDeleteConfirmation(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	sel, _ := m.selectedTask()

	m, _ = press(m, "d")
	assert.True(t, m.showDeleteConfirm)
	m, _ = press(m, "n")
	assert.False(t, m.showDeleteConfirm)
	assert.Len(t, m.tasks, 7)

	m, _ = press(m, "d")
	m = pressAndDrain(m, "y")
	assert.Len(t, m.tasks, 6)
	_, ok := tasks.Find(m.tasks, sel.ID)
	assert.False(t, ok)

	// soft-deleted remotely, dropped locally on reload
	m = pressAndDrain(m, "R")
	assert.Len(t, m.tasks, 6)
	assert.Len(t, env.fake.Goals(env.fake.Users()[0]), 7)
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	m, env, token := setupDemoModel(t)
	env.fake.RevokeToken(token)

	m = pressAndDrain(m, "R")
	assert.Equal(t, screenLogin, m.screen)
	assert.False(t, env.session.IsAuthenticated())
	assert.Empty(t, m.tasks)
	assert.Equal(t, "Session expired, please log in again", m.statusMsg)
	assert.Equal(t, fakeapi.DemoEmail, m.form.value(loginEmail))
}

func TestSessionChangedElsewhere(t *testing.T) {
	m, env, _ := setupDemoModel(t)

	require.NoError(t, env.session.Clear())
	next, _ := m.Update(SessionChangedMsg{})
	m = next.(Model)
	assert.Equal(t, screenLogin, m.screen)

	user, token := env.fake.SeedDemo(testToday)
	require.NoError(t, env.session.Save(user, token))
	next, cmd := m.Update(SessionChangedMsg{})
	m = drain(next.(Model), cmd)
	assert.Equal(t, screenTasks, m.screen)
	assert.Len(t, m.tasks, 7)
}

func TestNotificationsMarkRead(t *testing.T) {
	m, _, _ := setupDemoModel(t)

	m = pressAndDrain(m, "3")
	assert.Equal(t, screenNotifications, m.screen)
	require.Len(t, m.notifications, 4)
	assert.Equal(t, 4, m.unreadCount)

	m = pressAndDrain(m, "enter")
	assert.Equal(t, 3, m.unreadCount)
	sorted := m.sortedNotifications()
	assert.True(t, sorted[3].IsRead, "read entries sort last")

	m = pressAndDrain(m, "A")
	assert.Equal(t, 0, m.unreadCount)
	assert.Equal(t, "All notifications marked as read", m.statusMsg)

	m, _ = press(m, "A")
	assert.Equal(t, "No unread notifications", m.statusMsg)
}

func TestCalendarDaySelectionAndFilters(t *testing.T) {
	m, _, _ := setupDemoModel(t)

	m, _ = press(m, "2")
	assert.Equal(t, screenCalendar, m.screen)
	assert.ElementsMatch(t, []string{"Prepare the math presentation", "Hand in the physics lab report"}, titles(m.dayTasks()))

	m, _ = press(m, "l")
	assert.Equal(t, "2025-10-15", tasks.FormatDate(m.selectedDate))
	assert.Equal(t, []string{"Finish the project UI design", "Review pull requests"}, titles(m.dayTasks()))

	m, _ = press(m, "p")
	assert.Equal(t, tasks.PriorityHigh, m.calFilter.Priority)
	assert.Equal(t, []string{"Finish the project UI design"}, titles(m.dayTasks()))

	m, _ = press(m, "x")
	assert.False(t, m.calFilter.Active())
	assert.Len(t, m.dayTasks(), 2)

	m, _ = press(m, "h")
	m, _ = press(m, "h")
	assert.Equal(t, []string{"Learn 20 English words"}, titles(m.dayTasks()))
	m, _ = press(m, "s")
	assert.Equal(t, tasks.StatusActive, m.calFilter.Status)
	assert.Empty(t, m.dayTasks())

	m, _ = press(m, "t")
	assert.Equal(t, "2025-10-14", tasks.FormatDate(m.selectedDate))

	m, _ = press(m, "w")
	assert.True(t, m.weekView)
	assert.Contains(t, m.View(), "Week of 13 Oct")
}

func TestCalendarAddUsesSelectedDate(t *testing.T) {
	m, _, _ := setupDemoModel(t)
	m, _ = press(m, "2")
	m, _ = press(m, "l")
	m, _ = press(m, "a")
	assert.Equal(t, "2025-10-15", m.form.value(taskDue))
}

func TestProfileEdit(t *testing.T) {
	m, _, _ := setupDemoModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: minHeight})
	m = next.(Model)

	m = pressAndDrain(m, "4")
	require.NotNil(t, m.profile)
	require.NotNil(t, m.profile.Stats)
	assert.Equal(t, 7, m.profile.Stats.TotalGoals)
	view := m.View()
	assert.Contains(t, view, "https://t.me/TaskBody_bot?start=")
	assert.Contains(t, view, "7 total, 1 completed (14%)")

	m, _ = press(m, "e")
	require.Equal(t, formProfile, m.form.kind)
	m = typeText(m, "Loves lists")
	m = pressAndDrain(m, "enter")

	require.NotNil(t, m.profile.Bio)
	assert.Equal(t, "Loves lists", *m.profile.Bio)
	assert.Equal(t, "Profile updated", m.statusMsg)
}

func TestLogoutKey(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	m, _ = press(m, "L")
	assert.Equal(t, screenLogin, m.screen)
	assert.False(t, env.session.IsAuthenticated())
}

func TestProfileEditWaitsForLoad(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	ctx := context.Background()
	bio, avatar := "keep me", "https://img.test/me.png"
	_, err := env.client.UpdateProfile(ctx, api.ProfileUpdate{Bio: &bio, AvatarURL: &avatar})
	require.NoError(t, err)

	m.profile = nil
	m, _ = press(m, "4") // load still in flight
	m, _ = press(m, "e")
	assert.Equal(t, formNone, m.form.kind)
	assert.Equal(t, "Profile is still loading", m.statusMsg)
	m = pressAndDrain(m, "enter")

	p, err := env.client.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, p.Bio)
	assert.Equal(t, "keep me", *p.Bio)

	// only the edited field is sent
	m = drain(m, m.loadProfileCmd())
	m, _ = press(m, "e")
	require.Equal(t, formProfile, m.form.kind)
	m.form.fields[profileAvatar].input.SetValue("https://img.test/new.png")
	m = pressAndDrain(m, "enter")

	p, err = env.client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "keep me", *p.Bio)
	assert.Equal(t, "https://img.test/new.png", *p.AvatarURL)

	m, _ = press(m, "e")
	m, cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to change", m.statusMsg)
}

func TestFailedUpdateKeepsCache(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	sel, ok := m.selectedTask()
	require.True(t, ok)
	require.True(t, env.fake.PurgeGoal(sel.ID))
	before := append([]tasks.Task(nil), m.tasks...)

	m = pressAndDrain(m, "space")
	assert.True(t, m.statusIsError)
	assert.Contains(t, m.statusMsg, "Goal not found")
	assert.Equal(t, before, m.tasks)
	assert.Equal(t, screenTasks, m.screen)

	m, _ = press(m, "e")
	require.Equal(t, formEditTask, m.form.kind)
	m.form.fields[taskTitle].input.SetValue("Renamed")
	m = pressAndDrain(m, "enter")
	assert.True(t, m.statusIsError)
	assert.Equal(t, before, m.tasks)
	assert.Equal(t, formNone, m.form.kind)
}

func TestReloadPicksUpNewNotifications(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	m = pressAndDrain(m, "3")
	require.Len(t, m.notifications, 4)

	n := env.fake.Notify(env.fake.Users()[0], "deadline", "Deadline tomorrow", "Review pull requests is due")
	m = pressAndDrain(m, "R")

	require.Len(t, m.notifications, 5)
	assert.Equal(t, 5, m.unreadCount)
	assert.Equal(t, n.ID, m.sortedNotifications()[0].ID, "newest unread first")
	assert.Contains(t, m.View(), "Deadline tomorrow")
	assert.Contains(t, m.renderTabs(), "(5)")
}

func TestDismissNotification(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	m = pressAndDrain(m, "3")
	first := m.sortedNotifications()[0]
	require.False(t, first.IsRead)

	m, _ = press(m, "x")
	assert.Len(t, m.notifications, 3)
	assert.Equal(t, 3, m.unreadCount)
	assert.Equal(t, "Dismissed: "+first.Title, m.statusMsg)
	assert.NotContains(t, m.renderNotifications(80, 20), first.Title)

	// stays hidden across a reload, remote feed untouched
	m = pressAndDrain(m, "R")
	assert.Len(t, m.notifications, 3)
	assert.Equal(t, 3, m.unreadCount)
	assert.Equal(t, 4, env.fake.UnreadCount(env.fake.Users()[0]))

	m, _ = press(m, "L")
	assert.Nil(t, m.dismissed)
}

func TestSettingsScreen(t *testing.T) {
	t.Cleanup(func() { applyAccent(config.DefaultSettings().Accent) })
	m, env, _ := setupDemoModel(t)
	assert.Contains(t, m.renderTabs(), "(4)")

	m, _ = press(m, "5")
	require.Equal(t, screenSettings, m.screen)
	assert.Contains(t, m.View(), "1 hour before")

	m, _ = press(m, "e")
	require.Equal(t, formSettings, m.form.kind)
	m, _ = press(m, "right") // notifications off
	m, _ = press(m, "tab")
	m, _ = press(m, "tab")
	m = typeText(m, "buddy")
	for i := 0; i < 4; i++ {
		m, _ = press(m, "tab")
	}
	require.Equal(t, settingsAccent, m.form.focus)
	m, _ = press(m, "right") // blue -> purple
	m = pressAndDrain(m, "enter")

	assert.Equal(t, formNone, m.form.kind)
	assert.Equal(t, "Settings saved", m.statusMsg)
	assert.False(t, env.cfg.Settings.Notifications)
	assert.Equal(t, "@buddy", env.cfg.Settings.TelegramUsername)
	assert.Equal(t, "purple", env.cfg.Settings.Accent)
	assert.Equal(t, ColorPurple, ColorAccent)
	assert.NotContains(t, m.renderTabs(), "(4)", "badge hidden with notifications off")
	assert.Equal(t, 4, m.unreadCount)

	loaded, err := config.Load(filepath.Dir(env.cfg.Path), "")
	require.NoError(t, err)
	assert.Equal(t, env.cfg.Settings, loaded.Settings)
}

func TestSettingsRejectsBadUsername(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	m, _ = press(m, "5")
	m, _ = press(m, "enter")
	require.Equal(t, formSettings, m.form.kind)
	m.form.fields[settingsTelegramUser].input.SetValue("two words")

	m, cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Contains(t, m.alertMsg, "Invalid Telegram username")
	assert.Equal(t, formSettings, m.form.kind)
	assert.Empty(t, env.cfg.Settings.TelegramUsername)
}

func TestSettingsSaveFailure(t *testing.T) {
	m, env, _ := setupDemoModel(t)
	env.cfg.Path = ""
	m, _ = press(m, "5")
	m, _ = press(m, "e")
	m = pressAndDrain(m, "enter")

	assert.True(t, m.statusIsError)
	assert.Equal(t, "Could not save settings: saving config: no path", m.statusMsg)
	assert.Equal(t, config.DefaultSettings(), env.cfg.Settings)
}
