package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/stefanpenner/taskbuddy/pkg/api"
	"github.com/stefanpenner/taskbuddy/pkg/config"
	"github.com/stefanpenner/taskbuddy/pkg/session"
	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

type screen int

const (
	screenLogin screen = iota
	screenTasks
	screenCalendar
	screenNotifications
	screenProfile
	screenSettings
)

// Model is the Bubble Tea model for the task manager TUI.
type Model struct {
	backend Backend
	session *session.Store
	cfg     *config.Config
	keys    KeyMap
	now     func() time.Time
	width   int
	height  int

	screen screen
	user   *api.User
	busy   bool // a login or registration is in flight

	// Task list
	tasks        []tasks.Task
	mode         tasks.Mode
	visibleItems []TaskItem
	cursor       int
	focusedPane  int // 0 = list, 1 = details (calendar: 0 = grid, 1 = day list)
	detailScroll int

	// Calendar
	selectedDate time.Time
	weekView     bool
	calFilter    tasks.Filter
	calCursor    int

	// Notifications
	notifications []api.Notification
	unreadCount   int
	notifCursor   int
	dismissed     map[int64]bool // hidden for the rest of the session

	profile *api.Profile

	// Modal state
	form              form // kind formNone when no dialog is open
	showHelpModal     bool
	showDeleteConfirm bool
	deleteTarget      tasks.Task
	alertMsg          string

	// Status message
	statusMsg     string
	statusIsError bool
	statusTimeout time.Time

	// Cached glamour renderer (expensive to create)
	glamourRenderer *glamour.TermRenderer
	glamourWidth    int
	glamourStyle    string
}

// NewModel creates a new TUI model. A stored session skips the login screen.
func NewModel(b Backend, s *session.Store, cfg *config.Config) Model {
	m := Model{
		backend: b,
		session: s,
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		now:     time.Now,
		mode:    tasks.ModePersonal,
	}
	m.selectedDate = m.today()
	if cfg != nil {
		applyAccent(cfg.Settings.Accent)
	}

	user, _, err := s.Load()
	if err != nil {
		m.screen = screenLogin
		m.form = newLoginForm(false, "")
		return m
	}
	m.user = user
	m.screen = screenTasks
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.screen == screenLogin {
		return tea.Batch(tea.WindowSize(), textinput.Blink)
	}
	return tea.Batch(tea.WindowSize(), m.loadAllCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == screenLogin {
		switch msg.(type) {
		case GoalsLoadedMsg, GoalSavedMsg, GoalDeletedMsg,
			NotificationsLoadedMsg, NotificationsReadMsg, ProfileLoadedMsg:
			// stale results from the previous session
			return m, nil
		}
	}

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Pre-create glamour renderer at the detail pane width
		m.getGlamourRenderer(detailWidth(msg.Width))
		return m, tea.ClearScreen

	case SessionChangedMsg:
		return m.handleSessionChanged()

	case AuthDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.setError(msg.Err.Error())
			return m, nil
		}
		if err := m.session.Save(msg.Resp.User, msg.Resp.Token); err != nil {
			m.setError("Could not save session: " + err.Error())
			return m, nil
		}
		user := msg.Resp.User
		m.user = &user
		m.form = form{}
		m.screen = screenTasks
		if msg.Register {
			m.setStatus("Account created. Welcome, " + user.Username + "!")
		} else {
			m.setStatus("Welcome back, " + user.Username)
		}
		return m, m.loadAllCmd()

	case GoalsLoadedMsg:
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		m.tasks = tasks.FromGoals(msg.Goals)
		m.rebuildVisible()
		return m, nil

	case GoalSavedMsg:
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		t := tasks.FromGoal(*msg.Goal)
		if msg.Created {
			m.tasks = append(m.tasks, t)
		} else {
			m.tasks = tasks.Replace(m.tasks, t)
		}
		m.rebuildVisible()
		m.moveCursorToTask(t.ID)
		m.setStatus(msg.Verb + ": " + t.Title)
		return m, nil

	case GoalDeletedMsg:
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		title := ""
		if t, ok := tasks.Find(m.tasks, msg.ID); ok {
			title = t.Title
		}
		m.tasks = tasks.Remove(m.tasks, msg.ID)
		m.rebuildVisible()
		m.setStatus("Deleted: " + title)
		return m, nil

	case NotificationsLoadedMsg:
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		m.notifications = nil
		m.unreadCount = msg.List.UnreadCount
		for _, n := range msg.List.Notifications {
			if m.dismissed[n.ID] {
				if !n.IsRead && m.unreadCount > 0 {
					m.unreadCount--
				}
				continue
			}
			m.notifications = append(m.notifications, n)
		}
		if m.notifCursor >= len(m.notifications) {
			m.notifCursor = max(len(m.notifications)-1, 0)
		}
		return m, nil

	case NotificationsReadMsg:
		m.markLocallyRead(msg.IDs)
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		if len(msg.IDs) > 1 {
			m.setStatus("All notifications marked as read")
		}
		return m, nil

	case ProfileLoadedMsg:
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		m.profile = msg.Profile
		if msg.Saved {
			m.setStatus("Profile updated")
		}
		return m, nil

	case SettingsSavedMsg:
		if msg.Err != nil {
			m.setError("Could not save settings: " + msg.Err.Error())
			return m, nil
		}
		m.cfg.Settings = msg.Settings
		applyAccent(msg.Settings.Accent)
		m.glamourRenderer = nil
		m.getGlamourRenderer(detailWidth(max(m.width, minWidth)))
		m.setStatus("Settings saved")
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Keep the focused input blinking
	if m.form.kind != formNone && !m.form.fields[m.form.focus].isSelect() {
		var cmd tea.Cmd
		m.form.fields[m.form.focus].input, cmd = m.form.fields[m.form.focus].input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSessionChanged() (tea.Model, tea.Cmd) {
	user, _, err := m.session.Load()
	switch {
	case err != nil && m.screen != screenLogin:
		return m, m.logout("Logged out")
	case err == nil && m.screen == screenLogin && !m.busy:
		// logged in from another terminal
		m.user = user
		m.form = form{}
		m.screen = screenTasks
		m.setStatus("Session restored")
		return m, m.loadAllCmd()
	case err == nil && user != nil:
		m.user = user
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Blocking alert
	if m.alertMsg != "" {
		switch msg.String() {
		case "esc", "enter", " ", "q":
			m.alertMsg = ""
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.screen == screenLogin {
		return m.handleLoginKey(msg)
	}

	// Dialog handling
	if m.form.kind != formNone {
		return m.handleFormKey(msg)
	}

	// Help modal
	if m.showHelpModal {
		switch msg.String() {
		case "esc", "enter", "?", "q":
			m.showHelpModal = false
		}
		return m, nil
	}

	// Delete confirmation
	if m.showDeleteConfirm {
		switch msg.String() {
		case "y", "Y":
			m.showDeleteConfirm = false
			return m, m.deleteGoalCmd(m.deleteTarget.ID)
		case "n", "N", "esc":
			m.showDeleteConfirm = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = true
		return m, nil

	case key.Matches(msg, m.keys.Tasks):
		m.switchScreen(screenTasks)
		return m, nil

	case key.Matches(msg, m.keys.Calendar):
		m.switchScreen(screenCalendar)
		return m, nil

	case key.Matches(msg, m.keys.Notifications):
		m.switchScreen(screenNotifications)
		return m, m.loadNotificationsCmd()

	case key.Matches(msg, m.keys.Profile):
		m.switchScreen(screenProfile)
		return m, m.loadProfileCmd()

	case key.Matches(msg, m.keys.Settings):
		m.switchScreen(screenSettings)
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading…")
		return m, m.loadAllCmd()

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout("Logged out")
	}

	switch m.screen {
	case screenCalendar:
		return m.handleCalendarKey(msg)
	case screenNotifications:
		return m.handleNotificationsKey(msg)
	case screenProfile:
		return m.handleProfileKey(msg)
	case screenSettings:
		return m.handleSettingsKey(msg)
	}
	return m.handleTasksKey(msg)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+r":
		register := m.form.kind != formRegister
		m.form = newLoginForm(register, m.form.value(loginEmail))
		return m, textinput.Blink

	case "enter":
		if m.busy {
			return m, nil
		}
		if m.form.missingRequired() {
			m.alertMsg = "Fill in all required fields"
			return m, nil
		}
		m.busy = true
		email := m.form.value(loginEmail)
		password := m.form.fields[loginPassword].input.Value()
		if m.form.kind == formRegister {
			m.setStatus("Creating account…")
			return m, m.registerCmd(email, password, m.form.value(loginUsername))
		}
		m.setStatus("Logging in…")
		return m, m.loginCmd(email, password)
	}

	return m, m.form.update(msg)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.form = form{}
		return m, nil

	case "enter":
		f := m.form
		switch f.kind {
		case formProfile:
			m.form = form{}
			u := f.profileUpdate()
			if u.Empty() {
				m.setStatus("Nothing to change")
				return m, nil
			}
			return m, m.updateProfileCmd(u)

		case formSettings:
			s := f.settings()
			if err := s.Validate(); err != nil {
				m.alertMsg = alertText(err)
				return m, nil
			}
			m.form = form{}
			return m, m.saveSettingsCmd(s)

		case formAddTask, formEditTask:
			d := f.draft()
			if err := d.Validate(); err != nil {
				m.alertMsg = alertText(err)
				return m, nil
			}
			m.form = form{}
			if f.kind == formEditTask {
				return m, m.updateGoalCmd(d.Update(f.editID), "Updated")
			}
			return m, m.createGoalCmd(d.Input())
		}
		return m, nil
	}

	return m, m.form.update(msg)
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.focusedPane == 1 {
			if m.detailScroll > 0 {
				m.detailScroll--
			}
		} else {
			m.moveCursor(-1)
		}

	case key.Matches(msg, m.keys.Down):
		if m.focusedPane == 1 {
			m.detailScroll++
		} else {
			m.moveCursor(1)
		}

	case key.Matches(msg, m.keys.Tab):
		m.focusedPane = (m.focusedPane + 1) % 2

	case key.Matches(msg, m.keys.NextMode), key.Matches(msg, m.keys.PrevMode):
		m.mode = m.mode.Other()
		m.cursor = 0
		m.detailScroll = 0
		m.rebuildVisible()

	case key.Matches(msg, m.keys.Add):
		return m, m.openAddForm(m.today())

	default:
		if t, ok := m.selectedTask(); ok {
			return m.handleTaskAction(msg, t)
		}
	}
	return m, nil
}

// handleTaskAction applies toggle, edit and delete to the selected task on
// either the task list or the calendar day list.
func (m Model) handleTaskAction(msg tea.KeyMsg, t tasks.Task) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Space):
		verb := "Completed"
		if t.Completed {
			verb = "Reopened"
		}
		return m, m.updateGoalCmd(tasks.CompletionUpdate(t.ID, !t.Completed), verb)

	case key.Matches(msg, m.keys.Edit):
		m.form = newTaskForm(tasks.DraftFrom(t), t.ID)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		m.deleteTarget = t
		m.showDeleteConfirm = true
	}
	return m, nil
}

func (m Model) handleNotificationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.sortedNotifications()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.notifCursor > 0 {
			m.notifCursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.notifCursor < len(list)-1 {
			m.notifCursor++
		}

	case key.Matches(msg, m.keys.MarkRead):
		if m.notifCursor < len(list) && !list[m.notifCursor].IsRead {
			return m, m.markReadCmd([]int64{list[m.notifCursor].ID})
		}

	case key.Matches(msg, m.keys.Dismiss):
		if m.notifCursor < len(list) {
			m.dismissNotification(list[m.notifCursor])
		}

	case key.Matches(msg, m.keys.MarkAllRead):
		var ids []int64
		for _, n := range list {
			if !n.IsRead {
				ids = append(ids, n.ID)
			}
		}
		if len(ids) == 0 {
			m.setStatus("No unread notifications")
			return m, nil
		}
		return m, m.markReadCmd(ids)
	}
	return m, nil
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Edit) {
		// Editing an unloaded profile would overwrite it with blanks.
		if m.profile == nil {
			m.setStatus("Profile is still loading")
			return m, nil
		}
		m.form = newProfileForm(m.profile)
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.cfg == nil {
		return m, nil
	}
	if key.Matches(msg, m.keys.Edit) || msg.String() == "enter" {
		m.form = newSettingsForm(m.cfg.Settings)
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) switchScreen(s screen) {
	m.screen = s
	m.focusedPane = 0
	m.detailScroll = 0
}

func (m *Model) openAddForm(due time.Time) tea.Cmd {
	m.form = newTaskForm(tasks.Draft{
		Priority: tasks.DefaultPriority,
		DueDate:  tasks.FormatDate(due),
	}, 0)
	return textinput.Blink
}

// fail reports a remote error. A rejected token ends the session.
func (m *Model) fail(err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) {
		return m.logout("Session expired, please log in again")
	}
	m.setError("Error: " + err.Error())
	return nil
}

// logout clears the stored session and every cached resource.
func (m *Model) logout(reason string) tea.Cmd {
	email := ""
	if m.user != nil {
		email = m.user.Email
	}
	if err := m.session.Clear(); err != nil {
		m.setError("Could not clear session: " + err.Error())
	} else {
		m.setStatus(reason)
	}
	m.user = nil
	m.tasks = nil
	m.visibleItems = nil
	m.notifications = nil
	m.unreadCount = 0
	m.dismissed = nil
	m.profile = nil
	m.cursor = 0
	m.showDeleteConfirm = false
	m.showHelpModal = false
	m.screen = screenLogin
	m.form = newLoginForm(false, email)
	return textinput.Blink
}

func (m *Model) markLocallyRead(ids []int64) {
	for _, id := range ids {
		for i := range m.notifications {
			if m.notifications[i].ID == id && !m.notifications[i].IsRead {
				m.notifications[i].IsRead = true
				if m.unreadCount > 0 {
					m.unreadCount--
				}
			}
		}
	}
}

// dismissNotification hides n until the session ends. The feed has no
// remote delete.
func (m *Model) dismissNotification(n api.Notification) {
	if m.dismissed == nil {
		m.dismissed = make(map[int64]bool)
	}
	m.dismissed[n.ID] = true
	kept := make([]api.Notification, 0, len(m.notifications))
	for _, other := range m.notifications {
		if other.ID != n.ID {
			kept = append(kept, other)
		}
	}
	m.notifications = kept
	if !n.IsRead && m.unreadCount > 0 {
		m.unreadCount--
	}
	if m.notifCursor >= len(m.notifications) {
		m.notifCursor = max(len(m.notifications)-1, 0)
	}
	m.setStatus("Dismissed: " + n.Title)
}

// notificationsEnabled reports whether unread badges are shown.
func (m Model) notificationsEnabled() bool {
	return m.cfg == nil || m.cfg.Settings.Notifications
}

// sortedNotifications lists unread entries first, keeping feed order within
// each group.
func (m Model) sortedNotifications() []api.Notification {
	result := make([]api.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		if !n.IsRead {
			result = append(result, n)
		}
	}
	for _, n := range m.notifications {
		if n.IsRead {
			result = append(result, n)
		}
	}
	return result
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	// Skip section headers
	for next >= 0 && next < len(m.visibleItems) && m.visibleItems[next].IsSectionHeader {
		next += delta
	}
	if next < 0 || next >= len(m.visibleItems) {
		return
	}
	m.cursor = next
	m.detailScroll = 0
}

func (m *Model) moveCursorToTask(id int64) {
	if i := indexOfTask(m.visibleItems, id); i >= 0 {
		m.cursor = i
	}
	for i, t := range m.dayTasks() {
		if t.ID == id {
			m.calCursor = i
		}
	}
}

func (m *Model) rebuildVisible() {
	filtered := tasks.Filter{Mode: m.mode}.Apply(m.tasks)
	m.visibleItems = FlattenWithPriorityGroups(filtered)

	// Clamp cursor
	if m.cursor >= len(m.visibleItems) {
		m.cursor = len(m.visibleItems) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if i := firstSelectable(m.visibleItems, m.cursor); i >= 0 {
		m.cursor = i
	} else if i := lastSelectable(m.visibleItems); i >= 0 {
		m.cursor = i
	}

	if n := len(m.dayTasks()); m.calCursor >= n {
		m.calCursor = max(n-1, 0)
	}
}

func lastSelectable(items []TaskItem) int {
	for i := len(items) - 1; i >= 0; i-- {
		if !items[i].IsSectionHeader {
			return i
		}
	}
	return -1
}

// selectedTask returns the task under the cursor of the current screen.
func (m Model) selectedTask() (tasks.Task, bool) {
	if m.screen == screenCalendar {
		day := m.dayTasks()
		if m.calCursor < len(day) {
			return day[m.calCursor], true
		}
		return tasks.Task{}, false
	}
	if m.cursor < len(m.visibleItems) && !m.visibleItems[m.cursor].IsSectionHeader {
		return m.visibleItems[m.cursor].Task, true
	}
	return tasks.Task{}, false
}

// modeTasks returns the tasks of the active mode.
func (m Model) modeTasks() []tasks.Task {
	return tasks.Filter{Mode: m.mode}.Apply(m.tasks)
}

func (m Model) today() time.Time {
	y, mo, d := m.now().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.Local)
}

// getGlamourRenderer returns a cached glamour renderer, creating one if needed
// or if the width or theme changed.
func (m *Model) getGlamourRenderer(width int) *glamour.TermRenderer {
	style := "dark"
	if m.cfg != nil && m.cfg.Settings.Theme != "" {
		style = m.cfg.Settings.Theme
	}
	if m.glamourRenderer != nil && m.glamourWidth == width && m.glamourStyle == style {
		return m.glamourRenderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.glamourRenderer = r
	m.glamourWidth = width
	m.glamourStyle = style
	return r
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusIsError = false
	m.statusTimeout = time.Now().Add(3 * time.Second)
}

func (m *Model) setError(msg string) {
	m.setStatus(msg)
	m.statusIsError = true
}

// alertText capitalizes a validation error for the alert modal.
func alertText(err error) string {
	s := err.Error()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
