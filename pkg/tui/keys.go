package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	Up             key.Binding
	Down           key.Binding
	Left           key.Binding
	Right          key.Binding
	Space          key.Binding
	Tab            key.Binding
	NextMode       key.Binding
	PrevMode       key.Binding
	Tasks          key.Binding
	Calendar       key.Binding
	Notifications  key.Binding
	Profile        key.Binding
	Settings       key.Binding
	Add            key.Binding
	Edit           key.Binding
	Delete         key.Binding
	Today          key.Binding
	WeekView       key.Binding
	FilterPriority key.Binding
	FilterCategory key.Binding
	FilterStatus   key.Binding
	ClearFilters   key.Binding
	MarkRead       key.Binding
	MarkAllRead    key.Binding
	Dismiss        key.Binding
	Reload         key.Binding
	Logout         key.Binding
	Help           key.Binding
	Quit           key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Space: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle complete"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		NextMode: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next mode"),
		),
		PrevMode: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev mode"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "tasks"),
		),
		Calendar: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "calendar"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "notifications"),
		),
		Profile: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "profile"),
		),
		Settings: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "settings"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "jump to today"),
		),
		WeekView: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "month/week"),
		),
		FilterPriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle priority filter"),
		),
		FilterCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle category filter"),
		),
		FilterStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle status filter"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("enter", "r"),
			key.WithHelp("enter/r", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "mark all read"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x", "d"),
			key.WithHelp("x/d", "dismiss"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the footer help text for a screen.
func (k KeyMap) ShortHelp(s screen) string {
	switch s {
	case screenCalendar:
		return "←→ day  ↑↓ week  w month/week  t today  p/c/s filter  x clear  a add  space toggle  ? help"
	case screenNotifications:
		return "↑↓ nav  enter read  A read all  x dismiss  R reload  1-5 screens  ? help"
	case screenProfile:
		return "e edit bio/avatar  R reload  L log out  1-5 screens  ? help"
	case screenSettings:
		return "e/enter edit settings  L log out  1-5 screens  ? help"
	}
	return "↑↓ nav  [ ] mode  space toggle  a add  e edit  d delete  tab pane  1-5 screens  ? help"
}

// FullHelp returns all key bindings for the help modal.
func (k KeyMap) FullHelp() [][]string {
	return [][]string{
		{"1-5", "Tasks / calendar / notifications / profile / settings"},
		{"↑/k ↓/j", "Move up / down"},
		{"[ ]", "Switch personal / study mode"},
		{"tab", "Switch pane (list / details)"},
		{"space", "Toggle complete"},
		{"a", "Add task"},
		{"e", "Edit task (profile: bio/avatar, settings: preferences)"},
		{"d", "Delete task (with confirmation)"},
		{"←/h →/l", "Calendar: previous / next day"},
		{"w", "Calendar: month or week view"},
		{"t", "Calendar: jump to today"},
		{"p/c/s", "Calendar: cycle priority/category/status filter"},
		{"x", "Calendar: clear filters"},
		{"enter/r", "Notifications: mark read"},
		{"A", "Notifications: mark all read"},
		{"x/d", "Notifications: dismiss"},
		{"R", "Reload from server"},
		{"L", "Log out"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
}
