package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/taskbuddy/pkg/api"
	"github.com/stefanpenner/taskbuddy/pkg/config"
	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

type formKind int

const (
	formNone formKind = iota
	formLogin
	formRegister
	formAddTask
	formEditTask
	formProfile
	formSettings
)

// formField is a text input or, when options is set, a cycling select.
type formField struct {
	label    string
	input    textinput.Model
	options  []string
	labels   []string
	choice   int // -1 = nothing selected
	required bool
}

func (f formField) isSelect() bool {
	return f.options != nil
}

func newTextField(label, placeholder, value string, required bool) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.SetValue(value)
	return formField{label: label, input: ti, choice: -1, required: required}
}

func newSelectField(label string, options, labels []string, value string, required bool) formField {
	choice := -1
	for i, o := range options {
		if o == value {
			choice = i
		}
	}
	return formField{label: label, options: options, labels: labels, choice: choice, required: required}
}

// form is a vertical list of fields with one focused at a time.
type form struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
	editID int64    // task being edited, formEditTask only
	orig   []string // field values when the form opened
}

// focusField moves focus to field i.
func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	if f.fields[i].isSelect() {
		return nil
	}
	f.fields[i].input.Focus()
	return textinput.Blink
}

// update routes a key to the focused field. Enter and Esc are handled by
// the caller.
func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return f.focusField(f.focus + 1)
	case "shift+tab", "up":
		return f.focusField(f.focus - 1)
	}

	field := &f.fields[f.focus]
	if field.isSelect() {
		switch msg.String() {
		case "right", "l", " ":
			field.choice = (field.choice + 1) % len(field.options)
		case "left", "h":
			if field.choice <= 0 {
				field.choice = len(field.options) - 1
			} else {
				field.choice--
			}
		}
		return nil
	}

	var cmd tea.Cmd
	field.input, cmd = field.input.Update(msg)
	return cmd
}

// value returns the text of field i, or the selected option.
func (f form) value(i int) string {
	field := f.fields[i]
	if field.isSelect() {
		if field.choice < 0 {
			return ""
		}
		return field.options[field.choice]
	}
	return strings.TrimSpace(field.input.Value())
}

// missingRequired reports whether a required field is empty.
func (f form) missingRequired() bool {
	for i, field := range f.fields {
		if field.required && f.value(i) == "" {
			return true
		}
	}
	return false
}

func (f form) view() string {
	var b strings.Builder
	for i, field := range f.fields {
		label := field.label
		if field.required {
			label += "*"
		}
		focused := i == f.focus
		if focused {
			b.WriteString(ModalFocusedLabelStyle.Render(label))
		} else {
			b.WriteString(ModalLabelStyle.Render(label))
		}

		if field.isSelect() {
			text := "(choose)"
			if field.choice >= 0 {
				text = field.labels[field.choice]
			}
			if focused {
				text = InputPromptStyle.Render(IconSelectL) + " " + ModalValueStyle.Render(text) + " " + InputPromptStyle.Render(IconSelectR)
			} else {
				text = ModalValueStyle.Render(text)
			}
			b.WriteString(text)
		} else {
			b.WriteString(field.input.View())
		}
		b.WriteString("\n")
	}
	return b.String()
}

const (
	loginEmail = iota
	loginPassword
	loginUsername
)

func newLoginForm(register bool, email string) form {
	password := newTextField("Password", "password", "", true)
	password.input.EchoMode = textinput.EchoPassword
	password.input.EchoCharacter = '•'

	f := form{
		kind:  formLogin,
		title: "Log in",
		fields: []formField{
			newTextField("Email", "you@example.com", email, true),
			password,
		},
	}
	if register {
		f.kind = formRegister
		f.title = "Create account"
		f.fields = append(f.fields, newTextField("Username", "username", "", true))
	}
	f.focusField(0)
	return f
}

const (
	taskTitle = iota
	taskDescription
	taskCategory
	taskPriority
	taskDue
)

func newTaskForm(d tasks.Draft, editID int64) form {
	var catOpts, catLabels []string
	for _, c := range tasks.Categories {
		catOpts = append(catOpts, string(c))
		catLabels = append(catLabels, c.Label())
	}
	var prioOpts, prioLabels []string
	for _, p := range tasks.Priorities {
		prioOpts = append(prioOpts, string(p))
		prioLabels = append(prioLabels, p.Label())
	}

	f := form{
		kind:  formAddTask,
		title: "New task",
		fields: []formField{
			newTextField("Title", "what needs doing", d.Title, true),
			newTextField("Description", "optional details", d.Description, false),
			newSelectField("Category", catOpts, catLabels, string(d.Category), true),
			newSelectField("Priority", prioOpts, prioLabels, string(d.Priority), false),
			newTextField("Due date", tasks.DateLayout, d.DueDate, true),
		},
	}
	if editID != 0 {
		f.kind = formEditTask
		f.title = "Edit task"
		f.editID = editID
	}
	f.focusField(0)
	return f
}

// draft reads a task form back into a Draft.
func (f form) draft() tasks.Draft {
	return tasks.Draft{
		Title:       f.value(taskTitle),
		Description: f.value(taskDescription),
		Category:    tasks.Category(f.value(taskCategory)),
		Priority:    tasks.Priority(f.value(taskPriority)),
		DueDate:     f.value(taskDue),
	}
}

const (
	profileBio = iota
	profileAvatar
)

func newProfileForm(p *api.Profile) form {
	var bio, avatar string
	if p != nil {
		if p.Bio != nil {
			bio = *p.Bio
		}
		if p.AvatarURL != nil {
			avatar = *p.AvatarURL
		}
	}
	f := form{
		kind:  formProfile,
		title: "Edit profile",
		fields: []formField{
			newTextField("Bio", "a few words about you", bio, false),
			newTextField("Avatar URL", "https://", avatar, false),
		},
	}
	f.snapshot()
	f.focusField(0)
	return f
}

// profileUpdate carries only the fields that changed since the form opened.
// A field cleared by the user is sent empty, which clears it remotely.
func (f form) profileUpdate() api.ProfileUpdate {
	var u api.ProfileUpdate
	if bio, ok := f.changed(profileBio); ok {
		u.Bio = &bio
	}
	if avatar, ok := f.changed(profileAvatar); ok {
		u.AvatarURL = &avatar
	}
	return u
}

// snapshot records the current values for changed.
func (f *form) snapshot() {
	f.orig = make([]string, len(f.fields))
	for i := range f.fields {
		f.orig[i] = f.value(i)
	}
}

// changed returns the value of field i and whether it differs from the
// snapshot.
func (f form) changed(i int) (string, bool) {
	v := f.value(i)
	if i >= len(f.orig) {
		return v, true
	}
	return v, v != f.orig[i]
}

const (
	settingsNotifications = iota
	settingsTelegram
	settingsTelegramUser
	settingsEmail
	settingsReminder
	settingsTheme
	settingsAccent
)

var (
	onOff       = []string{"on", "off"}
	onOffLabels = []string{"On", "Off"}
)

func onOffValue(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func newSettingsForm(s config.Settings) form {
	reminderLabels := make([]string, len(config.ReminderLeads))
	for i, lead := range config.ReminderLeads {
		reminderLabels[i] = config.ReminderLabel(lead)
	}
	f := form{
		kind:  formSettings,
		title: "Settings",
		fields: []formField{
			newSelectField("Notifications", onOff, onOffLabels, onOffValue(s.Notifications), true),
			newSelectField("Telegram", onOff, onOffLabels, onOffValue(s.TelegramNotifications), true),
			newTextField("Telegram user", "@username", s.TelegramUsername, false),
			newSelectField("Email", onOff, onOffLabels, onOffValue(s.EmailNotifications), true),
			newSelectField("Remind me", config.ReminderLeads, reminderLabels, s.ReminderLead, true),
			newSelectField("Theme", config.Themes, []string{"Dark", "Light"}, s.Theme, true),
			newSelectField("Accent", config.Accents, []string{"Blue", "Purple", "Green", "Orange", "Pink"}, s.Accent, true),
		},
	}
	f.focusField(0)
	return f
}

// settings reads a settings form back.
func (f form) settings() config.Settings {
	return config.Settings{
		Notifications:         f.value(settingsNotifications) == "on",
		TelegramNotifications: f.value(settingsTelegram) == "on",
		TelegramUsername:      config.NormalizeUsername(f.value(settingsTelegramUser)),
		EmailNotifications:    f.value(settingsEmail) == "on",
		ReminderLead:          f.value(settingsReminder),
		Theme:                 f.value(settingsTheme),
		Accent:                f.value(settingsAccent),
	}
}

func (m Model) renderFormModal() string {
	var b strings.Builder
	b.WriteString(ModalTitleStyle.Render(m.form.title))
	b.WriteString("\n\n")
	b.WriteString(m.form.view())
	b.WriteString("\n")
	hint := "tab/↑↓ field  ←→ choose  enter save  esc cancel"
	if m.form.kind == formProfile {
		hint = "tab/↑↓ field  enter save  esc cancel"
	}
	b.WriteString(FooterStyle.Render(hint))
	return ModalStyle.Width(lipgloss.Width(hint) + 6).Render(b.String())
}
