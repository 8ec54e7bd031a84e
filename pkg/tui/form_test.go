package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/taskbuddy/pkg/api"
	"github.com/stefanpenner/taskbuddy/pkg/config"
	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

func TestTaskFormPrefill(t *testing.T) {
	task := tasks.Task{
		ID:          9,
		Title:       "Read chapter 3",
		Description: "pages 40-60",
		Category:    tasks.CategoryStudy,
		Priority:    tasks.PriorityLow,
		DueDate:     "2025-10-20",
	}
	f := newTaskForm(tasks.DraftFrom(task), task.ID)

	assert.Equal(t, formEditTask, f.kind)
	assert.Equal(t, int64(9), f.editID)
	assert.Equal(t, tasks.DraftFrom(task), f.draft())
	assert.False(t, f.missingRequired())
}

func TestSelectFieldCycles(t *testing.T) {
	f := newTaskForm(tasks.Draft{}, 0)
	f.focusField(taskCategory)
	assert.Equal(t, "", f.value(taskCategory))

	left := tea.KeyMsg{Type: tea.KeyLeft}
	right := tea.KeyMsg{Type: tea.KeyRight}

	f.update(left)
	assert.Equal(t, string(tasks.CategoryProjects), f.value(taskCategory), "left from unset wraps to the end")
	f.update(right)
	assert.Equal(t, string(tasks.CategoryWork), f.value(taskCategory))
	f.update(right)
	assert.Equal(t, string(tasks.CategoryStudy), f.value(taskCategory))
}

func TestFocusWraps(t *testing.T) {
	f := newTaskForm(tasks.Draft{}, 0)
	f.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, taskDue, f.focus)
	f.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, taskTitle, f.focus)
}

func TestLoginFormVariants(t *testing.T) {
	login := newLoginForm(false, "a@b.c")
	assert.Equal(t, formLogin, login.kind)
	require.Len(t, login.fields, 2)
	assert.Equal(t, "a@b.c", login.value(loginEmail))
	assert.True(t, login.missingRequired())

	register := newLoginForm(true, "")
	assert.Equal(t, formRegister, register.kind)
	require.Len(t, register.fields, 3)
	assert.Contains(t, register.view(), "Username")
}

func TestProfileFormUpdate(t *testing.T) {
	bio := "old bio"
	f := newProfileForm(&api.Profile{Bio: &bio})
	assert.Equal(t, "old bio", f.value(profileBio))

	assert.True(t, f.profileUpdate().Empty())

	f.fields[profileAvatar].input.SetValue(" https://img.test/a.png ")
	u := f.profileUpdate()
	assert.Nil(t, u.Bio, "unchanged bio is not sent")
	require.NotNil(t, u.AvatarURL)
	assert.Equal(t, "https://img.test/a.png", *u.AvatarURL)
	assert.Nil(t, u.Username)

	f.fields[profileBio].input.SetValue("")
	u = f.profileUpdate()
	require.NotNil(t, u.Bio, "a cleared bio is sent empty")
	assert.Empty(t, *u.Bio)

	assert.Empty(t, newProfileForm(nil).value(profileBio))
}

func TestSettingsFormRoundTrip(t *testing.T) {
	s := config.DefaultSettings()
	s.EmailNotifications = true
	s.ReminderLead = "1week"
	s.TelegramUsername = "@buddy"

	f := newSettingsForm(s)
	assert.Equal(t, formSettings, f.kind)
	assert.Equal(t, s, f.settings())
	assert.Contains(t, f.view(), "1 week before")

	f.fields[settingsTelegramUser].input.SetValue(" pal ")
	assert.Equal(t, "@pal", f.settings().TelegramUsername)
}
