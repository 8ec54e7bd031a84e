package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.ReminderLead = "2hours"
	assert.EqualError(t, s.Validate(), `unknown reminder time "2hours"`)

	s = DefaultSettings()
	s.Theme = "solarized"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.Accent = "red"
	assert.EqualError(t, s.Validate(), `unknown accent color "red"`)

	s = DefaultSettings()
	s.TelegramUsername = "@two words"
	assert.Error(t, s.Validate())
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "@buddy", NormalizeUsername("  buddy "))
	assert.Equal(t, "@buddy", NormalizeUsername("@buddy"))
	assert.Equal(t, "", NormalizeUsername("   "))
}

func TestReminderLabel(t *testing.T) {
	assert.Equal(t, "1 day before", ReminderLabel("1day"))
	assert.Equal(t, "odd", ReminderLabel("odd"))
}
