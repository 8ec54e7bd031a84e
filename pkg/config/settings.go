package config

import (
	"fmt"
	"strings"
)

// Option lists for the settings screen, in display order.
var (
	ReminderLeads = []string{"10min", "30min", "1hour", "1day", "1week"}
	Themes        = []string{"dark", "light"}
	Accents       = []string{"blue", "purple", "green", "orange", "pink"}
)

// Settings are the user preferences kept on this machine. They have no
// remote counterpart.
type Settings struct {
	Notifications         bool   `yaml:"notifications"`
	TelegramNotifications bool   `yaml:"telegram_notifications"`
	TelegramUsername      string `yaml:"telegram_username"`
	EmailNotifications    bool   `yaml:"email_notifications"`
	ReminderLead          string `yaml:"reminder_lead"`
	Theme                 string `yaml:"theme" env:"TASKBUDDY_THEME"`
	Accent                string `yaml:"accent" env:"TASKBUDDY_ACCENT"`
}

// DefaultSettings returns the settings of a fresh install. Load starts from
// these, so keys missing from the file keep their default.
func DefaultSettings() Settings {
	return Settings{
		Notifications:         true,
		TelegramNotifications: true,
		EmailNotifications:    false,
		ReminderLead:          "1hour",
		Theme:                 "dark",
		Accent:                "blue",
	}
}

// Validate rejects values outside the option lists and usernames with
// whitespace.
func (s Settings) Validate() error {
	if !contains(ReminderLeads, s.ReminderLead) {
		return fmt.Errorf("unknown reminder time %q", s.ReminderLead)
	}
	if !contains(Themes, s.Theme) {
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	if !contains(Accents, s.Accent) {
		return fmt.Errorf("unknown accent color %q", s.Accent)
	}
	if strings.ContainsAny(s.TelegramUsername, " \t") {
		return fmt.Errorf("invalid Telegram username %q", s.TelegramUsername)
	}
	return nil
}

// NormalizeUsername strips whitespace and adds the leading @.
func NormalizeUsername(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}

// ReminderLabel is the human form of a reminder lead time.
func ReminderLabel(lead string) string {
	switch lead {
	case "10min":
		return "10 minutes before"
	case "30min":
		return "30 minutes before"
	case "1hour":
		return "1 hour before"
	case "1day":
		return "1 day before"
	case "1week":
		return "1 week before"
	}
	return lead
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
