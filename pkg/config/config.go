package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/stefanpenner/taskbuddy/pkg/api"
)

// Endpoints are the URLs of the four remote functions.
type Endpoints struct {
	Auth          string `yaml:"auth" env:"TASKBUDDY_AUTH_URL" env-default:"http://localhost:8080/auth"`
	Goals         string `yaml:"goals" env:"TASKBUDDY_GOALS_URL" env-default:"http://localhost:8080/goals"`
	Notifications string `yaml:"notifications" env:"TASKBUDDY_NOTIFICATIONS_URL" env-default:"http://localhost:8080/notifications"`
	Profile       string `yaml:"profile" env:"TASKBUDDY_PROFILE_URL" env-default:"http://localhost:8080/profile"`
}

// Config is the client configuration.
type Config struct {
	LogLevel    string        `yaml:"log_level" env:"TASKBUDDY_LOG_LEVEL" env-default:"INFO"`
	Timeout     time.Duration `yaml:"timeout" env:"TASKBUDDY_TIMEOUT" env-default:"10s"`
	TelegramBot string        `yaml:"telegram_bot" env:"TASKBUDDY_TELEGRAM_BOT" env-default:"TaskBody_bot"`
	Endpoints   Endpoints     `yaml:"endpoints"`
	Settings    Settings      `yaml:"settings"`

	// Resolved at load time, never read from file or env.
	DataDir string `yaml:"-"`
	Path    string `yaml:"-"`
}

// FileName is the config file looked up in the data dir.
const FileName = "config.yaml"

// Load reads .env from the working directory if present, then the config
// file (path, or <dataDir>/config.yaml when empty), then the environment.
// A missing config file is not an error.
func Load(dataDir, path string) (Config, error) {
	cfg := Config{Settings: DefaultSettings()}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	if path == "" {
		path = filepath.Join(dataDir, FileName)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("reading config %q: %w", path, err)
		}
		// no file: env only
		cfg = Config{Settings: DefaultSettings()}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("reading env: %w", err)
		}
	}

	cfg.DataDir = dataDir
	cfg.Path = path
	return cfg, nil
}

// APIEndpoints converts the endpoint section for the api client.
func (c Config) APIEndpoints() api.Endpoints {
	return api.Endpoints{
		Auth:          c.Endpoints.Auth,
		Goals:         c.Endpoints.Goals,
		Notifications: c.Endpoints.Notifications,
		Profile:       c.Endpoints.Profile,
	}
}

// TelegramLink returns the bot deep link that binds a chat to userID.
func (c Config) TelegramLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", c.TelegramBot, userID)
}

// YAML renders the effective configuration.
func (c Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("serializing config: %w", err)
	}
	return string(data), nil
}

// Save writes the configuration to Path, creating its directory.
func (c Config) Save() error {
	if c.Path == "" {
		return fmt.Errorf("saving config: no path")
	}
	out, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(c.Path, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing config %q: %w", c.Path, err)
	}
	return nil
}
