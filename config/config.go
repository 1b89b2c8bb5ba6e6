package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Logging     Logging     `toml:"logging"`
	Session     Session     `toml:"session"`
	Events      Events      `toml:"events"`
	Permissions Permissions `toml:"permissions"`
	Model       Model       `toml:"model"`
	Tools       Tools       `toml:"tools"`
}

// Logging controls the structured log output.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is json or text.
	Format string `toml:"format"`
}

// Session bounds per-session state.
type Session struct {
	// HistoryLimit caps the command history kept per session.
	HistoryLimit int `toml:"history_limit"`
}

// Events bounds the event bus.
type Events struct {
	// HistoryLimit caps the retained event history.
	HistoryLimit int `toml:"history_limit"`
}

// Permissions lists the capability grants handed to the built-in tools.
type Permissions struct {
	// Granted holds the permission names to grant, e.g. filesystem, shell.
	Granted []string `toml:"granted"`
}

// Model selects and configures the text generation backend.
type Model struct {
	// Provider is openai, anthropic or none.
	Provider string `toml:"provider"`
	// Name is the provider-specific model identifier.
	Name string `toml:"name"`
	// BaseURL overrides the provider endpoint, e.g. for an
	// OpenAI-compatible local server.
	BaseURL string `toml:"base_url"`
}

// Tools configures the built-in tools.
type Tools struct {
	// WebhookURL is the endpoint the webhook tool posts to.
	WebhookURL string `toml:"webhook_url"`
	// CommandTimeout bounds shell command execution, e.g. "30s".
	CommandTimeout string `toml:"command_timeout"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Logging: Logging{Level: "info", Format: "text"},
		Session: Session{HistoryLimit: 100},
		Events:  Events{HistoryLimit: 100},
		Permissions: Permissions{
			Granted: []string{"filesystem", "shell", "network"},
		},
		Model: Model{Provider: "none"},
		Tools: Tools{CommandTimeout: "30s"},
	}
}

// Load reads the TOML file at path on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config: unknown keys: %s", strings.Join(keys, ", "))
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: invalid logging format %q", c.Logging.Format)
	}
	switch c.Model.Provider {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("config: invalid model provider %q", c.Model.Provider)
	}
	if c.Session.HistoryLimit <= 0 {
		return fmt.Errorf("config: session history_limit must be positive, got %d", c.Session.HistoryLimit)
	}
	if c.Events.HistoryLimit <= 0 {
		return fmt.Errorf("config: events history_limit must be positive, got %d", c.Events.HistoryLimit)
	}
	if _, err := c.CommandTimeout(); err != nil {
		return err
	}
	return nil
}

// CommandTimeout parses the configured shell command timeout.
func (c Config) CommandTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(c.Tools.CommandTimeout))
	if err != nil {
		return 0, fmt.Errorf("config: invalid command_timeout %q: %w", c.Tools.CommandTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: command_timeout must be positive, got %s", d)
	}
	return d, nil
}
