package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmdmesh.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	d, err := cfg.CommandTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestLoad_PartialFileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"

[model]
provider = "openai"
name = "gpt-4o-mini"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Equal(t, 100, cfg.Session.HistoryLimit)
	assert.Equal(t, []string{"filesystem", "shell", "network"}, cfg.Permissions.Granted)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"

[session]
history_limit = 10

[events]
history_limit = 25

[permissions]
granted = ["filesystem"]

[model]
provider = "anthropic"
name = "claude-sonnet-4-0"
base_url = ""

[tools]
webhook_url = "http://localhost:5678/webhook/task"
command_timeout = "5s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Session.HistoryLimit)
	assert.Equal(t, 25, cfg.Events.HistoryLimit)
	assert.Equal(t, []string{"filesystem"}, cfg.Permissions.Granted)
	assert.Equal(t, "http://localhost:5678/webhook/task", cfg.Tools.WebhookURL)

	d, err := cfg.CommandTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad level", "[logging]\nlevel = \"loud\"", "invalid logging level"},
		{"bad format", "[logging]\nformat = \"xml\"", "invalid logging format"},
		{"bad provider", "[model]\nprovider = \"cohere\"", "invalid model provider"},
		{"bad history", "[session]\nhistory_limit = 0", "history_limit must be positive"},
		{"bad timeout", "[tools]\ncommand_timeout = \"soon\"", "invalid command_timeout"},
		{"unknown key", "[logging]\nlevle = \"info\"", "unknown keys"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
