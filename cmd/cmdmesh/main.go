// Command cmdmesh starts the interactive command assistant shell. It loads
// optional settings from a TOML config file and API keys from .env, then
// reads commands from stdin until exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/hupe1980/cmdmesh"
	"github.com/hupe1980/cmdmesh/config"
	"github.com/hupe1980/cmdmesh/logging"
	"github.com/hupe1980/cmdmesh/model"
	"github.com/hupe1980/cmdmesh/model/anthropic"
	"github.com/hupe1980/cmdmesh/model/openai"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cmdmesh:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	backend, err := newModel(cfg.Model)
	if err != nil {
		return err
	}
	timeout, err := cfg.CommandTimeout()
	if err != nil {
		return err
	}

	m := cmdmesh.New(func(o *cmdmesh.Options) {
		o.Logger = logger
		o.Model = backend
		o.GrantedPermissions = cfg.Permissions.Granted
		o.SessionHistoryLimit = cfg.Session.HistoryLimit
		o.EventHistoryLimit = cfg.Events.HistoryLimit
		o.WebhookURL = cfg.Tools.WebhookURL
		o.CommandTimeout = timeout
	})

	return m.Run(context.Background(), os.Stdin, os.Stdout)
}

// newModel selects the generation backend from config. Provider "none"
// returns nil, leaving the code agent on its offline placeholder.
func newModel(cfg config.Model) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.BaseURL = cfg.BaseURL
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
		}), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
