// Package config loads the client configuration file and applies
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClientConfig is the client.yaml schema.
type ClientConfig struct {
	Version int `yaml:"version"`
	Server  struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"server"`
	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`
}

// Default returns the configuration used when no file is present.
func Default() *ClientConfig {
	cfg := &ClientConfig{Version: 1}
	cfg.Server.BaseURL = "http://localhost:8000"
	cfg.Session.Path = "openoii-session.db"
	cfg.applyEnv()
	cfg.deriveWSURL()
	return cfg
}

// Load reads and validates a client.yaml file.
func Load(path string) (*ClientConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported client.yaml version: %d", cfg.Version)
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8000"
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = "openoii-session.db"
	}
	cfg.applyEnv()
	cfg.deriveWSURL()
	return &cfg, nil
}

// applyEnv lets environment variables win over file values.
func (c *ClientConfig) applyEnv() {
	if v := os.Getenv("OPENOII_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
		c.Server.WSURL = ""
	}
	if v := os.Getenv("OPENOII_WS_URL"); v != "" {
		c.Server.WSURL = v
	}
	if v := os.Getenv("OPENOII_SESSION_PATH"); v != "" {
		c.Session.Path = v
	}
}

// deriveWSURL maps the HTTP base to its websocket counterpart when no
// explicit ws_url is configured.
func (c *ClientConfig) deriveWSURL() {
	if c.Server.WSURL != "" {
		return
	}
	ws := c.Server.BaseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	c.Server.WSURL = strings.TrimSuffix(ws, "/")
}
