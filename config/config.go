// Package config loads server configuration from defaults, an optional
// YAML file and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `yaml:"addr"`
	// Root is the directory served under /files/.
	Root string `yaml:"root"`
	// ConnDeadline bounds the full lifetime of one connection.
	ConnDeadline time.Duration `yaml:"conn_deadline"`
}

// UnmarshalYAML accepts conn_deadline as a duration string ("30s") and
// leaves fields absent from the document at their current values.
func (s *ServerConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Addr         string `yaml:"addr"`
		Root         string `yaml:"root"`
		ConnDeadline string `yaml:"conn_deadline"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Addr != "" {
		s.Addr = raw.Addr
	}
	if raw.Root != "" {
		s.Root = raw.Root
	}
	if raw.ConnDeadline != "" {
		d, err := time.ParseDuration(raw.ConnDeadline)
		if err != nil {
			return fmt.Errorf("config: parsing conn_deadline: %w", err)
		}
		s.ConnDeadline = d
	}
	return nil
}

type TelemetryConfig struct {
	// Endpoint of an OTLP/gRPC collector. Empty disables the export
	// pipeline; logs then go to stderr.
	Endpoint string `yaml:"endpoint"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			Root:         "public",
			ConnDeadline: 30 * time.Second,
		},
	}

	if path := os.Getenv("SERVER_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if root := os.Getenv("SERVER_ROOT"); root != "" {
		cfg.Server.Root = root
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Telemetry.Endpoint = endpoint
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if c.Server.Root == "" {
		return fmt.Errorf("config: serving root must not be empty")
	}
	if c.Server.ConnDeadline <= 0 {
		return fmt.Errorf("config: connection deadline must be positive, got %s", c.Server.ConnDeadline)
	}
	return nil
}
