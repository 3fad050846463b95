// Package config loads the server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
)

// Config is the complete configuration of a gqlcore server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	GraphQL GraphQLConfig `yaml:"graphql"`
	Log     LogConfig     `yaml:"log"`
	Otel    OtelConfig    `yaml:"otel"`
	Metrics MetricsConfig `yaml:"metrics"`
	Fleet   FleetConfig   `yaml:"fleet"`
}

type ServerConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
	Pretty  bool          `yaml:"pretty"`
	// MaxBodyBytes limits request bodies; 0 means unlimited.
	MaxBodyBytes int64    `yaml:"maxBodyBytes"`
	CORSOrigins  []string `yaml:"corsOrigins"`
	// MetadataHeaders are forwarded to resolvers as outgoing gRPC metadata.
	MetadataHeaders []string `yaml:"metadataHeaders"`
	GraphiQL        bool     `yaml:"graphiql"`
}

type GraphQLConfig struct {
	// Strategy is "serial" or "parallel".
	Strategy string `yaml:"strategy"`
	// Introspection enables __schema and __type queries.
	Introspection bool `yaml:"introspection"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type OtelConfig struct {
	// Endpoint of the OTLP/gRPC collector. Tracing is off when empty.
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
	// FieldSpans emits a span per resolved field.
	FieldSpans bool `yaml:"fieldSpans"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FleetConfig points starship lookups at a remote fleet gRPC service.
// Starships are served from memory when Endpoints is empty.
type FleetConfig struct {
	Endpoints          []string      `yaml:"endpoints"`
	RPCTimeout         time.Duration `yaml:"rpcTimeout"`
	MaxConnsPerBackend int           `yaml:"maxConnsPerBackend"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":8080",
			Timeout:  10 * time.Second,
			GraphiQL: true,
		},
		GraphQL: GraphQLConfig{Strategy: "serial", Introspection: true},
		Log:     LogConfig{Level: "info"},
		Otel:    OtelConfig{Service: "gqlcore"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Fleet:   FleetConfig{RPCTimeout: 3 * time.Second, MaxConnsPerBackend: 2},
	}
}

// Load reads path and overlays it on the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch c.GraphQL.Strategy {
	case "serial", "parallel":
	default:
		return fmt.Errorf("graphql.strategy must be serial or parallel, got %q", c.GraphQL.Strategy)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative, got %s", c.Server.Timeout)
	}
	if c.Metrics.Enabled && (c.Metrics.Path == "" || c.Metrics.Path[0] != '/') {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	if c.Fleet.RPCTimeout < 0 {
		return fmt.Errorf("fleet.rpcTimeout must not be negative, got %s", c.Fleet.RPCTimeout)
	}
	return nil
}
