// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where a config file is searched for, in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"bubbaloop.yaml",
	"bubbaloop.yml",
	"/etc/bubbaloop/bubbaloop.yaml",
	"/etc/bubbaloop/bubbaloop.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "BUBBALOOP_CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Scope: ScopeConfig{
			Name:    "local",
			Machine: "",
		},
		Fabric: FabricConfig{
			Endpoint:            "",
			ConnectTimeout:      10 * time.Second,
			DeclareTimeout:      5 * time.Second,
			BreakerMaxRequests:  1,
			BreakerInterval:     60 * time.Second,
			BreakerTimeout:      30 * time.Second,
			BreakerFailureRatio: 0.6,
			BreakerMinRequests:  3,
		},
		Daemon: DaemonConfig{
			ReconcileInterval:   2 * time.Second,
			HeartbeatInterval:   5 * time.Second,
			HeartbeatStaleAfter: 20 * time.Second,
			CommandTimeout:      5 * time.Second,
			LogsTimeout:         30 * time.Second,
			StatusPollRate:      1.0,
		},
		Launch: LaunchConfig{
			ShutdownGrace:      5 * time.Second,
			RespawnMaxAttempts: 5,
			RespawnWindow:      60 * time.Second,
			RespawnBackoffCap:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Addr:               "",
			CORSAllowedOrigins: "",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if present)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc transforms environment variable names to koanf config
// paths. Fabric.Endpoint is handled specially by internal/fabric's own
// ZENOH_ENDPOINT/BUBBALOOP_ZENOH_ENDPOINT resolution order, not here — this
// mapping only covers the BUBBALOOP_FABRIC_ENDPOINT fallback plus the
// daemon's ambient settings.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"bubbaloop_scope":   "scope.name",
		"bubbaloop_machine": "scope.machine",

		"bubbaloop_fabric_endpoint":             "fabric.endpoint",
		"bubbaloop_fabric_connect_timeout":      "fabric.connect_timeout",
		"bubbaloop_fabric_declare_timeout":      "fabric.declare_timeout",
		"bubbaloop_fabric_breaker_max_requests": "fabric.breaker_max_requests",
		"bubbaloop_fabric_breaker_interval":     "fabric.breaker_interval",
		"bubbaloop_fabric_breaker_timeout":      "fabric.breaker_timeout",
		"bubbaloop_fabric_breaker_failure_ratio": "fabric.breaker_failure_ratio",
		"bubbaloop_fabric_breaker_min_requests":  "fabric.breaker_min_requests",

		"bubbaloop_reconcile_interval":    "daemon.reconcile_interval",
		"bubbaloop_heartbeat_interval":    "daemon.heartbeat_interval",
		"bubbaloop_heartbeat_stale_after": "daemon.heartbeat_stale_after",
		"bubbaloop_command_timeout":       "daemon.command_timeout",
		"bubbaloop_logs_timeout":          "daemon.logs_timeout",
		"bubbaloop_status_poll_rate":      "daemon.status_poll_rate",

		"bubbaloop_shutdown_grace":       "launch.shutdown_grace",
		"bubbaloop_respawn_max_attempts": "launch.respawn_max_attempts",
		"bubbaloop_respawn_window":       "launch.respawn_window",
		"bubbaloop_respawn_backoff_cap":  "launch.respawn_backoff_cap",

		"bubbaloop_log_level":  "logging.level",
		"bubbaloop_log_format": "logging.format",
		"bubbaloop_log_caller": "logging.caller",

		"bubbaloop_metrics_addr":                 "metrics.addr",
		"bubbaloop_metrics_cors_allowed_origins": "metrics.cors_allowed_origins",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}

// GetKoanfInstance returns a fresh Koanf instance for advanced usage such as
// tests that need custom providers.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}
