// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package config

import (
	"fmt"
)

// Validate checks that required configuration is present and well-formed.
func (c *Config) Validate() error {
	if err := c.validateScope(); err != nil {
		return err
	}
	if err := c.validateFabric(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLaunch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScope() error {
	if c.Scope.Name == "" {
		return fmt.Errorf("BUBBALOOP_SCOPE must not be empty")
	}
	return nil
}

func (c *Config) validateFabric() error {
	if c.Fabric.ConnectTimeout <= 0 {
		return fmt.Errorf("fabric connect_timeout must be positive")
	}
	if c.Fabric.DeclareTimeout <= 0 {
		return fmt.Errorf("fabric declare_timeout must be positive")
	}
	if c.Fabric.BreakerFailureRatio <= 0 || c.Fabric.BreakerFailureRatio > 1 {
		return fmt.Errorf("fabric breaker_failure_ratio must be in (0, 1]")
	}
	if c.Fabric.BreakerMinRequests < 1 {
		return fmt.Errorf("fabric breaker_min_requests must be at least 1")
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.ReconcileInterval <= 0 {
		return fmt.Errorf("daemon reconcile_interval must be positive")
	}
	if c.Daemon.HeartbeatInterval <= 0 {
		return fmt.Errorf("daemon heartbeat_interval must be positive")
	}
	if c.Daemon.HeartbeatStaleAfter <= c.Daemon.HeartbeatInterval {
		return fmt.Errorf("daemon heartbeat_stale_after must exceed heartbeat_interval")
	}
	if c.Daemon.CommandTimeout <= 0 {
		return fmt.Errorf("daemon command_timeout must be positive")
	}
	if c.Daemon.LogsTimeout <= 0 {
		return fmt.Errorf("daemon logs_timeout must be positive")
	}
	if c.Daemon.StatusPollRate <= 0 {
		return fmt.Errorf("daemon status_poll_rate must be positive")
	}
	return nil
}

func (c *Config) validateLaunch() error {
	if c.Launch.RespawnMaxAttempts < 0 {
		return fmt.Errorf("launch respawn_max_attempts must be non-negative")
	}
	if c.Launch.RespawnWindow <= 0 {
		return fmt.Errorf("launch respawn_window must be positive")
	}
	if c.Launch.RespawnBackoffCap <= 0 {
		return fmt.Errorf("launch respawn_backoff_cap must be positive")
	}
	if c.Launch.ShutdownGrace <= 0 {
		return fmt.Errorf("launch shutdown_grace must be positive")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("BUBBALOOP_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("BUBBALOOP_LOG_FORMAT must be one of: json, console")
	}
	return nil
}
