// Package config holds the embedder-facing configuration for one vehicle
// connection and the process-wide ambient settings (logging, metrics,
// events) that sit around it.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Vehicle VehicleConfig
	Logging LoggingConfig
	Metrics MetricsConfig
	Events  EventsConfig
}

// VehicleConfig is the transport/vehicle connection contract.
type VehicleConfig struct {
	TargetAddress string
	TargetPort    uint16
	LocalPort     uint16

	SystemID    uint8
	ComponentID uint8

	HealthCheckEnabled   bool
	AutoRestartEnabled   bool
	ConnectionTimeoutMs  int
	RestartDelayMs       int
	AutoVersionDetection bool

	CacheDir string

	// FieldMetaPath optionally points at a YAML overlay of per-field
	// metadata defaults (raw_min/raw_max/raw_default/units/enum/bitmask),
	// applied on top of the built-in descriptors before first use.
	FieldMetaPath string
}

type LoggingConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "text"
}

type MetricsConfig struct {
	Enabled bool
	Addr    string // listen address for the /metrics HTTP handler
}

type EventsConfig struct {
	Enabled    bool
	NATSURL    string
	SubjectPrefix string
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Vehicle: VehicleConfig{
			TargetAddress:        "127.0.0.1",
			TargetPort:           14550,
			LocalPort:            14550,
			SystemID:             255,
			ComponentID:          190,
			HealthCheckEnabled:   true,
			AutoRestartEnabled:   true,
			ConnectionTimeoutMs:  5000,
			RestartDelayMs:       2000,
			AutoVersionDetection: true,
			CacheDir:             "./data/paramcache",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Events: EventsConfig{
			Enabled:       false,
			NATSURL:       "",
			SubjectPrefix: "groundstation",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Vehicle.TargetPort == 0 {
		return fmt.Errorf("invalid target port: %d", c.Vehicle.TargetPort)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Vehicle.ConnectionTimeoutMs <= 0 {
		return fmt.Errorf("invalid connection timeout: %dms", c.Vehicle.ConnectionTimeoutMs)
	}

	return nil
}

// ConnectionTimeout returns the configured connection timeout as a Duration.
func (c *VehicleConfig) ConnectionTimeout() time.Duration {
	return time.Duration(c.ConnectionTimeoutMs) * time.Millisecond
}

// RestartDelay returns the configured restart delay as a Duration.
func (c *VehicleConfig) RestartDelay() time.Duration {
	return time.Duration(c.RestartDelayMs) * time.Millisecond
}
