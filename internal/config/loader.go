package config

import (
	"log"
	"os"
	"strconv"
)

// Load loads configuration from environment variables, falling back to
// defaults for any missing values.
func Load() *Config {
	cfg := Default()

	if v := os.Getenv("GROUNDSTATION_TARGET_ADDRESS"); v != "" {
		cfg.Vehicle.TargetAddress = v
	}
	if v := os.Getenv("GROUNDSTATION_TARGET_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Vehicle.TargetPort = uint16(p)
		}
	}
	if v := os.Getenv("GROUNDSTATION_LOCAL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Vehicle.LocalPort = uint16(p)
		}
	}
	if v := os.Getenv("GROUNDSTATION_SYSTEM_ID"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Vehicle.SystemID = uint8(p)
		}
	}
	if v := os.Getenv("GROUNDSTATION_COMPONENT_ID"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Vehicle.ComponentID = uint8(p)
		}
	}
	if v := os.Getenv("GROUNDSTATION_HEALTH_CHECK_ENABLED"); v != "" {
		cfg.Vehicle.HealthCheckEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GROUNDSTATION_AUTO_RESTART_ENABLED"); v != "" {
		cfg.Vehicle.AutoRestartEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GROUNDSTATION_CONNECTION_TIMEOUT_MS"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Vehicle.ConnectionTimeoutMs = p
		}
	}
	if v := os.Getenv("GROUNDSTATION_RESTART_DELAY_MS"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Vehicle.RestartDelayMs = p
		}
	}
	if v := os.Getenv("GROUNDSTATION_CACHE_DIR"); v != "" {
		cfg.Vehicle.CacheDir = v
	}
	if v := os.Getenv("GROUNDSTATION_FIELDMETA_PATH"); v != "" {
		cfg.Vehicle.FieldMetaPath = v
	}
	if v := os.Getenv("GROUNDSTATION_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GROUNDSTATION_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GROUNDSTATION_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("GROUNDSTATION_NATS_URL"); v != "" {
		cfg.Events.Enabled = true
		cfg.Events.NATSURL = v
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	return cfg
}
