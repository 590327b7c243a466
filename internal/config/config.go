// Package config provides configuration management for devtasks.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvFile         = "DEVTASKS_FILE"
	EnvLogLevel     = "DEVTASKS_LOG_LEVEL"
	EnvTelemetry    = "DEVTASKS_TELEMETRY"
	EnvOTLPEndpoint = "DEVTASKS_OTLP_ENDPOINT"
	EnvOTLPInsecure = "DEVTASKS_OTLP_INSECURE"
	defaultLogLevel = "info"
)

// Config holds settings that may come from the environment. Command-line flags override these
type Config struct {
	TaskfilePath string
	LogLevel     string

	TelemetryEnabled bool
	OTLPEndpoint     string
	OTLPInsecure     bool
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		TaskfilePath: strings.TrimSpace(os.Getenv(EnvFile)),
		LogLevel:     defaultLogLevel,
		OTLPEndpoint: strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)),
	}

	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		config.LogLevel = level
	}
	if err := parseOptionalBool(&config.TelemetryEnabled, EnvTelemetry); err != nil {
		return Config{}, err
	}
	if err := parseOptionalBool(&config.OTLPInsecure, EnvOTLPInsecure); err != nil {
		return Config{}, err
	}
	// An endpoint on its own is enough to opt in
	if config.OTLPEndpoint != "" && os.Getenv(EnvTelemetry) == "" {
		config.TelemetryEnabled = true
	}

	return config, nil
}

func parseOptionalBool(dest *bool, key string) error {
	str := strings.TrimSpace(os.Getenv(key))
	if str == "" {
		return nil // Leave default value
	}
	v, err := strconv.ParseBool(str)
	if err != nil {
		return fmt.Errorf("failed to parse environment variable '%s' value '%s' as bool: %w", key, str, err)
	}
	*dest = v
	return nil
}
