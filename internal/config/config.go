package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
	"croprotation/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Profiling ProfilingConfig
	Soil      SoilConfig
	Rotation  RotationConfig
	Data      DataConfig
	LogLevel  string
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// service against in-memory repositories.
type DatabaseConfig struct {
	URL   string
	Reset bool
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ProfilingConfig holds the ops listener settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// SoilConfig holds the initial soil acidity threshold
type SoilConfig struct {
	DefaultHP float64
}

// RotationConfig holds the fallbacks used when a plan leaves a field empty
type RotationConfig struct {
	DefaultSeason    crop.Season
	DefaultRainfall  float64
	DefaultTempRange domainRotation.TempRange
}

// DataConfig holds data import settings
type DataConfig struct {
	CatalogFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
			Reset: getEnvBoolOrDefault("DB_RESET", false),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
		},
		Rotation: RotationConfig{
			DefaultSeason:    crop.Season(strings.ToLower(getEnvOrDefault("ROTATION_DEFAULT_SEASON", string(crop.SeasonSpring)))),
			DefaultTempRange: domainRotation.TempRange(strings.ToLower(getEnvOrDefault("ROTATION_DEFAULT_TEMP_RANGE", string(domainRotation.TempModerate)))),
		},
		Data: DataConfig{
			CatalogFile: getEnvOrDefault("CROP_CATALOG_FILE", ""),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	hp, err := getEnvFiniteFloat("SOIL_DEFAULT_HP", 50)
	if err != nil {
		return nil, err
	}
	config.Soil.DefaultHP = hp

	rainfall, err := getEnvFiniteFloat("ROTATION_DEFAULT_RAINFALL", 500)
	if err != nil {
		return nil, err
	}
	config.Rotation.DefaultRainfall = rainfall

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Profiling.Enabled && config.Profiling.Port == config.Server.Port {
		return errors.ConfigInvalid("PPROF_PORT must differ from PORT")
	}
	if !crop.ValidSeason(config.Rotation.DefaultSeason) {
		return errors.ConfigInvalid("ROTATION_DEFAULT_SEASON must be one of spring, summer, autumn, winter")
	}
	if !domainRotation.ValidTempRange(config.Rotation.DefaultTempRange) {
		return errors.ConfigInvalid("ROTATION_DEFAULT_TEMP_RANGE must be one of cool, moderate, warm")
	}
	if config.Rotation.DefaultRainfall < 0 {
		return errors.ConfigInvalid("ROTATION_DEFAULT_RAINFALL must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvFiniteFloat rejects values that are set but not finite numbers
func getEnvFiniteFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.ConfigInvalid(key + " must be a finite number")
	}
	return f, nil
}
