package config

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. CLINIC_SERVER_PORT.
const EnvPrefix = "CLINIC"

var defaults = map[string]any{
	"server.port":              8080,
	"server.log_level":         "info",
	"server.shutdown_timeout":  "10s",
	"database.url":             "",
	"auth.jwt_secret":          "",
	"auth.token_lifetime":      "12h",
	"clinic.open_time":         "09:00",
	"clinic.close_time":        "18:00",
	"clinic.consultation_fee":  "30",
	"clinic.default_threshold": 20,
	"clinic.timezone":          "Local",
}

// Load reads configuration from environment variables and, if present, a
// config.yaml in the working directory or ./config. Environment variables
// take precedence over the file.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the values that need parsing.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	open, closing, err := cfg.Clinic.OperatingHours()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if minuteOfDay(open) >= minuteOfDay(closing) {
		return fmt.Errorf("config validation failed: clinic opens at %s but closes at %s", open, closing)
	}
	fee, err := cfg.Clinic.Fee()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("config validation failed: consultation_fee %s is negative", fee)
	}
	if _, err := cfg.Clinic.Location(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func minuteOfDay(t civil.Time) int {
	return t.Hour*60 + t.Minute
}
