package config

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Clinic   ClinicConfig   `mapstructure:"clinic" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig selects the snapshot store. With no URL, state is kept in
// memory only.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains the settings for the operator's bearer tokens.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// ClinicConfig holds the clinic's business settings.
type ClinicConfig struct {
	OpenTime         string `mapstructure:"open_time" validate:"required"`
	CloseTime        string `mapstructure:"close_time" validate:"required"`
	ConsultationFee  string `mapstructure:"consultation_fee" validate:"required,numeric"`
	DefaultThreshold int    `mapstructure:"default_threshold" validate:"gte=0"`
	Timezone         string `mapstructure:"timezone" validate:"required"`
}

// OperatingHours parses the opening and closing times, given as "15:04".
func (c ClinicConfig) OperatingHours() (civil.Time, civil.Time, error) {
	open, err := parseClock(c.OpenTime)
	if err != nil {
		return civil.Time{}, civil.Time{}, fmt.Errorf("open_time: %w", err)
	}
	closing, err := parseClock(c.CloseTime)
	if err != nil {
		return civil.Time{}, civil.Time{}, fmt.Errorf("close_time: %w", err)
	}
	return open, closing, nil
}

// Fee parses the consultation fee.
func (c ClinicConfig) Fee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.ConsultationFee)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("consultation_fee: %w", err)
	}
	return fee, nil
}

// Location loads the clinic's time zone.
func (c ClinicConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

func parseClock(s string) (civil.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return civil.Time{}, err
	}
	return civil.TimeOf(t), nil
}
