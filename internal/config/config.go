package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// MariaDSN is the admin DSN for the MariaDB/MySQL service.
	MariaDSN string
	// PostgresURL is the admin URL for the PostgreSQL service.
	PostgresURL string
	// MemberDatabaseDSN points at the member record store.
	MemberDatabaseDSN string
	ServiceName       string
	LogLevel          string
}

func Load() (*Config, error) {
	cfg := &Config{
		MariaDSN:          getEnv("MARIA_DSN", ""),
		PostgresURL:       getEnv("POSTGRES_URL", ""),
		MemberDatabaseDSN: getEnv("MEMBER_DATABASE_DSN", ""),
		ServiceName:       getEnv("SERVICE_NAME", "hostadmin"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Profile is an optional YAML connection profile. Values present in the
// profile override the environment.
type Profile struct {
	Engine   string `yaml:"engine" validate:"required,oneof=maria pgsql"`
	DSN      string `yaml:"dsn" validate:"required"`
	MemberDB string `yaml:"member_db" validate:"omitempty"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
}

// LoadProfile reads and validates a connection profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := validator.New().Struct(&profile); err != nil {
		return nil, fmt.Errorf("validate profile: %w", err)
	}
	return &profile, nil
}

// Apply overlays profile values onto the config.
func (p *Profile) Apply(cfg *Config) {
	switch p.Engine {
	case "maria":
		cfg.MariaDSN = p.DSN
	case "pgsql":
		cfg.PostgresURL = p.DSN
	}
	if p.MemberDB != "" {
		cfg.MemberDatabaseDSN = p.MemberDB
	}
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
}
