package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	// SessionTTL is the sliding window; SessionMaxLifetime the absolute
	// ceiling a session may never outlive regardless of renewals.
	SessionTTL            time.Duration `yaml:"-"`
	SessionMaxLifetime    time.Duration `yaml:"-"`
	SessionRefreshWindow  time.Duration `yaml:"-"`
	VerificationTokenTTL  time.Duration `yaml:"-"`
	PasswordResetTokenTTL time.Duration `yaml:"-"`
	MinPasswordLength     int           `yaml:"min_password_length"`
	RequireVerifiedEmail  bool          `yaml:"require_verified_email"`
}

// UnmarshalYAML parses the duration fields from "30m"/"24h" style strings,
// since yaml.v3 has no native time.Duration support.
func (a *AuthConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SessionTTL            string `yaml:"session_ttl"`
		SessionMaxLifetime    string `yaml:"session_max_lifetime"`
		SessionRefreshWindow  string `yaml:"session_refresh_window"`
		VerificationTokenTTL  string `yaml:"verification_token_ttl"`
		PasswordResetTokenTTL string `yaml:"password_reset_token_ttl"`
		MinPasswordLength     int    `yaml:"min_password_length"`
		RequireVerifiedEmail  bool   `yaml:"require_verified_email"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	a.SessionTTL = parseDuration(raw.SessionTTL, 0)
	a.SessionMaxLifetime = parseDuration(raw.SessionMaxLifetime, 0)
	a.SessionRefreshWindow = parseDuration(raw.SessionRefreshWindow, 0)
	a.VerificationTokenTTL = parseDuration(raw.VerificationTokenTTL, 0)
	a.PasswordResetTokenTTL = parseDuration(raw.PasswordResetTokenTTL, 0)
	a.MinPasswordLength = raw.MinPasswordLength
	a.RequireVerifiedEmail = raw.RequireVerifiedEmail
	return nil
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		BaseURL        string   `yaml:"base_url"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Auth        AuthConfig  `yaml:"auth"`
	Redis       RedisConfig `yaml:"redis"`
	Environment string      `yaml:"environment"`
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:3000"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Auth.SessionMaxLifetime == 0 {
		c.Auth.SessionMaxLifetime = 30 * 24 * time.Hour
	}
	if c.Auth.SessionRefreshWindow == 0 {
		c.Auth.SessionRefreshWindow = 12 * time.Hour
	}
	if c.Auth.VerificationTokenTTL == 0 {
		c.Auth.VerificationTokenTTL = 24 * time.Hour
	}
	if c.Auth.PasswordResetTokenTTL == 0 {
		c.Auth.PasswordResetTokenTTL = 30 * time.Minute
	}
	if c.Auth.MinPasswordLength == 0 {
		c.Auth.MinPasswordLength = 8
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// IsProduction gates Secure cookies and similar transport concerns.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
