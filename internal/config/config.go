// Package config reads process configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	BaseURL       string
	LogLevel      string
	Env           string
	SessionTTL    time.Duration
	CSRFKey       []byte
	SecureCookies bool
	ContactPhone  string
	Timezone      string
	Location      *time.Location
	AdminEmail    string
	AdminPassword string
	SentryDSN     string

	// New-lead email notifications. Disabled unless NotifyTo and one of
	// ResendAPIKey or PostmarkToken are set; Resend wins when both are.
	ResendAPIKey  string
	PostmarkToken string
	NotifyFrom    string
	NotifyTo      []string

	// Encrypted database backups, used by leadadmin.
	BackupBucket    string
	BackupPrefix    string
	BackupEndpoint  string
	BackupRegion    string
	BackupAccessKey string
	BackupSecretKey string
}

// Load reads .env (if any) and the environment. Variables already set in the
// environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults, and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          get("LEADLINE_PORT", "8080"),
		DBPath:        get("LEADLINE_DB_PATH", "leadline.db"),
		LogLevel:      get("LEADLINE_LOG_LEVEL", "info"),
		Env:           get("APP_ENV", "development"),
		ContactPhone:  get("LEADLINE_CONTACT_PHONE", "1588-0000"),
		Timezone:      get("LEADLINE_TIMEZONE", "Asia/Seoul"),
		AdminEmail:    get("LEADLINE_ADMIN_EMAIL", ""),
		AdminPassword: getenv("LEADLINE_ADMIN_PASSWORD"),
		SentryDSN:     get("SENTRY_DSN", ""),
	}
	cfg.BaseURL = get("LEADLINE_BASE_URL", "http://localhost:"+cfg.Port)

	ttl, err := time.ParseDuration(get("LEADLINE_SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse LEADLINE_SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	secure, err := strconv.ParseBool(get("LEADLINE_SECURE_COOKIES", "false"))
	if err != nil {
		return nil, fmt.Errorf("parse LEADLINE_SECURE_COOKIES: %w", err)
	}
	cfg.SecureCookies = secure

	cfg.ResendAPIKey = getenv("LEADLINE_RESEND_API_KEY")
	cfg.PostmarkToken = getenv("LEADLINE_POSTMARK_TOKEN")
	cfg.NotifyFrom = get("LEADLINE_NOTIFY_FROM", "noreply@localhost")
	for _, addr := range strings.Split(getenv("LEADLINE_NOTIFY_TO"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			cfg.NotifyTo = append(cfg.NotifyTo, addr)
		}
	}

	cfg.BackupBucket = get("LEADLINE_BACKUP_BUCKET", "")
	cfg.BackupPrefix = get("LEADLINE_BACKUP_PREFIX", "")
	cfg.BackupEndpoint = get("LEADLINE_BACKUP_ENDPOINT", "")
	cfg.BackupRegion = get("LEADLINE_BACKUP_REGION", "us-east-1")
	cfg.BackupAccessKey = getenv("LEADLINE_BACKUP_ACCESS_KEY")
	cfg.BackupSecretKey = getenv("LEADLINE_BACKUP_SECRET_KEY")

	if key := getenv("LEADLINE_CSRF_KEY"); key != "" {
		cfg.CSRFKey = []byte(key)
	} else {
		cfg.CSRFKey = make([]byte, 32)
		if _, err := rand.Read(cfg.CSRFKey); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the port, session TTL, CSRF key and timezone, and resolves
// Location.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid session ttl %s", c.SessionTTL)
	}
	if len(c.CSRFKey) < 32 {
		return errors.New("csrf key must be at least 32 bytes")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("LEADLINE_ADMIN_EMAIL and LEADLINE_ADMIN_PASSWORD must be set together")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Notify reports whether new leads should be emailed to NotifyTo.
func (c *Config) Notify() bool {
	return (c.ResendAPIKey != "" || c.PostmarkToken != "") && len(c.NotifyTo) > 0
}

// SeedAdmin reports whether an administrator should be seeded at startup.
func (c *Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}
