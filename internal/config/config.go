// Package config loads application configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/database"
)

// Config holds all runtime configuration values. The core fields are
// required; the nested sections carry defaults and are read with envconfig.
type Config struct {
	Env            string // APP_ENV (development, production)
	Port           string // APP_PORT
	DBUser         string // DB_USER
	DBPass         string // DB_PASS (may be empty)
	DBHost         string // DB_HOST
	DBPort         string // DB_PORT
	DBName         string // DB_NAME
	JWTSecret      string // JWT_SECRET
	AccessTTLMin   int    // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int    // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int    // BCRYPT_COST

	PublicBaseURL string // PUBLIC_BASE_URL, origin of the customer site
	ManagePath    string // MANAGE_PATH, self-service page under PublicBaseURL
	VenueEmail    string // VENUE_EMAIL, receives a copy of every new booking
	VenueName     string // VENUE_NAME, used in mail subjects

	Log    LogConfig
	Mail   MailConfig
	Notify NotifyConfig
}

// Load reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win over it.
// Missing required variables stop the process.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:            envStr("APP_ENV", "development"),
		Port:           envStr("APP_PORT", "8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         envStr("DB_PORT", "3306"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		PublicBaseURL:  must("PUBLIC_BASE_URL"),
		ManagePath:     envStr("MANAGE_PATH", "/reservas/gestionar"),
		VenueEmail:     os.Getenv("VENUE_EMAIL"),
		VenueName:      envStr("VENUE_NAME", "Casa de Dosa Fusion"),
	}
	if err := envconfig.Process("", &cfg.Log); err != nil {
		log.Fatalf("logging config: %v", err)
	}
	if err := envconfig.Process("", &cfg.Mail); err != nil {
		log.Fatalf("mail config: %v", err)
	}
	if err := envconfig.Process("", &cfg.Notify); err != nil {
		log.Fatalf("notify config: %v", err)
	}
	return cfg
}

// LoadTooling reads the subset used by the admin CLI: database, bcrypt
// cost and logging. The HTTP-only variables are not required.
func LoadTooling() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:        envStr("APP_ENV", "development"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     envStr("DB_PORT", "3306"),
		DBName:     must("DB_NAME"),
		BcryptCost: envInt("BCRYPT_COST", 12),
	}
	if err := envconfig.Process("", &cfg.Log); err != nil {
		log.Fatalf("logging config: %v", err)
	}
	return cfg
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return strings.HasPrefix(strings.ToLower(c.Env), "prod")
}

// Database returns the connection settings for database.Open.
func (c Config) Database() database.Options {
	return database.Options{User: c.DBUser, Pass: c.DBPass, Host: c.DBHost, Port: c.DBPort, Name: c.DBName}
}

// ManageURL joins PublicBaseURL and ManagePath. It returns "" when the base
// URL does not parse, which disables links in mails.
func (c Config) ManageURL() string {
	base, err := url.Parse(strings.TrimRight(c.PublicBaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return ""
	}
	return base.JoinPath(c.ManagePath).String()
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
