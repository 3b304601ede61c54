// Package config loads application configuration from environment
// variables. A .env file in the working directory is read first when
// present; variables already set in the environment win.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve in minimal containers

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.
type Config struct {
	Env      string // dev, test or production
	Port     string
	Location *time.Location // gym time zone for calendar days

	StorageDriver string
	DBDSN         string // full DSN; built from the DB_* parts when empty
	DBUser        string
	DBPass        string
	DBHost        string
	DBPort        string
	DBName        string

	SessionSecret string
	SessionTTL    time.Duration
	SessionCookie string
	BcryptCost    int

	SweepInterval     time.Duration
	SweepInitialDelay time.Duration

	PlanCatalogFile string
	AdminEmail      string
	AdminPassword   string

	AMQPURL        string
	EventsEnabled  bool
	ActivityLogDir string

	MailProvider   string
	ResendAPIKey   string
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	CSRFEnabled        bool
	CSRFKey            string
	CSRFTrustedOrigins []string

	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool { return c.Env == "production" }

// Load reads the .env file (if any) and the environment. Required variables
// are enforced by must(); a missing value stops the process.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", envStr("PORT", "3000")),
		StorageDriver: strings.ToLower(envStr("STORAGE_DRIVER", DriverMySQL)),
		Location:      mustLocation(envStr("APP_TIMEZONE", "UTC")),

		SessionTTL:    envDur("SESSION_TTL", 24*time.Hour),
		SessionCookie: envStr("SESSION_COOKIE", "fitzone_session"),
		BcryptCost:    envInt("BCRYPT_COST", 10),

		SweepInterval:     envDur("SWEEP_INTERVAL", time.Hour),
		SweepInitialDelay: envDur("SWEEP_INITIAL_DELAY", 5*time.Second),

		PlanCatalogFile: os.Getenv("PLAN_CATALOG_FILE"),
		AdminEmail:      envStr("ADMIN_EMAIL", "admin@fitzone.com"),
		AdminPassword:   envStr("ADMIN_PASSWORD", "admin123"),

		AMQPURL:        envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		EventsEnabled:  envBool("EVENTS_ENABLED", false),
		ActivityLogDir: envStr("ACTIVITY_LOG_DIR", "data"),

		MailProvider:   strings.ToLower(envStr("MAIL_PROVIDER", "none")),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       envStr("MAIL_FROM", "no-reply@fitzone.com"),
		MailFromName:   envStr("MAIL_FROM_NAME", "FitZone"),

		CSRFEnabled:        envBool("CSRF_ENABLED", false),
		CSRFKey:            os.Getenv("CSRF_KEY"),
		CSRFTrustedOrigins: envList("CSRF_TRUSTED_ORIGINS"),

		Redis:     LoadRedisConfig(),
		RateLimit: LoadRateLimitConfig(),
		Cache:     LoadCacheConfig(),
	}

	if cfg.StorageDriver == DriverMySQL {
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			cfg.DBUser = must("DB_USER")
			cfg.DBPass = os.Getenv("DB_PASS")
			cfg.DBHost = envStr("DB_HOST", "127.0.0.1")
			cfg.DBPort = envStr("DB_PORT", "3306")
			cfg.DBName = must("DB_NAME")
		}
	}

	if cfg.IsProduction() {
		cfg.SessionSecret = must("SESSION_SECRET")
		if cfg.BcryptCost < 10 {
			log.Fatalf("BCRYPT_COST must be at least 10 in production, got %d", cfg.BcryptCost)
		}
	} else {
		cfg.SessionSecret = envStr("SESSION_SECRET", randomKey())
	}
	if cfg.CSRFEnabled && cfg.CSRFKey == "" {
		cfg.CSRFKey = randomKey()
	}
	return cfg
}

// mustLocation loads an IANA zone name such as America/Argentina/Buenos_Aires.
func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", name, err)
	}
	return loc
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// randomKey is used for secrets left unset outside production. Sessions and
// CSRF tokens then do not survive a restart.
func randomKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("config: read random key: %v", err))
	}
	return hex.EncodeToString(b)
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
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

func envList(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
