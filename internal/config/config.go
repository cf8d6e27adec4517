package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/plan"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port string
	// StoreBackend is "postgres" (default) or "memory"; the in-memory store
	// loses everything on restart and is meant for local runs.
	StoreBackend       string
	DatabaseURL        string
	ClerkSecretKey     string
	ClerkWebhookSecret string

	// DefaultLocation is used for profiles with no (or an unknown) time zone.
	DefaultLocation *time.Location
	PlanCatalogFile string

	// cron specs with a seconds field, e.g. "0 0 18 * * *"
	ReminderCron string
	AtRiskCron   string

	FCMServiceAccountFile string
	DispatchWorkers       int
	MetricsUser           string
	MetricsPass           string
	PprofSecret           string

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders takes the client IP from X-Forwarded-For.
	TrustProxyHeaders bool

	LogLevel  string
	LogFormat string
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Port:                  getenv("PORT", "3333"),
		StoreBackend:          strings.ToLower(getenv("STORE_BACKEND", StorePostgres)),
		DatabaseURL:           getenv("DATABASE_URL", ""),
		ClerkSecretKey:        getenv("CLERK_SECRET_KEY", ""),
		ClerkWebhookSecret:    getenv("CLERK_WEBHOOK_SECRET", ""),
		DefaultLocation:       daykey.LoadLocation(getenv("DEFAULT_TIMEZONE", "UTC"), time.UTC),
		PlanCatalogFile:       getenv("PLAN_CATALOG_FILE", ""),
		ReminderCron:          getenv("REMINDER_CRON", "0 0 18 * * *"),
		AtRiskCron:            getenv("AT_RISK_CRON", "0 0 20 * * *"),
		FCMServiceAccountFile: getenv("FCM_SERVICE_ACCOUNT_FILE", "./serviceAccountKey.json"),
		DispatchWorkers:       getenvInt("DISPATCH_WORKERS", 5),
		MetricsUser:           getenv("METRICS_USER", ""),
		MetricsPass:           getenv("METRICS_PASS", ""),
		PprofSecret:           getenv("PPROF_SECRET", ""),
		RateLimitRPS:          getenvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:        getenvInt("RATE_LIMIT_BURST", 20),
		TrustProxyHeaders:     getenvBool("TRUST_PROXY_HEADERS", false),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		LogFormat:             getenv("LOG_FORMAT", "text"),
	}

	switch cfg.StoreBackend {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		if cfg.ClerkWebhookSecret == "" {
			return nil, fmt.Errorf("CLERK_WEBHOOK_SECRET environment variable is not set")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.ClerkSecretKey == "" {
		return nil, fmt.Errorf("CLERK_SECRET_KEY environment variable is not set")
	}

	return cfg, nil
}

// PlanCatalog returns the catalog from PlanCatalogFile, or the built-in one.
func (c *Config) PlanCatalog() (*plan.Catalog, error) {
	if c.PlanCatalogFile == "" {
		return plan.DefaultCatalog(), nil
	}
	return plan.LoadCatalog(c.PlanCatalogFile)
}

// SetupLogging applies LogLevel and LogFormat to the global logger.
func (c *Config) SetupLogging() {
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
