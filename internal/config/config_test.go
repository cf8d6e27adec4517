package config_test

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constanciaAPI/internal/config"
)

func TestLoad_RequiresDatabaseAndClerk(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_dGVzdA==")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CLERK_SECRET_KEY", "sk_test")

	_, err := config.Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/constancia")
	t.Setenv("CLERK_WEBHOOK_SECRET", "")
	_, err = config.Load()
	assert.ErrorContains(t, err, "CLERK_WEBHOOK_SECRET")

	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_dGVzdA==")
	t.Setenv("CLERK_SECRET_KEY", "")
	_, err = config.Load()
	assert.ErrorContains(t, err, "CLERK_SECRET_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/constancia")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_dGVzdA==")
	t.Setenv("TRUST_PROXY_HEADERS", "")
	t.Setenv("CLERK_SECRET_KEY", "sk_test")
	t.Setenv("PORT", "")
	t.Setenv("DEFAULT_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("PLAN_CATALOG_FILE", "")
	t.Setenv("REMINDER_CRON", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DISPATCH_WORKERS", "")
	t.Setenv("RATE_LIMIT_RPS", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "3333", cfg.Port)
	assert.Equal(t, "America/Sao_Paulo", cfg.DefaultLocation.String())
	assert.Equal(t, "0 0 18 * * *", cfg.ReminderCron)
	assert.Equal(t, config.StorePostgres, cfg.StoreBackend)
	assert.Equal(t, 5, cfg.DispatchWorkers)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.False(t, cfg.TrustProxyHeaders)

	catalog, err := cfg.PlanCatalog()
	require.NoError(t, err)
	assert.Len(t, catalog.All(), 3)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_dGVzdA==")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CLERK_SECRET_KEY", "")
	t.Setenv("PORT", "")
	// godotenv does not override variables that are already set
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("CLERK_SECRET_KEY")
	os.Unsetenv("PORT")

	env := "DATABASE_URL=postgres://db/constancia\nCLERK_SECRET_KEY=sk_env\nPORT=8080\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/constancia", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
}

func TestPlanCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[plans]]\nid = \"only\"\nduration_days = 10\nload_multiplier = 1.1\n"), 0o600))

	cfg := &config.Config{PlanCatalogFile: path}
	catalog, err := cfg.PlanCatalog()
	require.NoError(t, err)
	p, ok := catalog.Get("only")
	require.True(t, ok)
	assert.Equal(t, 10, p.DurationDays)
}

func TestLoad_MemoryBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CLERK_SECRET_KEY", "sk_test")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("CLERK_WEBHOOK_SECRET", "")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.True(t, cfg.TrustProxyHeaders)

	t.Setenv("STORE_BACKEND", "sqlite")
	_, err = config.Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")
}
