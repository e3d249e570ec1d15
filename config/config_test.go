package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "wallet_ledger", cfg.Database.DBName)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 0.01, cfg.Fees.WithdrawalRate)
	assert.Equal(t, 0.02, cfg.Fees.ConversionRate)
	assert.Equal(t, 0.01, cfg.Fees.TransferRate)
	assert.Equal(t, 20, cfg.Keys.AddressBytes)
	assert.Equal(t, 32, cfg.Keys.PrivateKeyBytes)
	assert.Equal(t, 10*time.Second, cfg.Quote.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  mode: release
database:
  dbname: ledger_test
fees:
  withdrawal_rate: 0.05
quote:
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "ledger_test", cfg.Database.DBName)
	assert.Equal(t, 0.05, cfg.Fees.WithdrawalRate)
	assert.Equal(t, 3*time.Second, cfg.Quote.Timeout)
	// Untouched keys keep defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CWL_SERVER_PORT", "7070")
	t.Setenv("CWL_DATABASE_PASSWORD", "sekret")
	t.Setenv("CWL_FEES_TRANSFER_RATE", "0.002")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sekret", cfg.Database.Password)
	assert.Equal(t, 0.002, cfg.Fees.TransferRate)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw",
		DBName: "ledger", SSLMode: "require",
	}
	assert.Equal(t, "postgres://app:pw@db:5433/ledger?sslmode=require", d.DSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
