package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabapcia/safewatch/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSafe = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SAFEWATCH_API_URL", "https://safe-transaction-mainnet.safe.global")
	t.Setenv("SAFEWATCH_SAFE_ADDRESS", testSafe)
	t.Setenv("SAFEWATCH_CHAIN_PREFIX", "eth")
}

func TestFromEnv(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, "https://app.safe.global/transactions/tx?", cfg.SafeURL)
		assert.Empty(t, cfg.SlackWebhookURL)
		assert.Equal(t, 30*time.Second, cfg.PollInterval)
		assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
		assert.Equal(t, 2, cfg.HTTP.RetryMax)
		assert.Empty(t, cfg.Redis.Addr)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "safewatch", cfg.Telemetry.ServiceName)
	})

	t.Run("reads nested sections", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SAFEWATCH_HTTP_TIMEOUT", "10s")
		t.Setenv("SAFEWATCH_REDIS_ADDR", "localhost:6379")
		t.Setenv("SAFEWATCH_REDIS_DB", "3")
		t.Setenv("SAFEWATCH_TELEMETRY_ENABLED", "true")
		t.Setenv("SAFEWATCH_SIGNERS", "0xaaa:alice,0xbbb:bob")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 3, cfg.Redis.DB)
		assert.True(t, cfg.Telemetry.Enabled)
		assert.Equal(t, []string{"0xaaa:alice", "0xbbb:bob"}, cfg.Signers)
	})

	t.Run("fails when required variables are missing", func(t *testing.T) {
		t.Setenv("SAFEWATCH_API_URL", "")
		t.Setenv("SAFEWATCH_SAFE_ADDRESS", "")
		t.Setenv("SAFEWATCH_CHAIN_PREFIX", "")

		_, err := FromEnv()
		require.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.ErrorContains(t, err, "Config.APIURL")
		assert.ErrorContains(t, err, "Config.SafeAddress")
	})

	t.Run("rejects a malformed safe address", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SAFEWATCH_SAFE_ADDRESS", "0x123")

		_, err := FromEnv()
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects an unknown chain prefix", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SAFEWATCH_CHAIN_PREFIX", "doge")

		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrUnknownChainPrefix)
	})

	t.Run("rejects an invalid log level", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SAFEWATCH_LOG_LEVEL", "verbose")

		_, err := FromEnv()
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects a malformed duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SAFEWATCH_POLL_INTERVAL", "often")

		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("rejects a malformed signer entry", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SAFEWATCH_SIGNERS", "0xaaa")

		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrInvalidSigner)
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads a .env file from the working directory", func(t *testing.T) {
		dir := t.TempDir()
		content := "SAFEWATCH_API_URL=https://index.example\n" +
			"SAFEWATCH_SAFE_ADDRESS=" + testSafe + "\n" +
			"SAFEWATCH_CHAIN_PREFIX=camp\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
		t.Chdir(dir)

		// Registered so the variables set by godotenv are restored afterwards.
		t.Setenv("SAFEWATCH_API_URL", "")
		t.Setenv("SAFEWATCH_SAFE_ADDRESS", "")
		t.Setenv("SAFEWATCH_CHAIN_PREFIX", "")
		os.Unsetenv("SAFEWATCH_API_URL")
		os.Unsetenv("SAFEWATCH_SAFE_ADDRESS")
		os.Unsetenv("SAFEWATCH_CHAIN_PREFIX")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://index.example", cfg.APIURL)
		assert.Equal(t, "camp", cfg.ChainPrefix)
	})

	t.Run("works without a .env file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		setRequired(t)

		_, err := Load()
		assert.NoError(t, err)
	})
}

func TestConfig_SignerNames(t *testing.T) {
	cfg := Config{Signers: []string{" 0xAAA : alice ", "0xbbb:bob:ops"}}

	names, err := cfg.SignerNames()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0xAAA": "alice", "0xbbb": "bob:ops"}, names)
}
