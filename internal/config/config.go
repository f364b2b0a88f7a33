// Package config loads the safewatch configuration from the environment.
//
// Variables are read with the SAFEWATCH_ prefix, e.g. SAFEWATCH_SAFE_ADDRESS.
// A .env file in the working directory is loaded first when present; values
// already set in the environment win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/gabapcia/safewatch/internal/infra/notifier/slack"
	"github.com/gabapcia/safewatch/internal/pkg/validator"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "SAFEWATCH"

var (
	// ErrUnknownChainPrefix is returned when the chain prefix has no known network.
	ErrUnknownChainPrefix = errors.New("unknown chain prefix")

	// ErrInvalidSigner is returned for a signer entry that is not "address:name".
	ErrInvalidSigner = errors.New("invalid signer entry")
)

// Config is the full process configuration.
type Config struct {
	// APIURL is the base URL of the transaction index, without trailing slash.
	APIURL      string `envconfig:"API_URL" validate:"required,url"`
	SafeAddress string `envconfig:"SAFE_ADDRESS" validate:"required,hexaddr"`
	ChainPrefix string `envconfig:"CHAIN_PREFIX" validate:"required"`

	// SafeURL is the Safe UI transaction page, up to and including "?".
	SafeURL string `envconfig:"SAFE_URL" default:"https://app.safe.global/transactions/tx?" validate:"required,url"`

	// SlackWebhookURL is optional; notifications are skipped with a warning
	// when it is empty.
	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL" validate:"omitempty,url"`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"30s" validate:"gt=0"`

	HTTP  HTTP
	Redis Redis

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Telemetry Telemetry

	// Signers names known owners, as a comma separated "address:name" list.
	Signers []string `envconfig:"SIGNERS"`
}

// HTTP tunes the client used for the index and the webhook.
type HTTP struct {
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"5s" validate:"gt=0"`
	RetryMax   int           `envconfig:"RETRY_MAX" default:"2" validate:"gte=0"`
	RetryWait  time.Duration `envconfig:"RETRY_WAIT" default:"1s" validate:"gt=0"`
	RetryLimit time.Duration `envconfig:"RETRY_WAIT_MAX" default:"5s" validate:"gtefield=RetryWait"`
}

// Redis selects the Redis state storage. The in-memory storage is used when
// Addr is empty.
type Redis struct {
	Addr     string `envconfig:"ADDR" validate:"omitempty,hostname_port"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0" validate:"gte=0"`
}

// Telemetry toggles the OTLP exporters.
type Telemetry struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"safewatch" validate:"required_if=Enabled true"`
}

// Load reads .env when present, then the environment, and validates the
// result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return FromEnv()
}

// FromEnv reads and validates the configuration from the environment only.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field formats and cross-field rules.
func (c Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return err
	}

	if !slack.KnownNetwork(c.ChainPrefix) {
		return fmt.Errorf("%w: %q", ErrUnknownChainPrefix, c.ChainPrefix)
	}

	if _, err := c.SignerNames(); err != nil {
		return err
	}

	return nil
}

// SignerNames parses Signers into an address to name map.
func (c Config) SignerNames() (map[string]string, error) {
	names := make(map[string]string, len(c.Signers))
	for _, entry := range c.Signers {
		addr, name, ok := strings.Cut(strings.TrimSpace(entry), ":")
		addr, name = strings.TrimSpace(addr), strings.TrimSpace(name)
		if !ok || addr == "" || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSigner, entry)
		}
		names[addr] = name
	}
	return names, nil
}
