package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read once at startup in cmd.
type Config struct {
	OwnerChatID   string        `env:"OWNER_CHAT_ID,required"`
	ParamPrefix   string        `env:"PARAM_PREFIX,required"`
	LedgerAPIURL  string        `env:"LEDGER_API_URL"`
	JournalTable  string        `env:"JOURNAL_TABLE"`
	CategoriesTTL time.Duration `env:"CATEGORIES_TTL" envDefault:"6h"`
	Timezone      string        `env:"TIMEZONE"       envDefault:"America/Sao_Paulo"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT"   envDefault:"10s"`
	LogLevel      string        `env:"LOG_LEVEL"      envDefault:"info"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.OwnerChatID = strings.TrimSpace(cfg.OwnerChatID)
	cfg.ParamPrefix = strings.TrimRight(strings.TrimSpace(cfg.ParamPrefix), "/")
	cfg.LedgerAPIURL = strings.TrimSpace(cfg.LedgerAPIURL)
	cfg.JournalTable = strings.TrimSpace(cfg.JournalTable)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.OwnerChatID == "" {
		return errors.New("config: OWNER_CHAT_ID must not be blank")
	}
	if c.ParamPrefix == "" {
		return errors.New("config: PARAM_PREFIX must not be blank")
	}
	if c.CategoriesTTL <= 0 {
		return errors.New("config: CATEGORIES_TTL must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("config: HTTP_TIMEOUT must be positive")
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// LedgerURLParameter is the SSM fallback for LedgerAPIURL.
func (c Config) LedgerURLParameter() string {
	return c.ParamPrefix + "/ledger-api-url"
}
