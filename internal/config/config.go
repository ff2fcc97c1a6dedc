// Package config reads process settings from the environment (optionally a
// .env file) and the tenant table from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"project_atendimento/internal/adapters"
	"project_atendimento/internal/entities"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	DatabaseURL string
	TenantsFile string
	PublicURL   string // when set, Telegram webhooks are registered at startup
	LogLevel    string
	CORSOrigins []string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	EvolutionBaseURL string
	EvolutionAPIKey  string
	DigisacBaseURL   string
	DigisacToken     string
	TelegramEndpoint string

	AMQPURL      string
	AMQPExchange string

	RequestTimeout     time.Duration
	HistoryWindow      int
	ReplyRatePerMinute float64
	ReplyBurst         int

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
}

// Postgres reports whether DatabaseURL names a Postgres server rather than a SQLite file
func (c Config) Postgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Load reads .env when present, then the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:              get("PORT", "8080"),
		DatabaseURL:       get("DATABASE_URL", "data/bot.db"),
		TenantsFile:       get("TENANTS_FILE", "tenants.yaml"),
		PublicURL:         strings.TrimRight(get("PUBLIC_URL", ""), "/"),
		LogLevel:          get("LOG_LEVEL", "info"),
		OpenAIAPIKey:      get("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     get("OPENAI_BASE_URL", ""),
		OpenAIModel:       get("OPENAI_MODEL", "gpt-4o-mini"),
		EvolutionBaseURL:  get("EVOLUTION_BASE_URL", ""),
		EvolutionAPIKey:   get("EVOLUTION_API_KEY", ""),
		DigisacBaseURL:    get("DIGISAC_BASE_URL", ""),
		DigisacToken:      get("DIGISAC_TOKEN", ""),
		TelegramEndpoint:  get("TELEGRAM_API_ENDPOINT", ""),
		AMQPURL:           get("AMQP_URL", ""),
		AMQPExchange:      get("AMQP_EXCHANGE", "atendimento.events"),
		JWTSecret:         get("JWT_SECRET", ""),
		AdminUsername:     get("ADMIN_USERNAME", ""),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH", ""),
	}

	for _, origin := range strings.Split(get("CORS_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	var err error
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "25s")); err != nil {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if cfg.HistoryWindow, err = strconv.Atoi(get("HISTORY_WINDOW", "10")); err != nil {
		return Config{}, fmt.Errorf("HISTORY_WINDOW: %w", err)
	}
	if cfg.ReplyRatePerMinute, err = strconv.ParseFloat(get("REPLY_RATE_PER_MINUTE", "6"), 64); err != nil {
		return Config{}, fmt.Errorf("REPLY_RATE_PER_MINUTE: %w", err)
	}
	if cfg.ReplyBurst, err = strconv.Atoi(get("REPLY_BURST", "3")); err != nil {
		return Config{}, fmt.Errorf("REPLY_BURST: %w", err)
	}

	if cfg.RequestTimeout <= 0 {
		return Config{}, errors.New("REQUEST_TIMEOUT must be positive")
	}
	if cfg.HistoryWindow <= 0 {
		return Config{}, errors.New("HISTORY_WINDOW must be positive")
	}
	return cfg, nil
}

type tenantsFile struct {
	Tenants []entities.Tenant `yaml:"tenants"`
}

// LoadTenants reads the tenant table; ${VAR} references are expanded from the
// environment so tokens can stay out of the file
func LoadTenants(path string) ([]entities.Tenant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}
	return ParseTenants([]byte(os.ExpandEnv(string(raw))))
}

func ParseTenants(data []byte) ([]entities.Tenant, error) {
	var file tenantsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tenants file: %w", err)
	}
	for i := range file.Tenants {
		t := &file.Tenants[i]
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("tenant #%d has no id", i+1)
		}
		t.AllowList = normalizeAllowList(t.AllowList)
		for j, bot := range t.Telegram {
			if bot.Instance == "" || bot.Token == "" {
				return nil, fmt.Errorf("tenant %q: telegram bot #%d needs instance and token", t.ID, j+1)
			}
		}
	}
	return file.Tenants, nil
}

// normalizeAllowList matches entries against contacts as the adapters produce
// them. Plain digit entries are kept as written too, since a Telegram chat id
// is not a phone number.
func normalizeAllowList(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	var out []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.HasPrefix(e, "-") || isDigits(e) {
			add(e)
		}
		if !strings.HasPrefix(e, "-") {
			add(adapters.NormalizePhone(e))
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TelegramBots flattens every tenant's bots
func TelegramBots(tenants []entities.Tenant) []entities.TelegramBot {
	var bots []entities.TelegramBot
	for _, t := range tenants {
		bots = append(bots, t.Telegram...)
	}
	return bots
}
