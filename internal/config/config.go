package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/Recommender/internal/guard"
	"github.com/Alias1177/Recommender/models"
)

// Config holds all application configuration
type Config struct {
	TwelveAPIKey   string   `validate:"required"`
	OpenAIAPIKey   string   `validate:"required"`
	OpenAIModel    string   `default:"gpt-4o-mini"`
	Interval       string   `default:"1day" validate:"oneof=1h 4h 1day 1week"`
	Lookback       int      `default:"120" validate:"gte=80"` // trading days, SMA(75) needs headroom
	Tickers        []string `validate:"dive,required"`
	MarketSymbol   string   `default:"SPY"`
	CrashPct       float64  `default:"-7" validate:"lt=0"` // weekly market change that counts as a crash
	Style          string   `default:"balanced" validate:"oneof=conservative balanced aggressive"`
	Period         string   `default:"medium" validate:"oneof=short medium long"`
	Tolerance      string   `default:"medium" validate:"oneof=low medium high"`
	ThresholdsFile string
	Thresholds     guard.Table `validate:"-"`
	SectorSymbols  map[string]string // sector name -> tracking ETF
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	KafkaBrokers   []string
	KafkaTopic     string `default:"recommendations"`
	TelegramToken  string
	TelegramChatID int64
	Schedule       string `default:"0 9 * * 1-5"`
	MetricsAddr    string `default:":9100"`
	LogLevel       string `default:"info"`
	RequestTimeout int    `default:"30" validate:"gt=0"` // seconds
	RequestsPerSec int    `default:"5" validate:"gt=0"`
}

var validate = validator.New()

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}

	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.Interval = getEnvWithDefault("INTERVAL", cfg.Interval)
	cfg.Lookback = getEnvIntWithDefault("LOOKBACK_DAYS", cfg.Lookback)
	cfg.Tickers = splitList(os.Getenv("TICKERS"))
	cfg.MarketSymbol = getEnvWithDefault("MARKET_SYMBOL", cfg.MarketSymbol)
	cfg.CrashPct = getEnvFloatWithDefault("MARKET_CRASH_PCT", cfg.CrashPct)
	cfg.Style = getEnvWithDefault("RISK_STYLE", cfg.Style)
	cfg.Period = getEnvWithDefault("RISK_PERIOD", cfg.Period)
	cfg.Tolerance = getEnvWithDefault("RISK_TOLERANCE", cfg.Tolerance)
	cfg.ThresholdsFile = os.Getenv("THRESHOLDS_FILE")
	cfg.SectorSymbols = splitPairs(os.Getenv("SECTOR_SYMBOLS"))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.KafkaBrokers = splitBrokers(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = getEnvWithDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.Schedule = getEnvWithDefault("SCHEDULE", cfg.Schedule)
	cfg.MetricsAddr = getEnvWithDefault("METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SECOND", cfg.RequestsPerSec)

	cfg.Thresholds = guard.DefaultTable()
	if cfg.ThresholdsFile != "" {
		table, err := LoadThresholds(cfg.ThresholdsFile)
		if err != nil {
			return nil, err
		}
		cfg.Thresholds = table
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Profile returns the risk profile applied to instruments without one of their own
func (c *Config) Profile() models.RiskProfile {
	return models.RiskProfile{
		Style:     models.Style(c.Style),
		Period:    models.Period(c.Period),
		Tolerance: models.Tolerance(c.Tolerance),
	}
}

// LoadThresholds reads a YAML thresholds file keyed by style. Rows and
// fields missing from the file keep their built-in values.
func LoadThresholds(path string) (guard.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading thresholds file: %w", err)
	}
	return ParseThresholds(data)
}

// ParseThresholds decodes a thresholds document on top of guard.DefaultTable
func ParseThresholds(data []byte) (guard.Table, error) {
	var rows map[string]yaml.Node
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing thresholds: %w", err)
	}

	table := guard.DefaultTable()
	for name, node := range rows {
		style := models.Style(name)
		row, ok := table[style]
		if !ok {
			return nil, fmt.Errorf("thresholds: unknown style %q", name)
		}
		if err := node.Decode(&row); err != nil {
			return nil, fmt.Errorf("thresholds %s: %w", name, err)
		}
		if err := validate.Struct(row); err != nil {
			return nil, fmt.Errorf("thresholds %s: %w", name, err)
		}
		table[style] = row
	}
	return table, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, strings.ToUpper(item))
		}
	}
	return out
}

func splitBrokers(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitPairs parses "Technology=XLK,Energy=XLE"
func splitPairs(value string) map[string]string {
	out := make(map[string]string)
	for _, item := range strings.Split(value, ",") {
		name, symbol, ok := strings.Cut(item, "=")
		name, symbol = strings.TrimSpace(name), strings.TrimSpace(symbol)
		if ok && name != "" && symbol != "" {
			out[name] = strings.ToUpper(symbol)
		}
	}
	return out
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
