package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL    string
	HTTPPort       string
	AdminAPIKey    string
	BaseCurrency   string
	InitialBalance decimal.Decimal

	CoinGeckoURL       string
	CoinGeckoDelay     time.Duration
	CoinGeckoRetryMax  int
	AlphaVantageURL    string
	AlphaVantageAPIKey string
	FXURL              string

	QuoteCacheTTL           time.Duration
	QuoteWorkerInterval     time.Duration
	StatementWorkerInterval time.Duration
	WatchList               string

	WholeShareStocks   bool
	CryptoMinIncrement decimal.Decimal

	SheetsSpreadsheetID   string
	SheetsCredentialsJSON string
}

// Load reads configuration from the environment with sensible
// defaults, after merging an optional .env file. An empty DatabaseURL
// selects the in-memory store.
func Load() Config {
	// Missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	return Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		HTTPPort:       envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:    os.Getenv("ADMIN_API_KEY"),
		BaseCurrency:   strings.ToUpper(envOrDefault("BASE_CURRENCY", "USD")),
		InitialBalance: envOrDefaultDecimal("INITIAL_BALANCE", decimal.NewFromInt(1000000)),

		CoinGeckoURL:       envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoDelay:     envOrDefaultDuration("COINGECKO_DELAY", 6*time.Second),
		CoinGeckoRetryMax:  envOrDefaultInt("COINGECKO_RETRY_MAX", 3),
		AlphaVantageURL:    envOrDefault("ALPHAVANTAGE_URL", "https://www.alphavantage.co"),
		AlphaVantageAPIKey: envOrDefaultWarn("ALPHAVANTAGE_API_KEY", ""),
		FXURL:              envOrDefault("FX_URL", "https://api.frankfurter.app"),

		QuoteCacheTTL:           envOrDefaultDuration("QUOTE_CACHE_TTL", 30*time.Second),
		QuoteWorkerInterval:     envOrDefaultDuration("QUOTE_WORKER_INTERVAL", 30*time.Second),
		StatementWorkerInterval: envOrDefaultDuration("STATEMENT_WORKER_INTERVAL", 24*time.Hour),
		WatchList:               envOrDefault("WATCH_LIST", "crypto:bitcoin,crypto:ethereum"),

		WholeShareStocks:   envOrDefaultBool("WHOLE_SHARE_STOCKS", true),
		CryptoMinIncrement: envOrDefaultDecimal("CRYPTO_MIN_INCREMENT", decimal.New(1, -8)),

		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsCredentialsJSON: os.Getenv("SHEETS_CREDENTIALS_JSON"),
	}
}

// Policy returns the trade granularity policy configured here.
func (c Config) Policy() domain.Policy {
	return domain.Policy{
		CryptoMinIncrement: c.CryptoMinIncrement,
		WholeShareStocks:   c.WholeShareStocks,
	}
}

// Watch parses the WATCH_LIST ("crypto:bitcoin,stock:AAPL") into
// asset keys, skipping malformed entries with a warning.
func (c Config) Watch() []domain.AssetKey {
	var keys []domain.AssetKey
	for entry := range strings.SplitSeq(c.WatchList, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		assetType, assetID, ok := strings.Cut(entry, ":")
		if !ok || assetID == "" || !domain.AssetType(assetType).Valid() {
			slog.Warn("skipping malformed watch list entry", "entry", entry)
			continue
		}
		keys = append(keys, domain.AssetKey{Type: domain.AssetType(assetType), ID: assetID})
	}
	return keys
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
