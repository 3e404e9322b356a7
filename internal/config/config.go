package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
)

const (
	DefaultSourceURL = "https://fashion-studio.dicoding.dev"
	DefaultSheetName = "Fashion Studio Products"
	DefaultTable     = "fashion_products"
)

type Config struct {
	SourceURL    string
	MaxPages     int
	PagePolicy   string // "keep" or "discard"
	RequestRate  float64
	ExchangeRate float64

	CSVPath string

	SheetsCredentials   string
	SheetsSpreadsheetID string
	SheetsSheetName     string

	DatabaseURL   string
	DatabaseTable string

	RedisURL     string
	PageCacheTTL time.Duration

	MetricsPort     string
	PushgatewayURL  string
	MetricsTextfile string

	LogMode    string
	LogFile    string
	ReportRows int
}

func Load() *Config {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	file := getEnv("ETL_CONFIG", "etl.toml")
	src := source{file: readFile(file)}

	return &Config{
		SourceURL:           strings.TrimRight(src.str("SOURCE_URL", DefaultSourceURL), "/"),
		MaxPages:            cast.ToInt(src.get("MAX_PAGES", 50)),
		PagePolicy:          strings.ToLower(src.str("PAGE_POLICY", "keep")),
		RequestRate:         cast.ToFloat64(src.get("REQUEST_RATE", 2.0)),
		ExchangeRate:        cast.ToFloat64(src.get("EXCHANGE_RATE", 16000)),
		CSVPath:             src.str("CSV_PATH", "product.csv"),
		SheetsCredentials:   src.str("GOOGLE_SHEETS_CREDENTIALS", ""),
		SheetsSpreadsheetID: src.str("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
		SheetsSheetName:     src.str("GOOGLE_SHEETS_SHEET_NAME", DefaultSheetName),
		DatabaseURL:         src.str("DATABASE_URL", ""),
		DatabaseTable:       src.str("DATABASE_TABLE", DefaultTable),
		RedisURL:            src.str("REDIS_URL", ""),
		PageCacheTTL:        cast.ToDuration(src.get("PAGE_CACHE_TTL", "1h")),
		MetricsPort:         src.str("METRICS_PORT", "9090"),
		PushgatewayURL:      src.str("PUSHGATEWAY_URL", ""),
		MetricsTextfile:     src.str("METRICS_TEXTFILE", ""),
		LogMode:             src.str("LOG_MODE", "development"),
		LogFile:             src.str("LOG_FILE", ""),
		ReportRows:          cast.ToInt(src.get("REPORT_ROWS", 10)),
	}
}

// source resolves a key from the environment first, then the TOML file.
// TOML keys are the lower-case form of the variable name.
type source struct {
	file map[string]any
}

func (s source) get(k string, d any) any {
	if v := os.Getenv(k); v != "" {
		return v
	}
	if v, ok := s.file[strings.ToLower(k)]; ok {
		return v
	}
	return d
}

func (s source) str(k, d string) string {
	return cast.ToString(s.get(k, d))
}

func readFile(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
