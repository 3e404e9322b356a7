package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ETL_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg := Load()

	assert.Equal(t, DefaultSourceURL, cfg.SourceURL)
	assert.Equal(t, 50, cfg.MaxPages)
	assert.Equal(t, "keep", cfg.PagePolicy)
	assert.Equal(t, 16000.0, cfg.ExchangeRate)
	assert.Equal(t, "product.csv", cfg.CSVPath)
	assert.Equal(t, DefaultSheetName, cfg.SheetsSheetName)
	assert.Equal(t, DefaultTable, cfg.DatabaseTable)
	assert.Equal(t, time.Hour, cfg.PageCacheTTL)
	assert.Equal(t, 10, cfg.ReportRows)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl.toml")
	content := `
source_url = "http://localhost:8080/"
max_pages = 3
page_policy = "DISCARD"
csv_path = "out.csv"
page_cache_ttl = "10m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ETL_CONFIG", path)
	t.Setenv("CSV_PATH", "env.csv")
	t.Setenv("DATABASE_URL", "sqlite:///tmp/x.db")

	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.SourceURL)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, "discard", cfg.PagePolicy)
	assert.Equal(t, "env.csv", cfg.CSVPath, "environment wins over the file")
	assert.Equal(t, 10*time.Minute, cfg.PageCacheTTL)
	assert.Equal(t, "sqlite:///tmp/x.db", cfg.DatabaseURL)
}
