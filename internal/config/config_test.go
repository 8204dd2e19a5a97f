package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: dev
sink:
  driver: memory
catalog:
  source: csv
  stores_csv: stores.csv
  items_csv: items.csv
telegram:
  admin_chat_id: 42
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, SinkMemory, c.Sink.Driver)
	assert.Equal(t, CatalogCSV, c.Catalog.Source)
	assert.Equal(t, "stores.csv", c.Catalog.StoresCSV)
	assert.Equal(t, int64(42), c.Telegram.AdminChatID)

	// defaults
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, "Records", c.Sheets.Worksheet)
	assert.Equal(t, 30, c.Telegram.TimeoutSec)
	assert.True(t, c.Metrics.Enabled)
	assert.False(t, c.NeedsPostgres())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
sink:
  driver: memory
`)
	t.Setenv("APP_SINK_DRIVER", "postgres")
	t.Setenv("APP_POSTGRES_DSN", "postgres://x@localhost/intake")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SinkPostgres, c.Sink.Driver)
	assert.Equal(t, "postgres://x@localhost/intake", c.Postgres.DSN)
	assert.True(t, c.NeedsPostgres())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "memory sink with workbook catalog",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown sink",
			mutate:  func(c *Config) { c.Sink.Driver = "excel" },
			wantErr: `unknown sink.driver "excel"`,
		},
		{
			name:    "sheets without spreadsheet id",
			mutate:  func(c *Config) { c.Sink.Driver = SinkSheets },
			wantErr: "sheets.spreadsheet_id is required",
		},
		{
			name:    "postgres catalog without dsn",
			mutate:  func(c *Config) { c.Catalog.Source = CatalogPostgres },
			wantErr: "postgres.dsn is required for catalog.source=postgres",
		},
		{
			name:    "telegram without token",
			mutate:  func(c *Config) { c.Telegram.Enabled = true },
			wantErr: "telegram.token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.Sink.Driver = SinkMemory
			c.Catalog.Source = CatalogWorkbook
			c.Catalog.Workbook = "catalog.xlsx"
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
