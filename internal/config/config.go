package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	SinkSheets   = "sheets"
	SinkPostgres = "postgres"
	SinkMemory   = "memory"

	CatalogWorkbook = "workbook"
	CatalogCSV      = "csv"
	CatalogPostgres = "postgres"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN        string
		Migrations string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Catalog struct {
		Source    string
		Workbook  string
		StoresCSV string `mapstructure:"stores_csv"`
		ItemsCSV  string `mapstructure:"items_csv"`
	} `mapstructure:"catalog"`

	Sink struct {
		Driver string
	} `mapstructure:"sink"`

	Sheets struct {
		SpreadsheetID   string `mapstructure:"spreadsheet_id"`
		Worksheet       string
		CredentialsFile string `mapstructure:"credentials_file"`
	} `mapstructure:"sheets"`

	Telegram struct {
		Enabled     bool
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
		TimeoutSec  int   `mapstructure:"timeout_sec"`
	} `mapstructure:"telegram"`

	Reports struct {
		Archive struct {
			Enabled   bool
			Endpoint  string
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
			Bucket    string
			UseSSL    bool `mapstructure:"use_ssl"`
		} `mapstructure:"archive"`
	} `mapstructure:"reports"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "Asia/Taipei")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.migrations", "migrations")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("catalog.source", CatalogWorkbook)
	v.SetDefault("catalog.workbook", "catalog.xlsx")
	v.SetDefault("catalog.stores_csv", "")
	v.SetDefault("catalog.items_csv", "")
	v.SetDefault("sink.driver", SinkSheets)
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.worksheet", "Records")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.timeout_sec", 30)
	// ключи должны быть известны viper, иначе AutomaticEnv их не подхватит при Unmarshal
	v.SetDefault("reports.archive.enabled", false)
	v.SetDefault("reports.archive.endpoint", "")
	v.SetDefault("reports.archive.access_key", "")
	v.SetDefault("reports.archive.secret_key", "")
	v.SetDefault("reports.archive.bucket", "intake-reports")
	v.SetDefault("reports.archive.use_ssl", false)
}

// Load читает yaml-конфиг, поверх него .env (если есть) и переменные APP_*.
// Пустой path — только defaults + окружение.
func Load(path string) (Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate проверяет, что выбранные драйверы известны и для них заданы обязательные поля.
func (c Config) Validate() error {
	var errs []error

	switch c.Sink.Driver {
	case SinkMemory:
	case SinkPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for sink.driver=postgres"))
		}
	case SinkSheets:
		if c.Sheets.SpreadsheetID == "" {
			errs = append(errs, errors.New("sheets.spreadsheet_id is required for sink.driver=sheets"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sink.driver %q", c.Sink.Driver))
	}

	switch c.Catalog.Source {
	case CatalogWorkbook:
		if c.Catalog.Workbook == "" {
			errs = append(errs, errors.New("catalog.workbook is required"))
		}
	case CatalogCSV:
		if c.Catalog.StoresCSV == "" || c.Catalog.ItemsCSV == "" {
			errs = append(errs, errors.New("catalog.stores_csv and catalog.items_csv are required"))
		}
	case CatalogPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for catalog.source=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.source %q", c.Catalog.Source))
	}

	if c.Telegram.Enabled && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required when telegram.enabled"))
	}
	if c.Reports.Archive.Enabled && c.Reports.Archive.Endpoint == "" {
		errs = append(errs, errors.New("reports.archive.endpoint is required when archive is enabled"))
	}

	return errors.Join(errs...)
}

// NeedsPostgres true, если хоть один компонент работает через Postgres.
func (c Config) NeedsPostgres() bool {
	return c.Sink.Driver == SinkPostgres || c.Catalog.Source == CatalogPostgres
}
