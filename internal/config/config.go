package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, constructed once at entry and
// passed by reference into every component that needs it. Components never
// read environment state directly.
type Config struct {
	Server    ServerConfig           `mapstructure:"server"`
	Sheets    SheetsConfig           `mapstructure:"sheets"`
	Warehouse WarehouseConfig        `mapstructure:"warehouse"`
	Alerts    AlertConfig            `mapstructure:"alerts"`
	Sports    map[string]SportConfig `mapstructure:"sports"`
}

// ServerConfig configures the HTTP trigger server (-serve mode)
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SheetsConfig configures the spreadsheet sink
type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	SpreadsheetKey  string `mapstructure:"spreadsheet_key"`
}

// WarehouseConfig configures the append-only analytical store
type WarehouseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// AlertConfig configures the value-bet notifier
type AlertConfig struct {
	SlackWebhookURL string  `mapstructure:"slack_webhook_url"`
	MinEdge         float64 `mapstructure:"min_edge"`
}

// SportConfig holds the per-sport source URLs and collection bounds
type SportConfig struct {
	SBRIURL       string `mapstructure:"sbri_url"`
	DRatingsURL   string `mapstructure:"dratings_url"`
	DRatingsPages int    `mapstructure:"dratings_pages"`
	TPTURL        string `mapstructure:"tpt_url"`
	FFWinURL      string `mapstructure:"ffwin_url"`

	// WorksheetSuffix names the per-sport worksheets, e.g. "MLB" →
	// SBRI_MLB, DRate_MLB, Calc_MLB
	WorksheetSuffix string `mapstructure:"worksheet_suffix"`
}

// Load reads config/config.yaml, then overrides credentials and URLs from
// the environment (.env is loaded first if present, and may not exist).
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", 8080)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	overrideFromEnv(&cfg)

	if len(cfg.Sports) == 0 {
		return nil, fmt.Errorf("no sports configured")
	}

	return &cfg, nil
}

// overrideFromEnv applies environment overrides for credentials and source
// URLs. Env wins over yaml.
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("SERVICE_ACCOUNT_FILE"); v != "" {
		cfg.Sheets.CredentialsFile = v
	}
	if v := os.Getenv("GOOGLE_SHEET_KEY"); v != "" {
		cfg.Sheets.SpreadsheetKey = v
	}
	if v := os.Getenv("WAREHOUSE_DSN"); v != "" {
		cfg.Warehouse.DSN = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.SlackWebhookURL = v
	}

	for key, sport := range cfg.Sports {
		upper := strings.ToUpper(key)
		if v := os.Getenv("SBRI_" + upper + "_URL"); v != "" {
			sport.SBRIURL = v
		}
		if v := os.Getenv("DRATINGS_" + upper + "_URL"); v != "" {
			sport.DRatingsURL = v
		}
		if v := os.Getenv("TPT_" + upper + "_URL"); v != "" {
			sport.TPTURL = v
		}
		if v := os.Getenv("FFWIN_" + upper + "_URL"); v != "" {
			sport.FFWinURL = v
		}
		cfg.Sports[key] = sport
	}
}
