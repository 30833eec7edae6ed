// internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/karstfell/siteforge/internal/observability"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   observability.LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Database DatabaseConfig             `mapstructure:"database" yaml:"database"`
	Fetch    FetchConfig                `mapstructure:"fetch" yaml:"fetch"`
	Extract  ExtractConfig              `mapstructure:"extract" yaml:"extract"`
	Overlay  OverlayConfig              `mapstructure:"overlay" yaml:"overlay"`
}

// DatabaseConfig configures the Postgres component store.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxConns        int           `mapstructure:"max_conns" yaml:"max_conns"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start" yaml:"migrate_on_start"`
	StatementLogged bool          `mapstructure:"statement_logged" yaml:"statement_logged"`
}

// FetchConfig configures the multi-strategy page fetcher.
type FetchConfig struct {
	UserAgent       string        `mapstructure:"user_agent" yaml:"user_agent"`
	StrategyTimeout time.Duration `mapstructure:"strategy_timeout" yaml:"strategy_timeout"`
	MinPlausibleLen int           `mapstructure:"min_plausible_len" yaml:"min_plausible_len"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	// ProxyRatePerSec throttles requests against public CORS relays.
	ProxyRatePerSec float64 `mapstructure:"proxy_rate_per_sec" yaml:"proxy_rate_per_sec"`
}

// ExtractConfig bounds the HTML-to-component parser output.
type ExtractConfig struct {
	MaxComponents   int `mapstructure:"max_components" yaml:"max_components"`
	MaxPerRule      int `mapstructure:"max_per_rule" yaml:"max_per_rule"`
	MinTextLen      int `mapstructure:"min_text_len" yaml:"min_text_len"`
	MaxTextLen      int `mapstructure:"max_text_len" yaml:"max_text_len"`
	MaxOriginalHTML int `mapstructure:"max_original_html" yaml:"max_original_html"`
}

// OverlayConfig configures the live overlay injector and its browser session.
type OverlayConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// Elements smaller than this are not meaningfully selectable.
	MinSelectableWidth  int `mapstructure:"min_selectable_width" yaml:"min_selectable_width"`
	MinSelectableHeight int `mapstructure:"min_selectable_height" yaml:"min_selectable_height"`
}

// Load reads configuration from the given file (or the default search path),
// the environment (SITEFORGE_ prefix), and built-in defaults, in that
// priority order.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".siteforge"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SITEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "siteforge")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("database.dsn", "postgres://localhost:5432/siteforge?sslmode=disable")
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.connect_timeout", "5s")
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; SiteForge/1.0)")
	v.SetDefault("fetch.strategy_timeout", "8s")
	v.SetDefault("fetch.min_plausible_len", 100)
	v.SetDefault("fetch.ignore_tls_errors", false)
	v.SetDefault("fetch.proxy_rate_per_sec", 2.0)

	v.SetDefault("extract.max_components", 30)
	v.SetDefault("extract.max_per_rule", 5)
	v.SetDefault("extract.min_text_len", 3)
	v.SetDefault("extract.max_text_len", 200)
	v.SetDefault("extract.max_original_html", 500)

	v.SetDefault("overlay.headless", true)
	v.SetDefault("overlay.navigation_timeout", "30s")
	v.SetDefault("overlay.min_selectable_width", 20)
	v.SetDefault("overlay.min_selectable_height", 10)
}
