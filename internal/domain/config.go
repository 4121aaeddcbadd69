package domain

import "time"

// Config represents the application configuration
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Status   StatusConfig   `mapstructure:"status"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// BotConfig contains chat-facing settings
type BotConfig struct {
	Name      string `mapstructure:"name" validate:"required"`
	Prefix    string `mapstructure:"prefix" validate:"required,max=3"`
	Version   string `mapstructure:"version" validate:"required"`
	PairPhone string `mapstructure:"pair_phone"` // pair by phone code instead of QR when set
}

// ResolverConfig contains settings for the Facebook download resolver
type ResolverConfig struct {
	RedirectTimeout time.Duration     `mapstructure:"redirect_timeout" validate:"gt=0"`
	MaxRedirects    int               `mapstructure:"max_redirects" validate:"gte=0,lte=20"`
	ProviderTimeout time.Duration     `mapstructure:"provider_timeout" validate:"gt=0"`
	MediaTimeout    time.Duration     `mapstructure:"media_timeout" validate:"gt=0"` // media fetch before upload
	UserAgent       string            `mapstructure:"user_agent" validate:"required"`
	Endpoints       map[string]string `mapstructure:"endpoints"` // hanggts, siputzx or fabdl -> endpoint override
}

// StatusConfig contains settings for the status reporter
type StatusConfig struct {
	EnhancedLocation bool          `mapstructure:"enhanced_location"`
	GeoTimeout       time.Duration `mapstructure:"geo_timeout" validate:"gt=0"`
	PrimaryGeoURL    string        `mapstructure:"primary_geo_url" validate:"required,url"`
	SecondaryGeoURL  string        `mapstructure:"secondary_geo_url" validate:"required,url"`
	FallbackZone     FallbackZone  `mapstructure:"fallback_zone"`
}

// StoreConfig contains persistence settings
type StoreConfig struct {
	SessionDialect string `mapstructure:"session_dialect" validate:"oneof=sqlite3 postgres"`
	SessionDSN     string `mapstructure:"session_dsn" validate:"required"`
	HistoryEnabled bool   `mapstructure:"history_enabled"`
	HistoryPath    string `mapstructure:"history_path"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	LogsDir    string `mapstructure:"logs_dir"`    // categorized command/error logs
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Name:    "404-XMD",
			Prefix:  ".",
			Version: "1.0.0",
		},
		Resolver: ResolverConfig{
			RedirectTimeout: 10 * time.Second,
			MaxRedirects:    5,
			ProviderTimeout: 15 * time.Second,
			MediaTimeout:    2 * time.Minute,
			UserAgent:       BrowserUserAgent,
		},
		Status: StatusConfig{
			EnhancedLocation: true,
			GeoTimeout:       5 * time.Second,
			PrimaryGeoURL:    "https://ipapi.co/json/",
			SecondaryGeoURL:  "https://ipinfo.io/json",
			FallbackZone:     DefaultFallbackZone(),
		},
		Store: StoreConfig{
			SessionDialect: "sqlite3",
			SessionDSN:     "file:$HOME/.xmd-bot/session.db?_foreign_keys=on",
			HistoryEnabled: true,
			HistoryPath:    "$HOME/.xmd-bot/history.db",
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			LogsDir:    "$HOME/.xmd-bot/logs",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}
