package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yourusername/xmd-bot/internal/domain"
)

// LoadConfig loads configuration from .env, file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	// Start with default config
	config := domain.DefaultConfig()

	// Set up viper
	v := viper.New()
	v.SetConfigType("yaml")

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.xmd-bot")
		v.AddConfigPath("/etc/xmd-bot")
	}

	// Read environment variables
	v.SetEnvPrefix("XMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in paths
	config = expandPaths(config)

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnvKeys makes keys without a config file entry visible to AutomaticEnv
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"bot.name", "bot.prefix", "bot.version", "bot.pair_phone",
		"resolver.redirect_timeout", "resolver.max_redirects", "resolver.provider_timeout", "resolver.media_timeout", "resolver.user_agent",
		"status.enhanced_location", "status.geo_timeout", "status.primary_geo_url", "status.secondary_geo_url",
		"store.session_dialect", "store.session_dsn", "store.history_enabled", "store.history_path",
		"server.enabled", "server.host", "server.port",
		"logging.level", "logging.format", "logging.output_path", "logging.logs_dir",
	} {
		_ = v.BindEnv(key)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Store.SessionDSN = expandPath(config.Store.SessionDSN)
	config.Store.HistoryPath = expandPath(config.Store.HistoryPath)
	config.Logging.LogsDir = expandPath(config.Logging.LogsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	// Replace $HOME first so it resolves even when HOME is unset in the env
	if strings.Contains(path, "$HOME") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	// Expand home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// Expand remaining environment variables
	return os.ExpandEnv(path)
}

var validate = validator.New()

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if err := validate.Struct(config); err != nil {
		return err
	}

	if config.Store.HistoryEnabled && config.Store.HistoryPath == "" {
		return fmt.Errorf("history database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	// Marshal config to viper
	v.Set("bot", config.Bot)
	v.Set("resolver", config.Resolver)
	v.Set("status", config.Status)
	v.Set("store", config.Store)
	v.Set("server", config.Server)
	v.Set("logging", config.Logging)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
