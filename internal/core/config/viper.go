package config

import (
	"fmt"
	"strings"

	"github.com/solatis/jsoncond/internal/types"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultServiceConfig
	defaults := DefaultServiceConfig()
	v.SetDefault("service.host", defaults.Host)
	v.SetDefault("service.port", defaults.Port)
	v.SetDefault("service.request_timeout", "30s")
	v.SetDefault("service.max_payload_bytes", defaults.MaxPayloadBytes)
	v.SetDefault("service.default_array_type", string(defaults.DefaultArrayType))
	v.SetDefault("service.api_key", "")
	v.SetDefault("database.url", defaults.DatabaseURL)

	// Bind environment variables with JC_ prefix
	v.SetEnvPrefix("JC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Database passwords belong in JC_DATABASE_URL, never in files
	if err := validateNoCredentialsInConfig(v); err != nil {
		return nil, err
	}
	if err := validateNoAPIKeyInConfig(v); err != nil {
		return nil, err
	}

	cfg := &ServiceConfig{
		Host:             v.GetString("service.host"),
		Port:             v.GetInt("service.port"),
		RequestTimeout:   v.GetDuration("service.request_timeout"),
		MaxPayloadBytes:  v.GetInt("service.max_payload_bytes"),
		DefaultArrayType: types.ArrayRepresentation(v.GetString("service.default_array_type")),
		DatabaseURL:      v.GetString("database.url"),
		APIKey:           v.GetString("service.api_key"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range, positive limits and the array representation.
func validateConfig(cfg *ServiceConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxPayloadBytes <= 0 {
		return fmt.Errorf("max_payload_bytes must be positive, got %d", cfg.MaxPayloadBytes)
	}
	switch cfg.DefaultArrayType {
	case types.JSONArray, types.NativeArray:
	default:
		return fmt.Errorf("default_array_type must be %q or %q, got %q", types.JSONArray, types.NativeArray, cfg.DefaultArrayType)
	}
	return nil
}

// validateNoCredentialsInConfig rejects database URLs with passwords in config files.
func validateNoCredentialsInConfig(v *viper.Viper) error {
	if !v.InConfig("database") {
		return nil
	}
	// Read the file's value directly; GetString would prefer the environment
	section, _ := v.Get("database").(map[string]any)
	fileURL, _ := section["url"].(string)
	if HasCredentials(fileURL) {
		return fmt.Errorf("database credentials not allowed in config files (use JC_DATABASE_URL environment variable)")
	}
	return nil
}

// validateNoAPIKeyInConfig rejects service.api_key in config files.
func validateNoAPIKeyInConfig(v *viper.Viper) error {
	if !v.InConfig("service") {
		return nil
	}
	section, _ := v.Get("service").(map[string]any)
	if _, ok := section["api_key"]; ok {
		return fmt.Errorf("api key not allowed in config files (use JC_SERVICE_API_KEY environment variable)")
	}
	return nil
}
