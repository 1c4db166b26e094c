// Package config provides configuration management for jsoncond services.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/solatis/jsoncond/internal/types"
)

// ServiceConfig holds configuration for the gRPC condition service.
type ServiceConfig struct {
	Host             string
	Port             int
	RequestTimeout   time.Duration
	MaxPayloadBytes  int
	DefaultArrayType types.ArrayRepresentation
	DatabaseURL      string

	// APIKey enables x-api-key authentication when non-empty. It is read
	// from JC_SERVICE_API_KEY only.
	APIKey string
}

// DefaultServiceConfig returns configuration with default values.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Host:             "0.0.0.0",
		Port:             50061,
		RequestTimeout:   30 * time.Second,
		MaxPayloadBytes:  types.MaxPayloadSize,
		DefaultArrayType: types.JSONArray,
		DatabaseURL:      "sqlite://./data/jsoncond.db",
	}
}

// Address returns the host:port listen address.
func (c *ServiceConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HasCredentials reports whether a database URL embeds a password.
func HasCredentials(dbURL string) bool {
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}
