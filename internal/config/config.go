package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	LogConfig
}

type mainConfig struct {
	EnvVars
	API     API
	Storage Storage
	Log     Log
}

var _ Config = (*mainConfig)(nil)

// Load reads the configuration from the environment and validates it.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom is Load with an explicit lookuper, used by tests.
func LoadFrom(ctx context.Context, values map[string]string) (Config, error) {
	return load(ctx, envconfig.MapLookuper(values))
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var c mainConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &c,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(&c); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &c, nil
}

func (c *mainConfig) GetAPIBaseURL() string            { return c.API.GetAPIBaseURL() }
func (c *mainConfig) GetPaymentPublicKey() string      { return c.API.GetPaymentPublicKey() }
func (c *mainConfig) GetRequestTimeout() time.Duration { return c.API.GetRequestTimeout() }
func (c *mainConfig) GetRefreshTimeout() time.Duration { return c.API.GetRefreshTimeout() }
func (c *mainConfig) GetStorageBackend() BackendType   { return c.Storage.GetStorageBackend() }
func (c *mainConfig) GetStateDir() string              { return c.Storage.GetStateDir() }
func (c *mainConfig) GetRedisAddr() string             { return c.Storage.GetRedisAddr() }
func (c *mainConfig) GetRedisDB() int                  { return c.Storage.GetRedisDB() }
func (c *mainConfig) GetRedisPrefix() string           { return c.Storage.GetRedisPrefix() }
func (c *mainConfig) GetLogLevel() string              { return c.Log.GetLogLevel() }
func (c *mainConfig) GetLogPretty() bool               { return c.Log.GetLogPretty() }
