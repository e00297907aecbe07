package cmd

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-storefront-client/internal/config"
	"github.com/jrsteele09/go-storefront-client/sessions"
	"github.com/jrsteele09/go-storefront-client/sessions/filestore"
	"github.com/jrsteele09/go-storefront-client/sessions/memstore"
	"github.com/jrsteele09/go-storefront-client/sessions/redisstore"
)

// openStorage returns the session storage selected by cfg and a function
// releasing it.
func openStorage(ctx context.Context, cfg config.StorageConfig) (sessions.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.GetStorageBackend() {
	case config.BackendMemory:
		return memstore.New(), noop, nil
	case config.BackendFile:
		fs, err := filestore.New(cfg.GetStateDir())
		if err != nil {
			return nil, nil, fmt.Errorf("open session directory: %w", err)
		}
		return fs, noop, nil
	case config.BackendRedis:
		rs, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:   cfg.GetRedisAddr(),
			DB:     cfg.GetRedisDB(),
			Prefix: cfg.GetRedisPrefix(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect session redis: %w", err)
		}
		return rs, rs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session storage %q", cfg.GetStorageBackend())
	}
}
