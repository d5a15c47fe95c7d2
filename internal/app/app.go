// Package app wires configuration into the marketplace client stack shared by
// the dashboard server and the headless runner.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/internal/config"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/aggregator"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/client"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/logging"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/marketplace"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Deps holds the long-lived dependencies of a process.
type Deps struct {
	Redis      *redis.Client
	API        *client.Client
	Market     *marketplace.Service
	Aggregator *aggregator.Aggregator
}

// SetupLogging configures the global logger from cfg.
func SetupLogging(cfg *config.Config) zerolog.Logger {
	return logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
}

// Build connects Redis (when configured) and creates the marketplace client.
func Build(ctx context.Context, cfg *config.Config) (*Deps, error) {
	logger := logging.NewLogger("app")
	deps := &Deps{}

	if cfg.CacheEnabled() {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := deps.Redis.Ping(pingCtx).Err(); err != nil {
			deps.Redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	} else {
		logger.Info().Msg("Response cache disabled")
	}

	api, err := client.New(client.Config{
		BaseURL:   cfg.Marketplace.BaseURL,
		Redis:     deps.Redis,
		UserAgent: cfg.Marketplace.UserAgent,
		Language:  cfg.Marketplace.Language,
		Timeout:   cfg.Marketplace.Timeout,
	})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("create marketplace client: %w", err)
	}

	deps.API = api
	deps.Market = marketplace.New(api)
	deps.Aggregator = aggregator.New(deps.Market, aggregator.DefaultConfig())

	logger.Info().
		Str("base_url", cfg.Marketplace.BaseURL).
		Str("user_agent", cfg.Marketplace.UserAgent).
		Msg("Marketplace client ready")

	return deps, nil
}

// Close releases connections.
func (d *Deps) Close() {
	if d.API != nil {
		d.API.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
}
