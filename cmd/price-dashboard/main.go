package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/internal/app"
	"github.com/Sternrassler/teaching-price-dashboard/internal/config"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/dashboard"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/web"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	app.SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Dashboard server failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	controller := dashboard.NewController(deps.Aggregator)

	srv, err := newServer(deps, controller)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// A run in progress is not cancellable; let it finish before closing the client.
	controller.Wait()
	return nil
}

func newServer(deps *app.Deps, controller *dashboard.Controller) (*web.Server, error) {
	return web.NewServer(controller, deps.API.Ping)
}
