package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/teaching-price-dashboard/internal/app"
	"github.com/Sternrassler/teaching-price-dashboard/internal/config"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/aggregator"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/dashboard"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	app.SetupLogging(cfg)

	deps, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}

	code := run(context.Background(), deps.Aggregator, os.Stdout, os.Stderr)
	deps.Close()
	os.Exit(code)
}

// run prints each average as it is computed and returns the exit code.
func run(ctx context.Context, agg *aggregator.Aggregator, stdout, stderr io.Writer) int {
	_, err := agg.Run(ctx, func(r aggregator.CategoryAverage) {
		fmt.Fprintln(stdout, r.String())
	})
	if err != nil {
		log.Error().Err(err).Msg("Aggregation failed")
		fmt.Fprintln(stderr, dashboard.FailureMessage)
		return 1
	}
	return 0
}
