// Package aggregator computes the average hourly price of every marketplace
// category and reports each average back to the marketplace.
//
// A run is strictly sequential: categories in server order, and for each
// category the search pages 0, 1, 2, ... until the first empty page. The first
// failure aborts the run; results appended before it are returned with the error.
package aggregator

import (
	"context"
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/pkg/marketplace"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_aggregation_runs_total",
		Help: "Aggregation runs by outcome",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "price_aggregation_run_duration_seconds",
		Help:    "Duration of aggregation runs in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	categoryAverage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "price_category_average",
		Help: "Last computed average hourly price per category",
	}, []string{"category"})

	teachersCounted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_teachers_counted_total",
		Help: "Teachers included in category averages",
	})
)

// Marketplace is the subset of the marketplace API a run needs.
type Marketplace interface {
	FetchCategories(ctx context.Context) ([]marketplace.Category, error)
	FetchTeacherPage(ctx context.Context, categoryCode, page, pageSize int) (marketplace.TeacherListingPage, error)
	ReportAverage(ctx context.Context, categoryName string, average decimal.Decimal) error
}

// Config holds aggregator configuration.
type Config struct {
	// PageSize is the search page size. Defaults to pagination.DefaultPageSize.
	PageSize int

	// MaxPages bounds the pages read per category. 0 means unbounded.
	MaxPages int
}

// DefaultConfig returns the marketplace paging convention.
func DefaultConfig() Config {
	return Config{PageSize: pagination.DefaultPageSize}
}

// Aggregator runs the category average computation.
type Aggregator struct {
	market Marketplace
	config Config
	logger zerolog.Logger
}

// New creates an aggregator over market.
func New(market Marketplace, cfg Config) *Aggregator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = pagination.DefaultPageSize
	}
	return &Aggregator{
		market: market,
		config: cfg,
		logger: log.With().Str("component", "aggregator").Logger(),
	}
}

// Run computes and reports the average price of every category.
//
// Each average is appended to the returned slice and handed to onResult
// (when non-nil) before it is reported, so an entry whose report failed is
// still part of the result. Errors are *StageError values.
func (a *Aggregator) Run(ctx context.Context, onResult func(CategoryAverage)) ([]CategoryAverage, error) {
	logger := a.loggerFor(ctx)
	start := time.Now()
	results := []CategoryAverage{}

	fail := func(err error) ([]CategoryAverage, error) {
		runsTotal.WithLabelValues("failed").Inc()
		runDuration.Observe(time.Since(start).Seconds())
		return results, err
	}

	categories, err := a.market.FetchCategories(ctx)
	if err != nil {
		return fail(&StageError{Stage: StageCategories, Err: err})
	}

	logger.Info().Int("categories", len(categories)).Msg("Aggregation started")

	for _, category := range categories {
		total, count, err := a.collect(ctx, category)
		if err != nil {
			return fail(&StageError{Stage: StageSearch, Category: category.Name, Err: err})
		}

		result := CategoryAverage{
			Category:     category.Name,
			AveragePrice: Average(total, count),
			Teachers:     count,
		}
		results = append(results, result)
		if onResult != nil {
			onResult(result)
		}

		categoryAverage.WithLabelValues(category.Name).Set(result.Float())
		teachersCounted.Add(float64(count))

		logger.Info().
			Str("category", category.Name).
			Int("category_code", category.Code).
			Int("teachers", count).
			Str("average", result.AveragePrice.String()).
			Msg("Category average computed")

		if err := a.market.ReportAverage(ctx, category.Name, result.AveragePrice); err != nil {
			return fail(&StageError{Stage: StageReport, Category: category.Name, Err: err})
		}
	}

	runsTotal.WithLabelValues("succeeded").Inc()
	runDuration.Observe(time.Since(start).Seconds())

	logger.Info().
		Int("results", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Aggregation finished")

	return results, nil
}

// collect walks the teacher listing of category and sums the hourly prices.
func (a *Aggregator) collect(ctx context.Context, category marketplace.Category) (decimal.Decimal, int, error) {
	fetch := func(ctx context.Context, page, pageSize int) ([]marketplace.Teacher, error) {
		listing, err := a.market.FetchTeacherPage(ctx, category.Code, page, pageSize)
		if err != nil {
			return nil, err
		}
		return listing.Teachers, nil
	}

	walker := pagination.NewWalker(fetch, pagination.Config{
		PageSize: a.config.PageSize,
		MaxPages: a.config.MaxPages,
	})

	total := decimal.Zero
	stats, err := walker.Walk(ctx, func(page int, teachers []marketplace.Teacher) error {
		for _, t := range teachers {
			total = total.Add(t.Price())
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, 0, err
	}

	return total, stats.Items, nil
}

// loggerFor prefers a logger carried by ctx, which holds the run id.
func (a *Aggregator) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.logger
}
