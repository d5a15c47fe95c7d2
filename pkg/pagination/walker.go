package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "marketplace_pages_fetched_total",
	Help: "Total number of listing pages fetched, including the terminating empty page",
})

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 10

// ErrPageLimit is returned when MaxPages non-empty pages were read without reaching an empty page.
var ErrPageLimit = errors.New("page limit reached before empty page")

// Config holds walker configuration.
type Config struct {
	PageSize int

	// StartPage is the index of the first page requested.
	StartPage int

	// MaxPages caps the number of non-empty pages. 0 means unbounded.
	MaxPages int
}

// DefaultConfig returns the marketplace paging convention: pages of 10 starting at 0.
func DefaultConfig() Config {
	return Config{
		PageSize:  DefaultPageSize,
		StartPage: 0,
	}
}

// PageFunc fetches one page.
type PageFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// VisitFunc consumes the items of a non-empty page.
type VisitFunc[T any] func(page int, items []T) error

// Stats summarizes a completed walk.
type Stats struct {
	// Pages counts non-empty pages.
	Pages int
	// Items is the sum of non-empty page sizes.
	Items    int
	Duration time.Duration
}

// Walker fetches pages until an empty one is returned.
type Walker[T any] struct {
	fetch  PageFunc[T]
	config Config
	logger zerolog.Logger
}

// NewWalker creates a walker; a non-positive PageSize falls back to DefaultPageSize.
func NewWalker[T any](fetch PageFunc[T], config Config) *Walker[T] {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.StartPage < 0 {
		config.StartPage = 0
	}

	return &Walker[T]{
		fetch:  fetch,
		config: config,
		logger: log.With().Str("component", "pagination").Logger(),
	}
}

// Walk requests pages StartPage, StartPage+1, ... and hands each non-empty page to visit.
func (w *Walker[T]) Walk(ctx context.Context, visit VisitFunc[T]) (Stats, error) {
	start := time.Now()
	var stats Stats

	for page := w.config.StartPage; ; page++ {
		if w.config.MaxPages > 0 && stats.Pages >= w.config.MaxPages {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("%w: %d pages", ErrPageLimit, stats.Pages)
		}

		items, err := w.fetch(ctx, page, w.config.PageSize)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("fetch page %d: %w", page, err)
		}
		pagesFetchedTotal.Inc()

		if len(items) == 0 {
			break
		}

		stats.Pages++
		stats.Items += len(items)

		w.logger.Debug().
			Int("page", page).
			Int("items", len(items)).
			Msg("Page fetched")

		if visit != nil {
			if err := visit(page, items); err != nil {
				stats.Duration = time.Since(start)
				return stats, fmt.Errorf("visit page %d: %w", page, err)
			}
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
