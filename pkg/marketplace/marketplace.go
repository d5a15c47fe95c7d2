// Package marketplace exposes the three teaching-marketplace endpoints used by
// the price aggregation: the category tree, teacher search and the
// average-price report.
package marketplace

import (
	"context"
	"fmt"

	"github.com/Sternrassler/teaching-price-dashboard/pkg/client"
	"github.com/shopspring/decimal"
)

// Endpoint paths relative to the marketplace base URL.
const (
	CategoriesPath   = "/categories/v1/open/categories"
	SearchPath       = "/categories/v1/open/search"
	AveragePricePath = "/categories/v1/open/average-price"
)

// Service is a typed facade over the marketplace HTTP API.
type Service struct {
	api *client.Client
}

// New wraps a configured client.
func New(api *client.Client) *Service {
	return &Service{api: api}
}

// FetchCategories returns the top-level categories in server order.
// A null body yields an empty slice.
func (s *Service) FetchCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.api.GetJSON(ctx, CategoriesPath, &categories, client.WithLanguage(s.api.Language())); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

// FetchTeacherPage returns one page of teachers listed under categoryCode.
func (s *Service) FetchTeacherPage(ctx context.Context, categoryCode, page, pageSize int) (TeacherListingPage, error) {
	req := searchRequest{
		Categories: []int{categoryCode},
		Page:       page,
		PageSize:   pageSize,
	}

	var resp searchResponse
	if err := s.api.PostJSON(ctx, SearchPath, req, &resp, client.WithLanguage(s.api.Language())); err != nil {
		return TeacherListingPage{}, fmt.Errorf("search category %d page %d: %w", categoryCode, page, err)
	}
	if resp.Teachers == nil {
		return TeacherListingPage{}, fmt.Errorf("search category %d page %d: %w: missing teachers field",
			categoryCode, page, client.ErrMalformedResponse)
	}

	return TeacherListingPage{Teachers: *resp.Teachers}, nil
}

// ReportAverage submits the average hourly price of a category. The response body is ignored.
func (s *Service) ReportAverage(ctx context.Context, categoryName string, average decimal.Decimal) error {
	req := averagePriceRequest{
		CategoryName: categoryName,
		AveragePrice: average.InexactFloat64(),
	}

	if err := s.api.PostJSON(ctx, AveragePricePath, req, nil); err != nil {
		return fmt.Errorf("report average for %q: %w", categoryName, err)
	}
	return nil
}
