package marketplace_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/Sternrassler/teaching-price-dashboard/internal/testutil"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/aggregator"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/client"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/marketplace"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, baseURL string) *marketplace.Service {
	t.Helper()

	api, err := client.New(client.DefaultConfig(baseURL))
	require.NoError(t, err)
	t.Cleanup(func() { api.Close() })

	return marketplace.New(api)
}

func TestFetchCategories(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.SetCategories(
		testutil.MockCategory{ID: "c1", Name: "Math", Code: 1},
		testutil.MockCategory{ID: "c2", Name: "Physics", Code: 2},
	)

	categories, err := newService(t, mock.URL()).FetchCategories(context.Background())
	require.NoError(t, err)

	require.Len(t, categories, 2)
	assert.Equal(t, "Math", categories[0].Name)
	assert.Equal(t, 1, categories[0].Code)
	assert.Equal(t, "Physics", categories[1].Name)

	headers := mock.LastHeaders(marketplace.CategoriesPath)
	assert.Equal(t, "en", headers.Get("Accept-Language"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
}

func TestFetchCategories_NullBody(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.SetHandler(marketplace.CategoriesPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "null")
	})

	categories, err := newService(t, mock.URL()).FetchCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestFetchCategories_ErrorStatus(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.SetHandler(marketplace.CategoriesPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := newService(t, mock.URL()).FetchCategories(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, client.ErrorClassServer, apiErr.ErrorClass)
}

func TestFetchTeacherPage_RequestShape(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.SetTeachers(7, testutil.TeachersWithPrices(10, 20, 30)...)

	svc := newService(t, mock.URL())
	page, err := svc.FetchTeacherPage(context.Background(), 7, 0, 2)
	require.NoError(t, err)
	require.Len(t, page.Teachers, 2)
	assert.True(t, page.Teachers[0].Price().Equal(decimal.NewFromInt(10)))
	assert.True(t, page.Teachers[1].Price().Equal(decimal.NewFromInt(20)))

	page, err = svc.FetchTeacherPage(context.Background(), 7, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Teachers, 1)

	searches := mock.Searches()
	require.Len(t, searches, 2)
	assert.Equal(t, []int{7}, searches[0].Categories)
	assert.Equal(t, 0, searches[0].Page)
	assert.Equal(t, 2, searches[0].PageSize)
	assert.Equal(t, 1, searches[1].Page)
	assert.Equal(t, "en", searches[0].Language)

	headers := mock.LastHeaders(marketplace.SearchPath)
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestFetchTeacherPage_WireFormat(t *testing.T) {
	var body map[string]any
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.SetHandler(marketplace.SearchPath, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		io.WriteString(w, `{"teachers":[]}`)
	})

	page, err := newService(t, mock.URL()).FetchTeacherPage(context.Background(), 3, 4, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Teachers)

	assert.Equal(t, map[string]any{
		"categories": []any{float64(3)},
		"page":       float64(4),
		"pageSize":   float64(10),
	}, body)
}

func TestFetchTeacherPage_MissingAndNullPrices(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.SetTeachers(1,
		testutil.MockTeacher{ID: "t1", Price: testutil.Price(12.5)},
		testutil.MockTeacher{ID: "t2"},
		testutil.MockTeacher{ID: "t3", NullPrice: true},
	)

	page, err := newService(t, mock.URL()).FetchTeacherPage(context.Background(), 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Teachers, 3)

	assert.True(t, page.Teachers[0].Price().Equal(decimal.RequireFromString("12.5")))
	assert.True(t, page.Teachers[1].Price().IsZero())
	assert.True(t, page.Teachers[2].Price().IsZero())
	assert.False(t, page.Teachers[2].PricePerHour.Valid)
}

func TestFetchTeacherPage_MissingTeachersField(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"null teachers", `{"teachers":null}`},
		{"not json", `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockMarketplace()
			defer mock.Close()

			mock.SetHandler(marketplace.SearchPath, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			_, err := newService(t, mock.URL()).FetchTeacherPage(context.Background(), 1, 0, 10)
			require.ErrorIs(t, err, client.ErrMalformedResponse)
		})
	}
}

func TestFetchTeacherPage_ErrorStatus(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.FailSearch(9, http.StatusBadRequest)

	_, err := newService(t, mock.URL()).FetchTeacherPage(context.Background(), 9, 0, 10)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "search category 9 page 0")
}

func TestReportAverage(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	err := newService(t, mock.URL()).ReportAverage(context.Background(), "Math", decimal.NewFromInt(15))
	require.NoError(t, err)

	reports := mock.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, testutil.Report{CategoryName: "Math", AveragePrice: 15}, reports[0])

	headers := mock.LastHeaders(marketplace.AveragePricePath)
	assert.Empty(t, headers.Get("Accept-Language"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestReportAverage_NumberOnTheWire(t *testing.T) {
	var raw []byte
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.SetHandler(marketplace.AveragePricePath, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})

	avg := decimal.NewFromInt(40).Div(decimal.NewFromInt(3))
	err := newService(t, mock.URL()).ReportAverage(context.Background(), "Art", avg)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "Art", payload["categoryName"])
	assert.InDelta(t, 13.3333, payload["averagePrice"], 0.001)
}

func TestReportAverage_Rejected(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	mock.FailReports(http.StatusInternalServerError)

	err := newService(t, mock.URL()).ReportAverage(context.Background(), "Math", decimal.Zero)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Empty(t, mock.Reports())
}

func TestReportAverage_RepeatingMean(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()

	avg := aggregator.Average(decimal.NewFromInt(2), 3)
	err := newService(t, mock.URL()).ReportAverage(context.Background(), "Chess", avg)
	require.NoError(t, err)

	reports := mock.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, 2.0/3.0, reports[0].AveragePrice)
}
