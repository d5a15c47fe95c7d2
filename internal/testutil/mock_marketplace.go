// Package testutil provides an in-process fake of the teaching marketplace.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

const (
	categoriesPath   = "/categories/v1/open/categories"
	searchPath       = "/categories/v1/open/search"
	averagePricePath = "/categories/v1/open/average-price"
)

// MockCategory is a category served by the fake.
type MockCategory struct {
	ID            string
	Name          string
	Code          int
	Description   string
	TeachersCount int
}

// MockTeacher is a teacher served by the fake. A nil Price omits pricePerHour;
// NullPrice sends an explicit null instead.
type MockTeacher struct {
	ID        string
	Price     *float64
	NullPrice bool
}

// SearchCall records one search request.
type SearchCall struct {
	Categories []int  `json:"categories"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Language   string `json:"-"`
}

// Report records one average-price submission.
type Report struct {
	CategoryName string  `json:"categoryName"`
	AveragePrice float64 `json:"averagePrice"`
}

// MockMarketplace is a configurable marketplace server for tests.
type MockMarketplace struct {
	server *httptest.Server

	mu             sync.RWMutex
	handlers       map[string]http.HandlerFunc
	categories     []MockCategory
	teachers       map[int][]MockTeacher
	searchFailures map[int]int
	reportStatus   int
	etag           string

	searches      []SearchCall
	reports       []Report
	requestCounts map[string]int
	conditional   int
	lastHeaders   map[string]http.Header
}

// NewMockMarketplace starts the fake server.
func NewMockMarketplace() *MockMarketplace {
	m := &MockMarketplace{
		handlers:       make(map[string]http.HandlerFunc),
		teachers:       make(map[int][]MockTeacher),
		searchFailures: make(map[int]int),
		requestCounts:  make(map[string]int),
		lastHeaders:    make(map[string]http.Header),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requestCounts[r.URL.Path]++
		m.lastHeaders[r.URL.Path] = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			m.conditional++
		}
		handler, exists := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case categoriesPath:
			m.handleCategories(w, r)
		case searchPath:
			m.handleSearch(w, r)
		case averagePricePath:
			m.handleAveragePrice(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return m
}

// URL returns the mock server URL.
func (m *MockMarketplace) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMarketplace) Close() {
	m.server.Close()
}

// SetHandler overrides the handler for a path.
func (m *MockMarketplace) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetCategories sets the category tree, in server order.
func (m *MockMarketplace) SetCategories(categories ...MockCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = categories
}

// SetTeachers sets the teachers listed under a category code.
func (m *MockMarketplace) SetTeachers(code int, teachers ...MockTeacher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teachers[code] = teachers
}

// FailSearch makes every search for code answer with status.
func (m *MockMarketplace) FailSearch(code, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchFailures[code] = status
}

// FailReports makes the average-price endpoint answer with status.
func (m *MockMarketplace) FailReports(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportStatus = status
}

// SetCategoriesETag enables ETag revalidation on the category tree.
func (m *MockMarketplace) SetCategoriesETag(etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etag = etag
}

// Searches returns the recorded search requests.
func (m *MockMarketplace) Searches() []SearchCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SearchCall(nil), m.searches...)
}

// Reports returns the recorded average-price submissions.
func (m *MockMarketplace) Reports() []Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Report(nil), m.reports...)
}

// RequestCount returns the number of requests made to path.
func (m *MockMarketplace) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCounts[path]
}

// ConditionalCount returns the number of conditional requests.
func (m *MockMarketplace) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditional
}

// LastHeaders returns the headers of the latest request to path.
func (m *MockMarketplace) LastHeaders(path string) http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeaders[path]
}

func (m *MockMarketplace) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	m.mu.RLock()
	etag := m.etag
	out := make([]map[string]any, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, map[string]any{
			"id":                 c.ID,
			"name":               c.Name,
			"code":               c.Code,
			"description":        c.Description,
			"teachersCount":      c.TeachersCount,
			"childrenCategories": []any{},
		})
	}
	m.mu.RUnlock()

	if etag != "" {
		w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	writeJSON(w, http.StatusOK, out)
}

func (m *MockMarketplace) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var call SearchCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil || len(call.Categories) != 1 || call.PageSize <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid search request"})
		return
	}
	call.Language = r.Header.Get("Accept-Language")

	m.mu.Lock()
	m.searches = append(m.searches, call)
	code := call.Categories[0]
	status := m.searchFailures[code]
	all := m.teachers[code]
	m.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]string{"message": fmt.Sprintf("search failed for %d", code)})
		return
	}

	from := call.Page * call.PageSize
	to := min(from+call.PageSize, len(all))
	teachers := make([]map[string]any, 0, call.PageSize)
	for i := from; i < to; i++ {
		t := map[string]any{"id": all[i].ID}
		switch {
		case all[i].Price != nil:
			t["pricePerHour"] = *all[i].Price
		case all[i].NullPrice:
			t["pricePerHour"] = nil
		}
		teachers = append(teachers, t)
	}

	writeJSON(w, http.StatusOK, map[string]any{"teachers": teachers})
}

func (m *MockMarketplace) handleAveragePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var report Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid report"})
		return
	}

	m.mu.Lock()
	status := m.reportStatus
	if status == 0 {
		m.reports = append(m.reports, report)
	}
	m.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]string{"message": "report rejected"})
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Price returns a pointer to v, for MockTeacher literals.
func Price(v float64) *float64 {
	return &v
}

// TeachersWithPrices builds priced teachers with generated ids.
func TeachersWithPrices(prices ...float64) []MockTeacher {
	teachers := make([]MockTeacher, 0, len(prices))
	for _, p := range prices {
		teachers = append(teachers, MockTeacher{ID: gofakeit.UUID(), Price: Price(p)})
	}
	return teachers
}

// RandomCategories builds n categories with distinct codes 1..n and generated names.
func RandomCategories(n int) []MockCategory {
	categories := make([]MockCategory, 0, n)
	for i := 1; i <= n; i++ {
		categories = append(categories, MockCategory{
			ID:          gofakeit.UUID(),
			Name:        fmt.Sprintf("%s %d", gofakeit.JobTitle(), i),
			Code:        i,
			Description: gofakeit.Sentence(6),
		})
	}
	return categories
}
