package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/internal/app"
	"github.com/Sternrassler/teaching-price-dashboard/internal/config"
	"github.com/Sternrassler/teaching-price-dashboard/internal/testutil"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/dashboard"
)

func setupServer(t *testing.T, mock *testutil.MockMarketplace) (*httptest.Server, *dashboard.Controller) {
	t.Helper()

	cfg := &config.Config{
		Marketplace: config.MarketplaceConfig{
			BaseURL:   mock.URL(),
			Language:  "en",
			UserAgent: "price-dashboard-test/1.0",
			Timeout:   5 * time.Second,
		},
		Server: config.ServerConfig{Port: "0"},
		Log:    config.LogConfig{Level: "error"},
	}

	deps, err := app.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to build dependencies: %v", err)
	}
	t.Cleanup(deps.Close)

	controller := dashboard.NewController(deps.Aggregator)
	srv, err := newServer(deps, controller)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, controller
}

func TestHealthEndpoint(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()
	ts, _ := setupServer(t, mock)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint_WithoutCache(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()
	ts, _ := setupServer(t, mock)

	resp, err := http.Get(ts.URL + "/ready")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestCalculateEndToEnd(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()
	mock.SetCategories(testutil.MockCategory{Name: "Math", Code: 1})
	mock.SetTeachers(1, testutil.TeachersWithPrices(10, 20)...)

	ts, controller := setupServer(t, mock)

	resp, err := http.Post(ts.URL+"/api/calculate", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", resp.StatusCode)
	}

	controller.Wait()

	resp, err = http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var state struct {
		Status  string `json:"status"`
		Busy    bool   `json:"busy"`
		Results []struct {
			Category     string  `json:"category"`
			AveragePrice float64 `json:"averagePrice"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}

	if state.Status != "succeeded" || state.Busy {
		t.Errorf("Expected finished run, got status=%s busy=%v", state.Status, state.Busy)
	}
	if len(state.Results) != 1 || state.Results[0].Category != "Math" || state.Results[0].AveragePrice != 15 {
		t.Errorf("Unexpected results: %+v", state.Results)
	}

	reports := mock.Reports()
	if len(reports) != 1 || reports[0] != (testutil.Report{CategoryName: "Math", AveragePrice: 15}) {
		t.Errorf("Unexpected reports: %+v", reports)
	}
}

func TestCalculateFailureShowsStaticMessage(t *testing.T) {
	mock := testutil.NewMockMarketplace()
	defer mock.Close()
	mock.SetCategories(
		testutil.MockCategory{Name: "A", Code: 1},
		testutil.MockCategory{Name: "B", Code: 2},
	)
	mock.SetTeachers(1, testutil.TeachersWithPrices(8)...)
	mock.FailSearch(2, http.StatusInternalServerError)

	ts, controller := setupServer(t, mock)

	resp, err := http.Post(ts.URL+"/calculate", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	controller.Wait()

	state := controller.Snapshot()
	if state.Error != dashboard.FailureMessage {
		t.Errorf("Expected static failure message, got %q", state.Error)
	}
	if rows := state.Rows(); len(rows) != 1 || rows[0] != "A: 8" {
		t.Errorf("Expected partial result [A: 8], got %v", rows)
	}
}
