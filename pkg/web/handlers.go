package web

import (
	"context"
	"net/http"
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/pkg/dashboard"
	"github.com/labstack/echo/v4"
)

// refreshSeconds is the page reload interval while a run is in progress.
const refreshSeconds = 2

// lessonRequest is the static notification panel next to the results.
type lessonRequest struct {
	Title   string
	Message string
	When    string
}

var staticLessonRequest = lessonRequest{
	Title:   "Request for the lesson",
	Message: "Daniel Hamilton wants to start a lesson, please confirm or deny the request",
	When:    "18 Dec, 14:50pm, 2022",
}

type pageData struct {
	Busy           bool
	Error          string
	Rows           []string
	RefreshSeconds int
	Lesson         lessonRequest
}

type resultResponse struct {
	Category     string  `json:"category"`
	AveragePrice float64 `json:"averagePrice"`
	Teachers     int     `json:"teachers"`
}

type stateResponse struct {
	Status     dashboard.Status `json:"status"`
	Busy       bool             `json:"busy"`
	Error      string           `json:"error,omitempty"`
	Results    []resultResponse `json:"results"`
	RunID      string           `json:"runId,omitempty"`
	StartedAt  *time.Time       `json:"startedAt,omitempty"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
}

type triggerResponse struct {
	RunID  string           `json:"runId"`
	Status dashboard.Status `json:"status"`
}

func newStateResponse(s dashboard.State) stateResponse {
	resp := stateResponse{
		Status:  s.Status,
		Busy:    s.Busy,
		Error:   s.Error,
		Results: make([]resultResponse, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		resp.Results = append(resp.Results, resultResponse{
			Category:     r.Category,
			AveragePrice: r.Float(),
			Teachers:     r.Teachers,
		})
	}
	if s.Status != dashboard.StatusIdle {
		resp.RunID = s.RunID.String()
	}
	if !s.StartedAt.IsZero() {
		resp.StartedAt = &s.StartedAt
	}
	if !s.FinishedAt.IsZero() {
		resp.FinishedAt = &s.FinishedAt
	}
	return resp
}

func (s *Server) handleIndex(c echo.Context) error {
	state := s.controller.Snapshot()
	return c.Render(http.StatusOK, "index.html", pageData{
		Busy:           state.Busy,
		Error:          state.Error,
		Rows:           state.Rows(),
		RefreshSeconds: refreshSeconds,
		Lesson:         staticLessonRequest,
	})
}

func (s *Server) handleCalculateForm(c echo.Context) error {
	s.controller.Trigger()
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleState(c echo.Context) error {
	return c.JSON(http.StatusOK, newStateResponse(s.controller.Snapshot()))
}

func (s *Server) handleCalculate(c echo.Context) error {
	runID, started := s.controller.Trigger()
	if !started {
		return echo.NewHTTPError(http.StatusConflict, "calculation already in progress")
	}
	return c.JSON(http.StatusAccepted, triggerResponse{
		RunID:  runID.String(),
		Status: dashboard.StatusRunning,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleReady(c echo.Context) error {
	if s.ready == nil {
		return c.String(http.StatusOK, "OK")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.ready(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Readiness check failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
	}
	return c.String(http.StatusOK, "OK")
}
