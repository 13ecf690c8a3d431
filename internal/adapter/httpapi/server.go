// Package httpapi exposes the assessment engine over HTTP along with
// health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenfund/climate-assessment-service/internal/domain"
	"github.com/greenfund/climate-assessment-service/internal/engine"
)

// Assessor is the engine surface the API serves.
type Assessor interface {
	ClimateAssessment(ctx context.Context, req engine.AssessmentRequest) (engine.AssessmentResult, error)
	CarbonSummary(farmID string, activities []domain.ActivityRecord) (domain.CarbonSummary, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the assessment API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	ready      ReadinessChecker
	logger     *slog.Logger
}

// NewServer wires the API routes. A nil ready checker means always ready.
func NewServer(addr string, assessor Assessor, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		ready:    ready,
		logger:   logger,
	}

	mux.HandleFunc("POST /v1/assessments", s.handleAssessment)
	mux.HandleFunc("POST /v1/carbon-summary", s.handleCarbonSummary)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// activityPayload is the wire form of one activity log entry. Category is
// free text and normalized on ingest.
type activityPayload struct {
	FarmID      string           `json:"farm_id"`
	Category    string           `json:"category"`
	Description string           `json:"description,omitempty"`
	Quantity    *domain.Quantity `json:"quantity,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
	CarbonKg    *float64         `json:"carbon_kg,omitempty"`
}

func (p activityPayload) toRecord() domain.ActivityRecord {
	return domain.ActivityRecord{
		FarmID:      p.FarmID,
		Category:    domain.ParseCategory(p.Category),
		Description: p.Description,
		Quantity:    p.Quantity,
		OccurredAt:  p.OccurredAt,
		CarbonKg:    p.CarbonKg,
	}
}

func toRecords(payloads []activityPayload) []domain.ActivityRecord {
	records := make([]domain.ActivityRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, p.toRecord())
	}
	return records
}

type assessmentPayload struct {
	Latitude   *float64          `json:"latitude"`
	Longitude  *float64          `json:"longitude"`
	Crop       string            `json:"crop,omitempty"`
	Activities []activityPayload `json:"activities,omitempty"`
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	var payload assessmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if payload.Latitude == nil || payload.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	result, err := s.assessor.ClimateAssessment(r.Context(), engine.AssessmentRequest{
		Latitude:   *payload.Latitude,
		Longitude:  *payload.Longitude,
		Crop:       payload.Crop,
		Activities: toRecords(payload.Activities),
	})
	if err != nil {
		s.writeAssessmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeAssessmentError maps engine failures to API status codes: bad input is
// the caller's fault, an unreachable weather provider means we are degraded,
// and a misbehaving provider is a bad gateway.
func (s *Server) writeAssessmentError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var weatherErr *domain.WeatherUnavailableError
	if errors.As(err, &weatherErr) {
		status := http.StatusBadGateway
		if weatherErr.Cause == domain.CauseConnection {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "weather service unavailable: "+weatherErr.Error())
		return
	}
	s.logger.Error("assessment failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

type carbonSummaryPayload struct {
	FarmID     string            `json:"farm_id"`
	Activities []activityPayload `json:"activities"`
}

func (s *Server) handleCarbonSummary(w http.ResponseWriter, r *http.Request) {
	var payload carbonSummaryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	summary, err := s.assessor.CarbonSummary(payload.FarmID, toRecords(payload.Activities))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("carbon summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
