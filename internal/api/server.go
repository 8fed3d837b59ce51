// Package api exposes the channel planner over HTTP: allocation and
// release of carriers, plan import/export, scan diagnostics, and a debug
// occupancy chart.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/skyfield-data/spectrum.report/internal/beamplan"
	sqlite "github.com/skyfield-data/spectrum.report/internal/beamplan/storage/sqlite"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the planner API over one shared plan. The store is
// optional; when present, successful mutations are persisted and logged.
type Server struct {
	plan  *beamplan.Plan
	store *sqlite.PlanStore
}

// NewServer creates a Server for plan. Pass a nil store to run without
// persistence (tests, dry runs).
func NewServer(plan *beamplan.Plan, store *sqlite.PlanStore) *Server {
	return &Server{
		plan:  plan,
		store: store,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the planner route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/allocate", s.handleAllocate)
	mux.HandleFunc("/api/batch", s.handleBatch)
	mux.HandleFunc("/api/deallocate", s.handleDeallocate)
	mux.HandleFunc("/api/plan", s.handlePlan)
	mux.HandleFunc("/api/scan", s.handleScan)
	mux.HandleFunc("/debug/occupancy", s.handleOccupancyChart)
	return mux
}

// savePlan persists the current plan when a store is configured.
func (s *Server) savePlan() {
	if s.store == nil {
		return
	}
	if err := s.store.SavePlan(s.plan); err != nil {
		log.Printf("failed to persist plan: %v", err)
	}
}

// logEvent appends to the allocation audit log when a store is configured.
func (s *Server) logEvent(event string, rec beamplan.CarrierRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.LogEvent(event, rec); err != nil {
		log.Printf("failed to log %s event: %v", event, err)
	}
}
