// Package api exposes the HTTP interface for the ingestion pipeline.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/praclabs/workinator/internal/export"
	"github.com/praclabs/workinator/internal/metrics"
	"github.com/praclabs/workinator/internal/offers"
)

// runner is the slice of crawl.Orchestrator the API needs.
type runner interface {
	Run(ctx context.Context, q offers.SearchQuery) (offers.CrawlResult, error)
}

// Server wires HTTP handlers to the export service and the orchestrator.
type Server struct {
	router  chi.Router
	exports *export.Service
	runner  runner
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes. runner may be nil
// for read-only deployments; POST /v1/crawl then returns 503.
func NewServer(exports *export.Service, run runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		exports: exports,
		runner:  run,
		logger:  logger,
	}

	metrics.Init()
	r := chi.NewRouter()
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/offers", s.listOffers)
		r.Get("/offers.csv", s.exportCSV)
		r.Post("/crawl", s.triggerCrawl)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) listOffers(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	matched, err := s.exports.Offers(r.Context(), filters)
	if err != nil {
		s.logger.Error("offer query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if matched == nil {
		matched = []offers.Offer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"offers": matched,
		"count":  len(matched),
	})
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="offers.csv"`)
	if _, err := s.exports.WriteCSV(r.Context(), w, filters); err != nil {
		// Headers are already gone; log and give up on this response.
		s.logger.Error("csv export failed", zap.Error(err))
	}
}

type crawlRequest struct {
	Keywords  []string `json:"keywords"`
	City      string   `json:"city"`
	Distance  int      `json:"distance"`
	MaxOffers int      `json:"max_offers"`
}

func (s *Server) triggerCrawl(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "crawling disabled")
		return
	}
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Keywords) == 0 {
		writeError(w, http.StatusBadRequest, "keywords are required")
		return
	}
	if req.MaxOffers < 0 || req.Distance < 0 {
		writeError(w, http.StatusBadRequest, "max_offers and distance must be >= 0")
		return
	}

	result, err := s.runner.Run(r.Context(), offers.SearchQuery{
		Keywords:  req.Keywords,
		City:      req.City,
		Distance:  req.Distance,
		MaxOffers: req.MaxOffers,
	})
	if err != nil {
		s.logger.Error("crawl run failed",
			zap.String("run_id", result.RunID),
			zap.Error(err),
		)
		// The partial result still tells the caller what was ingested.
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseFilters(r *http.Request) (offers.Filters, error) {
	q := r.URL.Query()
	f := offers.Filters{
		Company:  q.Get("company"),
		Position: q.Get("position"),
		City:     q.Get("city"),
	}
	var err error
	if f.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		return offers.Filters{}, fmt.Errorf("invalid limit: %w", err)
	}
	if f.Offset, err = parseIntParam(q.Get("offset")); err != nil {
		return offers.Filters{}, fmt.Errorf("invalid offset: %w", err)
	}
	if f.From, err = parseTimeParam(q.Get("from")); err != nil {
		return offers.Filters{}, fmt.Errorf("invalid from: %w", err)
	}
	if f.To, err = parseTimeParam(q.Get("to")); err != nil {
		return offers.Filters{}, fmt.Errorf("invalid to: %w", err)
	}
	return f, nil
}

func parseIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("must be a non-negative integer, got %q", raw)
	}
	return n, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
