// Package httpapi wires the ingestion and stats endpoints (spec §6) onto
// a chi router: CORS policy, request parsing, and response encoding
// around internal/ingest, internal/querycore, and internal/behavioral.
package httpapi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mallardmetrics/mallard/internal/apierr"
	"github.com/mallardmetrics/mallard/internal/behavioral"
	"github.com/mallardmetrics/mallard/internal/ingest"
	"github.com/mallardmetrics/mallard/internal/logger"
	"github.com/mallardmetrics/mallard/internal/querycore"
	"github.com/mallardmetrics/mallard/internal/safety"
	"github.com/mallardmetrics/mallard/internal/steps"
)

// Authorizer gates the stats endpoints, kept as a hook interface so the
// core ships with no auth state of its own (spec §4.16's "the core
// exposes no auth state"). DefaultAuthorizer admits every request.
type Authorizer interface {
	Authorize(r *http.Request, siteID string) bool
}

// DefaultAuthorizer admits every stats request; callers wanting auth
// supply their own Authorizer to New.
type DefaultAuthorizer struct{}

func (DefaultAuthorizer) Authorize(*http.Request, string) bool { return true }

// Server groups the collaborators the router dispatches to.
type Server struct {
	ingest     *ingest.Orchestrator
	query      *querycore.Runner
	behavioral *behavioral.Runner
	auth       Authorizer
}

// New returns a Server. auth == nil installs DefaultAuthorizer.
func New(ing *ingest.Orchestrator, query *querycore.Runner, beh *behavioral.Runner, auth Authorizer) *Server {
	if auth == nil {
		auth = DefaultAuthorizer{}
	}
	return &Server{ingest: ing, query: query, behavioral: beh, auth: auth}
}

// Router builds the full chi mux: permissive CORS on /api/event (the
// tracking script runs on an arbitrary third-party origin); the stats
// routes allow only GET/OPTIONS and the Content-Type/Authorization
// headers, and since they set no AllowedOrigins, go-chi/cors admits any
// origin there too (spec §6.1/§6.2).
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.With(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})).Post("/api/event", s.handleEvent)

	r.Route("/api/stats", func(stats chi.Router) {
		stats.Use(cors.Handler(cors.Options{
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}))
		stats.Get("/main", s.handleMain)
		stats.Get("/timeseries", s.handleTimeseries)
		stats.Get("/breakdown/{dimension}", s.handleBreakdown)
		stats.Get("/sessions", s.handleSessions)
		stats.Get("/funnel", s.handleFunnel)
		stats.Get("/retention", s.handleRetention)
		stats.Get("/sequences", s.handleSequences)
		stats.Get("/flow", s.handleFlow)
		stats.Get("/export", s.handleExport)
	})

	return r
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := readLimited(r, ingest.MaxBodyBytes+1)
	if err != nil {
		writeError(w, apierr.New(apierr.Internal, "failed to read request body"))
		return
	}
	req := ingest.Request{
		Body:      body,
		Origin:    originAuthority(r),
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if apiErr := s.ingest.Ingest(req); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// readLimited reads at most limit bytes. handleEvent passes one more than
// ingest.MaxBodyBytes, so an oversized body is detected without buffering
// an attacker-controlled amount of memory.
func readLimited(r *http.Request, limit int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r.Body, N: limit}
	return io.ReadAll(lr)
}

// originAuthority extracts the Origin header's host[:port], or "" if the
// header is absent or unparseable (spec §4.11 step 3).
func originAuthority(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Host
}

// clientIP prefers X-Forwarded-For's first entry, then X-Real-Ip, then
// the connection's remote address — the raw IP is read here and nowhere
// else past the ingest orchestrator, which discards it after deriving
// the visitor ID and GeoIP lookup (spec §4.11 step 6).
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleMain(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	result, err := s.query.Main(r.Context(), siteID, period)
	if err != nil {
		writeError(w, apierr.New(apierr.StorageFailure, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	result, err := s.query.Timeseries(r.Context(), siteID, period)
	if err != nil {
		writeError(w, apierr.New(apierr.StorageFailure, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	dimension := chi.URLParam(r, "dimension")
	if !querycore.BreakdownDimensions[dimension] {
		writeError(w, apierr.New(apierr.ClientInvalid, "unknown breakdown dimension"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, apierr.New(apierr.ClientInvalid, "invalid limit"))
			return
		}
		limit = n
	}
	result, err := s.query.Breakdown(r.Context(), siteID, dimension, period, limit)
	if err != nil {
		writeError(w, apierr.New(apierr.StorageFailure, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	result, err := s.behavioral.Sessions(r.Context(), siteID, period.Start, period.End)
	if err != nil {
		writeError(w, apierr.New(apierr.ExtensionUnavailable, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFunnel(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	stepTokens := splitSteps(r.URL.Query().Get("steps"))
	if len(stepTokens) < 1 {
		writeError(w, apierr.New(apierr.ClientInvalid, "steps must have at least one entry"))
		return
	}
	if _, err := steps.ParseAll(stepTokens); err != nil {
		writeError(w, apierr.New(apierr.ClientInvalid, err.Error()))
		return
	}
	window := r.URL.Query().Get("window")
	if window == "" {
		window = "1 hour"
	}
	if !safety.IsSafeInterval(window) {
		writeError(w, apierr.New(apierr.ClientInvalid, "invalid window"))
		return
	}
	result, err := s.behavioral.Funnel(r.Context(), siteID, period.Start, period.End, stepTokens, window)
	if err != nil {
		writeError(w, apierr.New(apierr.ExtensionUnavailable, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRetention(w http.ResponseWriter, r *http.Request) {
	siteID := r.URL.Query().Get("site_id")
	if !safety.IsSafePathComponent(siteID) {
		writeError(w, apierr.New(apierr.ClientInvalid, "invalid site_id"))
		return
	}
	weeks := 12
	if v := r.URL.Query().Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, apierr.New(apierr.ClientInvalid, "invalid weeks"))
			return
		}
		weeks = n
	}
	if !s.auth.Authorize(r, siteID) {
		writeError(w, apierr.New(apierr.OriginDenied, "not authorized for this site"))
		return
	}
	result, err := s.behavioral.Retention(r.Context(), siteID, weeks)
	if err != nil {
		writeError(w, apierr.New(apierr.ClientInvalid, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSequences(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	stepTokens := splitSteps(r.URL.Query().Get("steps"))
	if len(stepTokens) < 2 {
		writeError(w, apierr.New(apierr.ClientInvalid, "steps must have at least two entries"))
		return
	}
	if _, err := steps.ParseAll(stepTokens); err != nil {
		writeError(w, apierr.New(apierr.ClientInvalid, err.Error()))
		return
	}
	result, err := s.behavioral.Sequences(r.Context(), siteID, period.Start, period.End, stepTokens)
	if err != nil {
		writeError(w, apierr.New(apierr.ExtensionUnavailable, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	page := r.URL.Query().Get("page")
	if page == "" {
		writeError(w, apierr.New(apierr.ClientInvalid, "page is required"))
		return
	}
	result, err := s.behavioral.Flow(r.Context(), siteID, period.Start, period.End, page)
	if err != nil {
		writeError(w, apierr.New(apierr.ExtensionUnavailable, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	siteID, period, apiErr := s.statsParams(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	rows, err := s.query.Export(r.Context(), siteID, period)
	if err != nil {
		writeError(w, apierr.New(apierr.StorageFailure, err.Error()))
		return
	}
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		querycore.WriteCSV(w, rows)
	case "json":
		writeJSON(w, http.StatusOK, rows)
	default:
		writeError(w, apierr.New(apierr.ClientInvalid, "format must be csv or json"))
	}
}

// statsParams extracts and validates the common site_id/period/auth gate
// shared by every stats endpoint (spec §6.2).
func (s *Server) statsParams(r *http.Request) (string, querycore.Range, *apierr.Error) {
	siteID := r.URL.Query().Get("site_id")
	if !safety.IsSafePathComponent(siteID) {
		return "", querycore.Range{}, apierr.New(apierr.ClientInvalid, "invalid site_id")
	}
	if !s.auth.Authorize(r, siteID) {
		return "", querycore.Range{}, apierr.New(apierr.OriginDenied, "not authorized for this site")
	}
	q := r.URL.Query()
	period, err := querycore.NormalizePeriod(q.Get("period"), q.Get("start_date"), q.Get("end_date"), time.Now())
	if err != nil {
		return "", querycore.Range{}, apierr.New(apierr.ClientInvalid, err.Error())
	}
	return siteID, period, nil
}

func splitSteps(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Error().Err(err).Msg("httpapi: failed to encode response body")
	}
}

type apiErrorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, apiErr *apierr.Error) {
	writeJSON(w, apiErr.StatusCode(), apiErrorBody{Error: apiErr.Error()})
}
