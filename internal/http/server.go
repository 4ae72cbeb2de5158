// Package http exposes the analyzer as a JSON API: upload a
// contracheque, inspect the extracted items, filter them against the
// rubric vocabulary and download the final indébito report.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"contracheques/internal/core"
	applog "contracheques/internal/log"
	"contracheques/internal/normalize"
	"contracheques/internal/rubricas"
	"contracheques/internal/session"
)

// Analyzer is the pipeline the handlers drive. Satisfied by
// services.AnalysisService.
type Analyzer interface {
	Analyze(ctx context.Context, pdfData []byte) (core.Statement, []normalize.TableResult, error)
	Filter(stmt core.Statement, threshold int) ([]core.LineItem, []rubricas.MatchResult)
	BuildReport(matched []core.LineItem, selected []string, receivedRaw string) ([]core.FinalLineItem, error)
	PublishCompleted(ctx context.Context, sessionID string, stmt core.Statement, report []core.FinalLineItem, threshold int)
}

type Server struct {
	http.Server
	analyzer         Analyzer
	sessions         session.Store
	rateLimiter      *rateLimiter
	defaultThreshold int
	maxUploadBytes   int64
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run http.Server.
func NewServer(addr string, analyzer Analyzer, sessions session.Store, defaultThreshold int, maxUploadBytes int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		analyzer:         analyzer,
		sessions:         sessions,
		rateLimiter:      newRateLimiter(),
		defaultThreshold: defaultThreshold,
		maxUploadBytes:   maxUploadBytes,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/statements", s.withSecurityHeaders(s.handleCreateStatement))
	mux.HandleFunc("GET /api/statements/{id}", s.withSecurityHeaders(s.handleGetStatement))
	mux.HandleFunc("POST /api/statements/{id}/filter", s.withSecurityHeaders(s.handleFilter))
	mux.HandleFunc("POST /api/statements/{id}/report", s.withSecurityHeaders(s.handleBuildReport))
	mux.HandleFunc("GET /api/statements/{id}/report.pdf", s.withSecurityHeaders(s.handleReportPDF))
	mux.HandleFunc("GET /api/statements/{id}/report.xlsx", s.withSecurityHeaders(s.handleReportXLSX))
	mux.HandleFunc("GET /api/statements/{id}/raw.pdf", s.withSecurityHeaders(s.handleRawTablesPDF))

	// Request-scoped logger carrying the http component.
	logger := applog.New(applog.Config{Component: applog.ComponentHTTP})
	s.Server.Handler = applog.Middleware(logger)(mux)

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Uploads and report builds are the expensive operations.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
