// Package http serves the dashboard's JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/LukasAlexandre/Finance-Hub/internal/cache"
	"github.com/LukasAlexandre/Finance-Hub/internal/services"
	"github.com/LukasAlexandre/Finance-Hub/internal/storage"
)

type Server struct {
	http.Server
	jwtSecret   string
	repo        *storage.SQLiteRepository
	txService   *services.TransactionService
	assets      *services.AssetService
	reports     *reportHandlers
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// publicRoutes need no session token.
var publicRoutes = map[string]bool{
	"/api/auth/register": true,
	"/api/auth/login":    true,
	"/api/quote":         true,
	"/healthz":           true,
	"/readyz":            true,
}

// NewServer wires routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr, jwtSecret string, repo *storage.SQLiteRepository, txService *services.TransactionService, assetService *services.AssetService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		jwtSecret:   jwtSecret,
		repo:        repo,
		txService:   txService,
		assets:      assetService,
		reports: &reportHandlers{
			txService: txService,
			assets:    assetService,
			payloads:  cache.New[[]byte](64, 30*time.Second),
		},
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.protect(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.protect(s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.protect(s.handleLogout))

	mux.HandleFunc("GET /api/accounts", s.protect(s.handleListAccounts))
	mux.HandleFunc("GET /api/transactions", s.protect(s.handleListTransactions))
	mux.HandleFunc("PUT /api/transactions/{id}/category", s.protect(s.handleRecategorize))
	mux.HandleFunc("POST /api/transactions/sync", s.protect(s.handleSync))

	mux.HandleFunc("GET /api/assets", s.protect(s.handleListAssets))
	mux.HandleFunc("POST /api/assets", s.protect(s.handleCreateAsset))
	mux.HandleFunc("DELETE /api/assets/{id}", s.protect(s.handleDeleteAsset))
	mux.HandleFunc("POST /api/assets/refresh", s.protect(s.handleRefreshPrices))
	mux.HandleFunc("GET /api/investments", s.protect(s.handleListInvestments))
	mux.HandleFunc("GET /api/quote", s.protect(s.handleQuote))

	mux.HandleFunc("GET /api/categories", s.protect(s.reports.cached(s.reports.handleListCategories)))
	mux.HandleFunc("GET /api/reports/daily", s.protect(s.reports.cached(s.reports.handleDaily)))
	mux.HandleFunc("GET /api/reports/monthly", s.protect(s.reports.cached(s.reports.handleMonthly)))
	mux.HandleFunc("GET /api/reports/balance-evolution", s.protect(s.reports.cached(s.reports.handleBalanceEvolution)))
	mux.HandleFunc("GET /api/reports/categories", s.protect(s.reports.cached(s.reports.handleCategoryBreakdown)))
	mux.HandleFunc("GET /api/portfolio/allocation", s.protect(s.reports.cached(s.reports.handleAllocation)))
	mux.HandleFunc("GET /api/portfolio/history", s.protect(s.reports.cached(s.reports.handleHistory)))

	return s
}

// protect chains the standard middleware: security headers, rate
// limiting, request logging, and session auth for non-public routes.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		if !publicRoutes[r.URL.Path] {
			claims, err := s.authenticate(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			ctx = context.WithValue(ctx, userClaimsKey{}, claims)
			r = r.WithContext(ctx)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		if isMutation(r.Method) && rw.statusCode < 400 {
			s.reports.invalidate()
		}

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

type requestIDKey struct{}
type userClaimsKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// Shutdown stops the rate limiter cleanup goroutine and then the HTTP
// server.
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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
