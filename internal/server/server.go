package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/jonathan/institute-portal/docs"
	"github.com/jonathan/institute-portal/internal/admission"
	"github.com/jonathan/institute-portal/internal/assist"
	"github.com/jonathan/institute-portal/internal/catalog"
	"github.com/jonathan/institute-portal/internal/chat"
	"github.com/jonathan/institute-portal/internal/enrollment"
	"github.com/jonathan/institute-portal/internal/payment"
	"github.com/jonathan/institute-portal/internal/resume"
	"github.com/jonathan/institute-portal/internal/server/middleware"
	"github.com/jonathan/institute-portal/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	router          *mux.Router
	logger          logrus.FieldLogger
	rateLimiter     *ratelimit.Limiter
	allowedOrigins  []string
	shutdownTimeout time.Duration
	auth            middleware.TokenValidator
	currency        string

	chat       *chat.Service
	resumes    *resume.Service
	courses    *catalog.Catalog
	enrollment *enrollment.Service
	payments   *payment.Service
	admissions *admission.Service
	assist     *assist.Service
}

// Config holds server configuration. A nil Auth disables authenticated routes.
type Config struct {
	Port            int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	RateLimit       ratelimit.Config
	Auth            middleware.TokenValidator
	Currency        string
	Logger          logrus.FieldLogger
}

// Services are the domain services the handlers call.
type Services struct {
	Chat       *chat.Service
	Resumes    *resume.Service
	Courses    *catalog.Catalog
	Enrollment *enrollment.Service
	Payments   *payment.Service
	Admissions *admission.Service
	Assist     *assist.Service
}

// New creates a new server instance
func New(cfg Config, svc Services) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}

	s := &Server{
		logger:          logger.WithField("component", "http"),
		rateLimiter:     ratelimit.NewLimiter(cfg.RateLimit),
		allowedOrigins:  cfg.AllowedOrigins,
		shutdownTimeout: cfg.ShutdownTimeout,
		auth:            cfg.Auth,
		currency:        strings.ToUpper(cfg.Currency),
		chat:            svc.Chat,
		resumes:         svc.Resumes,
		courses:         svc.Courses,
		enrollment:      svc.Enrollment,
		payments:        svc.Payments,
		admissions:      svc.Admissions,
		assist:          svc.Assist,
	}
	s.router = s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // PDF export drives a headless browser
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.errorResponse(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL(docs.SwaggerInfo.BasePath + "swagger/doc.json"),
	))
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Chatbot
	r.HandleFunc("/chat/sessions", s.handleStartChat).Methods(http.MethodPost)
	r.HandleFunc("/chat/sessions/{id}", s.handleGetChat).Methods(http.MethodGet)
	r.HandleFunc("/chat/sessions/{id}/open", s.handleOpenChat).Methods(http.MethodPost)
	r.HandleFunc("/chat/sessions/{id}/questions", s.handleSelectQuestion).Methods(http.MethodPost)
	r.HandleFunc("/chat/sessions/{id}/messages", s.handleSubmitMessage).Methods(http.MethodPost)
	r.HandleFunc("/chat/sessions/{id}/back", s.handleGoBack).Methods(http.MethodPost)
	r.HandleFunc("/chat/sessions/{id}/prompts/next", s.handleNextPrompts).Methods(http.MethodPost)

	// Résumé composer
	r.HandleFunc("/resume-templates", s.handleListTemplates).Methods(http.MethodGet)
	r.HandleFunc("/resumes", s.handleCreateResume).Methods(http.MethodPost)
	r.HandleFunc("/resumes/{id}", s.handleGetResume).Methods(http.MethodGet)
	r.HandleFunc("/resumes/{id}/document", s.handleReplaceDocument).Methods(http.MethodPut)
	r.HandleFunc("/resumes/{id}/sections/{section}/entries", s.handleAppendEntry).Methods(http.MethodPost)
	r.HandleFunc("/resumes/{id}/sections/{section}/entries/{index:[0-9]+}", s.handleRemoveEntry).Methods(http.MethodDelete)
	r.HandleFunc("/resumes/{id}/step", s.handleSetStep).Methods(http.MethodPut)
	r.HandleFunc("/resumes/{id}/progress", s.handleProgress).Methods(http.MethodGet)
	r.HandleFunc("/resumes/{id}/template", s.handleSelectTemplate).Methods(http.MethodPut)
	r.HandleFunc("/resumes/{id}/view", s.handleResumeView).Methods(http.MethodGet)
	r.HandleFunc("/resumes/{id}/preview", s.handleResumePreview).Methods(http.MethodGet)
	r.HandleFunc("/resumes/{id}/generate", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/resumes/{id}/assist/summary", s.handleDraftSummary).Methods(http.MethodPost)

	// Courses and enrollment
	r.HandleFunc("/courses", s.handleListCourses).Methods(http.MethodGet)
	r.HandleFunc("/courses/{id}", s.handleGetCourse).Methods(http.MethodGet)
	r.Handle("/session", middleware.OptionalAuth(s.auth)(http.HandlerFunc(s.handleSession))).Methods(http.MethodGet)

	requireAuth := middleware.RequireAuth(s.auth)
	r.Handle("/courses/{id}/enroll", requireAuth(http.HandlerFunc(s.handleEnroll))).Methods(http.MethodPost)
	r.Handle("/payments/orders", requireAuth(http.HandlerFunc(s.handleCreateOrder))).Methods(http.MethodPost)
	r.Handle("/payments/orders/{id}", requireAuth(http.HandlerFunc(s.handleGetOrder))).Methods(http.MethodGet)
	r.Handle("/payments/orders/{id}/success", requireAuth(http.HandlerFunc(s.handlePaymentSuccess))).Methods(http.MethodPost)
	r.Handle("/payments/orders/{id}/failure", requireAuth(http.HandlerFunc(s.handlePaymentFailure))).Methods(http.MethodPost)

	// Admissions
	r.HandleFunc("/admissions", s.handleSubmitAdmission).Methods(http.MethodPost)

	return r
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.withRateLimit(s.withLogging(s.withCORS(s.router)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	defer s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Close stops background work without serving. Used when the server was never run.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	if len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*") {
		return "*"
	}
	if slices.Contains(s.allowedOrigins, origin) {
		return origin
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		switch {
		case rec.status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case rec.status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	})
}

// handleHealth returns server health status
//
//	@Summary	Health check
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorBody{Error: message})
}

// handleError maps err to a status and writes it. Server-side failures are logged with the
// cause and answered with a generic message.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("handler error")
	}
	s.jsonResponse(w, status, errorBody(err, status))
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

// clientID extracts the client identifier from the request. Only RemoteAddr is trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.WithFields(logrus.Fields{
		"client": clientID(r),
		"path":   r.URL.Path,
		"limit":  info.Limit,
	}).Warn("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
