package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/logging"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/server/middleware"
	"github.com/jonathan/talent-matcher/internal/server/ratelimit"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; resumes and job descriptions are plain text.
const maxBodyBytes = 5 << 20

// Service is the matching workflow the API exposes.
type Service interface {
	CreateCandidate(ctx context.Context, in matching.CreateCandidateInput) (*types.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	ListCandidates(ctx context.Context) ([]types.Candidate, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
	RegenerateCandidateProfile(ctx context.Context, id uuid.UUID) (*types.Candidate, error)

	CreateJob(ctx context.Context, in matching.CreateJobInput) (*types.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ListJobs(ctx context.Context) ([]types.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
	RegenerateJobProfile(ctx context.Context, id uuid.UUID) (*types.Job, error)

	EmbeddingStatus(ctx context.Context, target types.EmbeddingTarget) (types.EmbeddingState, error)
	GenerateEmbedding(ctx context.Context, target types.EmbeddingTarget) (types.EmbeddingState, error)
	GenerateMissingEmbeddings(ctx context.Context, kind types.ProfileKind) (matching.BatchEmbeddingResult, error)

	RunMatching(ctx context.Context, jobID uuid.UUID) (*types.RunSummary, error)
	Results(ctx context.Context, jobID uuid.UUID) ([]types.MatchResult, error)
	MatchDetail(ctx context.Context, matchID uuid.UUID) (*types.MatchDetail, error)
	UpdateStatus(ctx context.Context, matchID uuid.UUID, status string) (*types.MatchResult, error)
}

// Options configures a Server.
type Options struct {
	Config config.ServerConfig
	// JWT enables bearer authentication on every route except health and metrics.
	JWT *JWTService
	// Limiter overrides the default limiter built from Config.RateLimit.
	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
	// Ready reports dependency health for GET /health.
	Ready func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	service         Service
	log             *zap.Logger
	rateLimiter     *ratelimit.Limiter
	jwtService      *JWTService
	validate        *validator.Validate
	ready           func(ctx context.Context) error
	shutdownTimeout time.Duration
}

// New creates a new server instance
func New(service Service, opts Options) *Server {
	s := &Server{
		service:         service,
		log:             logging.OrNop(opts.Logger).Named("http"),
		rateLimiter:     opts.Limiter,
		jwtService:      opts.JWT,
		validate:        newValidator(),
		ready:           opts.Ready,
		shutdownTimeout: opts.Config.ShutdownTimeout,
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.DefaultConfig(opts.Config.RateLimit))
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 30 * time.Second
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Candidates
	s.handle(mux, "POST /candidates", s.handleCreateCandidate)
	s.handle(mux, "GET /candidates", s.handleListCandidates)
	s.handle(mux, "GET /candidates/{id}", s.handleGetCandidate)
	s.handle(mux, "DELETE /candidates/{id}", s.handleDeleteCandidate)
	s.handle(mux, "POST /candidates/{id}/profile", s.handleRegenerateCandidateProfile)
	s.handle(mux, "GET /candidates/{id}/embedding", s.embeddingStatusHandler(types.KindCandidate))
	s.handle(mux, "POST /candidates/{id}/embedding", s.generateEmbeddingHandler(types.KindCandidate))

	// Jobs
	s.handle(mux, "POST /jobs", s.handleCreateJob)
	s.handle(mux, "GET /jobs", s.handleListJobs)
	s.handle(mux, "GET /jobs/{id}", s.handleGetJob)
	s.handle(mux, "DELETE /jobs/{id}", s.handleDeleteJob)
	s.handle(mux, "POST /jobs/{id}/profile", s.handleRegenerateJobProfile)
	s.handle(mux, "GET /jobs/{id}/embedding", s.embeddingStatusHandler(types.KindJob))
	s.handle(mux, "POST /jobs/{id}/embedding", s.generateEmbeddingHandler(types.KindJob))

	// Embeddings
	s.handle(mux, "POST /embeddings/{kind}/missing", s.handleGenerateMissingEmbeddings)

	// Matching
	s.handle(mux, "POST /jobs/{id}/match", s.handleRunMatching)
	s.handle(mux, "GET /jobs/{id}/results", s.handleResults)
	s.handle(mux, "GET /matches/{id}", s.handleMatchDetail)
	s.handle(mux, "PUT /matches/{id}/status", s.handleUpdateStatus)

	handler := s.withRateLimit(s.withLogging(s.withCORS(mux)))

	s.httpServer = &http.Server{
		Addr:         opts.Config.Address(),
		Handler:      handler,
		ReadTimeout:  opts.Config.ReadTimeout,
		WriteTimeout: opts.Config.WriteTimeout,
	}

	return s
}

// handle registers an API route behind bearer authentication when enabled.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	if s.jwtService == nil {
		mux.Handle(pattern, h)
		return
	}
	mux.Handle(pattern, middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening",
			zap.String("addr", s.httpServer.Addr),
			zap.Bool("auth", s.jwtService != nil))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request and records HTTP metrics.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(r.Method, fmt.Sprintf("%d", rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr))
	})
}

// withRateLimit rejects requests over the client's limit with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID uses the IP from RemoteAddr. Forwarded headers are not
// trusted since the server may be reached without a proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	metrics.RateLimited.Inc()
	s.log.Warn("rate limit exceeded",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service error onto a response.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	s.errorResponse(w, status, clientMessage(status, err))
}

// decode reads a JSON body into dst and validates its struct tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: "request body too large"}
		}
		return &ErrValidation{Field: "body", Message: "invalid request body"}
	}

	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func fieldError(fe validator.FieldError) *ErrValidation {
	switch fe.Tag() {
	case "required":
		return &ErrValidation{Field: fe.Field(), Message: "is required"}
	case "oneof":
		return &ErrValidation{Field: fe.Field(), Message: "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")}
	case "max":
		return &ErrValidation{Field: fe.Field(), Message: "must be at most " + fe.Param() + " characters"}
	default:
		return &ErrValidation{Field: fe.Field(), Message: "failed " + fe.Tag() + " validation"}
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// pathID parses the {id} path value.
func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid " + resource + " ID"}
	}
	return id, nil
}
