package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reelchain/internal/logging"
	"reelchain/internal/metrics"
	"reelchain/internal/puzzle"
	"reelchain/internal/services"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// PuzzleService is the subset of api.PuzzleService the HTTP layer uses.
type PuzzleService interface {
	Generate(ctx context.Context) (*puzzle.Puzzle, error)
	List(ctx context.Context) ([]puzzle.Summary, error)
	Latest(ctx context.Context) (*puzzle.Puzzle, error)
	Get(ctx context.Context, id int64) (*puzzle.Puzzle, error)
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// GeneratePerMinute limits generate calls per client IP. Zero disables the limit.
	GeneratePerMinute int
	CORSOrigins       []string
	Logger            *slog.Logger
}

// NewRouter builds the HTTP handler for the puzzle API.
func NewRouter(svc PuzzleService, opts RouterOptions) http.Handler {
	logger := logging.NewComponentLogger(opts.Logger, "api-server")
	h := &handlers{svc: svc, logger: logger}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(requestLogger(logger))

	limitGenerate := func(next http.Handler) http.Handler { return next }
	if opts.GeneratePerMinute > 0 {
		limitGenerate = httprate.LimitByIP(opts.GeneratePerMinute, time.Minute)
	}

	r.Get("/api/health", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/puzzles", func(r chi.Router) {
		r.Get("/", h.list)
		r.With(limitGenerate).Post("/generate", h.generate)
		r.With(limitGenerate).Get("/generate", h.generate)
		r.Get("/latest", h.latest)
		r.Get("/{id}", h.get)
	})
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			metrics.RecordAPIRequest(route, status)

			attrs := []logging.Attr{
				logging.String(logging.FieldEventType, "api_request"),
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", status),
				logging.Duration("elapsed", time.Since(start)),
			}
			reqLogger := logging.WithContext(r.Context(), logger)
			if status >= http.StatusInternalServerError {
				attrs = append(attrs,
					logging.String(logging.FieldErrorHint, "see the api_request_failed entry for this request id"),
					logging.String(logging.FieldImpact, "client received a server error"),
				)
				logging.WarnWithContext(reqLogger, "http request", "api_request", attrs...)
				return
			}
			reqLogger.Debug("http request", logging.Args(attrs...)...)
		})
	}
}
