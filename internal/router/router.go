package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/book"
	bookrepo "github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/book/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/user"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs each request at debug level. Request bodies are never logged.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewCodec builds the token codec from the configured signing keys.
func NewCodec(cfg config.Config) (*auth.Codec, error) {
	prev := make([]auth.SigningKey, 0, len(cfg.PreviousKeys))
	for _, k := range cfg.PreviousKeys {
		prev = append(prev, auth.SigningKey{Kid: k.ID, Secret: []byte(k.Secret)})
	}
	return auth.NewCodec(auth.SigningKey{Kid: cfg.SigningKey.ID, Secret: []byte(cfg.SigningKey.Secret)}, prev)
}

// RegisterRoutes mounts the HTTP handlers on a standard library http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, cfg config.Config) (http.Handler, error) {
	codec, err := NewCodec(cfg)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	userSvc := user.NewUserService(db, nil, user.BcryptHasher{Cost: cfg.BcryptCost}, codec)
	bookSvc := book.NewService(bookrepo.NewRepo(db))
	return Mount(logger, cfg, codec, userSvc, bookSvc), nil
}

// Mount wires already constructed services into the route table.
func Mount(logger *zap.SugaredLogger, cfg config.Config, v auth.Verifier, userSvc *user.UserService, bookSvc *book.Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	limit := RateLimiter(RateLimitConfig{RequestsPerSecond: cfg.AuthRate, Burst: cfg.AuthBurst})
	gate := auth.Gate(v, logger)

	// public
	userHandler := user.NewHandler(userSvc, logger)
	mux.Handle("POST /api/users/register", limit(http.HandlerFunc(userHandler.Register)))
	mux.Handle("POST /api/auth/login", limit(http.HandlerFunc(userHandler.Login)))

	// token required
	mux.Handle("GET /api/users/{id}", gate(http.HandlerFunc(userHandler.Get)))

	bookHandler := book.NewHandler(bookSvc, logger)
	mux.Handle("POST /api/books", gate(http.HandlerFunc(bookHandler.Create)))
	mux.Handle("GET /api/books/{id}", gate(http.HandlerFunc(bookHandler.Get)))
	mux.Handle("PATCH /api/books/{id}", gate(http.HandlerFunc(bookHandler.Update)))
	mux.Handle("DELETE /api/books/{id}", gate(http.HandlerFunc(bookHandler.Delete)))

	// request id outermost so the logger sees it
	return RequestID(LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux)))
}
