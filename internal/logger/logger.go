package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type ctxKey struct{}

var base = build(os.Stdout)

func build(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if os.Getenv("LOG_FORMAT") != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// New returns the process logger
func New() zerolog.Logger {
	return base
}

// NewWithWriter returns a JSON logger writing to w, mostly for tests
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Component tags the process logger with a component name
func Component(name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

// WithContext stores l in ctx
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or the process logger if none was stored
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return base
}

// RequestLogger attaches a logger carrying the chi request id to each request
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := base.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Logger()
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), l)))
	})
}
