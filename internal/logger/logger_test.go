package logger

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithWriter(buf)

	l.Info().Str("component", "test").Msg("hello")

	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestFromContext(t *testing.T) {
	t.Run("stored logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		ctx := WithContext(context.Background(), NewWithWriter(buf))

		l := FromContext(ctx)
		l.Warn().Msg("stored")

		assert.Contains(t, buf.String(), "stored")
	})

	t.Run("falls back to process logger", func(t *testing.T) {
		l := FromContext(context.Background())
		assert.Equal(t, New().GetLevel(), l.GetLevel())
	})
}

func TestRequestLogger(t *testing.T) {
	var sawLogger bool
	h := middleware.RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawLogger = r.Context().Value(ctxKey{}).(zerolog.Logger)
		w.WriteHeader(http.StatusNoContent)
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.True(t, sawLogger)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
