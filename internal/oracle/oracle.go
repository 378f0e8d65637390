// Package oracle wraps hosted text and vision completion services behind a
// single Completer interface.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/spenly/backend/internal/config"
)

// ErrEmptyResponse is returned when the service answers with no text
var ErrEmptyResponse = errors.New("empty response from completion service")

// Image is inline binary content sent alongside a prompt
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is one completion call
type Request struct {
	System      string
	Prompt      string
	Image       *Image
	Temperature float64
	MaxTokens   int
	// JSON asks the service for a JSON-only answer where supported
	JSON bool
}

// Completer turns a prompt (and optional image) into text
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// New builds the completer selected by cfg.Provider
func New(ctx context.Context, cfg *config.AIConfig) (Completer, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGemini(ctx, cfg.APIKey, cfg.Model)
	case "anthropic", "claude":
		return NewAnthropic(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
