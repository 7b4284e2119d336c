// Package ai wraps language model providers behind a single Completer and
// builds the marketplace collaborators on top of it: contact enrichment,
// search intent parsing, industry classification and introduction messages.
// Every collaborator degrades to a deterministic fallback instead of failing.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/config"
)

// Completer sends one system+user prompt pair and returns the raw text reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

const (
	deepseekBaseURL  = "https://api.deepseek.com/v1"
	defaultMaxTokens = 1024
)

// NewCompleter builds the provider selected by cfg. It returns nil, nil when no
// API key is configured, in which case collaborators use their fallbacks.
func NewCompleter(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("no AI_API_KEY configured, collaborators will use local fallbacks")
		return nil, nil
	}

	var (
		completer Completer
		err       error
	)
	switch cfg.Provider {
	case "openai":
		completer = NewOpenAICompleter(cfg.APIKey, cfg.BaseURL, orDefault(cfg.Model, "gpt-4o-mini"), logger)
	case "deepseek":
		completer = NewOpenAICompleter(cfg.APIKey, orDefault(cfg.BaseURL, deepseekBaseURL), orDefault(cfg.Model, "deepseek-chat"), logger)
	case "anthropic":
		completer = NewAnthropicCompleter(cfg.APIKey, orDefault(cfg.Model, "claude-3-5-haiku-latest"), logger)
	case "gemini":
		completer, err = NewGeminiCompleter(ctx, cfg.APIKey, orDefault(cfg.Model, "gemini-2.5-flash"), logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
	return WithTimeout(completer, cfg.Timeout), nil
}

// WithTimeout bounds every call of c. A non-positive timeout returns c unchanged.
func WithTimeout(c Completer, timeout time.Duration) Completer {
	if c == nil || timeout <= 0 {
		return c
	}
	return CompleterFunc(func(ctx context.Context, system, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return c.Complete(ctx, system, prompt)
	})
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
