// Package llm provides the language model capability boundary: prompt in,
// text out, with failures classified for the retry layer.
package llm

import (
	"context"

	"opentrade/internal/config"
	"opentrade/internal/errors"
)

// Client generates text from a prompt. Errors returned are RemoteErrors
// classified as transient (connection, timeout, throttling, server) or
// permanent (auth, misconfiguration) so the retry layer can decide.
type Client interface {
	// Generate produces a completion for prompt, with an optional system
	// prompt steering the model.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
	// Available reports whether the backing provider is reachable and
	// configured.
	Available(ctx context.Context) bool
}

// NewClient builds the client for the configured provider.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.Temperature), nil
	case "ollama":
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.Model, cfg.Temperature), nil
	case "lmstudio":
		return NewLMStudioClient(cfg.LMStudioBaseURL, cfg.Model, cfg.Temperature), nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownProvider, "provider %q", cfg.Provider)
}
