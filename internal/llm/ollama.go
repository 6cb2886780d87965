package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"opentrade/internal/errors"
)

// OllamaClient implements Client against a local Ollama server.
type OllamaClient struct {
	client      *resty.Client
	baseURL     string
	model       string
	temperature float64
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(baseURL, model string, temperature float64) *OllamaClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(120 * time.Second)
	return &OllamaClient{
		client:      client,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
	}
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate calls Ollama's /api/generate endpoint.
func (c *OllamaClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var out ollamaGenerateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(ollamaGenerateRequest{
			Model:   c.model,
			Prompt:  prompt,
			System:  systemPrompt,
			Stream:  false,
			Options: map[string]any{"temperature": c.temperature},
		}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		return "", errors.NewTransient("ollama", fmt.Errorf("cannot reach ollama at %s: %w", c.baseURL, err))
	}
	if resp.IsError() {
		return "", classifyHTTPStatus("ollama", resp.StatusCode(), resp.String())
	}
	if out.Response == "" {
		return "", errors.NewTransient("ollama", errors.ErrEmptyResponse)
	}
	return out.Response, nil
}

// Available checks the Ollama tags endpoint.
func (c *OllamaClient) Available(ctx context.Context) bool {
	resp, err := c.client.R().SetContext(ctx).Get("/api/tags")
	return err == nil && resp.StatusCode() == http.StatusOK
}

func classifyHTTPStatus(op string, status int, body string) error {
	err := fmt.Errorf("HTTP %d: %s", status, body)
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		status == http.StatusNotFound, status == http.StatusBadRequest:
		return errors.NewPermanent(op, err)
	default:
		return errors.NewTransient(op, err)
	}
}
