package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"opentrade/internal/errors"
)

// LMStudioClient implements Client against LM Studio's OpenAI-compatible
// local server.
type LMStudioClient struct {
	client      *resty.Client
	baseURL     string
	model       string
	temperature float64
}

// NewLMStudioClient creates a new LM Studio client.
func NewLMStudioClient(baseURL, model string, temperature float64) *LMStudioClient {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(120 * time.Second)
	return &LMStudioClient{
		client:      client,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate calls the /chat/completions endpoint.
func (c *LMStudioClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	var out chatCompletionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(chatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", errors.NewTransient("lmstudio", fmt.Errorf("cannot reach lm studio at %s: %w", c.baseURL, err))
	}
	if resp.IsError() {
		return "", classifyHTTPStatus("lmstudio", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 {
		return "", errors.NewTransient("lmstudio", errors.ErrEmptyResponse)
	}
	return out.Choices[0].Message.Content, nil
}

// Available checks the models endpoint.
func (c *LMStudioClient) Available(ctx context.Context) bool {
	resp, err := c.client.R().SetContext(ctx).Get("/models")
	return err == nil && resp.StatusCode() == http.StatusOK
}
