package llm

import (
	"context"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"opentrade/internal/errors"
)

// OpenAIClient implements Client using the OpenAI chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	configured  bool
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey, model string, temperature float64) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: float32(temperature),
		configured:  apiKey != "",
	}
}

// Generate sends the prompt to the chat completions endpoint.
func (c *OpenAIClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if !c.configured {
		return "", errors.NewPermanent("openai", errors.ErrAuthFailed)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleSystem, Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewTransient("openai", errors.ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// Available reports whether an API key is configured.
func (c *OpenAIClient) Available(ctx context.Context) bool {
	return c.configured
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return errors.NewPermanent("openai", err)
		case http.StatusBadRequest:
			return errors.NewPermanent("openai", err)
		}
		// 429 and 5xx are worth another attempt.
		return errors.NewTransient("openai", err)
	}
	return errors.NewTransient("openai", err)
}
