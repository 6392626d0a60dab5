package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openAIBaseURL             = "https://api.openai.com/v1"
	openAICompletionsEndpoint = "/chat/completions"
)

// ChatMessage is one turn of generator input. Role is one of system,
// assistant, user.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient is the question/answer generator contract. Every call site must
// treat a returned error as "generator unavailable" and fall back
// deterministically.
type ChatClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type openAIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAIClient returns a ChatClient backed by the OpenAI chat completions
// API. The HTTP client timeout bounds every call.
func NewOpenAIClient(apiKey, model string, timeout time.Duration) ChatClient {
	return &openAIClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: openAIBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (c *openAIClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("missing OpenAI API key")
	}

	requestBody := map[string]interface{}{
		"model":    c.model,
		"messages": messages,
	}
	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+openAICompletionsEndpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ErrGeneratorDisabled is what the disabled client always returns; every
// caller then takes its deterministic fallback path.
var ErrGeneratorDisabled = errors.New("generator disabled")

type disabledChatClient struct{}

// NewDisabledChatClient returns a ChatClient for MOCK_AI runs. It never calls
// out; callers exercise the same fallback paths they use on real outages.
func NewDisabledChatClient() ChatClient {
	return disabledChatClient{}
}

func (disabledChatClient) Complete(context.Context, []ChatMessage) (string, error) {
	return "", ErrGeneratorDisabled
}
