package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const defaultMaxRetries = 3

var kindSystemPrompts = map[Kind]string{
	KindExplanation: "You are a teaching assistant. Explain the concept clearly and concisely for a university student.",
	KindTheory:      "You are a teaching assistant. Answer with rigorous theory, definitions and derivations.",
	KindLab:         "You are a teaching assistant. Give practical, hands-on guidance with concrete steps and code where useful.",
}

// OpenAIClient generates replies through any OpenAI-compatible chat
// completion API.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// NewOpenAIClient builds a client against an OpenAI-compatible endpoint.
// baseURL may be empty to use the public API.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		maxRetries: defaultMaxRetries,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, request *Request) (*Result, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPromptFor(request.Kind)},
	}
	if len(request.Context) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Recent conversation:\n" + strings.Join(request.Context, "\n"),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: request.Prompt,
	})

	var result string
	err := c.doWithRetry(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete generation: %w", err)
	}

	return &Result{Content: result}, nil
}

func systemPromptFor(kind Kind) string {
	if prompt, ok := kindSystemPrompts[kind]; ok {
		return prompt
	}
	return kindSystemPrompts[KindExplanation]
}

// doWithRetry executes a function with exponential backoff retry.
func (c *OpenAIClient) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < c.maxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("generation request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
