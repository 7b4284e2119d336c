package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// OpenAICompleter talks to OpenAI or any OpenAI-compatible endpoint (DeepSeek).
type OpenAICompleter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAICompleter builds a chat completion client. An empty baseURL uses OpenAI.
func NewOpenAICompleter(apiKey, baseURL, model string, logger *zap.Logger) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.Named("openai"),
	}
}

// Complete sends a system and user message and returns the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	c.logger.Debug("completion finished",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}

// AnthropicCompleter talks to the Anthropic Messages API.
type AnthropicCompleter struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicCompleter builds a Messages API client.
func NewAnthropicCompleter(apiKey, model string, logger *zap.Logger) *AnthropicCompleter {
	return &AnthropicCompleter{
		client: anthropic.NewClient(apiKey),
		model:  model,
		logger: logger.Named("anthropic"),
	}
}

// Complete sends one user turn with a system prompt and returns the first text block.
func (c *AnthropicCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    system,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", errors.New("anthropic response has no text block")
}

// GeminiCompleter talks to the Gemini API through google.golang.org/genai.
type GeminiCompleter struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiCompleter builds a Gemini API client.
func NewGeminiCompleter(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model, logger: logger.Named("gemini")}, nil
}

// Complete generates content and concatenates the textual parts of all candidates.
func (c *GeminiCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(part.Text)
		}
	}
	out := strings.TrimSpace(builder.String())
	if out == "" {
		return "", errors.New("gemini returned empty response")
	}
	return out, nil
}
