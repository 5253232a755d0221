package provider

import (
	"context"
	"fmt"
	"strings"
)

// Completer wraps an LLMProvider to collect streamed text into a single string.
type Completer struct {
	provider    LLMProvider
	model       string
	maxTokens   int
	temperature *float64
}

// NewCompleter creates a new Completer. A zero maxTokens uses 4096.
func NewCompleter(p LLMProvider, model string, maxTokens int) *Completer {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Completer{provider: p, model: model, maxTokens: maxTokens}
}

// WithTemperature sets the sampling temperature.
func (c *Completer) WithTemperature(t float64) *Completer {
	c.temperature = &t
	return c
}

// Complete sends a prompt to the LLM and returns the full response text.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	req := CompletionRequest{
		Model:       c.model,
		Messages:    []Message{NewUserMessage(prompt)},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	ch, err := c.provider.Stream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	var parts []string
	for evt := range ch {
		switch evt.Type {
		case EventText:
			parts = append(parts, evt.Text)
		case EventError:
			go func() {
				for range ch {
				}
			}()
			return "", fmt.Errorf("llm stream error: %w", evt.Error)
		}
	}

	return strings.Join(parts, ""), nil
}
