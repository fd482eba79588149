// Package claude provides planner and editor adapters backed by
// Anthropic's Claude models.
package claude

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/redgreen"
	"github.com/m-mizutani/redgreen/llm"
)

// Client implements redgreen.Planner and redgreen.Editor on the Claude API.
type Client struct {
	// client is the underlying Claude client.
	client *anthropic.Client

	// defaultModel is the model to use for plan and edit messages.
	// It can be overridden using WithModel option.
	defaultModel string

	// generation parameters
	temperature float64
	maxTokens   int64
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model used for plan and edit messages.
// The model name should be a valid Claude model identifier.
// Default: anthropic.ModelClaude3_5SonnetLatest
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 1.0
// Default: 0.2
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: 4096
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// New creates a new client for the Claude API.
// It requires an API key and can be configured with additional options.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.Wrap(redgreen.ErrValidation, "API key is required")
	}

	client := &Client{
		defaultModel: anthropic.ModelClaude3_5SonnetLatest,
		temperature:  0.2,
		maxTokens:    4096,
	}

	for _, option := range options {
		option(client)
	}

	newClient := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	client.client = &newClient

	return client, nil
}

var (
	_ redgreen.Planner = (*Client)(nil)
	_ redgreen.Editor  = (*Client)(nil)
)

// Plan generates a branch plan for the given goal.
func (c *Client) Plan(ctx context.Context, projectID, prompt string) (*redgreen.Plan, error) {
	rendered, err := llm.PlanPrompt(prompt)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, rendered)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate plan", goerr.V("project_id", projectID))
	}

	return llm.ParsePlan(text)
}

// Edit applies an engine instruction and reports the edit log.
func (c *Client) Edit(ctx context.Context, projectID, prompt string) (*redgreen.EditResult, error) {
	rendered, err := llm.EditPrompt(prompt)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, rendered)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate edit", goerr.V("project_id", projectID))
	}

	return llm.ParseEditResult(text), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.defaultModel,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create message")
	}

	var texts []string
	for _, content := range resp.Content {
		textBlock := content.AsResponseTextBlock()
		if textBlock.Type == "text" {
			texts = append(texts, textBlock.Text)
		}
	}

	if len(texts) == 0 {
		return "", goerr.New("no text content returned")
	}

	return strings.Join(texts, "\n"), nil
}
