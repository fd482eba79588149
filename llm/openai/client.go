// Package openai provides planner and editor adapters backed by the
// OpenAI chat completion API.
package openai

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/redgreen"
	"github.com/m-mizutani/redgreen/llm"
	"github.com/sashabaranov/go-openai"
)

// Client implements redgreen.Planner and redgreen.Editor on the OpenAI API.
type Client struct {
	client       *openai.Client
	defaultModel string
	temperature  float32
}

type Option func(*Client)

// WithDefaultModel sets the model used for plan and edit completions.
func WithDefaultModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the sampling temperature. Default: 0.2, planning
// and editing want focused output.
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = temp
	}
}

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.Wrap(redgreen.ErrValidation, "API key is required")
	}

	client := &Client{
		defaultModel: openai.GPT4oMini,
		temperature:  0.2,
	}

	for _, option := range options {
		option(client)
	}

	client.client = openai.NewClient(apiKey)

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

	text, err := c.complete(ctx, rendered, true)
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

	text, err := c.complete(ctx, rendered, false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate edit", goerr.V("project_id", projectID))
	}

	return llm.ParseEditResult(text), nil
}

func (c *Client) complete(ctx context.Context, prompt string, jsonOnly bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.defaultModel,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	if jsonOnly {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion")
	}

	if len(resp.Choices) == 0 {
		return "", goerr.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
