// Package mcpedit provides an editor adapter that drives a code-editing
// agent exposed as a tool on an MCP server, over stdio or HTTP SSE.
package mcpedit

import (
	"context"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/redgreen"
	"github.com/m-mizutani/redgreen/llm"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultToolName is the tool invoked on the MCP server for each edit.
const DefaultToolName = "edit_project"

// Client implements redgreen.Editor by calling a tool on an MCP server.
type Client struct {
	// For local MCP server
	path    string
	args    []string
	envVars []string

	// For remote MCP server
	baseURL string
	headers map[string]string

	toolName string

	// Common client
	client     *client.Client
	initResult *mcp.InitializeResult

	initMutex sync.Mutex
}

var _ redgreen.Editor = (*Client)(nil)

// StdioOption is the option for a local MCP executable server via stdio.
type StdioOption func(*Client)

// WithEnvVars sets the environment variables for the MCP server process.
// It appends to the existing ones.
func WithEnvVars(envVars []string) StdioOption {
	return func(c *Client) {
		c.envVars = append(c.envVars, envVars...)
	}
}

// WithStdioTool overrides the tool name called for each edit.
func WithStdioTool(name string) StdioOption {
	return func(c *Client) {
		c.toolName = name
	}
}

// SSEOption is the option for a remote MCP server via HTTP SSE.
type SSEOption func(*Client)

// WithHeaders sets the headers for the MCP client. It replaces the
// existing headers setting.
func WithHeaders(headers map[string]string) SSEOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithSSETool overrides the tool name called for each edit.
func WithSSETool(name string) SSEOption {
	return func(c *Client) {
		c.toolName = name
	}
}

// NewStdio creates an editor backed by a local MCP server executable.
func NewStdio(path string, args []string, options ...StdioOption) *Client {
	c := &Client{
		path:     path,
		args:     args,
		toolName: DefaultToolName,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// NewSSE creates an editor backed by a remote MCP server.
func NewSSE(baseURL string, options ...SSEOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		toolName: DefaultToolName,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) start(ctx context.Context) error {
	c.initMutex.Lock()
	defer c.initMutex.Unlock()

	if c.initResult != nil {
		return nil
	}

	var tp transport.Interface
	if c.path != "" {
		tp = transport.NewStdio(c.path, c.envVars, c.args...)
	}

	if c.baseURL != "" {
		sse, err := transport.NewSSE(c.baseURL, transport.WithHeaders(c.headers))
		if err != nil {
			return goerr.Wrap(err, "failed to create SSE transport")
		}
		tp = sse
	}

	if tp == nil {
		return goerr.New("no transport")
	}

	c.client = client.NewClient(tp)

	if err := c.client.Start(ctx); err != nil {
		return goerr.Wrap(err, "failed to start MCP client")
	}

	var initRequest mcp.InitializeRequest
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "redgreen",
		Version: "0.0.1",
	}

	resp, err := c.client.Initialize(ctx, initRequest)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize MCP client")
	}
	c.initResult = resp

	return nil
}

// Edit calls the configured tool with the project ID and instruction, and
// decodes the returned text as an edit log.
func (c *Client) Edit(ctx context.Context, projectID, prompt string) (*redgreen.EditResult, error) {
	if err := c.start(ctx); err != nil {
		return nil, err
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = c.toolName
	req.Params.Arguments = map[string]any{
		"project_id": projectID,
		"prompt":     prompt,
	}

	resp, err := c.client.CallTool(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call edit tool", goerr.V("tool", c.toolName))
	}

	text := contentText(resp.Content)
	if resp.IsError {
		return nil, goerr.New("edit tool reported an error", goerr.V("tool", c.toolName), goerr.V("output", text))
	}

	return llm.ParseEditResult(text), nil
}

// Close shuts down the MCP client and the server process if local.
func (c *Client) Close() error {
	c.initMutex.Lock()
	defer c.initMutex.Unlock()

	if c.client == nil {
		return nil
	}
	if err := c.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close MCP client")
	}
	c.client = nil
	c.initResult = nil
	return nil
}

func contentText(contents []mcp.Content) string {
	var parts []string
	for _, content := range contents {
		if txt, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, txt.Text)
		}
	}
	return strings.Join(parts, "\n")
}
