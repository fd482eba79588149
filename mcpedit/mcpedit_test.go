package mcpedit_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/redgreen/mcpedit"
	"github.com/mark3labs/mcp-go/mcp"
)

func TestStdioEdit(t *testing.T) {
	mcpExecPath, ok := os.LookupEnv("TEST_MCP_EXEC_PATH")
	if !ok {
		t.Skip("TEST_MCP_EXEC_PATH is not set")
	}

	editor := mcpedit.NewStdio(mcpExecPath, nil)
	defer func() {
		gt.NoError(t, editor.Close())
	}()

	result, err := editor.Edit(context.Background(), "1", "rename the helper function")
	gt.NoError(t, err)
	gt.Value(t, result).NotNil()
}

func TestContentText(t *testing.T) {
	t.Run("joins text blocks", func(t *testing.T) {
		text := mcpedit.ContentText([]mcp.Content{
			&mcp.TextContent{Type: "text", Text: "first"},
			&mcp.TextContent{Type: "text", Text: "second"},
		})
		gt.Equal(t, text, "first\nsecond")
	})

	t.Run("empty content", func(t *testing.T) {
		gt.Equal(t, mcpedit.ContentText(nil), "")
	})
}

func TestCloseBeforeStart(t *testing.T) {
	editor := mcpedit.NewStdio("/does/not/matter", nil)
	gt.NoError(t, editor.Close())
}
