package athenamcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the router's tool catalog on the given MCP
// server. Every tool call returns a single text payload: success banner +
// formatted table, or an error result with a rendered error message.
func RegisterMCPTools(mcpServer *server.MCPServer, router *Router) {
	for _, def := range router.Tools() {
		opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
		for _, arg := range def.Args {
			propOpts := []mcp.PropertyOption{mcp.Description(arg.Description)}
			if arg.Required {
				propOpts = append(propOpts, mcp.Required())
			}
			if arg.Default != "" {
				propOpts = append(propOpts, mcp.DefaultString(arg.Default))
			}
			opts = append(opts, mcp.WithString(arg.Name, propOpts...))
		}
		if def.ReadOnly {
			opts = append(opts, mcp.WithReadOnlyHintAnnotation(true))
		}

		tool := mcp.NewTool(def.Name, opts...)
		name := def.Name
		mcpServer.AddTool(tool, router.loggedToolHandler(name, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			text, err := router.Dispatch(ctx, name, req.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(router.RenderError(err)), nil
			}
			return mcp.NewToolResultText(text), nil
		}))
	}
}

// loggedToolHandler wraps a tool handler to log request and response lengths.
func (r *Router) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqLen := requestLength(req)
		result, err := handler(ctx, req)
		respLen := resultLength(result)
		r.logger.Info().
			Str("tool", tool).
			Int("request_bytes", reqLen).
			Int("response_bytes", respLen).
			Msg("tool call")
		return result, err
	}
}

// requestLength returns the JSON-encoded byte length of the request arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			total += len(tc.Text)
		}
	}
	return total
}
