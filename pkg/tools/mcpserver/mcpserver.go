// Package mcpserver exposes a toolbox over the Model Context Protocol using
// the official MCP Go SDK.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/germanamz/karman/pkg/tools/toolbox"
)

// MCPServer serves tools over MCP.
type MCPServer struct {
	server *mcp.Server
	logger *slog.Logger
}

// New creates an MCPServer. instructions is sent to clients on initialize
// and may be empty. A nil logger uses slog.Default.
func New(name, version, instructions string, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, &mcp.ServerOptions{Instructions: instructions})

	return &MCPServer{server: server, logger: logger}
}

// Register adds every tool of tb to the server.
func (s *MCPServer) Register(tb *toolbox.ToolBox) {
	for _, t := range tb.Tools() {
		s.server.AddTool(toSDKTool(t), s.toSDKHandler(tb, t.Name))
	}
}

// Serve reads requests from in and writes responses to out. It blocks until
// ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func toSDKTool(t toolbox.Tool) *mcp.Tool {
	schema := t.InputSchema
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object"}`)
	}
	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
	}
}

// toSDKHandler routes calls through the toolbox so errors become tool
// results with IsError set rather than protocol errors.
func (s *MCPServer) toSDKHandler(tb *toolbox.ToolBox, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := tb.Call(ctx, name, req.Params.Arguments)
		if res.IsError {
			s.logger.Warn("mcpserver: tool failed", "tool", name, "error", res.Content)
		} else {
			s.logger.Debug("mcpserver: tool called", "tool", name)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Content}},
			IsError: res.IsError,
		}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
