// Package tools exposes assistant operations as callable tools.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/karman/pkg/tools/toolbox]: the Tool type and a ToolBox for registering, listing and calling tools
//   - [github.com/germanamz/karman/pkg/tools/mcpserver]: an MCP server, built on the official MCP Go SDK, that serves a ToolBox over stdio
//
// The configuration tools themselves are built by the engine package, which
// owns the session they act on.
package tools
