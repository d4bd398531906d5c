// Package mcpserver provides the Model Context Protocol (MCP) server
// implementation.
//
// The mcpserver package exposes the bridge's commands as MCP tools using
// the mark3labs/mcp-go library. Each tool call is translated into a command
// envelope, dispatched through the shared router and answered with the
// correlated response. Transport-level noise (closed connections, cancelled
// requests) is logged and dropped at this layer so it is never misreported
// as a script execution failure.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
package mcpserver
