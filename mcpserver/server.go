package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mirelab/scenebridge/config"
	"github.com/mirelab/scenebridge/executor"
	"github.com/mirelab/scenebridge/host"
	"github.com/mirelab/scenebridge/inspect"
	"github.com/mirelab/scenebridge/protocol"
)

// mcpClientID identifies the MCP surface on command envelopes; MCP tool
// calls have no per-connection identity of their own.
const mcpClientID = "mcp"

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	router    *protocol.Router
	pending   *pendingResponses
	mcpServer *server.MCPServer
}

// New creates a new MCPServer bridging MCP tool calls to the command router
func New(cfg *config.Config, logger *zap.Logger, h *host.Host) (*MCPServer, error) {
	s := &MCPServer{
		config:  cfg,
		logger:  logger,
		pending: newPendingResponses(),
	}

	s.router = protocol.NewRouter(logger,
		executor.NewExecuteHandler(logger, h, s.pending,
			executor.WithSettleTicks(cfg.Execution.SettleTicks)),
		inspect.NewSceneTreeHandler(logger, h, s.pending),
		inspect.NewScriptListHandler(logger, h, s.pending),
		inspect.NewSettingsHandler(logger, h, s.pending),
	)

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.Int("server.tcp_port", s.config.Server.TCPPort),
		zap.Int("host.tick_interval_ms", s.config.Host.TickIntervalMS),
		zap.String("host.scene_manifest", s.config.Host.SceneManifest),
		zap.Int("execution.settle_ticks", s.config.Execution.SettleTicks))

	s.mcpServer = server.NewMCPServer("scenebridge", "A remote editor scripting bridge")
	s.registerTools()

	return s, nil
}

// registerTools registers one MCP tool per command family
func (s *MCPServer) registerTools() {
	executeTool := mcp.Tool{
		Name:        executor.CommandExecuteScript,
		Description: "Execute a script fragment inside the live editor host and capture its output",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Script fragment to run inside the editor",
				},
			},
			Required: []string{"code"},
		},
	}
	s.mcpServer.AddTool(executeTool, s.handleExecuteScript)

	for name, description := range map[string]string{
		inspect.CommandGetSceneTree:       "Return a snapshot of the editor's scene tree",
		inspect.CommandListScripts:        "List the project's registered script paths",
		inspect.CommandGetProjectSettings: "Return the project settings",
	} {
		tool := mcp.Tool{
			Name:        name,
			Description: description,
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		}
		s.mcpServer.AddTool(tool, s.makeInspectionHandler(name))
	}
}

// handleExecuteScript handles the execute_editor_script tool
func (s *MCPServer) handleExecuteScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	s.logger.Info("script execution requested", zap.Int("code_len", len(code)))

	resp, err := s.dispatch(ctx, executor.CommandExecuteScript, map[string]any{"code": code})
	if err != nil {
		return nil, err
	}

	s.logger.Info("script execution completed",
		zap.Bool("success", resp.Success),
		zap.Int("output_lines", len(resp.Output)))

	return toolResult(resp)
}

// makeInspectionHandler builds the tool handler for a read-only command
func (s *MCPServer) makeInspectionHandler(commandType string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := s.dispatch(ctx, commandType, nil)
		if err != nil {
			return nil, err
		}
		return toolResult(resp)
	}
}

// dispatch routes one command through the router and waits for its
// correlated response.
func (s *MCPServer) dispatch(ctx context.Context, commandType string, params map[string]any) (protocol.Response, error) {
	commandID := uuid.NewString()
	ch := s.pending.register(commandID)
	defer s.pending.release(commandID)

	cmd := protocol.Command{
		ClientID: mcpClientID,
		Type:     commandType,
		Params:   params,
		ID:       commandID,
	}
	if !s.router.Dispatch(ctx, cmd) {
		return protocol.Response{}, fmt.Errorf("unhandled command: %s", commandType)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return protocol.Response{}, ctx.Err()
	}
}

// toolResult converts a command response into an MCP tool result. A failed
// execution is still a well-formed result; only transport problems become
// tool errors.
func toolResult(resp protocol.Response) (*mcp.CallToolResult, error) {
	payload := struct {
		Success bool     `json:"success"`
		Output  []string `json:"output"`
		Error   string   `json:"error,omitempty"`
		Result  any      `json:"result,omitempty"`
	}{
		Success: resp.Success,
		Output:  resp.Output,
		Error:   resp.Error,
		Result:  resp.Result,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		if protocol.IsConnectionNoise(err) {
			s.logger.Info("stdio transport closed", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	if err := httpServer.Start(fmt.Sprintf(":%d", port)); err != nil {
		if protocol.IsConnectionNoise(err) {
			s.logger.Info("HTTP transport closed", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
