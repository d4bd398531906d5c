package executor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mirelab/scenebridge/host"
	"github.com/mirelab/scenebridge/protocol"
	"github.com/mirelab/scenebridge/synth"
)

// CommandExecuteScript is the command type this handler covers.
const CommandExecuteScript = "execute_editor_script"

// defaultSettleTicks is how many host frames an execution is given to let
// deferred work finish before its state is read.
const defaultSettleTicks = 2

// ExecuteHandler handles execute_editor_script commands.
type ExecuteHandler struct {
	logger      *zap.Logger
	host        *host.Host
	sender      protocol.Sender
	settleTicks int
}

// ExecuteHandlerOption defines a functional option for ExecuteHandler
type ExecuteHandlerOption func(*ExecuteHandler)

// WithSettleTicks overrides the number of frames an execution settles for.
func WithSettleTicks(n int) ExecuteHandlerOption {
	return func(e *ExecuteHandler) {
		if n > 0 {
			e.settleTicks = n
		}
	}
}

// NewExecuteHandler creates the execute-script handler.
func NewExecuteHandler(logger *zap.Logger, h *host.Host, sender protocol.Sender, opts ...ExecuteHandlerOption) *ExecuteHandler {
	e := &ExecuteHandler{
		logger:      logger,
		host:        h,
		sender:      sender,
		settleTicks: defaultSettleTicks,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Matches reports whether the handler covers the given command type.
func (e *ExecuteHandler) Matches(commandType string) bool {
	return commandType == CommandExecuteScript
}

// Handle runs the fragment and sends exactly one response for commandID.
func (e *ExecuteHandler) Handle(ctx context.Context, clientID string, params map[string]any, commandID string) {
	resp := e.execute(ctx, clientID, params, commandID)
	if err := e.sender.Send(clientID, resp); err != nil {
		e.logger.Error("failed to deliver execution response",
			zap.String("client_id", clientID),
			zap.String("command_id", commandID),
			zap.Error(err))
	}
}

func (e *ExecuteHandler) execute(ctx context.Context, clientID string, params map[string]any, commandID string) protocol.Response {
	code, _ := params["code"].(string)
	if strings.TrimSpace(code) == "" {
		return protocol.ErrorResponse(commandID, nil, "code parameter must be a non-empty string")
	}

	name := transientName(clientID, commandID)
	source := synth.Synthesize(code)

	script, err := host.CompileScript(name, source)
	if err != nil {
		e.logger.Info("script compilation failed",
			zap.String("command_id", commandID),
			zap.Error(err))
		return protocol.ErrorResponse(commandID, nil, err.Error())
	}

	node, runErr := e.host.Attach(name, script)
	if node == nil {
		return protocol.ErrorResponse(commandID, nil, fmt.Sprintf("failed to attach execution node: %v", runErr))
	}
	if runErr != nil {
		e.host.Detach(node)
		return protocol.ErrorResponse(commandID, script.Output(), runErr.Error())
	}

	// Let init's deferred work run across frame boundaries before state is
	// read. Best effort: whatever state exists after the wait is collected.
	if waitErr := e.host.AwaitTicks(ctx, e.settleTicks); waitErr != nil {
		e.host.Detach(node)
		return protocol.ErrorResponse(commandID, script.Output(), "execution interrupted: "+waitErr.Error())
	}

	// Detaching first stops frame callbacks, so reading the script state
	// races with nothing.
	e.host.Detach(node)
	return collectResponse(commandID, script)
}

// collectResponse builds the response from the unit's captured fields. The
// result slot is dropped when an error was recorded, even if the fragment
// assigned it before failing.
func collectResponse(commandID string, script *host.Script) protocol.Response {
	output := script.Output()
	if msg := script.ErrorMessage(); msg != "" {
		return protocol.ErrorResponse(commandID, output, msg)
	}
	return protocol.SuccessResponse(commandID, output, script.Result())
}

// transientName derives the execution node's name from the command's
// correlation keys so concurrent executions never collide on a sibling
// name.
func transientName(clientID, commandID string) string {
	if clientID == "" {
		return "exec-" + commandID
	}
	return fmt.Sprintf("exec-%s-%s", clientID, commandID)
}
