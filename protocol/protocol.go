package protocol

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
)

// Command is one inbound request from an automation client. It is immutable
// once received; ID is the correlation key for exactly one response.
type Command struct {
	ClientID string         `json:"client_id,omitempty"`
	Type     string         `json:"command_type"`
	Params   map[string]any `json:"params,omitempty"`
	ID       string         `json:"command_id"`
}

// Response is the reply correlated to one Command. Error is non-empty
// exactly when Success is false.
type Response struct {
	CommandID string   `json:"command_id"`
	Success   bool     `json:"success"`
	Output    []string `json:"output"`
	Error     string   `json:"error,omitempty"`
	Result    any      `json:"result,omitempty"`
}

// SuccessResponse builds a successful response. A nil result is omitted
// from the wire form.
func SuccessResponse(commandID string, output []string, result any) Response {
	if output == nil {
		output = []string{}
	}
	return Response{
		CommandID: commandID,
		Success:   true,
		Output:    output,
		Result:    result,
	}
}

// ErrorResponse builds a failed response. Output lines captured before the
// failure are kept.
func ErrorResponse(commandID string, output []string, message string) Response {
	if output == nil {
		output = []string{}
	}
	return Response{
		CommandID: commandID,
		Success:   false,
		Output:    output,
		Error:     message,
	}
}

// Sender delivers a response to the client identified by clientID.
type Sender interface {
	Send(clientID string, resp Response) error
}

// Handler processes one command family.
type Handler interface {
	// Matches reports whether the handler covers the given command type.
	Matches(commandType string) bool
	// Handle processes the command and sends exactly one response tagged
	// with commandID.
	Handle(ctx context.Context, clientID string, params map[string]any, commandID string)
}

// IsConnectionNoise classifies transport-level errors (closed connections,
// cancelled requests, timeouts) that adapters log and drop rather than
// report as command failures.
func IsConnectionNoise(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "use of closed network connection")
}
