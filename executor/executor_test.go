package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mirelab/scenebridge/config"
	"github.com/mirelab/scenebridge/host"
	"github.com/mirelab/scenebridge/protocol"
)

// captureSender records every response delivered to it.
type captureSender struct {
	mu        sync.Mutex
	responses []protocol.Response
	clientIDs []string
}

func (c *captureSender) Send(clientID string, resp protocol.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientIDs = append(c.clientIDs, clientID)
	c.responses = append(c.responses, resp)
	return nil
}

func (c *captureSender) last(t *testing.T) protocol.Response {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.responses)
	return c.responses[len(c.responses)-1]
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.responses)
}

// newTestRig builds a host with a running frame loop, a capture sender and
// the handler under test.
func newTestRig(t *testing.T) (*host.Host, *captureSender, *ExecuteHandler) {
	t.Helper()
	cfg := &config.Config{
		Host:      config.HostConfig{TickIntervalMS: 1},
		Execution: config.ExecutionConfig{SettleTicks: 2},
	}
	h, err := host.New(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	sender := &captureSender{}
	handler := NewExecuteHandler(zaptest.NewLogger(t), h, sender,
		WithSettleTicks(cfg.Execution.SettleTicks))
	return h, sender, handler
}

func executeCode(t *testing.T, handler *ExecuteHandler, commandID, code string) {
	t.Helper()
	handler.Handle(context.Background(), "client-1", map[string]any{"code": code}, commandID)
}

func TestMatches(t *testing.T) {
	_, _, handler := newTestRig(t)
	assert.True(t, handler.Matches("execute_editor_script"))
	assert.False(t, handler.Matches("get_scene_tree"))
}

func TestExecuteSuccess(t *testing.T) {
	t.Run("CapturesPrintOutputInOrder", func(t *testing.T) {
		_, sender, handler := newTestRig(t)
		executeCode(t, handler, "cmd-1", "print(\"one\")\nprint(\"two\")\nprint(\"three\")")

		resp := sender.last(t)
		assert.True(t, resp.Success)
		assert.Equal(t, []string{"one", "two", "three"}, resp.Output)
		assert.Empty(t, resp.Error)
		assert.Equal(t, "cmd-1", resp.CommandID)
	})

	t.Run("ReturnsAssignedResult", func(t *testing.T) {
		_, sender, handler := newTestRig(t)
		executeCode(t, handler, "cmd-2", "result = 42")

		resp := sender.last(t)
		assert.True(t, resp.Success)
		assert.Equal(t, 42, resp.Result)
		assert.Empty(t, resp.Output)
	})

	t.Run("NestedCallInsidePrint", func(t *testing.T) {
		_, sender, handler := newTestRig(t)
		executeCode(t, handler, "cmd-3", "print(string.format(\"%d-%d\", 1, 2))")

		resp := sender.last(t)
		assert.True(t, resp.Success)
		assert.Equal(t, []string{"1-2"}, resp.Output)
	})

	t.Run("WorkDeferredAcrossTicksIsCollected", func(t *testing.T) {
		_, sender, handler := newTestRig(t)
		executeCode(t, handler, "cmd-4",
			"result = 0\nfunction tick()\n    result = result + 1\nend")

		resp := sender.last(t)
		assert.True(t, resp.Success)
		// The settle wait spans two frames, so tick ran at least twice.
		count, ok := resp.Result.(int)
		require.True(t, ok, "result should be an int, got %T", resp.Result)
		assert.GreaterOrEqual(t, count, 2)
	})
}

func TestExecuteValidation(t *testing.T) {
	cases := []struct {
		name   string
		params map[string]any
	}{
		{"MissingCode", map[string]any{}},
		{"EmptyCode", map[string]any{"code": ""}},
		{"WhitespaceCode", map[string]any{"code": "   \n\t  "}},
		{"NonStringCode", map[string]any{"code": 7}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, sender, handler := newTestRig(t)
			before := h.BridgeChildCount()

			handler.Handle(context.Background(), "client-1", tc.params, "cmd-v")

			resp := sender.last(t)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, "non-empty")
			assert.Empty(t, resp.Output)
			assert.Nil(t, resp.Result)
			assert.Equal(t, before, h.BridgeChildCount())
		})
	}
}

func TestExecuteCompileFailure(t *testing.T) {
	h, sender, handler := newTestRig(t)
	before := h.BridgeChildCount()

	executeCode(t, handler, "cmd-c", "if without then end end")

	resp := sender.last(t)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "script parsing error:")
	assert.Nil(t, resp.Result)
	assert.Equal(t, before, h.BridgeChildCount())
}

func TestExecuteRuntimeFailure(t *testing.T) {
	t.Run("ErrorRecordedWithPartialOutput", func(t *testing.T) {
		h, sender, handler := newTestRig(t)
		before := h.BridgeChildCount()

		executeCode(t, handler, "cmd-r", "print(\"partial\")\nerror(\"deliberate failure\")")

		resp := sender.last(t)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "deliberate failure")
		assert.Equal(t, []string{"partial"}, resp.Output)
		assert.Equal(t, before, h.BridgeChildCount())
	})

	t.Run("ResultDroppedOnFailure", func(t *testing.T) {
		_, sender, handler := newTestRig(t)
		executeCode(t, handler, "cmd-r2", "result = 99\nerror(\"after assignment\")")

		resp := sender.last(t)
		assert.False(t, resp.Success)
		assert.Nil(t, resp.Result)
	})
}

func TestExecuteLeavesNoNodesBehind(t *testing.T) {
	h, sender, handler := newTestRig(t)
	before := h.BridgeChildCount()

	for i := 0; i < 5; i++ {
		executeCode(t, handler, fmt.Sprintf("cmd-ok-%d", i), "result = 1")
		executeCode(t, handler, fmt.Sprintf("cmd-bad-%d", i), "error(\"nope\")")
		executeCode(t, handler, fmt.Sprintf("cmd-parse-%d", i), ")))")
	}

	assert.Equal(t, before, h.BridgeChildCount())
	assert.Equal(t, 15, sender.count())
}

func TestExactlyOneResponsePerCommand(t *testing.T) {
	_, sender, handler := newTestRig(t)

	executeCode(t, handler, "cmd-a", "result = 1")
	executeCode(t, handler, "cmd-b", "")

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.responses, 2)
	assert.Equal(t, "cmd-a", sender.responses[0].CommandID)
	assert.Equal(t, "cmd-b", sender.responses[1].CommandID)
	assert.Equal(t, []string{"client-1", "client-1"}, sender.clientIDs)
}

func TestExecuteInterrupted(t *testing.T) {
	// A scheduler that never steps: use a host without a running loop and a
	// context that is already cancelled when the wait begins.
	cfg := &config.Config{
		Host:      config.HostConfig{TickIntervalMS: 1},
		Execution: config.ExecutionConfig{SettleTicks: 2},
	}
	h, err := host.New(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)
	sender := &captureSender{}
	handler := NewExecuteHandler(zaptest.NewLogger(t), h, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handler.Handle(ctx, "client-1", map[string]any{"code": "result = 1"}, "cmd-i")

	resp := sender.last(t)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "execution interrupted")
	assert.Equal(t, 0, h.BridgeChildCount())
}
