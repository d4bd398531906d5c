package tcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mirelab/scenebridge/config"
	"github.com/mirelab/scenebridge/host"
	"github.com/mirelab/scenebridge/protocol"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Transport: "tcp", HTTPPort: 8080, TCPPort: 0},
		Host:      config.HostConfig{TickIntervalMS: 1},
		Execution: config.ExecutionConfig{SettleTicks: 2},
	}
	h, err := host.New(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	s := New(cfg, zaptest.NewLogger(t), h)
	require.NoError(t, s.Start(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dialTestServer(t *testing.T, s *Server) (net.Conn, *json.Encoder, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))
	return conn, json.NewEncoder(conn), bufio.NewReader(conn)
}

func readResponse(t *testing.T, r *bufio.Reader) protocol.Response {
	t.Helper()
	line, err := r.ReadBytes('\n')
	require.NoError(t, err)
	var resp protocol.Response
	require.NoError(t, json.Unmarshal(line, &resp))
	return resp
}

func TestExecuteOverTCP(t *testing.T) {
	s := startTestServer(t)
	_, enc, r := dialTestServer(t, s)

	require.NoError(t, enc.Encode(protocol.Command{
		Type:   "execute_editor_script",
		Params: map[string]any{"code": "print(\"over tcp\")\nresult = 5"},
		ID:     "cmd-1",
	}))

	resp := readResponse(t, r)
	assert.Equal(t, "cmd-1", resp.CommandID)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"over tcp"}, resp.Output)
	assert.Equal(t, float64(5), resp.Result)
}

func TestFailureOverTCP(t *testing.T) {
	s := startTestServer(t)
	_, enc, r := dialTestServer(t, s)

	require.NoError(t, enc.Encode(protocol.Command{
		Type:   "execute_editor_script",
		Params: map[string]any{"code": "error(\"tcp failure\")"},
		ID:     "cmd-2",
	}))

	resp := readResponse(t, r)
	assert.Equal(t, "cmd-2", resp.CommandID)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "tcp failure")
}

func TestInspectionOverTCP(t *testing.T) {
	s := startTestServer(t)
	_, enc, r := dialTestServer(t, s)

	require.NoError(t, enc.Encode(protocol.Command{Type: "get_scene_tree", ID: "cmd-3"}))

	resp := readResponse(t, r)
	assert.True(t, resp.Success)
	tree, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "root", tree["name"])
}

func TestUnhandledCommandOverTCP(t *testing.T) {
	s := startTestServer(t)
	_, enc, r := dialTestServer(t, s)

	require.NoError(t, enc.Encode(protocol.Command{Type: "import_assets", ID: "cmd-4"}))

	resp := readResponse(t, r)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unhandled command")
	assert.Equal(t, "cmd-4", resp.CommandID)
}

func TestCommandsAreSequentialPerConnection(t *testing.T) {
	s := startTestServer(t)
	_, enc, r := dialTestServer(t, s)

	for _, id := range []string{"seq-1", "seq-2", "seq-3"} {
		require.NoError(t, enc.Encode(protocol.Command{
			Type:   "execute_editor_script",
			Params: map[string]any{"code": "result = \"" + id + "\""},
			ID:     id,
		}))
	}

	for _, id := range []string{"seq-1", "seq-2", "seq-3"} {
		resp := readResponse(t, r)
		assert.Equal(t, id, resp.CommandID)
		assert.Equal(t, id, resp.Result)
	}
}

func TestDisconnectIsNotAnError(t *testing.T) {
	s := startTestServer(t)
	conn, enc, _ := dialTestServer(t, s)

	require.NoError(t, enc.Encode(protocol.Command{
		Type:   "execute_editor_script",
		Params: map[string]any{"code": "result = 1"},
		ID:     "cmd-gone",
	}))
	// Close without reading the response; the server drops the delivery
	// failure and keeps serving other clients.
	require.NoError(t, conn.Close())

	_, enc2, r2 := dialTestServer(t, s)
	require.NoError(t, enc2.Encode(protocol.Command{Type: "get_project_settings", ID: "cmd-after"}))
	resp := readResponse(t, r2)
	assert.True(t, resp.Success)
}
