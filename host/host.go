package host

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mirelab/scenebridge/config"
	"github.com/mirelab/scenebridge/scene"
)

// BridgeNodeName is the name of the attach point under which transient
// execution nodes are parented.
const BridgeNodeName = "Bridge"

// Host is the embedded editor application: a scene tree, the frame
// scheduler and the set of scripts currently bound to scene nodes.
type Host struct {
	logger *zap.Logger
	cfg    *config.Config
	sched  *Scheduler

	mu       sync.Mutex
	root     *scene.Node
	bridge   *scene.Node
	attached map[*scene.Node]*Script

	scriptPaths []string
	settings    map[string]any
}

// New creates a host, building its scene tree from the configured manifest
// when one is set and from an empty root otherwise.
func New(logger *zap.Logger, cfg *config.Config) (*Host, error) {
	h := &Host{
		logger:   logger,
		cfg:      cfg,
		sched:    NewScheduler(),
		attached: map[*scene.Node]*Script{},
		settings: map[string]any{},
	}

	if cfg.Host.SceneManifest != "" {
		m, err := scene.LoadManifest(cfg.Host.SceneManifest)
		if err != nil {
			return nil, err
		}
		root, err := m.BuildTree()
		if err != nil {
			return nil, fmt.Errorf("invalid scene manifest: %w", err)
		}
		h.root = root
		h.scriptPaths = append(h.scriptPaths, m.Scripts...)
		for k, v := range m.Settings {
			h.settings[k] = v
		}
		logger.Info("scene manifest loaded",
			zap.String("manifest", cfg.Host.SceneManifest),
			zap.Int("scripts", len(h.scriptPaths)))
	} else {
		h.root = scene.NewNode("root")
	}

	bridge := h.root.Child(BridgeNodeName)
	if bridge == nil {
		bridge = scene.NewNode(BridgeNodeName)
		if err := h.root.AddChild(bridge); err != nil {
			return nil, err
		}
	}
	h.bridge = bridge

	h.sched.OnStep(h.tickScripts)
	return h, nil
}

// Scheduler returns the host's frame scheduler.
func (h *Host) Scheduler() *Scheduler {
	return h.sched
}

// Run drives the host's frame loop until ctx is done.
func (h *Host) Run(ctx context.Context) {
	h.logger.Info("host frame loop starting",
		zap.Duration("tick_interval", h.cfg.TickInterval()))
	h.sched.Run(ctx, h.cfg.TickInterval())
}

// AwaitTicks suspends the caller for n frame boundaries.
func (h *Host) AwaitTicks(ctx context.Context, n int) error {
	return h.sched.AwaitTicks(ctx, n)
}

// Attach parents a new node with the given name under the bridge attach
// point and binds the script to it, running the script's chunk and init
// entry point. The node is returned even when binding fails so the caller
// can dispose of it.
func (h *Host) Attach(name string, s *Script) (*scene.Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	node := scene.NewNode(name)
	if err := h.bridge.AddChild(node); err != nil {
		return nil, err
	}
	h.attached[node] = s

	if err := s.Run(); err != nil {
		return node, err
	}
	return node, nil
}

// Detach removes a transient node and its script from the host. Safe to
// call more than once and with nil.
func (h *Host) Detach(node *scene.Node) {
	if node == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.attached, node)
	h.bridge.RemoveChild(node)
}

// BridgeChildCount returns the number of nodes currently parented under the
// bridge attach point.
func (h *Host) BridgeChildCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bridge.ChildCount()
}

// SceneTree returns a snapshot of the whole scene tree.
func (h *Host) SceneTree() scene.NodeInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.root.Info()
}

// ScriptPaths returns the project's registered script paths.
func (h *Host) ScriptPaths() []string {
	out := make([]string, len(h.scriptPaths))
	copy(out, h.scriptPaths)
	return out
}

// Settings returns a copy of the project settings.
func (h *Host) Settings() map[string]any {
	out := make(map[string]any, len(h.settings))
	for k, v := range h.settings {
		out[k] = v
	}
	return out
}

// tickScripts runs every attached script's tick entry point, once per frame.
func (h *Host) tickScripts() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for node, s := range h.attached {
		if err := s.Tick(); err != nil {
			h.logger.Debug("script tick failed",
				zap.String("node", node.Path()),
				zap.Error(err))
		}
	}
}
