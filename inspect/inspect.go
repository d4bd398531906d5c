package inspect

import (
	"context"

	"go.uber.org/zap"

	"github.com/mirelab/scenebridge/host"
	"github.com/mirelab/scenebridge/protocol"
)

// Command types covered by this package.
const (
	CommandGetSceneTree       = "get_scene_tree"
	CommandListScripts        = "list_project_scripts"
	CommandGetProjectSettings = "get_project_settings"
)

// SceneTreeHandler answers get_scene_tree commands with a snapshot of the
// host's scene graph.
type SceneTreeHandler struct {
	logger *zap.Logger
	host   *host.Host
	sender protocol.Sender
}

func NewSceneTreeHandler(logger *zap.Logger, h *host.Host, sender protocol.Sender) *SceneTreeHandler {
	return &SceneTreeHandler{logger: logger, host: h, sender: sender}
}

func (s *SceneTreeHandler) Matches(commandType string) bool {
	return commandType == CommandGetSceneTree
}

func (s *SceneTreeHandler) Handle(_ context.Context, clientID string, _ map[string]any, commandID string) {
	send(s.logger, s.sender, clientID,
		protocol.SuccessResponse(commandID, nil, s.host.SceneTree()))
}

// ScriptListHandler answers list_project_scripts commands with the
// project's registered script paths.
type ScriptListHandler struct {
	logger *zap.Logger
	host   *host.Host
	sender protocol.Sender
}

func NewScriptListHandler(logger *zap.Logger, h *host.Host, sender protocol.Sender) *ScriptListHandler {
	return &ScriptListHandler{logger: logger, host: h, sender: sender}
}

func (s *ScriptListHandler) Matches(commandType string) bool {
	return commandType == CommandListScripts
}

func (s *ScriptListHandler) Handle(_ context.Context, clientID string, _ map[string]any, commandID string) {
	send(s.logger, s.sender, clientID,
		protocol.SuccessResponse(commandID, nil, s.host.ScriptPaths()))
}

// SettingsHandler answers get_project_settings commands.
type SettingsHandler struct {
	logger *zap.Logger
	host   *host.Host
	sender protocol.Sender
}

func NewSettingsHandler(logger *zap.Logger, h *host.Host, sender protocol.Sender) *SettingsHandler {
	return &SettingsHandler{logger: logger, host: h, sender: sender}
}

func (s *SettingsHandler) Matches(commandType string) bool {
	return commandType == CommandGetProjectSettings
}

func (s *SettingsHandler) Handle(_ context.Context, clientID string, _ map[string]any, commandID string) {
	send(s.logger, s.sender, clientID,
		protocol.SuccessResponse(commandID, nil, s.host.Settings()))
}

func send(logger *zap.Logger, sender protocol.Sender, clientID string, resp protocol.Response) {
	if err := sender.Send(clientID, resp); err != nil {
		logger.Error("failed to deliver inspection response",
			zap.String("client_id", clientID),
			zap.String("command_id", resp.CommandID),
			zap.Error(err))
	}
}
