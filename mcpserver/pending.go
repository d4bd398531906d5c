package mcpserver

import (
	"fmt"
	"sync"

	"github.com/mirelab/scenebridge/protocol"
)

// pendingResponses correlates in-flight commands to the tool calls waiting
// on them. It is the protocol.Sender the handlers deliver into.
type pendingResponses struct {
	mu        sync.Mutex
	byCommand map[string]chan protocol.Response
}

func newPendingResponses() *pendingResponses {
	return &pendingResponses{byCommand: make(map[string]chan protocol.Response)}
}

// register creates the waiting slot for a command identifier.
func (p *pendingResponses) register(commandID string) chan protocol.Response {
	ch := make(chan protocol.Response, 1)
	p.mu.Lock()
	p.byCommand[commandID] = ch
	p.mu.Unlock()
	return ch
}

// release drops the waiting slot for a command identifier.
func (p *pendingResponses) release(commandID string) {
	p.mu.Lock()
	delete(p.byCommand, commandID)
	p.mu.Unlock()
}

// Send delivers a response to the tool call awaiting its command.
func (p *pendingResponses) Send(_ string, resp protocol.Response) error {
	p.mu.Lock()
	ch, ok := p.byCommand[resp.CommandID]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("no pending command with id %s", resp.CommandID)
	}
	select {
	case ch <- resp:
		return nil
	default:
		return fmt.Errorf("duplicate response for command %s", resp.CommandID)
	}
}
