package scene

import (
	"fmt"
	"strings"
)

// Node is a named element of the scene tree
type Node struct {
	name     string
	parent   *Node
	children []*Node
}

// NodeInfo is a JSON-representable snapshot of a subtree
type NodeInfo struct {
	Name     string     `json:"name"`
	Children []NodeInfo `json:"children,omitempty"`
}

// NewNode creates a detached node with the given name
func NewNode(name string) *Node {
	return &Node{name: name}
}

// Name returns the node's name
func (n *Node) Name() string {
	return n.name
}

// Parent returns the node's parent, or nil for a root or detached node
func (n *Node) Parent() *Node {
	return n.parent
}

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Children returns a copy of the ordered child list
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the direct child with the given name, or nil
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// AddChild appends child to the node's child list. The child must be
// detached and its name must not collide with an existing sibling.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return fmt.Errorf("cannot add nil child to %q", n.name)
	}
	if child.parent != nil {
		return fmt.Errorf("node %q is already attached to %q", child.name, child.parent.name)
	}
	if n.Child(child.name) != nil {
		return fmt.Errorf("node %q already has a child named %q", n.name, child.name)
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child from the node, reporting whether it was present
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Path renders the node's absolute path, e.g. "/root/Bridge/exec-1"
func (n *Node) Path() string {
	if n.parent == nil {
		return "/" + n.name
	}
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// Info returns a snapshot of the subtree rooted at the node
func (n *Node) Info() NodeInfo {
	info := NodeInfo{Name: n.name}
	for _, c := range n.children {
		info.Children = append(info.Children, c.Info())
	}
	return info
}
