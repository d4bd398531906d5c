// Package scene models the editor host's scene graph.
//
// The scene package provides a tree of named nodes with ordered children.
// Sibling names must be unique, so every transient object attached to the
// tree needs its own identifier. The package also loads scene manifests
// (initial tree layout, registered script paths and project settings) from
// YAML.
//
// Nodes are not safe for concurrent use; the host serializes access.
package scene
