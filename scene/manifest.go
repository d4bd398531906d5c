package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes the host's initial scene layout, the project's
// registered script paths and its settings
type Manifest struct {
	Root     ManifestNode   `yaml:"root"`
	Scripts  []string       `yaml:"scripts"`
	Settings map[string]any `yaml:"settings"`
}

// ManifestNode describes one node of the initial scene tree
type ManifestNode struct {
	Name     string         `yaml:"name"`
	Children []ManifestNode `yaml:"children"`
}

// LoadManifest reads and parses a scene manifest from a YAML file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses a scene manifest from YAML data
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse scene manifest: %w", err)
	}
	if m.Root.Name == "" {
		return nil, fmt.Errorf("scene manifest must declare a named root node")
	}
	return &m, nil
}

// BuildTree constructs the scene tree described by the manifest
func (m *Manifest) BuildTree() (*Node, error) {
	return buildNode(m.Root)
}

func buildNode(mn ManifestNode) (*Node, error) {
	if mn.Name == "" {
		return nil, fmt.Errorf("scene manifest contains an unnamed node")
	}
	node := NewNode(mn.Name)
	for _, child := range mn.Children {
		built, err := buildNode(child)
		if err != nil {
			return nil, err
		}
		if err := node.AddChild(built); err != nil {
			return nil, err
		}
	}
	return node, nil
}
