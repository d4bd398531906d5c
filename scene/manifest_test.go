package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
root:
  name: root
  children:
    - name: Bridge
    - name: World
      children:
        - name: Player
scripts:
  - res://scripts/player.lua
  - res://scripts/spawner.lua
settings:
  application/name: demo
  display/width: 1280
`

func TestParseManifest(t *testing.T) {
	t.Run("ParsesTreeScriptsAndSettings", func(t *testing.T) {
		m, err := ParseManifest([]byte(sampleManifest))
		require.NoError(t, err)

		assert.Equal(t, "root", m.Root.Name)
		require.Len(t, m.Root.Children, 2)
		assert.Equal(t, "Bridge", m.Root.Children[0].Name)

		assert.Equal(t, []string{"res://scripts/player.lua", "res://scripts/spawner.lua"}, m.Scripts)
		assert.Equal(t, "demo", m.Settings["application/name"])
		assert.Equal(t, 1280, m.Settings["display/width"])
	})

	t.Run("RejectsMissingRootName", func(t *testing.T) {
		_, err := ParseManifest([]byte("scripts: []\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "named root node")
	})

	t.Run("RejectsInvalidYAML", func(t *testing.T) {
		_, err := ParseManifest([]byte("root: [unclosed"))
		require.Error(t, err)
	})
}

func TestBuildTree(t *testing.T) {
	t.Run("BuildsDeclaredTree", func(t *testing.T) {
		m, err := ParseManifest([]byte(sampleManifest))
		require.NoError(t, err)

		root, err := m.BuildTree()
		require.NoError(t, err)

		assert.Equal(t, "root", root.Name())
		assert.Equal(t, 2, root.ChildCount())
		world := root.Child("World")
		require.NotNil(t, world)
		assert.NotNil(t, world.Child("Player"))
	})

	t.Run("RejectsUnnamedChild", func(t *testing.T) {
		m := &Manifest{Root: ManifestNode{
			Name:     "root",
			Children: []ManifestNode{{Name: ""}},
		}}
		_, err := m.BuildTree()
		require.Error(t, err)
	})

	t.Run("RejectsDuplicateSiblings", func(t *testing.T) {
		m := &Manifest{Root: ManifestNode{
			Name:     "root",
			Children: []ManifestNode{{Name: "a"}, {Name: "a"}},
		}}
		_, err := m.BuildTree()
		require.Error(t, err)
	})
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o600))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "root", m.Root.Name)

	_, err = LoadManifest(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
