package variant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{FHC, FHCPipe, ProjectPhase}, r.Names())

	v, err := r.Get(FHCPipe)
	require.NoError(t, err)
	assert.Equal(t, FHCPipe, v.Name)

	_, err = r.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available")

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(newFHC()), "duplicate names are rejected")
	assert.Error(t, r.Register(&Variant{Name: "broken"}))
}

func TestRegistry_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(towerYAML), 0o600))

	r := NewRegistry()
	require.NoError(t, r.LoadFile(path))
	assert.Contains(t, r.Names(), "tower-b")
	assert.Error(t, r.LoadFile(path), "loading twice registers duplicates")

	summaries := r.Summaries()
	require.Len(t, summaries, 4)
	for _, s := range summaries {
		assert.Equal(t, s.Name != "tower-b", s.Builtin, s.Name)
		assert.NotEmpty(t, s.Columns)
	}
}
