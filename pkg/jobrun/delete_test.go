package jobrun

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveUnderRoot_RefusesEscape(t *testing.T) {
	root := t.TempDir()
	err := removeUnderRoot(root, filepath.Join(root, "..", "etc", "passwd"))
	require.Error(t, err)
}

func TestRemoveUnderRoot_RemovesWithinRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "jobs", "abc")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "frame.png"), []byte("x"), 0o644))

	err := removeUnderRoot(root, target)
	require.NoError(t, err)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}
