package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/wbclimate-cli/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, utils.SafeWriteFile(p, []byte("one")))
	require.NoError(t, utils.SafeWriteFile(p, []byte("two")))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFindRunRootWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "charts", "extra")
	require.NoError(t, utils.EnsureDir(nested))
	require.NoError(t, os.WriteFile(filepath.Join(root, utils.ManifestFileName), []byte("{}"), 0o644))

	got, err := utils.FindRunRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = utils.FindRunRoot(t.TempDir())
	assert.Error(t, err)
}
