package fileurl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileIfMissing(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "config", "config.yaml")
	assert.False(t, IsExist(dst))

	created, err := WriteFileIfMissing(dst, []byte("a: 1\n"), 0600)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, IsDir(filepath.Dir(dst)))

	created, err = WriteFileIfMissing(dst, []byte("a: 2\n"), 0600)
	require.NoError(t, err)
	assert.False(t, created)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))
}
