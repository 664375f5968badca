package local

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspaceUniqueNames(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureRoot(root))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ws, err := newWorkspace(root)
		require.NoError(t, err)
		assert.False(t, seen[ws.path], "workspace path %s allocated twice", ws.path)
		seen[ws.path] = true
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 100)
}

func TestWorkspaceWriteAndRemove(t *testing.T) {
	root := t.TempDir()
	ws, err := newWorkspace(root)
	require.NoError(t, err)

	require.NoError(t, ws.writeFile("main.py", "print(1)"))
	data, err := os.ReadFile(ws.path + "/main.py")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", string(data))

	require.NoError(t, ws.remove())
	_, err = os.Stat(ws.path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is harmless
	assert.NoError(t, ws.remove())
}

func TestEnsureRootIdempotent(t *testing.T) {
	root := t.TempDir() + "/nested/workspaces"
	require.NoError(t, EnsureRoot(root))
	require.NoError(t, EnsureRoot(root))

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLimitedBuffer(t *testing.T) {
	t.Run("under the cap passes through", func(t *testing.T) {
		buf := &limitedBuffer{max: 16}
		n, err := buf.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "hello", buf.contents())
	})

	t.Run("over the cap truncates with a marker", func(t *testing.T) {
		buf := &limitedBuffer{max: 4}
		_, err := buf.Write([]byte("overflowing"))
		require.NoError(t, err)
		assert.Equal(t, "over\n"+truncationMarker+"\n", buf.contents())
	})

	t.Run("writes past a full buffer are discarded but reported written", func(t *testing.T) {
		buf := &limitedBuffer{max: 2}
		_, _ = buf.Write([]byte("ab"))
		n, err := buf.Write([]byte("cdef"))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Contains(t, buf.contents(), truncationMarker)
	})
}
