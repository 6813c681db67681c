package merge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTreeSingleVersionBarePath(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("pkg/config.json", []byte(`{"a":1}`))

	root := t.TempDir()
	st := WriteTree(root, vm, nil)

	require.Equal(t, 1, st.Files)
	assert.Equal(t, 0, st.Collisions)
	b, err := os.ReadFile(filepath.Join(root, "pkg", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))
}

func TestWriteTreeCollisionWritesOnlySuffixedFiles(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("app.py", []byte("v1"))
	vm.Add("app.py", []byte("v2"))
	vm.Add("config.json", []byte("{}"))

	root := t.TempDir()
	st := WriteTree(root, vm, nil)

	require.Equal(t, 3, st.Files)
	assert.Equal(t, 1, st.Collisions)

	for name, want := range map[string]string{
		"app_v1.py":   "v1",
		"app_v2.py":   "v2",
		"config.json": "{}",
	} {
		b, err := os.ReadFile(filepath.Join(root, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(b), name)
	}

	_, err := os.Stat(filepath.Join(root, "app.py"))
	assert.True(t, os.IsNotExist(err), "bare app.py must not exist")
}

func TestWriteTreeIdempotentForSingleVersions(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("a/b.txt", []byte("content"))

	root := t.TempDir()
	WriteTree(root, vm, nil)
	first, err := os.ReadFile(filepath.Join(root, "a", "b.txt"))
	require.NoError(t, err)

	WriteTree(root, vm, nil)
	second, err := os.ReadFile(filepath.Join(root, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriteTreeContinuesPastBadPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// Occupy "blocked" with a regular file so mkdir of "blocked/x.txt" fails.
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocked"), []byte("f"), 0o644))

	vm := NewVersionMap()
	vm.Add("blocked/x.txt", []byte("nope"))
	vm.Add("ok.txt", []byte("fine"))

	st := WriteTree(root, vm, nil)
	assert.Equal(t, 1, st.Errors)
	assert.Equal(t, 1, st.Files)

	b, err := os.ReadFile(filepath.Join(root, "ok.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fine", string(b))
}
