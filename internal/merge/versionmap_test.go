package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionMapDedupesIdenticalContent(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("app.py", []byte("print('a')\n"))
	vm.Add("app.py", []byte("print('a')\n"))
	vm.Add("app.py", []byte("print('b')\n"))

	require.Equal(t, 1, vm.Len())
	versions := vm.Versions("app.py")
	require.Len(t, versions, 2)
	assert.Equal(t, []byte("print('a')\n"), versions[0].Content)
	assert.Equal(t, []byte("print('b')\n"), versions[1].Content)
	assert.NotEqual(t, versions[0].Hash, versions[1].Hash)
}

func TestVersionMapPreservesEncounterOrder(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("z.txt", []byte("z"))
	vm.Add("a.txt", []byte("a"))
	vm.Add("m.txt", []byte("m"))

	assert.Equal(t, []string{"z.txt", "a.txt", "m.txt"}, vm.Paths())
}

func TestVersionMapCollisions(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("one.txt", []byte("1"))
	vm.Add("two.txt", []byte("2"))
	vm.Add("two.txt", []byte("2'"))
	assert.Equal(t, 1, vm.Collisions())
}

func TestVersionedName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		n    int
		want string
	}{
		{"app.py", 1, "app_v1.py"},
		{"dir/app.py", 2, "dir/app_v2.py"},
		{"Makefile", 3, "Makefile_v3"},
		{"a/b/data.tar.gz", 1, "a/b/data.tar_v1.gz"},
		{".gitignore", 1, ".gitignore_v1"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, VersionedName(c.path, c.n), "path=%s", c.path)
	}
}
