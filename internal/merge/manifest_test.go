package merge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildManifestDeterministicAndSorted(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("z.py", []byte("z"))
	vm.Add("a.py", []byte("a1"))
	vm.Add("a.py", []byte("a2"))

	m1 := BuildManifest("proj", []string{"proj.tar.gz"}, vm)
	m2 := BuildManifest("proj", []string{"proj.tar.gz"}, vm)
	assert.Equal(t, m1, m2)

	require.Len(t, m1.Paths, 2)
	assert.Equal(t, "a.py", m1.Paths[0].Path)
	assert.Equal(t, 2, m1.Paths[0].Versions)
	assert.Equal(t, []string{"a_v1.py", "a_v2.py"}, m1.Paths[0].Written)
	assert.Equal(t, "z.py", m1.Paths[1].Path)
	assert.Equal(t, []string{"z.py"}, m1.Paths[1].Written)
	assert.NotEmpty(t, m1.MergeID)
}

func TestComputeMergeIDIgnoresEntryOrder(t *testing.T) {
	t.Parallel()

	a := Manifest{Paths: []PathEntry{
		{Path: "a", Hashes: []string{"h1"}},
		{Path: "b", Hashes: []string{"h2"}},
	}}
	b := Manifest{Paths: []PathEntry{
		{Path: "b", Hashes: []string{"h2"}},
		{Path: "a", Hashes: []string{"h1"}},
	}}
	assert.Equal(t, ComputeMergeID(a), ComputeMergeID(b))

	c := Manifest{Paths: []PathEntry{
		{Path: "a", Hashes: []string{"h1"}},
		{Path: "b", Hashes: []string{"other"}},
	}}
	assert.NotEqual(t, ComputeMergeID(a), ComputeMergeID(c))
}

func TestWriteManifestRoundTrip(t *testing.T) {
	t.Parallel()

	vm := NewVersionMap()
	vm.Add("x.txt", []byte("x"))
	m := BuildManifest("proj", nil, vm)

	root := t.TempDir()
	require.NoError(t, WriteManifest(root, m))

	b, err := os.ReadFile(filepath.Join(root, ManifestName))
	require.NoError(t, err)

	var got Manifest
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, m.MergeID, got.MergeID)
	assert.Equal(t, m.Paths, got.Paths)
}
