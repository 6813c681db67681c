package merge

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ManifestName is the file written at the output root by WriteManifest.
const ManifestName = "merge.manifest.json"

// PathEntry describes one merged path in the manifest.
type PathEntry struct {
	Path     string   `json:"path"`               // sanitized archive path
	Versions int      `json:"versions"`           // distinct versions observed
	Hashes   []string `json:"hashes"`             // sha256 hex, encounter order
	Written  []string `json:"written"`            // file names written to disk
	Bytes    int64    `json:"bytes"`              // total content bytes
}

// Manifest is the machine-readable record of a merge run.
type Manifest struct {
	Module  string      `json:"module"`            // human-readable name (archive base)
	MergeID string      `json:"merge_id"`          // canonical hash over sorted "path:hash\n"
	Paths   []PathEntry `json:"paths"`             // deterministic, sorted by path
	Sources []string    `json:"sources,omitempty"` // archives that fed this merge
}

// BuildManifest assembles a Manifest from the consumed VersionMap. Entries
// are sorted by path so the output is stable regardless of archive order.
func BuildManifest(module string, sources []string, vm *VersionMap) Manifest {
	entries := make([]PathEntry, 0, vm.Len())
	for _, p := range vm.Paths() {
		versions := vm.Versions(p)
		e := PathEntry{Path: p, Versions: len(versions)}
		for i, v := range versions {
			e.Hashes = append(e.Hashes, v.Hash)
			e.Bytes += int64(len(v.Content))
			if len(versions) == 1 {
				e.Written = append(e.Written, p)
			} else {
				e.Written = append(e.Written, VersionedName(p, i+1))
			}
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	m := Manifest{Module: module, Paths: entries}
	m.Sources = append(m.Sources, sources...)
	m.MergeID = ComputeMergeID(m)
	return m
}

// ComputeMergeID computes a canonical hash over manifest entries. It
// concatenates lines "<path>:<hash>\n" for every recorded version, sorted,
// then returns the SHA-256 hex of the UTF-8 bytes.
func ComputeMergeID(m Manifest) string {
	if len(m.Paths) == 0 {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:])
	}
	lines := make([]string, 0, len(m.Paths))
	for _, e := range m.Paths {
		for _, h := range e.Hashes {
			lines = append(lines, e.Path+":"+h)
		}
	}
	sort.Strings(lines)
	var buf bytes.Buffer
	for _, ln := range lines {
		buf.WriteString(ln)
		buf.WriteByte('\n')
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// WriteManifest writes the manifest JSON at the output root.
func WriteManifest(root string, m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(filepath.Join(root, ManifestName), b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
