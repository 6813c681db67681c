// Package merge collapses archive members into a deduplicated file tree.
// Members are grouped by path; byte-identical content collapses under one
// SHA-256 digest, and paths that collected multiple distinct versions are
// written out with a version suffix per variant.
package merge

import (
	"crypto/sha256"
	"encoding/hex"
)

// Version is one distinct content observed for a path.
type Version struct {
	Hash    string // lowercase hex sha256 of Content
	Content []byte
}

// VersionMap accumulates archive members keyed by sanitized path. It is
// append-only: paths keep first-seen order, and versions within a path keep
// the order their hash was first observed in the archive stream. That
// encounter order is what makes the _vN suffix numbering deterministic.
type VersionMap struct {
	order  []string
	byPath map[string][]Version
	seen   map[string]map[string]struct{}
}

func NewVersionMap() *VersionMap {
	return &VersionMap{
		byPath: make(map[string][]Version),
		seen:   make(map[string]map[string]struct{}),
	}
}

// Add records content under path. Re-adding identical content is a no-op.
func (m *VersionMap) Add(path string, content []byte) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	hs, ok := m.seen[path]
	if !ok {
		m.order = append(m.order, path)
		hs = make(map[string]struct{}, 1)
		m.seen[path] = hs
	}
	if _, dup := hs[hash]; dup {
		return
	}
	hs[hash] = struct{}{}
	m.byPath[path] = append(m.byPath[path], Version{Hash: hash, Content: content})
}

// Paths returns the recorded paths in first-seen order.
func (m *VersionMap) Paths() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Versions returns the distinct versions recorded for path, in encounter order.
func (m *VersionMap) Versions(path string) []Version {
	return m.byPath[path]
}

// Len reports the number of distinct paths recorded.
func (m *VersionMap) Len() int { return len(m.order) }

// Collisions reports how many paths collected more than one version.
func (m *VersionMap) Collisions() int {
	n := 0
	for _, vs := range m.byPath {
		if len(vs) > 1 {
			n++
		}
	}
	return n
}
