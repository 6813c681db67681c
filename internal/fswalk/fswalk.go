// Package fswalk provides the deterministic, filterable directory walker
// used by the guide generator to gather an extracted tree's files.
package fswalk

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FileInfo is a minimal, deterministic descriptor of a walked file.
type FileInfo struct {
	RelPath string // project-relative path with forward slashes
	AbsPath string // absolute filesystem path
	Size    int64  // size in bytes
	Ext     string // lowercase extension including dot (e.g. ".py")
}

// Options controls the walk. The zero value walks everything.
type Options struct {
	// Exclude skips entries whose base name equals or starts with any key.
	Exclude map[string]struct{}
	// MaxFileBytes skips files larger than this (0 = no limit).
	MaxFileBytes int64
	// UseGitignore honors .gitignore patterns found at the root.
	UseGitignore bool
	// FollowSymlinks descends into symlinked dirs and reads symlinked files.
	FollowSymlinks bool
}

// DefaultExcludes is the standard prefix set for extracted Python trees.
func DefaultExcludes() map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range []string{
		".git", "node_modules", "__pycache__", ".venv", "venv",
		"dist", "build", ".idea", ".vscode", ".DS_Store", ".egg-info",
	} {
		out[e] = struct{}{}
	}
	return out
}

// Collect walks root and returns matching files sorted by relative path.
func Collect(root string, opt Options) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var patterns []gitPattern
	if opt.UseGitignore {
		if pats, err := parseGitignore(filepath.Join(absRoot, ".gitignore")); err == nil {
			patterns = pats
		}
	}

	w := &walker{opt: opt, root: absRoot, patterns: patterns}
	if err := filepath.WalkDir(absRoot, w.visit); err != nil {
		return nil, err
	}
	sort.Slice(w.files, func(i, j int) bool { return w.files[i].RelPath < w.files[j].RelPath })
	return w.files, nil
}

type walker struct {
	opt      Options
	root     string
	patterns []gitPattern
	files    []FileInfo
}

func (w *walker) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return nil
	}
	rel, ok := w.relative(path)
	if !ok || rel == "." {
		return nil
	}
	if w.shouldSkip(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		if !w.opt.FollowSymlinks && isSymlink(d) {
			return filepath.SkipDir
		}
		return nil
	}
	return w.addFile(path, rel, d)
}

func (w *walker) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (w *walker) shouldSkip(rel string, d fs.DirEntry) bool {
	base := filepath.Base(rel)
	if _, bad := w.opt.Exclude[base]; bad || hasExcludedPrefix(base, w.opt.Exclude) {
		return true
	}
	if len(w.patterns) > 0 && matchGitignore(w.patterns, rel, d.IsDir()) {
		return true
	}
	return false
}

func (w *walker) addFile(path, rel string, d fs.DirEntry) error {
	if !w.opt.FollowSymlinks && isSymlink(d) {
		return nil
	}
	info, err := d.Info()
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if w.opt.MaxFileBytes > 0 && info.Size() > w.opt.MaxFileBytes {
		return nil
	}
	w.files = append(w.files, FileInfo{
		RelPath: rel,
		AbsPath: path,
		Size:    info.Size(),
		Ext:     strings.ToLower(filepath.Ext(path)),
	})
	return nil
}

// isSymlink reports whether the DirEntry is a symlink (file or directory).
func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// hasExcludedPrefix reports whether base begins with any of the exclude keys,
// so "build", "build-x86" and friends all skip under a "build" key.
func hasExcludedPrefix(base string, exclude map[string]struct{}) bool {
	for k := range exclude {
		if strings.HasPrefix(base, k) {
			return true
		}
	}
	return false
}

// ---------------- .gitignore support ----------------

type gitPattern struct {
	neg     bool           // pattern starts with '!'
	dirOnly bool           // pattern ends with '/'
	rx      *regexp.Regexp // compiled matcher
}

// parseGitignore reads a .gitignore file and compiles patterns. Minimal
// support: '#' comments and blank lines ignored, '!' negation, leading '/'
// anchors to the root, trailing '/' restricts to directories, '**' matches
// across directories, '*'/'?' behave like shell globs (not crossing '/').
func parseGitignore(path string) ([]gitPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var res []gitPattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		neg := false
		if strings.HasPrefix(line, "!") {
			neg = true
			line = strings.TrimSpace(line[1:])
			if line == "" {
				continue
			}
		}
		dirOnly := strings.HasSuffix(line, "/")
		line = strings.TrimSuffix(line, "/")
		anchored := strings.HasPrefix(line, "/")
		line = strings.TrimPrefix(line, "/")
		res = append(res, gitPattern{neg: neg, dirOnly: dirOnly, rx: compileGitGlob(line, anchored)})
	}
	return res, nil
}

func compileGitGlob(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*`, "__DOUBLESTAR__")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "__DOUBLESTAR__", ".*")
	if anchored {
		return regexp.MustCompile("^" + esc + "$")
	}
	return regexp.MustCompile("(^|.*/)" + esc + "$")
}

func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range pats {
		if p.rx.MatchString(rel) {
			if p.dirOnly && !isDir {
				continue
			}
			ignored = !p.neg
		}
	}
	return ignored
}
