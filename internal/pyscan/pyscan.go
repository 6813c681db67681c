// Package pyscan performs best-effort static analysis of Python sources:
// absolute import roots, the module docstring, and the presence of an
// `if __name__ == "__main__"` entry-point guard. Analysis is line-driven
// with a small triple-quote state machine; it never executes code.
package pyscan

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// Kind values for FileRecord.
const (
	KindSource = "source"
	KindOther  = "other"
)

// FileRecord is the per-file analysis result. Built once, immutable after
// construction.
type FileRecord struct {
	RelPath      string
	Kind         string   // "source" | "other"
	Docstring    string   // module docstring, empty if absent
	Imports      []string // sorted unique root import names
	HasMainGuard bool
}

// ErrSyntax marks a file whose analysis was abandoned; the caller gets an
// empty record and should log rather than abort the walk.
var ErrSyntax = errors.New("unterminated triple-quoted string")

var (
	// `import a.b as x, c.d`: comma lists and aliases allowed.
	reImport = regexp.MustCompile(`^import\s+([A-Za-z_][\w.]*(?:\s+as\s+\w+)?(?:\s*,\s*[A-Za-z_][\w.]*(?:\s+as\s+\w+)?)*)`)
	// `from a.b import x`: a leading dot (relative import) does not match.
	reFrom = regexp.MustCompile(`^from\s+([A-Za-z_][\w.]*)\s+import\b`)
	// `if __name__ == "__main__":` with flexible spacing and quoting.
	reMainGuard = regexp.MustCompile(`^if\s+__name__\s*==\s*['"]__main__['"]\s*:`)
)

// ClassifyExt maps a lowercase file extension to a record kind.
func ClassifyExt(ext string) string {
	if ext == ".py" {
		return KindSource
	}
	return KindOther
}

// Analyze scans one Python source. Imports at any nesting depth count;
// relative imports and anything inside strings or comments do not. On a
// syntax failure the returned record carries only RelPath/Kind and the
// error is ErrSyntax.
func Analyze(relPath string, data []byte) (FileRecord, error) {
	rec := FileRecord{RelPath: relPath, Kind: KindSource}

	s := scanner{}
	roots := make(map[string]struct{})
	sawStatement := false

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")

		if s.inTriple {
			s.continueTriple(line, &rec)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		// Module docstring: a string literal as the first statement.
		if !sawStatement && s.tryDocstring(trimmed, &rec) {
			sawStatement = true
			continue
		}
		if s.startsTriple(trimmed) {
			sawStatement = true
			continue
		}
		sawStatement = true

		code := stripComment(trimmed)
		if m := reImport.FindStringSubmatch(code); m != nil {
			for _, name := range splitImportList(m[1]) {
				roots[rootName(name)] = struct{}{}
			}
			continue
		}
		if m := reFrom.FindStringSubmatch(code); m != nil {
			roots[rootName(m[1])] = struct{}{}
			continue
		}
		// The guard only counts at the top level, so nested re-checks of
		// __name__ inside functions do not mark the file as an entry point.
		if !indented(line) && reMainGuard.MatchString(code) {
			rec.HasMainGuard = true
		}
	}

	if s.inTriple {
		return FileRecord{RelPath: relPath, Kind: KindSource}, ErrSyntax
	}

	rec.Imports = make([]string, 0, len(roots))
	for r := range roots {
		rec.Imports = append(rec.Imports, r)
	}
	sort.Strings(rec.Imports)
	return rec, nil
}

// scanner tracks multi-line triple-quoted strings and docstring capture.
type scanner struct {
	inTriple   bool
	delim      string
	capturing  bool // accumulating the module docstring
	docBuilder strings.Builder
}

// tryDocstring handles a first statement that opens a string literal.
// Returns true when the line was consumed as (the start of) a docstring.
func (s *scanner) tryDocstring(trimmed string, rec *FileRecord) bool {
	for _, d := range []string{`"""`, `'''`} {
		if !strings.HasPrefix(trimmed, d) {
			continue
		}
		rest := trimmed[len(d):]
		if i := strings.Index(rest, d); i >= 0 {
			rec.Docstring = strings.TrimSpace(rest[:i])
			return true
		}
		s.inTriple = true
		s.delim = d
		s.capturing = true
		s.docBuilder.WriteString(rest)
		return true
	}
	// Single-quoted one-line docstring.
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(trimmed, q) {
			if i := strings.Index(trimmed[1:], q); i >= 0 {
				rec.Docstring = strings.TrimSpace(trimmed[1 : 1+i])
				return true
			}
		}
	}
	return false
}

// startsTriple consumes a non-docstring line that opens (and possibly
// closes) a triple-quoted string, so its body is not scanned for imports.
func (s *scanner) startsTriple(trimmed string) bool {
	for _, d := range []string{`"""`, `'''`} {
		i := strings.Index(trimmed, d)
		if i < 0 {
			continue
		}
		rest := trimmed[i+len(d):]
		if strings.Contains(rest, d) {
			return true // opened and closed on one line
		}
		s.inTriple = true
		s.delim = d
		s.capturing = false
		return true
	}
	return false
}

// continueTriple consumes a line inside a triple-quoted string, closing the
// string when its delimiter appears and finishing docstring capture.
func (s *scanner) continueTriple(line string, rec *FileRecord) {
	i := strings.Index(line, s.delim)
	if i < 0 {
		if s.capturing {
			s.docBuilder.WriteString("\n")
			s.docBuilder.WriteString(line)
		}
		return
	}
	if s.capturing {
		s.docBuilder.WriteString("\n")
		s.docBuilder.WriteString(line[:i])
		rec.Docstring = strings.TrimSpace(s.docBuilder.String())
		s.docBuilder.Reset()
	}
	s.inTriple = false
	s.capturing = false
}

// stripComment removes a trailing comment. Import lines containing a '#'
// inside a string literal are rare enough that a plain cut suffices.
func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return strings.TrimSpace(line[:i])
	}
	return line
}

// splitImportList breaks "a.b as x, c" into the bare module paths.
func splitImportList(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if i := strings.Index(p, " as "); i >= 0 {
			p = strings.TrimSpace(p[:i])
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func indented(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}

// rootName returns the first dot-separated segment of a module path.
func rootName(module string) string {
	if i := strings.Index(module, "."); i >= 0 {
		return module[:i]
	}
	return module
}
