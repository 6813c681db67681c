// Package meta detects build metadata of an extracted Python project and
// feeds it to the guide renderer.
//
// Goals:
//   - Best-effort parsing: tolerate partial/absent files
//   - Deterministic output (sorted requirement names)
//   - Line/regex driven; no TOML machinery for the handful of keys we need
package meta

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Info is a minimal, tool-friendly summary of a Python project's metadata.
type Info struct {
	Build          string   // "pyproject"|"setuptools"|"requirements"|"pipenv"|"" (unknown)
	Name           string   // project/package name (best-effort)
	PythonRequires string   // e.g. ">=3.9"
	Requirements   []string // normalized pinned requirement names, sorted
}

// Detect probes common files in the project root.
//
// Priority (first match wins for Build): pyproject > setup.py >
// requirements.txt > Pipfile. Requirements are merged from every file found.
func Detect(root string) Info {
	absRoot, _ := filepath.Abs(root)
	var inf Info

	if b, err := os.ReadFile(filepath.Join(absRoot, "pyproject.toml")); err == nil {
		applyPyproject(&inf, b)
	}
	if b, err := os.ReadFile(filepath.Join(absRoot, "setup.py")); err == nil {
		applySetupPy(&inf, b)
	}
	if names, ok := readRequirements(filepath.Join(absRoot, "requirements.txt")); ok {
		if inf.Build == "" {
			inf.Build = "requirements"
		}
		inf.Requirements = append(inf.Requirements, names...)
	}
	if names, ok := readPipfile(filepath.Join(absRoot, "Pipfile")); ok {
		if inf.Build == "" {
			inf.Build = "pipenv"
		}
		inf.Requirements = append(inf.Requirements, names...)
	}

	inf.Requirements = dedupeSorted(inf.Requirements)
	return inf
}

// RequirementSet returns the requirement names as a lookup set.
func (inf Info) RequirementSet() map[string]struct{} {
	out := make(map[string]struct{}, len(inf.Requirements))
	for _, r := range inf.Requirements {
		out[r] = struct{}{}
	}
	return out
}

// ------------------------------ pyproject.toml -------------------------------

var (
	reTomlName     = regexp.MustCompile(`(?m)^\s*name\s*=\s*["']([^"']+)["']`)
	reTomlPyReq    = regexp.MustCompile(`(?m)^\s*requires-python\s*=\s*["']([^"']+)["']`)
	reTomlDepEntry = regexp.MustCompile(`["']([A-Za-z0-9_.\-]+)`)
)

func applyPyproject(inf *Info, b []byte) {
	inf.Build = "pyproject"
	if m := reTomlName.FindSubmatch(b); m != nil {
		inf.Name = string(m[1])
	}
	if m := reTomlPyReq.FindSubmatch(b); m != nil {
		inf.PythonRequires = string(m[1])
	}
	// dependencies = ["requests>=2", "pyyaml"] under [project]
	if deps := extractTomlArray(string(b), "dependencies"); deps != "" {
		for _, m := range reTomlDepEntry.FindAllStringSubmatch(deps, -1) {
			inf.Requirements = append(inf.Requirements, normalizeRequirement(m[1]))
		}
	}
}

// extractTomlArray returns the bracketed body of `key = [ ... ]`, crossing lines.
func extractTomlArray(s, key string) string {
	re := regexp.MustCompile(`(?s)\b` + regexp.QuoteMeta(key) + `\s*=\s*\[(.*?)\]`)
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// ------------------------------ setup.py -------------------------------------

var reSetupName = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)

func applySetupPy(inf *Info, b []byte) {
	if inf.Build == "" {
		inf.Build = "setuptools"
	}
	if inf.Name == "" {
		if m := reSetupName.FindSubmatch(b); m != nil {
			inf.Name = string(m[1])
		}
	}
}

// ------------------------------ requirements.txt -----------------------------

func readRequirements(path string) ([]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	var names []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := normalizeRequirement(line); name != "" {
			names = append(names, name)
		}
	}
	return names, true
}

// ------------------------------ Pipfile --------------------------------------

var rePipfileEntry = regexp.MustCompile(`^([A-Za-z0-9_.\-]+)\s*=`)

func readPipfile(path string) ([]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	var names []string
	inPackages := false
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if strings.HasPrefix(line, "[") {
			inPackages = line == "[packages]" || line == "[dev-packages]"
			continue
		}
		if !inPackages {
			continue
		}
		if m := rePipfileEntry.FindStringSubmatch(line); m != nil {
			names = append(names, normalizeRequirement(m[1]))
		}
	}
	return names, true
}

// ------------------------------ helpers --------------------------------------

// normalizeRequirement strips version specifiers, extras and environment
// markers from a requirement line and lowercases the distribution name.
func normalizeRequirement(line string) string {
	name := line
	for _, sep := range []string{"==", ">=", "<=", "~=", "!=", ">", "<", ";", "[", " ", "\t"} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(in))
	for _, v := range in {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
