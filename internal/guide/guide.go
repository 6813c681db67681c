// Package guide renders the Markdown setup guide from per-file analysis
// records. Rendering is a pure function of its inputs: section order is
// fixed (structure, dependencies, setup steps) and every list is sorted.
package guide

import (
	"bytes"
	"sort"
	"strings"
	"text/template"

	"tarmerge/internal/meta"
	"tarmerge/internal/pyscan"
	"tarmerge/internal/textutil"
)

type fileLine struct {
	Path      string
	Source    bool
	Entry     bool
	Docstring string // first line only
}

type depLine struct {
	Name   string
	Pinned bool // also present in a detected requirements source
}

type guideCtx struct {
	ProjectName    string
	Build          string
	PythonRequires string
	SourceCount    int
	OtherCount     int
	Files          []fileLine
	Deps           []depLine
	HasPinned      bool
}

const guideTemplate = `# {{.ProjectName}} — Setup Guide

This guide was generated by *tarmerge* from a static scan of the extracted
source tree. Sections are deterministic: structure, dependencies, setup steps.
{{if .Build}}
Detected build flavor: **{{.Build}}**{{if .PythonRequires}} (requires Python {{.PythonRequires}}){{end}}.
{{end}}
## Project Structure

{{.SourceCount}} Python source file(s), {{.OtherCount}} other file(s).

{{range .Files}}- ` + "`{{.Path}}`" + `{{if .Entry}} — entry point{{end}}{{if .Docstring}} — {{.Docstring}}{{end}}
{{end}}
## Dependencies

Root import names aggregated across all source files, requirements.txt style{{if .HasPinned}} (names also pinned by the project are marked){{end}}:

` + "```" + `
{{range .Deps}}{{.Name}}{{if .Pinned}}  # pinned{{end}}
{{end}}` + "```" + `

## Repository Setup Steps

` + "```" + `sh
git init
git add .
git commit -m "Initial import"
git remote add origin <your-remote-url>
git push -u origin main
` + "```" + `
`

// Dependencies aggregates the sorted unique root import names across all
// source records.
func Dependencies(records []pyscan.FileRecord) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		for _, imp := range r.Imports {
			set[imp] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Render produces the guide document. name falls back to detected metadata,
// then to a generic title.
func Render(name string, records []pyscan.FileRecord, inf meta.Info) []byte {
	if name = strings.TrimSpace(name); name == "" {
		name = inf.Name
	}
	if name == "" {
		name = "extracted project"
	}

	ctx := guideCtx{
		ProjectName:    name,
		Build:          inf.Build,
		PythonRequires: inf.PythonRequires,
	}

	sorted := make([]pyscan.FileRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RelPath < sorted[j].RelPath })

	for _, r := range sorted {
		fl := fileLine{Path: r.RelPath, Source: r.Kind == pyscan.KindSource}
		if fl.Source {
			ctx.SourceCount++
			fl.Entry = r.HasMainGuard
			fl.Docstring = firstLine(r.Docstring)
		} else {
			ctx.OtherCount++
		}
		ctx.Files = append(ctx.Files, fl)
	}

	pinned := inf.RequirementSet()
	for _, d := range Dependencies(sorted) {
		dl := depLine{Name: d}
		if _, ok := pinned[d]; ok {
			dl.Pinned = true
			ctx.HasPinned = true
		}
		ctx.Deps = append(ctx.Deps, dl)
	}

	t, _ := template.New("guide").Parse(guideTemplate)
	var buf bytes.Buffer
	_ = t.Execute(&buf, ctx)
	return normalize(buf.String())
}

// firstLine truncates a docstring to its first non-empty line.
func firstLine(s string) string {
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			return ln
		}
	}
	return ""
}

// normalize strips trailing spaces and guarantees LF-only output ending in
// a single newline, the same post-pass the rest of the tool applies.
func normalize(s string) []byte {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	return textutil.EnsureTrailingLF([]byte(strings.Join(lines, "\n")))
}
