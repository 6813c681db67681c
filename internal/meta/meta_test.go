package meta

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDetectPyproject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", `[project]
name = "myproj"
requires-python = ">=3.9"
dependencies = [
    "requests>=2.28",
    "PyYAML",
]
`)
	inf := Detect(root)
	if inf.Build != "pyproject" {
		t.Fatalf("build = %q", inf.Build)
	}
	if inf.Name != "myproj" {
		t.Fatalf("name = %q", inf.Name)
	}
	if inf.PythonRequires != ">=3.9" {
		t.Fatalf("pythonRequires = %q", inf.PythonRequires)
	}
	want := []string{"pyyaml", "requests"}
	if !reflect.DeepEqual(inf.Requirements, want) {
		t.Fatalf("requirements = %v, want %v", inf.Requirements, want)
	}
}

func TestDetectRequirementsTxt(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", `# deps
requests==2.31.0
Flask >= 2.0
uvicorn[standard]
-r extra.txt

numpy; python_version >= "3.9"
`)
	inf := Detect(root)
	if inf.Build != "requirements" {
		t.Fatalf("build = %q", inf.Build)
	}
	want := []string{"flask", "numpy", "requests", "uvicorn"}
	if !reflect.DeepEqual(inf.Requirements, want) {
		t.Fatalf("requirements = %v, want %v", inf.Requirements, want)
	}
}

func TestDetectSetupPy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "setup.py", `from setuptools import setup

setup(
    name="legacy-proj",
    version="1.0",
)
`)
	inf := Detect(root)
	if inf.Build != "setuptools" {
		t.Fatalf("build = %q", inf.Build)
	}
	if inf.Name != "legacy-proj" {
		t.Fatalf("name = %q", inf.Name)
	}
}

func TestDetectPipfile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Pipfile", `[[source]]
url = "https://pypi.org/simple"

[packages]
requests = "*"
flask = ">=2.0"

[dev-packages]
pytest = "*"
`)
	inf := Detect(root)
	if inf.Build != "pipenv" {
		t.Fatalf("build = %q", inf.Build)
	}
	want := []string{"flask", "pytest", "requests"}
	if !reflect.DeepEqual(inf.Requirements, want) {
		t.Fatalf("requirements = %v, want %v", inf.Requirements, want)
	}
}

func TestDetectUnknown(t *testing.T) {
	inf := Detect(t.TempDir())
	if inf.Build != "" || inf.Name != "" || len(inf.Requirements) != 0 {
		t.Fatalf("expected zero Info, got %+v", inf)
	}
}

func TestDetectPriorityPyprojectWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", "[project]\nname = \"modern\"\n")
	writeFile(t, root, "setup.py", "setup(name=\"legacy\")\n")
	writeFile(t, root, "requirements.txt", "requests\n")

	inf := Detect(root)
	if inf.Build != "pyproject" {
		t.Fatalf("build = %q", inf.Build)
	}
	if inf.Name != "modern" {
		t.Fatalf("name = %q", inf.Name)
	}
	if !reflect.DeepEqual(inf.Requirements, []string{"requests"}) {
		t.Fatalf("requirements = %v", inf.Requirements)
	}
}

func TestNormalizeRequirement(t *testing.T) {
	cases := map[string]string{
		"requests==2.31.0": "requests",
		"Flask >= 2.0":     "flask",
		"uvicorn[standard]": "uvicorn",
		`numpy; python_version >= "3.9"`: "numpy",
		"PyYAML": "pyyaml",
	}
	for in, want := range cases {
		if got := normalizeRequirement(in); got != want {
			t.Fatalf("normalizeRequirement(%q) = %q, want %q", in, got, want)
		}
	}
}
