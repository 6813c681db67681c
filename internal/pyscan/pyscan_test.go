package pyscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeImportsAndMainGuard(t *testing.T) {
	t.Parallel()

	src := `"""CLI entry."""
import os
import sys, json
from collections import OrderedDict
from os.path import join

def main():
    import re
    print(join("a", "b"))

if __name__ == "__main__":
    main()
`
	rec, err := Analyze("app.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"collections", "json", "os", "re", "sys"}, rec.Imports)
	assert.True(t, rec.HasMainGuard)
	assert.Equal(t, "CLI entry.", rec.Docstring)
}

func TestAnalyzeExcludesRelativeImports(t *testing.T) {
	t.Parallel()

	src := `from . import sibling
from .. import parent
from .local import thing
import requests
`
	rec, err := Analyze("mod.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"requests"}, rec.Imports)
}

func TestAnalyzeImportAliases(t *testing.T) {
	t.Parallel()

	src := `import numpy as np
import os.path as p, collections.abc as abc
`
	rec, err := Analyze("mod.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"collections", "numpy", "os"}, rec.Imports)
}

func TestAnalyzeMultilineDocstring(t *testing.T) {
	t.Parallel()

	src := `"""
Fetches data.

Second paragraph.
"""
import os
`
	rec, err := Analyze("mod.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "Fetches data.\n\nSecond paragraph.", rec.Docstring)
	assert.Equal(t, []string{"os"}, rec.Imports)
}

func TestAnalyzeDocstringAfterComments(t *testing.T) {
	t.Parallel()

	src := `#!/usr/bin/env python
# -*- coding: utf-8 -*-

'''Single quoted doc.'''
import json
`
	rec, err := Analyze("mod.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "Single quoted doc.", rec.Docstring)
}

func TestAnalyzeIgnoresImportsInsideStrings(t *testing.T) {
	t.Parallel()

	src := `import os

snippet = """
import hidden
from secret import thing
"""
`
	rec, err := Analyze("mod.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"os"}, rec.Imports)
}

func TestAnalyzeNestedMainGuardDoesNotCount(t *testing.T) {
	t.Parallel()

	src := `def run():
    if __name__ == "__main__":
        pass
`
	rec, err := Analyze("mod.py", []byte(src))
	require.NoError(t, err)
	assert.False(t, rec.HasMainGuard)
}

func TestAnalyzeSingleQuoteMainGuard(t *testing.T) {
	t.Parallel()

	rec, err := Analyze("mod.py", []byte("if __name__ == '__main__':\n    pass\n"))
	require.NoError(t, err)
	assert.True(t, rec.HasMainGuard)
}

func TestAnalyzeSyntaxErrorYieldsEmptyRecord(t *testing.T) {
	t.Parallel()

	src := `import os
broken = """never closed
`
	rec, err := Analyze("bad.py", []byte(src))
	require.ErrorIs(t, err, ErrSyntax)
	assert.Empty(t, rec.Imports)
	assert.Empty(t, rec.Docstring)
	assert.False(t, rec.HasMainGuard)
	assert.Equal(t, "bad.py", rec.RelPath)
	assert.Equal(t, KindSource, rec.Kind)
}

func TestAnalyzeNoDocstring(t *testing.T) {
	t.Parallel()

	rec, err := Analyze("mod.py", []byte("x = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, rec.Docstring)
	assert.Empty(t, rec.Imports)
}

func TestClassifyExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindSource, ClassifyExt(".py"))
	assert.Equal(t, KindOther, ClassifyExt(".json"))
	assert.Equal(t, KindOther, ClassifyExt(""))
}
