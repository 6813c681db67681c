package merge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// WriteStats summarizes one merge-to-disk pass.
type WriteStats struct {
	Paths      int   // distinct paths processed
	Files      int   // files written
	Collisions int   // paths written with version suffixes
	Errors     int   // paths skipped due to mkdir/write failures
	Bytes      int64 // content bytes written
}

// WriteTree materializes the VersionMap under root. A path with exactly one
// version is written as-is; a path with N distinct versions produces N files
// named with _v1.._vN suffixes and no unsuffixed file. A mkdir or write
// failure is logged and only skips that path.
func WriteTree(root string, vm *VersionMap, logger *slog.Logger) WriteStats {
	var st WriteStats
	if logger == nil {
		logger = slog.Default()
	}

	for _, p := range vm.Paths() {
		st.Paths++
		versions := vm.Versions(p)
		if err := writePath(root, p, versions); err != nil {
			logger.Warn("merge write failed, skipped", "path", p, "error", truncate(err.Error(), 120))
			st.Errors++
			continue
		}
		st.Files += len(versions)
		if len(versions) > 1 {
			st.Collisions++
		}
		for _, v := range versions {
			st.Bytes += int64(len(v.Content))
		}
	}
	return st
}

func writePath(root, p string, versions []Version) error {
	full := filepath.Join(root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if len(versions) == 1 {
		return os.WriteFile(full, versions[0].Content, 0o644)
	}
	for i, v := range versions {
		name := filepath.Join(root, filepath.FromSlash(VersionedName(p, i+1)))
		if err := os.WriteFile(name, v.Content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// VersionedName inserts a _vN suffix before the file extension:
// "dir/app.py" -> "dir/app_v2.py", extensionless "Makefile" -> "Makefile_v2".
func VersionedName(p string, n int) string {
	dir, base := "", p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		dir, base = p[:i+1], p[i+1:]
	}
	ext := ""
	if i := strings.LastIndex(base, "."); i > 0 {
		base, ext = base[:i], base[i:]
	}
	return fmt.Sprintf("%s%s_v%d%s", dir, base, n, ext)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
