package merge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tarmerge/internal/diff"
)

// DiffDirName is the directory under the output root holding version diffs.
const DiffDirName = ".versions"

// WriteDiffs emits unified diffs between consecutive versions of every
// multi-version path, under <root>/.versions/ mirroring the merged tree.
// The diff for versions N and N+1 of "a/b.py" lands at
// ".versions/a/b.py.v1-v2.diff". Per-path failures are logged and skipped;
// the returned count is the number of diff files written.
func WriteDiffs(root string, vm *VersionMap, opt diff.Options, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	written := 0
	for _, p := range vm.Paths() {
		versions := vm.Versions(p)
		if len(versions) < 2 {
			continue
		}
		for i := 0; i+1 < len(versions); i++ {
			body, oversize := diff.Unified(
				VersionedName(p, i+1),
				VersionedName(p, i+2),
				versions[i].Content,
				versions[i+1].Content,
				opt,
			)
			name := fmt.Sprintf("%s.v%d-v%d.diff", p, i+1, i+2)
			full := filepath.Join(root, DiffDirName, filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				logger.Warn("diff write failed, skipped", "path", p, "error", truncate(err.Error(), 120))
				continue
			}
			if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
				logger.Warn("diff write failed, skipped", "path", p, "error", truncate(err.Error(), 120))
				continue
			}
			if oversize {
				logger.Debug("diff omitted (oversize)", "path", p)
			}
			written++
		}
	}
	return written
}
