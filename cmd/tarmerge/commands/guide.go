package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tarmerge/internal/config"
	"tarmerge/internal/fswalk"
	"tarmerge/internal/guide"
	"tarmerge/internal/meta"
	"tarmerge/internal/progress"
	"tarmerge/internal/pyscan"
	"tarmerge/internal/textutil"
)

// NewGuideCommand builds the `guide` subcommand: walk an extracted source
// tree, analyze the Python files and render the Markdown setup guide.
func NewGuideCommand() *cobra.Command {
	var (
		outPath        string
		name           string
		configPath     string
		exclude        []string
		maxFileBytes   int64
		useGitignore   bool
		followSymlinks bool
	)

	cmd := &cobra.Command{
		Use:   "guide <src_dir>",
		Short: "Generate a Markdown setup guide for an extracted source tree",
		Long: `Guide scans the tree for Python sources, collects each file's absolute
import roots, module docstring and entry-point guard, and renders a report
with three fixed sections: project structure, an aggregated requirements.txt
style dependency list, and repository setup steps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if len(cfg.Exclude) > 0 && !cmd.Flags().Changed("exclude") {
				exclude = cfg.Exclude
			}
			if cfg.MaxFileBytes > 0 && !cmd.Flags().Changed("max-file-bytes") {
				maxFileBytes = cfg.MaxFileBytes
			}
			if cfg.UseGitignore != nil && !cmd.Flags().Changed("use-gitignore") {
				useGitignore = *cfg.UseGitignore
			}
			return runGuide(filepath.Clean(args[0]), outPath, name, fswalk.Options{
				Exclude:        excludeSet(exclude),
				MaxFileBytes:   maxFileBytes,
				UseGitignore:   useGitignore,
				FollowSymlinks: followSymlinks,
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "SETUP_GUIDE.md", `output file ("-" for stdout)`)
	cmd.Flags().StringVar(&name, "name", "", "project name for the guide title (default: detected)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "extra dir/file prefixes to exclude")
	cmd.Flags().Int64Var(&maxFileBytes, "max-file-bytes", 2_000_000, "max bytes per file to analyze (0 = no limit)")
	cmd.Flags().BoolVar(&useGitignore, "use-gitignore", true, "honor .gitignore patterns during the walk")
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "follow symlinks during the walk")

	return cmd
}

func runGuide(root, outPath, name string, opt fswalk.Options) error {
	logger := slog.Default()

	files, err := fswalk.Collect(root, opt)
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found under %s", root)
	}

	meter := progress.New("analyzing "+filepath.Base(root), int64(len(files)))
	records := make([]pyscan.FileRecord, 0, len(files))
	for _, f := range files {
		meter.Inc(1)
		kind := pyscan.ClassifyExt(f.Ext)
		if kind != pyscan.KindSource {
			records = append(records, pyscan.FileRecord{RelPath: f.RelPath, Kind: kind})
			continue
		}
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			logger.Warn("source read failed, skipped", "file", f.RelPath, "error", err)
			continue
		}
		rec, err := pyscan.Analyze(f.RelPath, textutil.NormalizeUTF8LF(data))
		if err != nil {
			// Empty analysis for this file; the walk continues.
			logger.Warn("analysis failed", "file", f.RelPath, "error", err)
		}
		records = append(records, rec)
	}
	meter.Done()

	inf := meta.Detect(root)
	out := guide.Render(name, records, inf)

	if outPath == "-" {
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return fmt.Errorf("write guide: %w", err)
		}
		color.New(color.FgGreen).Fprintf(os.Stderr, "wrote %s (%d files, %d dependencies)\n",
			outPath, len(records), len(guide.Dependencies(records)))
	}
	return nil
}

func excludeSet(extra []string) map[string]struct{} {
	set := fswalk.DefaultExcludes()
	for _, e := range extra {
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}
