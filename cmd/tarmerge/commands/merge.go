// Package commands builds the cobra subcommands for the tarmerge CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tarmerge/internal/archive"
	"tarmerge/internal/config"
	"tarmerge/internal/diff"
	"tarmerge/internal/merge"
	"tarmerge/internal/progress"
)

// NewMergeCommand builds the `merge` subcommand: scan one or more archives
// into a shared VersionMap and write the deduplicated tree.
func NewMergeCommand() *cobra.Command {
	var (
		outDir         string
		configPath     string
		writeManifest  bool
		writeDiffs     bool
		diffContext    int
		maxDiffBytes   int
		maxMemberBytes int64
	)

	cmd := &cobra.Command{
		Use:   "merge <archive>...",
		Short: "Extract archives and merge file versions by content hash",
		Long: `Merge reads gzip-, lz4- or un-compressed tar archives, groups members by
path, collapses byte-identical content under one hash, and writes one file
per unique path. Paths that collected multiple distinct versions are written
as name_v1.ext, name_v2.ext, ... in the order the versions were first seen.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyMergeConfig(cmd, cfg, &writeManifest, &writeDiffs, &diffContext, &maxDiffBytes, &maxMemberBytes)
			return runMerge(args, outDir, mergeOptions{
				manifest:       writeManifest,
				diffs:          writeDiffs,
				diffContext:    diffContext,
				maxDiffBytes:   maxDiffBytes,
				maxMemberBytes: maxMemberBytes,
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory for the merged tree (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.Flags().BoolVar(&writeManifest, "manifest", true, "write merge.manifest.json at the output root")
	cmd.Flags().BoolVar(&writeDiffs, "diffs", false, "write unified diffs between consecutive versions under .versions/")
	cmd.Flags().IntVar(&diffContext, "diff-context", 4, "context lines in version diffs")
	cmd.Flags().IntVar(&maxDiffBytes, "max-diff-bytes", 2_000_000, "max bytes per version diff (0 = no limit)")
	cmd.Flags().Int64Var(&maxMemberBytes, "max-member-bytes", 0, "skip archive members larger than this (0 = no limit)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

type mergeOptions struct {
	manifest       bool
	diffs          bool
	diffContext    int
	maxDiffBytes   int
	maxMemberBytes int64
}

func runMerge(archives []string, outDir string, opt mergeOptions) error {
	logger := slog.Default()
	vm := merge.NewVersionMap()

	var sources []string
	var scanned int64
	for _, path := range archives {
		base := filepath.Base(path)
		meter := progress.New("scanning "+base, 0)
		st, err := archive.Scan(path, archive.Options{
			MaxMemberBytes: opt.maxMemberBytes,
			OnMember:       func(string) { meter.Inc(1) },
		}, logger, vm.Add)
		meter.Done()
		if err != nil {
			logger.Error("archive failed", "archive", base, "error", err)
			color.New(color.FgRed).Fprintf(os.Stderr, "FAILED %s\n", base)
			continue
		}
		sources = append(sources, base)
		scanned += st.Bytes
		logger.Debug("archive scanned", "archive", base, "members", st.Members, "skipped", st.Skipped)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no archive could be processed")
	}

	st := merge.WriteTree(outDir, vm, logger)

	if opt.manifest {
		man := merge.BuildManifest(moduleName(sources[0]), sources, vm)
		if err := merge.WriteManifest(outDir, man); err != nil {
			logger.Warn("manifest not written", "error", err)
		}
	}
	if opt.diffs {
		n := merge.WriteDiffs(outDir, vm, diff.Options{
			MaxBytes: opt.maxDiffBytes,
			Context:  opt.diffContext,
		}, logger)
		logger.Debug("version diffs written", "count", n)
	}

	color.New(color.FgGreen).Fprintf(os.Stderr,
		"merged %d paths into %s (%d files, %d collisions, %d write errors, %s scanned)\n",
		st.Paths, outDir, st.Files, st.Collisions, st.Errors, humanize.Bytes(uint64(scanned)))
	return nil
}

// applyMergeConfig fills in file-provided defaults for flags the user left
// untouched.
func applyMergeConfig(cmd *cobra.Command, cfg config.Config, manifest, diffs *bool, diffContext, maxDiffBytes *int, maxMemberBytes *int64) {
	if cfg.Manifest != nil && !cmd.Flags().Changed("manifest") {
		*manifest = *cfg.Manifest
	}
	if cfg.Diffs != nil && !cmd.Flags().Changed("diffs") {
		*diffs = *cfg.Diffs
	}
	if cfg.DiffContext > 0 && !cmd.Flags().Changed("diff-context") {
		*diffContext = cfg.DiffContext
	}
	if cfg.MaxDiffBytes > 0 && !cmd.Flags().Changed("max-diff-bytes") {
		*maxDiffBytes = cfg.MaxDiffBytes
	}
	if cfg.MaxFileBytes > 0 && !cmd.Flags().Changed("max-member-bytes") {
		*maxMemberBytes = cfg.MaxFileBytes
	}
}

// moduleName derives a human-readable module name from an archive file name.
func moduleName(base string) string {
	for _, suf := range []string{".tar.gz", ".tgz", ".tar.lz4", ".tar"} {
		if strings.HasSuffix(base, suf) {
			return strings.TrimSuffix(base, suf)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
