package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/burninrubber0/bndtool/internal/bnd2"
	"github.com/burninrubber0/bndtool/internal/numfmt"
	"github.com/burninrubber0/bndtool/internal/progressbar"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <input-dir> <output.bundle>",
	Short: "Pack a directory of resources and a metadata sidecar into a bundle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inDir, outPath := args[0], args[1]
		start := time.Now()

		metaPath := filepath.Join(inDir, bnd2.MetadataFilename)
		slog.Info("Reading metadata", "path", metaPath)
		metaData, err := os.ReadFile(metaPath)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", bnd2.ErrIO, metaPath, err)
		}
		meta, err := bnd2.DecodeMetadata(metaData)
		if err != nil {
			return err
		}
		slog.Info("Parsed metadata", "platform", meta.Bundle.Platform, "resources", len(meta.Resources))

		ids := make([]uint64, len(meta.Resources))
		for i, rm := range meta.Resources {
			ids[i] = rm.ID
		}
		files, err := bnd2.DiscoverResourceFiles(inDir, ids)
		if err != nil {
			return err
		}

		importsByID, err := loadImports(inDir, meta, files)
		if err != nil {
			return err
		}

		debugData, err := os.ReadFile(filepath.Join(inDir, bnd2.DebugDataFilename))
		if err != nil {
			debugData = nil
		}

		bar := progressbar.New(len(meta.Resources), !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug"))
		out, bundle, stats, err := bnd2.Create(meta, files, importsByID, debugData, bnd2.CreateOptions{
			DefaultPrimaryAlignment:   cfg.PrimaryAlignment,
			DefaultSecondaryAlignment: cfg.SecondaryAlignment,
		}, func(done, total int) {
			bar.Update(done, fmt.Sprintf("resource %d/%d", done, total))
		})
		bar.Finish()
		if err != nil {
			return err
		}

		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return fmt.Errorf("%w: writing %s: %v", bnd2.ErrIO, outPath, err)
		}

		duration := time.Since(start)
		rate := float64(stats.ResourcesPacked) / duration.Seconds()

		fmt.Printf("Resources packed: %s\n", numfmt.Number(int64(stats.ResourcesPacked)))
		fmt.Printf("Bytes packed: %s\n", numfmt.Number(stats.BytesPacked))
		fmt.Printf("Bundle size: %s\n", numfmt.Number(int64(len(out))))
		fmt.Printf("Duration: %s\n", numfmt.Duration(duration))
		fmt.Printf("Rate: %s resources/sec\n", numfmt.Rate(rate))
		fmt.Printf("Wrote %s (platform %v)\n", outPath, bundle.Platform)

		return nil
	},
}

func loadImports(inDir string, meta *bnd2.Metadata, files map[uint64]bnd2.ResourceFiles) (map[uint64][]bnd2.ImportRecord, error) {
	combinedPath := filepath.Join(inDir, bnd2.ImportsFilename)
	if data, err := os.ReadFile(combinedPath); err == nil {
		return bnd2.DecodeCombinedImports(data)
	}

	out := make(map[uint64][]bnd2.ImportRecord)
	for _, rm := range meta.Resources {
		rf := files[rm.ID]
		if rf.ImportsYAML == "" {
			continue
		}
		data, err := os.ReadFile(rf.ImportsYAML)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", bnd2.ErrIO, rf.ImportsYAML, err)
		}
		records, err := bnd2.DecodeImports(data)
		if err != nil {
			return nil, err
		}
		out[rm.ID] = records
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(createCmd)
}
