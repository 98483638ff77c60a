package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/burninrubber0/bndtool/internal/bnd2"
	"github.com/burninrubber0/bndtool/internal/numfmt"
	"github.com/burninrubber0/bndtool/internal/progressbar"
	"github.com/spf13/cobra"
)

var (
	noSort         bool
	combineImports bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <input.bundle> <output-dir>",
	Short: "Extract a bundle's resources and metadata to a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, outDir := args[0], args[1]
		start := time.Now()

		slog.Info("Reading bundle", "path", inPath)
		data, err := os.ReadFile(inPath)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", bnd2.ErrIO, inPath, err)
		}

		bundle, err := bnd2.ReadBundle(data)
		if err != nil {
			return err
		}
		slog.Info("Read bundle", "platform", bundle.Platform, "resources", len(bundle.Entries))

		bar := progressbar.New(len(bundle.Entries), !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug"))
		stats, err := bnd2.Extract(bundle, outDir, bnd2.ExtractOptions{
			NoSort:         noSort,
			CombineImports: combineImports,
		}, func(done, total int) {
			bar.Update(done, fmt.Sprintf("resource %d/%d", done, total))
		})
		bar.Finish()
		if err != nil {
			return err
		}

		duration := time.Since(start)
		rate := float64(stats.ResourcesExtracted) / duration.Seconds()

		fmt.Printf("Resources extracted: %s\n", numfmt.Number(int64(stats.ResourcesExtracted)))
		fmt.Printf("Planes written: %d\n", stats.PlanesWritten)
		fmt.Printf("Planes skipped (decompression failures): %d\n", stats.PlanesSkipped)
		fmt.Printf("Bytes written: %s\n", numfmt.Number(stats.BytesWritten))
		fmt.Printf("Duration: %s\n", numfmt.Duration(duration))
		fmt.Printf("Rate: %s resources/sec\n", numfmt.Rate(rate))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&noSort, "nosort", false, "do not sort extracted resources into per-type subdirectories")
	extractCmd.Flags().BoolVar(&combineImports, "combine-imports", false, "write one combined imports file instead of one per resource")
}
