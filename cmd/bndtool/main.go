package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/burninrubber0/bndtool/internal/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string

	primaryAlignment   uint32
	secondaryAlignment uint32
	logLevel           string
	logFormat          string
	noProgress         bool
)

var rootCmd = &cobra.Command{
	Use:   "bndtool",
	Short: "Extract and create bnd2 bundle containers",
	Long: `bndtool reads and writes bnd2, the resource bundle container format used
by Burnout Paradise across PC, Xbox 360, and PlayStation 3.

extract unpacks a bundle's resources and metadata to a directory;
create packs a directory of resources and a metadata sidecar back
into a bundle.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("primary-alignment") {
			cfg.PrimaryAlignment = primaryAlignment
		}
		if cmd.Flags().Changed("secondary-alignment") {
			cfg.SecondaryAlignment = secondaryAlignment
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}

		logger := slog.New(handler)
		slog.SetDefault(logger)

		slog.Info("Configuration",
			"primary_alignment", fmt.Sprintf("0x%X", cfg.PrimaryAlignment),
			"secondary_alignment", fmt.Sprintf("0x%X", cfg.SecondaryAlignment),
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is bndtool.yaml in the home directory or pwd)")
	rootCmd.PersistentFlags().Uint32Var(&primaryAlignment, "primary-alignment", 0, "default primary portion alignment")
	rootCmd.PersistentFlags().Uint32Var(&secondaryAlignment, "secondary-alignment", 0, "default secondary portion alignment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}
