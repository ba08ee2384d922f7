package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/kromaflow"
	"github.com/menta2k/kromaflow/internal/config"
	"github.com/menta2k/kromaflow/pkg/usererr"
)

// global flags
var (
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if usererr.IsUserError(err) {
			fmt.Fprintln(os.Stderr, usererr.Message(err))
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		slog.Debug("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kromaflow",
		Short: "Caption, filter and reframe images",
		Long: `kromaflow renders an image with top and bottom captions, CSS-style color
filters and an output format (original, square or story).

Examples:
  # Square frame with captions and the vintage preset
  kromaflow render --in photo.jpg --out ./frames --format square \
    --top "WHEN THE BUILD" --bottom "PASSES FIRST TRY" --preset vintage

  # Settings from a document
  kromaflow render --in photo.jpg --settings caption.yaml

  # Re-export whenever the image or the settings document changes
  kromaflow watch --in photo.jpg --settings caption.yaml --out ./frames`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: ./config.yaml or "+config.GetConfigPath()+")")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newFontsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig loads the configuration and installs the default logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}

	var handler slog.Handler
	if cfg.Logging.JSONFormat {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kromaflow %s\n", kromaflow.Version)
		},
	}
}
