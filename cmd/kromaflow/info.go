package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/menta2k/kromaflow/pkg/settings"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the filter presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBRIGHTNESS\tCONTRAST\tSATURATION\tSEPIA\tGRAYSCALE")
			for _, name := range settings.PresetNames() {
				p, err := settings.LookupPreset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d%%\t%d%%\t%d%%\t%d%%\t%t\n",
					name, p.Brightness, p.Contrast, p.Saturation, p.Sepia, p.Grayscale)
			}
			return w.Flush()
		},
	}
}

func newFontsCmd() *cobra.Command {
	var fontsDir string

	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List the caption font families",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if fontsDir != "" {
				cfg.Fonts.Dir = fontsDir
			}

			registry, err := cfg.FontRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			fallback := registry.Resolve("")
			for _, family := range registry.Families() {
				marker := ""
				if family == fallback {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", family, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fontsDir, "fonts-dir", "", "directory of extra .ttf/.otf caption fonts")
	return cmd
}
