package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/menta2k/kromaflow/internal/utils"
	"github.com/menta2k/kromaflow/pkg/cropper"
)

func newRenderCmd() *cobra.Command {
	f := &editFlags{}
	var debug bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame and export it",
		Long: `Render loads the input image, applies the settings document, the preset and
the individual flags in that order, draws one frame and exports it.

When --in is a directory every image below it is rendered with the same
settings and written as <name>-<format>.<ext>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, f, debug)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&debug, "debug", false, "also write an overlay showing the crop on the source image")

	return cmd
}

func runRender(cmd *cobra.Command, f *editFlags, debug bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, cfg, logger, f, nil, nil)
	if err != nil {
		return err
	}

	batch := utils.DirExists(f.in)
	inputs := []string{f.in}
	if batch {
		if inputs, err = utils.ListImageFiles(f.in); err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no images found in %s", f.in)
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range inputs {
		if err := renderOne(out, sess, path, batch, debug); err != nil {
			if !batch {
				return err
			}
			logger.Warn("render failed", "input", path, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(inputs))
	}
	return nil
}

func renderOne(out io.Writer, sess *session, path string, batch, debug bool) error {
	if err := sess.editor.LoadImage(path); err != nil {
		return err
	}

	var written string
	var err error
	if batch {
		written, err = sess.saveAs(sess.outputName(path, ""))
	} else {
		written, err = sess.editor.Save()
	}
	if err != nil {
		return err
	}
	report(out, written)

	if debug {
		dbgPath, err := sess.saveDebug(path)
		if err != nil {
			return err
		}
		report(out, dbgPath)
	}
	return nil
}

// outputName names the export of input inside the export directory
func (s *session) outputName(input, suffix string) string {
	cfg := s.exporter.Config()
	format := s.editor.Settings().Format
	return utils.GenerateOutputFilename(input, cfg.Dir, "", fmt.Sprintf("-%s%s", format, suffix), cfg.Encoding.Extension())
}

// saveAs exports the current frame to path
func (s *session) saveAs(path string) (string, error) {
	var buf bytes.Buffer
	if err := s.editor.Export(&buf); err != nil {
		return "", err
	}
	return path, writeFile(path, buf.Bytes())
}

// saveDebug writes the source image with the crop geometry drawn on it
func (s *session) saveDebug(input string) (string, error) {
	img := s.editor.Image()
	g, err := s.resolver.ResolveImage(img, s.editor.Settings().Format)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.exporter.Encode(&buf, cropper.DebugOverlay(img, g)); err != nil {
		return "", err
	}

	path := s.outputName(input, "-debug")
	return path, writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func report(out io.Writer, path string) {
	size := ""
	if info, err := os.Stat(path); err == nil {
		size = " (" + utils.FormatFileSize(info.Size()) + ")"
	}
	fmt.Fprintf(out, "wrote %s%s\n", path, size)
}
