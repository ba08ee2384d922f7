package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/menta2k/kromaflow"
	"github.com/menta2k/kromaflow/internal/utils"
	"github.com/menta2k/kromaflow/pkg/scheduler"
	"github.com/menta2k/kromaflow/pkg/settings"
)

// debounceTime lets a writer finish before the file is read
const debounceTime = 150 * time.Millisecond

func newWatchCmd() *cobra.Command {
	f := &editFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-export whenever the image or the settings document changes",
		Long: `Watch renders like render, then keeps running. Every change to the input
image or the settings document requests a redraw; redraws are coalesced on a
frame loop running at scheduler.fps, and every completed frame is exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, f)
		},
	}

	f.register(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, f *editFlags) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if utils.DirExists(f.in) {
		return fmt.Errorf("watch needs a single image, %s is a directory", f.in)
	}

	loop := scheduler.NewFrameLoop(cfg.Scheduler.FPS)

	var sess *session
	onFrame := func(frame kromaflow.Frame) error {
		path, err := sess.exporter.Save(frame.Image, frame.Settings.Format)
		if err != nil {
			return err
		}
		logger.Info("frame exported", "path", path, "format", frame.Settings.Format)
		return nil
	}

	sess, err = newSession(cmd, cfg, logger, f, loop, onFrame)
	if err != nil {
		return err
	}
	if err := sess.editor.LoadImage(f.in); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	handlers := map[string]func(){
		absPath(f.in): func() {
			if err := sess.editor.LoadImage(f.in); err != nil {
				logger.Warn("image reload failed, keeping the previous image", "error", err)
				return
			}
			logger.Debug("image reloaded", "path", f.in)
		},
	}
	if f.settingsPath != "" {
		handlers[absPath(f.settingsPath)] = func() {
			next, err := f.settings(cmd)
			if err != nil {
				logger.Warn("settings reload failed, keeping the previous settings", "error", err)
				return
			}
			sess.editor.Update(func(settings.Settings) settings.Settings { return next })
			logger.Debug("settings reloaded", "path", f.settingsPath)
		}
	}

	// watch directories so editors that replace files on save are seen
	dirs := map[string]bool{}
	for path := range handlers {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	logger.Info("watching for changes", "image", f.in, "settings", f.settingsPath, "fps", cfg.Scheduler.FPS)

	d := newDebouncer(debounceTime)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			<-loopErr
			logger.Info("watch stopped")
			return nil

		case err := <-loopErr:
			if errors.Is(err, ctx.Err()) {
				return nil
			}
			return err

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			path := absPath(event.Name)
			if handler, ok := handlers[path]; ok {
				d.trigger(path, handler)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// debouncer runs a handler once a path has been quiet for the delay
type debouncer struct {
	delay  time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
