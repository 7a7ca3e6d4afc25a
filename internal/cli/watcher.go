package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/argcall/internal/utils"
)

// DefaultDebounce batches bursts of file events, e.g. an editor saving
// several files, into a single run
const DefaultDebounce = 200 * time.Millisecond

// Watcher regenerates whenever a watched package's sources change
type Watcher struct {
	generator   *Generator
	config      Config
	diagnostics *utils.DiagnosticSystem
	debounce    time.Duration
	watched     map[string]bool

	// runs receives the error of every run; tests use it to synchronize
	runs chan<- error
}

// NewWatcher creates a watcher for the directories of config
func NewWatcher(generator *Generator, config Config, diagnostics *utils.DiagnosticSystem) *Watcher {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Watcher{
		generator:   generator,
		config:      config,
		diagnostics: diagnostics,
		debounce:    DefaultDebounce,
		watched:     make(map[string]bool),
	}
}

// Run generates once and then again after every relevant change until ctx
// is cancelled. Failed runs are reported and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	w.generate(ctx, fsw)
	w.diagnostics.Info("Watching %d directories for changes", len(w.watched))

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.diagnostics.Debug("%s %s", event.Op, displayPath(event.Name))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			trigger = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.diagnostics.Warn("watch error: %v", err)

		case <-trigger:
			trigger = nil
			w.generate(ctx, fsw)
		}
	}
}

// generate runs the generator and refreshes the watched directories, so
// packages created since the last run are picked up
func (w *Watcher) generate(ctx context.Context, fsw *fsnotify.Watcher) {
	err := w.generator.Run(ctx, w.config)
	if err != nil {
		w.generator.reporter.ReportError(err)
	} else {
		w.diagnostics.Success("Generated %d files (%d unchanged)",
			w.generator.summary.FilesGenerated, w.generator.summary.FilesUnchanged)
	}

	for _, dir := range w.directories() {
		if w.watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			w.diagnostics.Warn("failed to watch %s: %v", displayPath(dir), err)
			continue
		}
		w.watched[dir] = true
	}

	if w.runs != nil {
		w.runs <- err
	}
}

// directories lists every directory that may hold packages, including
// empty ones below recursive patterns
func (w *Watcher) directories() []string {
	filter := utils.DefaultDirectoryFilter(w.config.SkipDirs...)
	var dirs []string
	for _, dir := range w.config.Directories {
		base, recursive := splitPattern(dir)
		absDir, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		if !recursive {
			dirs = append(dirs, absDir)
			continue
		}
		found, err := utils.Directories(absDir, filter)
		if err != nil {
			w.diagnostics.Warn("failed to scan %s: %v", base, err)
			continue
		}
		dirs = append(dirs, found...)
	}
	return dirs
}

// relevant reports whether an event can change generated output. Writes of
// the generated file itself are ignored so a run does not trigger another.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if name == w.config.OutputFile || strings.HasSuffix(name, "_test.go") {
		return false
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	return strings.HasSuffix(name, ".go") || event.Has(fsnotify.Create)
}
