package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/skekre98/cfgstack/config"
)

// FileSource loads one TOML document from the filesystem.
//
// A required file that does not exist fails the load with an error wrapping
// fs.ErrNotExist. An optional file that does not exist loads as an empty
// Table, so layering can skip it silently.
//
// Usage:
//
//	template := &FileSource{Path: "config.template.toml", Optional: true}
//	profile := &FileSource{Path: "profiles/fast.toml"}
type FileSource struct {
	// Path is the document's location.
	Path string

	// Optional makes a missing file load as an empty document.
	Optional bool
}

// Name returns the file path.
func (f *FileSource) Name() string { return f.Path }

// Load reads and parses the file.
//
// Returns a *config.ParseError, with Source set to the path, if the file is
// not well-formed TOML.
func (f *FileSource) Load(ctx context.Context) (config.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(f.Path)
	if err != nil {
		if f.Optional && errors.Is(err, fs.ErrNotExist) {
			return config.Table{}, nil
		}
		return nil, err
	}

	doc, err := config.Parse(string(b))
	if err != nil {
		var perr *config.ParseError
		if errors.As(err, &perr) {
			perr.Source = f.Path
		}
		return nil, err
	}
	return doc, nil
}

// Exists reports whether the file is present. A missing file is not an
// error; any other stat failure is.
func (f *FileSource) Exists() (bool, error) {
	_, err := os.Stat(f.Path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Watch monitors the file's directory with fsnotify and sends an Event
// whenever the file is written, created, removed or renamed. Watching the
// directory rather than the file keeps working across editors that replace
// files and lets an optional file appear later.
//
// The watcher is closed when ctx is cancelled.
func (f *FileSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", f.Path, err)
	}
	dir := filepath.Dir(f.Path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(f.Path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case ch <- config.Event{Source: f.Path}:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
