package source

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/lineageview/pkg/errors"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 250 * time.Millisecond

// WatchOptions configures [Watch].
type WatchOptions struct {
	// Debounce is the quiet period before OnChange fires. Zero uses DefaultDebounce.
	Debounce time.Duration

	// OnChange is called once per burst of changes. Required.
	OnChange func()

	// OnError receives watcher errors. Optional.
	OnError func(error)
}

// Watch blocks until ctx is done and calls opts.OnChange whenever one of files
// is written, created, renamed, or removed. The parent directories are watched
// so that editors and tools replacing files atomically are noticed.
func Watch(ctx context.Context, files []string, opts WatchOptions) error {
	if opts.OnChange == nil {
		return errors.New(errors.ErrCodeInvalidInput, "watch requires an OnChange callback")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.OnError == nil {
		opts.OnError = func(error) {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}
	defer func() { _ = watcher.Close() }()

	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", f)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", dir)
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevant == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(opts.Debounce, func() {
				if ctx.Err() == nil {
					opts.OnChange()
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.OnError(err)
		}
	}
}
