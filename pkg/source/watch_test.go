package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{path}, WatchOptions{
			Debounce: 20 * time.Millisecond,
			OnChange: func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			},
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() error = %v", err)
			}
			return
		case <-tick.C:
			_ = os.WriteFile(path, []byte(`{"nodes": {}}`), 0o644)
		case <-deadline:
			t.Fatal("no change notification")
		}
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	_ = os.WriteFile(path, []byte("{}"), 0o644)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	fired := make(chan struct{}, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644)
	}()
	err := Watch(ctx, []string{path}, WatchOptions{
		Debounce: 10 * time.Millisecond,
		OnChange: func() { fired <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	select {
	case <-fired:
		t.Error("unrelated file should not trigger a reload")
	default:
	}
}

func TestWatchRequiresCallback(t *testing.T) {
	if err := Watch(context.Background(), nil, WatchOptions{}); err == nil {
		t.Error("Watch() without OnChange should fail")
	}
}
