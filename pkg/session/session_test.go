package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/lineageview/pkg/filter"
)

func testState() filter.State {
	return filter.State{}.WithSearch("stg").WithTags("finance")
}

func TestNew(t *testing.T) {
	sess := New(testState(), "digest", time.Hour)
	if err := ValidateID(sess.ID); err != nil {
		t.Errorf("New() id %q is not a uuid: %v", sess.ID, err)
	}
	if sess.IsExpired() {
		t.Error("new session should not be expired")
	}
	if !sess.FilterState().Equal(testState()) {
		t.Errorf("FilterState() = %+v, want %+v", sess.FilterState(), testState())
	}
	if other := New(testState(), "digest", time.Hour); other.ID == sess.ID {
		t.Error("New() should generate distinct ids")
	}
}

func TestUpdate(t *testing.T) {
	sess := New(filter.State{}, "", time.Millisecond)
	before := sess.ExpiresAt
	sess.Update(testState(), time.Hour)
	if !sess.ExpiresAt.After(before) {
		t.Error("Update should extend expiration")
	}
	if sess.FilterState().Query() != "stg" {
		t.Errorf("Query() = %q, want %q", sess.FilterState().Query(), "stg")
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"7b0c2a4e-2f55-4f8e-9a3c-6a0f4f1f1e11", false},
		{"", true},
		{"../etc/passwd", true},
		{"github", true},
	}
	for _, tt := range tests {
		if err := ValidateID(tt.id); (err != nil) != tt.wantErr {
			t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	sess := New(testState(), "d1", time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want session")
	}
	if got.Digest != "d1" || !got.FilterState().Equal(testState()) {
		t.Errorf("Get() = %+v", got)
	}

	missing, err := store.Get(ctx, "00000000-0000-0000-0000-000000000000")
	if err != nil || missing != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", missing, err)
	}

	expired := New(filter.State{}, "", -time.Minute)
	if err := store.Set(ctx, expired); err != nil {
		t.Fatalf("Set(expired): %v", err)
	}
	if got, _ := store.Get(ctx, expired.ID); got != nil {
		t.Error("Get(expired) should return nil")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup: %v", err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("Get after Delete should return nil")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, New(filter.State{}, "", -time.Minute))
	_ = store.Set(ctx, New(filter.State{}, "", time.Hour))
	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() after Cleanup = %d, want 1", store.Len())
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, store)
}

func TestFileStoreRejectsBadID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "../escape"); err != ErrInvalidID {
		t.Errorf("Get(../escape) error = %v, want ErrInvalidID", err)
	}
	sess := New(filter.State{}, "", time.Hour)
	sess.ID = "../escape"
	if err := store.Set(context.Background(), sess); err != ErrInvalidID {
		t.Errorf("Set(../escape) error = %v, want ErrInvalidID", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.json")); !os.IsNotExist(err) {
		t.Error("Set should not write outside the store directory")
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	old := New(filter.State{}, "", -time.Minute)
	if err := store.Set(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, old.ID+".json")); !os.IsNotExist(err) {
		t.Error("Cleanup should remove expired session files")
	}
}

func TestFileStoreCleanupRemovesLeftovers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	live := New(filter.State{}, "", time.Hour)
	if err := store.Set(ctx, live); err != nil {
		t.Fatal(err)
	}
	for name, data := range map[string]string{
		"corrupt.json":  "{",
		"abandoned.tmp": "partial",
		"unrelated.txt": "keep",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]bool{
		live.ID + ".json": true,
		"corrupt.json":    false,
		"abandoned.tmp":   false,
		"unrelated.txt":   true,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		if got := err == nil; got != want {
			t.Errorf("%s exists = %v, want %v", name, got, want)
		}
	}
	if got, err := store.Get(ctx, live.ID); err != nil || got == nil {
		t.Errorf("Get(live) = %v, %v", got, err)
	}
}

func TestFileStoreDefaultDir(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	store, err := NewFileStore("")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(state, "lineageview", "sessions"); store.Path() != want {
		t.Errorf("Path() = %q, want %q", store.Path(), want)
	}
}
