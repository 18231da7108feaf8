package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePutGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "models/AAPL/latest_model.json", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, ok, err := store.Get(ctx, "models/AAPL/latest_model.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if string(data) != `{"v":1}` {
		t.Errorf("payload mismatch: %q", data)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	data, ok, err := store.Get(context.Background(), "trading_state/current_state.json")
	if err != nil {
		t.Fatalf("Get on missing key errored: %v", err)
	}
	if ok || data != nil {
		t.Errorf("expected absent key, got ok=%v data=%q", ok, data)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "state.json", []byte("first")); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := store.Put(ctx, "state.json", []byte("second")); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	data, ok, _ := store.Get(ctx, "state.json")
	if !ok || string(data) != "second" {
		t.Errorf("expected overwrite to win, got %q", data)
	}

	// No temp file should survive a completed write.
	if _, err := os.Stat(filepath.Join(dir, "state.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../outside", "..", "/abs/path"} {
		if err := store.Put(ctx, key, []byte("x")); err == nil {
			t.Errorf("Put(%q) should have been rejected", key)
		}
	}
}
