package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestWriteReadOverwrite(t *testing.T) {
	s := newTestStorage(t)

	if err := s.WriteFile("session", "slot.json", []byte("first")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := s.ReadFile("session", "slot.json")
	if err != nil || string(got) != "first" {
		t.Fatalf("ReadFile = %q, %v", got, err)
	}

	// 覆盖写入后缓存必须失效
	if err := s.WriteFile("session", "slot.json", []byte("second")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, _ = s.ReadFile("session", "slot.json")
	if string(got) != "second" {
		t.Errorf("stale cache: %q", got)
	}

	if _, err := os.Stat(filepath.Join(s.BaseDir, "session", "slot.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind")
	}
}

func TestReadMissingAndRemove(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.ReadFile("", "missing.json"); !errors.Is(err, ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if err := s.Remove("", "missing.json"); err != nil {
		t.Errorf("removing a missing file should be a no-op: %v", err)
	}

	if err := s.WriteJSON("", "v.json", map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	var v map[string]int
	if err := s.ReadJSON("", "v.json", &v); err != nil || v["a"] != 1 {
		t.Fatalf("ReadJSON = %v, %v", v, err)
	}
	if err := s.Remove("", "v.json"); err != nil {
		t.Fatal(err)
	}
	if s.Exists("", "v.json") {
		t.Errorf("file still exists after Remove")
	}
	if _, err := s.ReadFile("", "v.json"); err == nil {
		t.Errorf("read after remove should fail, cache must be invalidated")
	}
}
