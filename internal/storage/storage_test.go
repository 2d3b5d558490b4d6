package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFile_LoadMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	data, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data != nil {
		t.Errorf("missing snapshot should load as nil, got %q", data)
	}
}

func TestFile_SaveLoad(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nested", "state.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f.Save([]byte(`{"notes":[]}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := f.Save([]byte(`{"notes":[{"id":"1"}]}`)); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	data, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != `{"notes":[{"id":"1"}]}` {
		t.Errorf("Load = %q, want latest snapshot", data)
	}
}

func TestFile_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f.Save([]byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Errorf("dir should contain only the snapshot, got %v", entries)
	}
}

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "notas-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_LoadMissing(t *testing.T) {
	s := testSQLite(t)
	data, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data != nil {
		t.Errorf("missing record should load as nil, got %q", data)
	}
}

func TestSQLite_SaveOverwrites(t *testing.T) {
	s := testSQLite(t)
	if err := s.Save([]byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save([]byte("second")); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	data, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Load = %q, want %q", data, "second")
	}
}
