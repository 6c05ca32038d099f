package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileStorageRoundTrip(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	data := []byte(`{"profile":"default","accessToken":"secret"}`)
	if err := storage.Store("profile-default", data); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := storage.Retrieve("profile-default")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Retrieve() = %s, want %s", got, data)
	}

	if err := storage.Delete("profile-default"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := storage.Retrieve("profile-default"); err == nil {
		t.Error("Retrieve() after delete succeeded, want error")
	}
}

func TestFileStorageRejectsNonJSON(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	if err := storage.Store("key", []byte("not json")); err == nil {
		t.Error("Store() accepted non-JSON data, want error")
	}
}

func TestFileStoragePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not meaningful on windows")
	}

	dir := t.TempDir()
	storage, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	if err := storage.Store("key", []byte(`{}`)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "key.json"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("credential file mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestFileStorageDeleteMissingIsNoop(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	if err := storage.Delete("never-stored"); err != nil {
		t.Errorf("Delete() on missing key error = %v, want nil", err)
	}
}
