package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
)

// fakeStore is an in-memory Store for engine tests
type fakeStore struct {
	children map[string][]*types.DriveFile
	nextID   int

	failUploads map[string]error

	listCalls         int
	createFolderCalls int
	uploadCalls       int
	updateCalls       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		children:    make(map[string][]*types.DriveFile),
		failUploads: make(map[string]error),
	}
}

func (s *fakeStore) newID() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *fakeStore) ListChildren(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.DriveFile, error) {
	s.listCalls++
	return s.children[folderID], nil
}

func (s *fakeStore) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, name string, parentID string) (*types.DriveFile, error) {
	s.createFolderCalls++
	folder := &types.DriveFile{
		ID:       s.newID(),
		Name:     name,
		MimeType: utils.MimeTypeFolder,
	}
	s.children[parentID] = append(s.children[parentID], folder)
	return folder, nil
}

func (s *fakeStore) Upload(ctx context.Context, reqCtx *types.RequestContext, localPath string, name string, parentID string) (*types.DriveFile, error) {
	s.uploadCalls++
	if err, ok := s.failUploads[name]; ok {
		return nil, err
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, err
	}
	file := &types.DriveFile{
		ID:           s.newID(),
		Name:         name,
		MimeType:     "application/octet-stream",
		Size:         info.Size(),
		ModifiedTime: info.ModTime().UTC().Format(time.RFC3339),
	}
	s.children[parentID] = append(s.children[parentID], file)
	return file, nil
}

func (s *fakeStore) UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, localPath string) (*types.DriveFile, error) {
	s.updateCalls++
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, err
	}
	for _, files := range s.children {
		for _, f := range files {
			if f.ID == fileID {
				f.ModifiedTime = info.ModTime().UTC().Format(time.RFC3339)
				f.Size = info.Size()
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("file %s not found", fileID)
}

// writeFile creates a file with a fixed whole-second mtime
func writeFile(t *testing.T, path string, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

var testMTime = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestSyncEmptyRemoteCreatesTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b", testMTime)

	store := newFakeStore()
	engine := NewEngine(store, nil)

	report, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if report.Created != 3 {
		t.Errorf("Created = %d, want 3", report.Created)
	}
	if report.Updated != 0 || report.Skipped != 0 {
		t.Errorf("Updated = %d, Skipped = %d, want 0, 0", report.Updated, report.Skipped)
	}
	if len(report.Errors) != 0 {
		t.Errorf("Errors = %v, want none", report.Errors)
	}
	if store.createFolderCalls != 1 {
		t.Errorf("createFolderCalls = %d, want 1", store.createFolderCalls)
	}
	if store.uploadCalls != 2 {
		t.Errorf("uploadCalls = %d, want 2", store.uploadCalls)
	}
}

func TestSyncIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b", testMTime)

	store := newFakeStore()
	engine := NewEngine(store, nil)
	opts := Options{LocalRoot: root, RemoteRootID: "root", Recursive: true}

	if _, err := engine.Sync(context.Background(), opts); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}

	report, err := engine.Sync(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}

	if report.Created != 0 || report.Updated != 0 {
		t.Errorf("second run Created = %d, Updated = %d, want 0, 0", report.Created, report.Updated)
	}
	if report.Skipped != 2 {
		t.Errorf("second run Skipped = %d, want 2", report.Skipped)
	}
	if store.createFolderCalls != 1 {
		t.Errorf("createFolderCalls = %d, want 1 (folder reused on second run)", store.createFolderCalls)
	}
}

func TestSyncAdditive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)

	store := newFakeStore()
	// Remote has a file the local tree does not.
	store.children["root"] = []*types.DriveFile{
		{ID: "keep-1", Name: "only-remote.txt", ModifiedTime: "2023-06-01T00:00:00Z"},
	}

	engine := NewEngine(store, nil)
	report, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if report.Created != 1 {
		t.Errorf("Created = %d, want 1", report.Created)
	}

	found := false
	for _, f := range store.children["root"] {
		if f.ID == "keep-1" {
			found = true
		}
	}
	if !found {
		t.Error("remote-only file was removed; sync must never delete")
	}
}

func TestSyncPartialFailure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)
	writeFile(t, filepath.Join(root, "b.txt"), "b", testMTime)
	writeFile(t, filepath.Join(root, "c.txt"), "c", testMTime)

	store := newFakeStore()
	store.failUploads["b.txt"] = fmt.Errorf("quota exceeded")

	engine := NewEngine(store, nil)
	report, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if len(report.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly 1", report.Errors)
	}
	if report.Errors[0].RelativePath != "b.txt" {
		t.Errorf("error path = %q, want %q", report.Errors[0].RelativePath, "b.txt")
	}
	if report.Created != 2 {
		t.Errorf("Created = %d, want 2 (other files still uploaded)", report.Created)
	}
}

func TestSyncNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b", testMTime)

	store := newFakeStore()
	engine := NewEngine(store, nil)

	report, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    false,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if report.Created != 1 {
		t.Errorf("Created = %d, want 1 (only top-level file)", report.Created)
	}
	if store.createFolderCalls != 0 {
		t.Errorf("createFolderCalls = %d, want 0", store.createFolderCalls)
	}
	if report.Processed() != 1 {
		t.Errorf("Processed() = %d, want 1 (directory not counted)", report.Processed())
	}
}

func TestSyncLocalNewerUpdates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "new content", testMTime)
	writeFile(t, filepath.Join(root, "b.txt"), "b", testMTime)

	store := newFakeStore()
	store.children["root"] = []*types.DriveFile{
		{ID: "old-a", Name: "a.txt", ModifiedTime: "2024-01-01T00:00:00Z"},
		{ID: "bad-b", Name: "b.txt", ModifiedTime: "garbage"},
	}

	engine := NewEngine(store, nil)
	report, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if report.Updated != 2 {
		t.Errorf("Updated = %d, want 2 (stale remote plus unparsable timestamp)", report.Updated)
	}
	if store.updateCalls != 2 {
		t.Errorf("updateCalls = %d, want 2", store.updateCalls)
	}
	if store.uploadCalls != 0 {
		t.Errorf("uploadCalls = %d, want 0", store.uploadCalls)
	}
}

func TestResolveFolderReuse(t *testing.T) {
	store := newFakeStore()
	store.children["root"] = []*types.DriveFile{
		{ID: "existing-sub", Name: "sub", MimeType: utils.MimeTypeFolder},
	}

	engine := NewEngine(store, nil)
	report := newReport()
	reqCtx := &types.RequestContext{TraceID: "test"}

	first, err := engine.ResolveFolder(context.Background(), reqCtx, "root", "sub", report)
	if err != nil {
		t.Fatalf("ResolveFolder() error = %v", err)
	}
	second, err := engine.ResolveFolder(context.Background(), reqCtx, "root", "sub", report)
	if err != nil {
		t.Fatalf("ResolveFolder() error = %v", err)
	}

	if first != "existing-sub" || second != "existing-sub" {
		t.Errorf("ResolveFolder() = %q, %q, want existing-sub both times", first, second)
	}
	if store.createFolderCalls != 0 {
		t.Errorf("createFolderCalls = %d, want 0", store.createFolderCalls)
	}
	if report.Created != 0 {
		t.Errorf("Created = %d, want 0", report.Created)
	}
}

func TestResolveFolderCreatesWhenAbsent(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)
	report := newReport()
	reqCtx := &types.RequestContext{TraceID: "test"}

	id, err := engine.ResolveFolder(context.Background(), reqCtx, "root", "fresh", report)
	if err != nil {
		t.Fatalf("ResolveFolder() error = %v", err)
	}
	if id == "" {
		t.Fatal("ResolveFolder() returned empty ID")
	}
	if store.createFolderCalls != 1 {
		t.Errorf("createFolderCalls = %d, want 1", store.createFolderCalls)
	}
	if report.Created != 1 {
		t.Errorf("Created = %d, want 1", report.Created)
	}
}

func TestSyncRootNotDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, file, "x", testMTime)

	engine := NewEngine(newFakeStore(), nil)

	tests := []struct {
		name string
		root string
	}{
		{"root is a file", file},
		{"root does not exist", filepath.Join(root, "missing")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := engine.Sync(context.Background(), Options{
				LocalRoot:    tt.root,
				RemoteRootID: "root",
				Recursive:    true,
			})
			if err == nil {
				t.Fatal("Sync() error = nil, want fatal error")
			}
			if report != nil {
				t.Errorf("Sync() report = %v, want nil", report)
			}
		})
	}
}

func TestSyncDryRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b", testMTime)

	store := newFakeStore()
	engine := NewEngine(store, nil)

	report, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
		DryRun:       true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if report.Created != 3 {
		t.Errorf("Created = %d, want 3", report.Created)
	}
	if store.createFolderCalls != 0 || store.uploadCalls != 0 || store.updateCalls != 0 {
		t.Errorf("dry run performed mutations: folders=%d uploads=%d updates=%d",
			store.createFolderCalls, store.uploadCalls, store.updateCalls)
	}
}

func TestSyncProgress(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b", testMTime)

	type call struct {
		processed int
		total     int
		name      string
	}
	var calls []call

	engine := NewEngine(newFakeStore(), nil)
	_, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
		Progress: func(processed, total int, name string) {
			calls = append(calls, call{processed, total, name})
		},
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("progress calls = %d, want 3", len(calls))
	}
	last := calls[len(calls)-1]
	if last.processed != 3 || last.total != 3 {
		t.Errorf("final progress = (%d, %d), want (3, 3)", last.processed, last.total)
	}
	for i, c := range calls {
		if c.processed != i+1 {
			t.Errorf("call %d processed = %d, want %d", i, c.processed, i+1)
		}
	}
}

func TestSyncCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(newFakeStore(), nil)
	report, err := engine.Sync(ctx, Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
	})
	if err != context.Canceled {
		t.Errorf("Sync() error = %v, want context.Canceled", err)
	}
	if report == nil {
		t.Error("Sync() report = nil, want partial report")
	}
}

func TestSyncSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a", testMTime)
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	store := newFakeStore()
	engine := NewEngine(store, nil)

	report, err := engine.Sync(context.Background(), Options{
		LocalRoot:    root,
		RemoteRootID: "root",
		Recursive:    true,
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if report.Created != 1 {
		t.Errorf("Created = %d, want 1 (symlink not followed)", report.Created)
	}
	if store.createFolderCalls != 0 {
		t.Errorf("createFolderCalls = %d, want 0", store.createFolderCalls)
	}
}
