package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTargetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	target := &Target{
		ID:           "docs",
		LocalRoot:    "/home/user/docs",
		RemoteRootID: "folder-abc",
		Recursive:    true,
	}
	if err := db.SaveTarget(target); err != nil {
		t.Fatalf("SaveTarget() error = %v", err)
	}

	got, err := db.GetTarget("docs")
	if err != nil {
		t.Fatalf("GetTarget() error = %v", err)
	}
	if got.LocalRoot != target.LocalRoot || got.RemoteRootID != target.RemoteRootID {
		t.Errorf("GetTarget() = %+v, want %+v", got, target)
	}
	if !got.Recursive {
		t.Error("Recursive = false, want true")
	}
}

func TestSaveTargetOverwrites(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveTarget(&Target{ID: "docs", LocalRoot: "/old", RemoteRootID: "r1", Recursive: true}); err != nil {
		t.Fatalf("SaveTarget() error = %v", err)
	}
	if err := db.SaveTarget(&Target{ID: "docs", LocalRoot: "/new", RemoteRootID: "r2", Recursive: false}); err != nil {
		t.Fatalf("SaveTarget() overwrite error = %v", err)
	}

	got, err := db.GetTarget("docs")
	if err != nil {
		t.Fatalf("GetTarget() error = %v", err)
	}
	if got.LocalRoot != "/new" || got.RemoteRootID != "r2" || got.Recursive {
		t.Errorf("GetTarget() after overwrite = %+v", got)
	}

	targets, err := db.ListTargets()
	if err != nil {
		t.Fatalf("ListTargets() error = %v", err)
	}
	if len(targets) != 1 {
		t.Errorf("ListTargets() len = %d, want 1", len(targets))
	}
}

func TestGetTargetNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetTarget("missing"); err == nil {
		t.Error("GetTarget() error = nil, want not-found error")
	}
}

func TestDeleteTarget(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveTarget(&Target{ID: "docs", LocalRoot: "/d", RemoteRootID: "r"}); err != nil {
		t.Fatalf("SaveTarget() error = %v", err)
	}
	if err := db.RecordRun(&Run{TargetID: "docs", StartedAt: time.Now(), Created: 1}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	if err := db.DeleteTarget("docs"); err != nil {
		t.Fatalf("DeleteTarget() error = %v", err)
	}
	if _, err := db.GetTarget("docs"); err == nil {
		t.Error("GetTarget() after delete succeeded, want error")
	}
	runs, err := db.ListRuns("docs", 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns() after delete = %d runs, want 0", len(runs))
	}

	if err := db.DeleteTarget("docs"); err == nil {
		t.Error("DeleteTarget() on missing target succeeded, want error")
	}
}

func TestRunsOrderedNewestFirst(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveTarget(&Target{ID: "docs", LocalRoot: "/d", RemoteRootID: "r"}); err != nil {
		t.Fatalf("SaveTarget() error = %v", err)
	}

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &Run{
			TargetID:  "docs",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Duration:  time.Duration(i+1) * time.Second,
			Created:   i,
		}
		if err := db.RecordRun(run); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
		if run.ID == 0 {
			t.Error("RecordRun() did not set run ID")
		}
	}

	runs, err := db.ListRuns("docs", 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() len = %d, want 2 (limit applied)", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest-first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
	if runs[0].Created != 2 {
		t.Errorf("newest run Created = %d, want 2", runs[0].Created)
	}
}
