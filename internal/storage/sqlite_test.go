package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreRunRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	rec := RunRecord{
		LevelID:      3,
		Seed:         42,
		Theme:        "cyber",
		Mode:         "dynamic",
		Waypoints:    14,
		TotalLength:  1234.5,
		Complexity:   0.41,
		BalanceScore: 0.83,
		IsFallback:   false,
		Retries:      1,
		DurationMs:   7,
	}
	if _, err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := store.SaveRun(RunRecord{LevelID: 3, Seed: 43, Theme: "cyber", Mode: "dynamic", Waypoints: 2, IsFallback: true}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := store.SaveRun(RunRecord{LevelID: 9, Seed: 1, Theme: "forest", Mode: "hybrid", Waypoints: 8}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	runs, err := store.RecentRuns(3, 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns(3) returned %d records, expected 2", len(runs))
	}
	// Newest first
	if runs[0].Seed != 43 {
		t.Errorf("first run seed = %d, expected 43", runs[0].Seed)
	}
	if runs[1].Theme != "cyber" || runs[1].TotalLength != 1234.5 {
		t.Errorf("round-trip mismatch: %+v", runs[1])
	}

	all, err := store.RecentRuns(-1, 10)
	if err != nil {
		t.Fatalf("RecentRuns(-1) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("RecentRuns(-1) returned %d records, expected 3", len(all))
	}
}

func TestStoreFallbackRate(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	rate, err := store.FallbackRate(5)
	if err != nil {
		t.Fatalf("FallbackRate() failed: %v", err)
	}
	if rate != 0 {
		t.Errorf("empty store fallback rate = %f, expected 0", rate)
	}

	for i := 0; i < 4; i++ {
		rec := RunRecord{LevelID: 5, Seed: int64(i), Theme: "classic", Mode: "dynamic", Waypoints: 5}
		rec.IsFallback = i == 0
		if _, err := store.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	rate, err = store.FallbackRate(5)
	if err != nil {
		t.Fatalf("FallbackRate() failed: %v", err)
	}
	if rate != 0.25 {
		t.Errorf("fallback rate = %f, expected 0.25", rate)
	}
}

func TestStoreMatrixRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	rec := MatrixRecord{
		LevelID:  2,
		Total:    9,
		Passed:   8,
		Warned:   2,
		Failed:   1,
		PassRate: 8.0 / 9.0,
		Critical: false,
	}
	if _, err := store.SaveMatrix(rec); err != nil {
		t.Fatalf("SaveMatrix() failed: %v", err)
	}

	records, err := store.RecentMatrices(2, 5)
	if err != nil {
		t.Fatalf("RecentMatrices() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("RecentMatrices() returned %d records, expected 1", len(records))
	}
	got := records[0]
	if got.Total != 9 || got.Passed != 8 || got.Warned != 2 || got.Failed != 1 || got.Critical {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestStoreClearRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := store.SaveRun(RunRecord{LevelID: 1, Theme: "classic", Mode: "static", Waypoints: 2}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := store.SaveRun(RunRecord{LevelID: 2, Theme: "classic", Mode: "static", Waypoints: 2}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if err := store.ClearRuns(1); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, err := store.RecentRuns(1, 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no level 1 runs after clear, got %d", len(runs))
	}

	// Negative level clears everything.
	if err := store.ClearRuns(-1); err != nil {
		t.Fatalf("ClearRuns(-1) failed: %v", err)
	}
	all, err := store.RecentRuns(-1, 10)
	if err != nil {
		t.Fatalf("RecentRuns(-1) failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty table after full clear, got %d", len(all))
	}
}
