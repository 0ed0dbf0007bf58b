package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/cobertura/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*HistoryDB, func()) {
	t.Helper()

	tmpDir := t.TempDir()

	db, err := Open(tmpDir, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// sampleSummary returns a populated summary for round-trip tests.
func sampleSummary() *model.Summary {
	return &model.Summary{
		Files: 2,
		Totals: model.Stats{
			LinesValid:      8,
			LinesCovered:    6,
			BranchesValid:   4,
			BranchesCovered: 1,
		},
		LineRate:   0.75,
		BranchRate: 0.25,
		Grade:      "MEDIUM",
		Packages: []model.PackageSummary{
			{Name: "src/main.rs", LinesValid: 5, LinesCovered: 4, LineRate: 0.8, BranchRate: 0.25, Grade: "HIGH"},
			{Name: "src/lib.rs", LinesValid: 3, LinesCovered: 2, LineRate: 0.5, BranchRate: 0, Grade: "MEDIUM"},
		},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()

		dbDir := filepath.Join(tmpDir, "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		// Check that database file exists
		dbPath := filepath.Join(dbDir, "cobertura.db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(tmpDir, opts); err == nil {
			t.Error("expected error for missing database, got nil")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()

		// Create the database first
		db, err := Open(tmpDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		// Reopen without the create option
		opts := Options{CreateIfNotExists: false, EnableWAL: false}
		db2, err := Open(tmpDir, opts)
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()
	})
}

// TestDefaultOptions tests the default options values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

// TestSaveRun tests recording coverage runs.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("returns increasing IDs", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		id1, err := db.SaveRun(ctx, "default", sampleSummary())
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		id2, err := db.SaveRun(ctx, "default", sampleSummary())
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		if id2 <= id1 {
			t.Errorf("expected id %d to be greater than %d", id2, id1)
		}
	})

	t.Run("persists across reopen", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		ctx := context.Background()

		db, err := Open(tmpDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		id, err := db.SaveRun(ctx, "main", sampleSummary())
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		db2, err := Open(tmpDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()

		run, err := db2.GetRunByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run == nil {
			t.Fatal("expected run to survive reopen, got nil")
		}
	})
}

// TestGetRunByID tests retrieval of a recorded run by ID.
func TestGetRunByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips the summary", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		id, err := db.SaveRun(ctx, "main", sampleSummary())
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		run, err := db.GetRunByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run == nil {
			t.Fatal("expected run, got nil")
		}

		if run.ID != id {
			t.Errorf("expected ID %d, got %d", id, run.ID)
		}
		if run.Label != "main" {
			t.Errorf("expected label 'main', got %q", run.Label)
		}
		if run.CreatedAt.IsZero() {
			t.Error("expected non-zero creation time")
		}
		if run.Summary.Files != 2 {
			t.Errorf("expected 2 files, got %d", run.Summary.Files)
		}
		if run.Summary.Totals.LinesValid != 8 {
			t.Errorf("expected 8 valid lines, got %d", run.Summary.Totals.LinesValid)
		}
		if run.Summary.Totals.LinesCovered != 6 {
			t.Errorf("expected 6 covered lines, got %d", run.Summary.Totals.LinesCovered)
		}
		if run.Summary.LineRate != 0.75 {
			t.Errorf("expected line rate 0.75, got %v", run.Summary.LineRate)
		}
		if run.Summary.BranchRate != 0.25 {
			t.Errorf("expected branch rate 0.25, got %v", run.Summary.BranchRate)
		}
		if run.Summary.Grade != "MEDIUM" {
			t.Errorf("expected grade MEDIUM, got %q", run.Summary.Grade)
		}
		if len(run.Summary.Packages) != 2 {
			t.Fatalf("expected 2 packages, got %d", len(run.Summary.Packages))
		}
		if run.Summary.Packages[0].Name != "src/main.rs" {
			t.Errorf("expected package 'src/main.rs', got %q", run.Summary.Packages[0].Name)
		}
		if run.Summary.Packages[0].LineRate != 0.8 {
			t.Errorf("expected package line rate 0.8, got %v", run.Summary.Packages[0].LineRate)
		}
	})

	t.Run("returns nil for unknown ID", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		run, err := db.GetRunByID(context.Background(), 12345)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if run != nil {
			t.Errorf("expected nil run, got %+v", run)
		}
	})
}

// TestListRuns tests listing recorded runs per label.
func TestListRuns(t *testing.T) {
	t.Parallel()

	t.Run("returns runs newest first", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		var ids []int64
		for range 3 {
			id, err := db.SaveRun(ctx, "main", sampleSummary())
			if err != nil {
				t.Fatalf("failed to save run: %v", err)
			}
			ids = append(ids, id)
		}

		runs, err := db.ListRuns(ctx, "main", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}

		// Newest first: the last saved ID comes first
		if runs[0].ID != ids[2] {
			t.Errorf("expected newest run %d first, got %d", ids[2], runs[0].ID)
		}
		if runs[2].ID != ids[0] {
			t.Errorf("expected oldest run %d last, got %d", ids[0], runs[2].ID)
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		for range 5 {
			if _, err := db.SaveRun(ctx, "main", sampleSummary()); err != nil {
				t.Fatalf("failed to save run: %v", err)
			}
		}

		runs, err := db.ListRuns(ctx, "main", 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("filters by label", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		if _, err := db.SaveRun(ctx, "main", sampleSummary()); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if _, err := db.SaveRun(ctx, "nightly", sampleSummary()); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		runs, err := db.ListRuns(ctx, "nightly", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0].Label != "nightly" {
			t.Errorf("expected label 'nightly', got %q", runs[0].Label)
		}
	})

	t.Run("returns empty for unknown label", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		runs, err := db.ListRuns(context.Background(), "unknown", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}

// TestListLabels tests listing distinct labels.
func TestListLabels(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for _, label := range []string{"nightly", "main", "main", "release"} {
		if _, err := db.SaveRun(ctx, label, sampleSummary()); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	labels, err := db.ListLabels(ctx)
	if err != nil {
		t.Fatalf("failed to list labels: %v", err)
	}

	want := []string{"main", "nightly", "release"}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(labels))
	}
	for i, label := range want {
		if labels[i] != label {
			t.Errorf("expected label %q at %d, got %q", label, i, labels[i])
		}
	}
}

// TestParseTimestamp tests timestamp parsing across SQLite formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "sqlite default format",
			input: "2026-08-24 10:30:00",
			want:  time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "iso8601 with z suffix",
			input: "2026-08-24T10:30:00Z",
			want:  time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "iso8601 without timezone",
			input: "2026-08-24T10:30:00",
			want:  time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "unparsable returns zero time",
			input: "not a timestamp",
			want:  time.Time{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tc.input)
			if !got.Equal(tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
