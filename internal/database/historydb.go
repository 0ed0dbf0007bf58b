package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/cobertura/internal/model"
)

// HistoryDB provides SQLite-based storage for recorded coverage runs.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We store the per-run summary in columns rather than a
// single JSON blob so that trends can be queried with plain SQL. Only the
// per-package rows, whose shape may grow, are serialized as JSON.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "cobertura.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Coverage runs store one summary per recorded conversion
	CREATE TABLE IF NOT EXISTS coverage_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		files INTEGER NOT NULL,
		lines_valid INTEGER NOT NULL,
		lines_covered INTEGER NOT NULL,
		line_rate REAL NOT NULL,
		branches_valid INTEGER NOT NULL,
		branches_covered INTEGER NOT NULL,
		branch_rate REAL NOT NULL,
		packages TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_label ON coverage_runs(label);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON coverage_runs(created_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun records a conversion's summary under the given label.
// It returns the database ID of the new run.
func (hdb *HistoryDB) SaveRun(ctx context.Context, label string, summary *model.Summary) (int64, error) {
	// Serialize per-package rows to JSON
	packagesJSON, err := json.Marshal(summary.Packages)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize packages: %w", err)
	}

	query := `
	INSERT INTO coverage_runs (label, files, lines_valid, lines_covered, line_rate,
		branches_valid, branches_covered, branch_rate, packages)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		label,
		summary.Files,
		summary.Totals.LinesValid,
		summary.Totals.LinesCovered,
		summary.LineRate,
		summary.Totals.BranchesValid,
		summary.Totals.BranchesCovered,
		summary.BranchRate,
		string(packagesJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save coverage run: %w", err)
	}

	return result.LastInsertId()
}

// ListRuns retrieves recorded runs for a label, newest first.
// A limit of 0 returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, label string, limit int) ([]model.CoverageRun, error) {
	query := `
	SELECT id, label, created_at, files, lines_valid, lines_covered, line_rate,
		branches_valid, branches_covered, branch_rate, packages
	FROM coverage_runs
	WHERE label = ?
	ORDER BY created_at DESC, id DESC
	`
	args := []any{label}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list coverage runs: %w", err)
	}
	defer rows.Close()

	var runs []model.CoverageRun
	for rows.Next() {
		var run model.CoverageRun
		var createdAt string
		var packagesJSON sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.Label,
			&createdAt,
			&run.Summary.Files,
			&run.Summary.Totals.LinesValid,
			&run.Summary.Totals.LinesCovered,
			&run.Summary.LineRate,
			&run.Summary.Totals.BranchesValid,
			&run.Summary.Totals.BranchesCovered,
			&run.Summary.BranchRate,
			&packagesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coverage run: %w", err)
		}

		// Parse timestamp (SQLite may return different formats depending on version/configuration)
		run.CreatedAt = parseTimestamp(createdAt)
		finishRun(&run, packagesJSON)

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRunByID retrieves a recorded run by its database ID.
// It returns (nil, nil) when no run has that ID.
func (hdb *HistoryDB) GetRunByID(ctx context.Context, id int64) (*model.CoverageRun, error) {
	query := `
	SELECT id, label, created_at, files, lines_valid, lines_covered, line_rate,
		branches_valid, branches_covered, branch_rate, packages
	FROM coverage_runs
	WHERE id = ?
	`

	var run model.CoverageRun
	var createdAt string
	var packagesJSON sql.NullString

	err := hdb.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Label,
		&createdAt,
		&run.Summary.Files,
		&run.Summary.Totals.LinesValid,
		&run.Summary.Totals.LinesCovered,
		&run.Summary.LineRate,
		&run.Summary.Totals.BranchesValid,
		&run.Summary.Totals.BranchesCovered,
		&run.Summary.BranchRate,
		&packagesJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coverage run: %w", err)
	}

	run.CreatedAt = parseTimestamp(createdAt)
	finishRun(&run, packagesJSON)

	return &run, nil
}

// ListLabels returns the labels of all recorded runs.
func (hdb *HistoryDB) ListLabels(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT label FROM coverage_runs
	ORDER BY label
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// finishRun fills the derived parts of a scanned run: the per-package
// rows from their JSON column and the grade, which is recomputed from
// the stored line rate instead of being persisted.
func finishRun(run *model.CoverageRun, packagesJSON sql.NullString) {
	if packagesJSON.Valid && packagesJSON.String != "" {
		if err := json.Unmarshal([]byte(packagesJSON.String), &run.Summary.Packages); err != nil {
			run.Summary.Packages = nil
		}
	}
	run.Summary.Grade = model.GradeForRate(run.Summary.LineRate).String()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
