package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/detent/glctl/internal/ci"
)

const currentSchemaVersion = 2

// ErrJobNotFound is returned when no log is stored for a job id.
var ErrJobNotFound = errors.New("job not found")

// JobLog is a job together with its raw log.
type JobLog struct {
	Job        ci.Job
	Log        []byte
	ImportedAt time.Time
}

// LogSource supplies raw job logs for rendering.
type LogSource interface {
	Log(ctx context.Context, id int64) (ci.Job, []byte, error)
}

var _ LogSource = (*Store)(nil)

// Store keeps imported job logs in a local SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

func createDirIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// #nosec G301 - restrictive permissions for data directory (owner-only access)
		return os.MkdirAll(path, 0o700)
	}
	return nil
}

// OpenStore opens or creates the job store at path and applies migrations.
func OpenStore(path string) (*Store, error) {
	if mkdirErr := createDirIfNotExists(filepath.Dir(path)); mkdirErr != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", mkdirErr)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Single connection is optimal for a short-lived CLI
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to execute %s: %w (additionally, failed to close database: %v)", pragma, err, closeErr)
			}
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}

	if err := s.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (additionally, failed to close database: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// WAL mode creates .db-wal and .db-shm next to the database
	if err := secureDBFiles(path); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set database permissions: %w (additionally, failed to close database: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set database permissions: %w", err)
	}

	return s, nil
}

// secureDBFiles sets 0600 on the database file and its WAL/SHM files.
func secureDBFiles(dbPath string) error {
	// #nosec G302 - intentionally setting restrictive permissions
	if err := os.Chmod(dbPath, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", dbPath, err)
	}

	for _, f := range []string{dbPath + "-wal", dbPath + "-shm"} {
		// #nosec G302 - intentionally setting restrictive permissions
		if err := os.Chmod(f, 0o600); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("chmod %s: %w", f, err)
		}
	}

	return nil
}

func (s *Store) initSchema() error {
	versionTableSchema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);
	`

	if _, err := s.db.Exec(versionTableSchema); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to query schema version: %w", err)
	}

	if version < currentSchemaVersion {
		if err := s.applyMigrations(version); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	return nil
}

func (s *Store) applyMigrations(fromVersion int) error {
	migrations := []struct {
		version int
		name    string
		sql     string
	}{
		{
			version: 1,
			name:    "initial_schema",
			sql: `
			CREATE TABLE IF NOT EXISTS jobs (
				job_id INTEGER PRIMARY KEY,
				name TEXT,
				stage TEXT,
				status TEXT,
				web_url TEXT,
				log BLOB NOT NULL,
				imported_at INTEGER NOT NULL
			);
			`,
		},
		{
			version: 2,
			name:    "add_status_index",
			sql: `
			CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
			`,
		},
	}

	for _, migration := range migrations {
		if migration.version <= fromVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration v%d: %w", migration.version, err)
		}

		if _, err := tx.Exec(migration.sql); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to execute migration v%d (%s): %w (additionally, failed to rollback: %v)",
					migration.version, migration.name, err, rbErr)
			}
			return fmt.Errorf("failed to execute migration v%d (%s): %w", migration.version, migration.name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			migration.version, time.Now().Unix()); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to record migration v%d: %w (additionally, failed to rollback: %v)",
					migration.version, err, rbErr)
			}
			return fmt.Errorf("failed to record migration v%d: %w", migration.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration v%d: %w", migration.version, err)
		}
	}

	return nil
}

// Save inserts a job log, replacing any log stored for the same job id.
func (s *Store) Save(ctx context.Context, jl JobLog) error {
	if jl.ImportedAt.IsZero() {
		jl.ImportedAt = time.Now()
	}
	if jl.Log == nil {
		jl.Log = []byte{}
	}

	query := `
		INSERT INTO jobs (job_id, name, stage, status, web_url, log, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			name = excluded.name,
			stage = excluded.stage,
			status = excluded.status,
			web_url = excluded.web_url,
			log = excluded.log,
			imported_at = excluded.imported_at
	`

	_, err := s.db.ExecContext(ctx, query,
		jl.Job.ID, jl.Job.Name, jl.Job.Stage, string(jl.Job.Status), jl.Job.WebURL,
		jl.Log, jl.ImportedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save job %d: %w", jl.Job.ID, err)
	}
	return nil
}

// Load returns the stored log for a job, or ErrJobNotFound.
func (s *Store) Load(ctx context.Context, id int64) (*JobLog, error) {
	query := `
		SELECT job_id, name, stage, status, web_url, log, imported_at
		FROM jobs WHERE job_id = ?
	`

	var jl JobLog
	var status string
	var name, stage, webURL sql.NullString
	var importedAt int64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&jl.Job.ID, &name, &stage, &status, &webURL, &jl.Log, &importedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %d: %w", id, ErrJobNotFound)
		}
		return nil, fmt.Errorf("failed to load job %d: %w", id, err)
	}

	jl.Job.Name = name.String
	jl.Job.Stage = stage.String
	jl.Job.Status = ci.JobStatus(status)
	jl.Job.WebURL = webURL.String
	jl.ImportedAt = time.Unix(importedAt, 0)
	return &jl, nil
}

// Log implements LogSource.
func (s *Store) Log(ctx context.Context, id int64) (ci.Job, []byte, error) {
	jl, err := s.Load(ctx, id)
	if err != nil {
		return ci.Job{}, nil, err
	}
	return jl.Job, jl.Log, nil
}

// List returns every stored job ordered by id, without logs.
func (s *Store) List(ctx context.Context) ([]ci.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, name, stage, status, web_url
		FROM jobs ORDER BY job_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []ci.Job
	for rows.Next() {
		var job ci.Job
		var status string
		var name, stage, webURL sql.NullString
		if err := rows.Scan(&job.ID, &name, &stage, &status, &webURL); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		job.Name = name.String
		job.Stage = stage.String
		job.Status = ci.JobStatus(status)
		job.WebURL = webURL.String
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a stored job, or returns ErrJobNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete job %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("job %d: %w", id, ErrJobNotFound)
	}
	return nil
}

// Close closes the database connection and secures file permissions.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	closeErr := s.db.Close()

	// best effort, even if close failed
	if s.path != "" {
		_ = secureDBFiles(s.path)
	}

	return closeErr
}

// Path returns the path to the SQLite database file.
func (s *Store) Path() string {
	return s.path
}
