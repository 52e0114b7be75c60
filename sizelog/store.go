// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sizelog/store.go
// Summary: SQLite-backed persistence for geometry negotiation records.
//
// Records arrive on every size negotiation, so writes are batched
// asynchronously; queries serve the history inspection tooling.

package sizelog

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelframe/frame"
)

// Record is one persisted size change.
type Record struct {
	ID        int64
	FrameID   string
	FrameName string
	At        time.Time
	Mode      string
	Parameter string
	Pretend   bool
	Requested bool

	OldCols, OldLines      int
	NewCols, NewLines      int
	OldNativeW, OldNativeH int
	NewNativeW, NewNativeH int
}

// Config holds tunables for the store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BatchSize is the number of records to accumulate before flushing.
	// Default: 50
	BatchSize int

	// BatchTimeout is how long to wait before flushing a partial batch.
	// Default: 2s
	BatchTimeout time.Duration

	// ChannelBuffer is the size of the async recording channel.
	// Default: 500
	ChannelBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:        dbPath,
		BatchSize:     50,
		BatchTimeout:  2 * time.Second,
		ChannelBuffer: 500,
	}
}

// Store persists size-change records to SQLite. It implements
// frame.Recorder; records are dropped rather than blocking the engine
// when the channel is full.
type Store struct {
	config Config
	db     *sql.DB

	batchChan chan frame.SizeChange
	stopCh    chan struct{}
	doneCh    chan struct{}
	flushCh   chan chan struct{}

	mu sync.RWMutex
}

// Increment when schema changes require recreating the table.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS size_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    frame_id TEXT NOT NULL,
    frame_name TEXT NOT NULL,
    at INTEGER NOT NULL,              -- UnixNano
    mode TEXT NOT NULL,
    parameter TEXT NOT NULL,
    pretend INTEGER DEFAULT 0,
    requested INTEGER DEFAULT 0,
    old_cols INTEGER, old_lines INTEGER,
    new_cols INTEGER, new_lines INTEGER,
    old_native_w INTEGER, old_native_h INTEGER,
    new_native_w INTEGER, new_native_h INTEGER
);

CREATE INDEX IF NOT EXISTS idx_size_changes_at ON size_changes(at);
CREATE INDEX IF NOT EXISTS idx_size_changes_frame ON size_changes(frame_name);
`

// Open creates or opens a store at dbPath with default configuration.
func Open(dbPath string) (*Store, error) {
	return OpenWithConfig(DefaultConfig(dbPath))
}

// OpenWithConfig creates or opens a store with custom configuration.
func OpenWithConfig(config Config) (*Store, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 2 * time.Second
	}
	if config.ChannelBuffer <= 0 {
		config.ChannelBuffer = 500
	}

	dir := filepath.Dir(config.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := config.DBPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		config:    config,
		db:        db,
		batchChan: make(chan frame.SizeChange, config.ChannelBuffer),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		flushCh:   make(chan chan struct{}),
	}
	go s.batchWriter()
	return s, nil
}

func migrateSchema(db *sql.DB) error {
	var current int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
	if err == sql.ErrNoRows || err != nil {
		current = 0
	}
	if current == schemaVersion {
		return nil
	}
	if current != 0 {
		log.Printf("[SIZELOG] Migrating schema from version %d to %d", current, schemaVersion)
		if _, err := db.Exec("DROP TABLE IF EXISTS size_changes"); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to recreate schema: %w", err)
		}
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

// RecordSizeChange queues one record for batch persistence. Never blocks
// the caller; under backpressure records are dropped.
func (s *Store) RecordSizeChange(rec frame.SizeChange) {
	select {
	case s.batchChan <- rec:
	case <-s.stopCh:
	default:
	}
}

// batchWriter batches queued records and flushes them periodically.
func (s *Store) batchWriter() {
	defer close(s.doneCh)

	batch := make([]frame.SizeChange, 0, s.config.BatchSize)
	timer := time.NewTimer(s.config.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.flushBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-s.batchChan:
			batch = append(batch, rec)
			if len(batch) >= s.config.BatchSize {
				flush()
				timer.Reset(s.config.BatchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(s.config.BatchTimeout)

		case done := <-s.flushCh:
			// Drain the channel before acknowledging a manual flush.
			draining := true
			for draining {
				select {
				case rec := <-s.batchChan:
					batch = append(batch, rec)
				default:
					draining = false
				}
			}
			flush()
			close(done)

		case <-s.stopCh:
			for {
				select {
				case rec := <-s.batchChan:
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *Store) flushBatch(batch []frame.SizeChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("[SIZELOG] Failed to begin transaction: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO size_changes
		(frame_id, frame_name, at, mode, parameter, pretend, requested,
		 old_cols, old_lines, new_cols, new_lines,
		 old_native_w, old_native_h, new_native_w, new_native_h)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("[SIZELOG] Failed to prepare statement: %v", err)
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, rec := range batch {
		if _, err := stmt.Exec(
			hex.EncodeToString(rec.FrameID[:]), rec.FrameName, rec.At.UnixNano(),
			rec.Mode.String(), rec.Parameter, boolInt(rec.Pretend), boolInt(rec.Requested),
			rec.OldCols, rec.OldLines, rec.NewCols, rec.NewLines,
			rec.OldNativeW, rec.OldNativeH, rec.NewNativeW, rec.NewNativeH,
		); err != nil {
			log.Printf("[SIZELOG] Failed to insert record for %s: %v", rec.FrameName, err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[SIZELOG] Failed to commit batch: %v", err)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, frame_id, frame_name, at, mode, parameter, pretend, requested,
		       old_cols, old_lines, new_cols, new_lines,
		       old_native_w, old_native_h, new_native_w, new_native_h
		FROM size_changes ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ForFrame returns up to limit records for one frame name, newest first.
func (s *Store) ForFrame(name string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, frame_id, frame_name, at, mode, parameter, pretend, requested,
		       old_cols, old_lines, new_cols, new_lines,
		       old_native_w, old_native_h, new_native_w, new_native_h
		FROM size_changes WHERE frame_name = ? ORDER BY at DESC LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// InRange returns records within a time range, newest first.
func (s *Store) InRange(start, end time.Time, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, frame_id, frame_name, at, mode, parameter, pretend, requested,
		       old_cols, old_lines, new_cols, new_lines,
		       old_native_w, old_native_h, new_native_w, new_native_h
		FROM size_changes WHERE at >= ? AND at <= ?
		ORDER BY at DESC LIMIT ?`, start.UnixNano(), end.UnixNano(), limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var at int64
		var pretend, requested int
		if err := rows.Scan(&r.ID, &r.FrameID, &r.FrameName, &at, &r.Mode, &r.Parameter,
			&pretend, &requested,
			&r.OldCols, &r.OldLines, &r.NewCols, &r.NewLines,
			&r.OldNativeW, &r.OldNativeH, &r.NewNativeW, &r.NewNativeH); err != nil {
			continue // skip malformed rows
		}
		r.At = time.Unix(0, at)
		r.Pretend = pretend == 1
		r.Requested = requested == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// Flush blocks until all queued records are written.
func (s *Store) Flush() error {
	done := make(chan struct{})
	select {
	case s.flushCh <- done:
		<-done
	case <-s.stopCh:
	}
	return nil
}

// Close flushes pending records and closes the database.
func (s *Store) Close() error {
	close(s.stopCh)
	<-s.doneCh
	return s.db.Close()
}

// Compile-time interface check
var _ frame.Recorder = (*Store)(nil)
