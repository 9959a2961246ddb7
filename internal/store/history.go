// ============================================================================
// lox - Lox Front End
// ============================================================================
//
// Package:     store
// Description: Persistent history of front end runs (SQLite and in-memory)
// Author:      Mike Stoffels with Claude
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox"
)

// Origin tells which front end produced a run
type Origin string

const (
	OriginFile      Origin = "file"
	OriginREPL      Origin = "repl"
	OriginGRPC      Origin = "grpc"
	OriginWebSocket Origin = "websocket"
	OriginInspector Origin = "inspect"
)

// Run is one recorded scan+parse
type Run struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Origin      Origin    `json:"origin"`
	Name        string    `json:"name,omitempty"`
	Source      string    `json:"source"`
	Tree        string    `json:"tree,omitempty"`
	Tokens      int       `json:"tokens"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
	ExitCode    int       `json:"exit_code"`
	DurationMS  float64   `json:"duration_ms"`
}

// Failed reports whether the run ended with an error
func (r *Run) Failed() bool {
	return r.ExitCode != mdwerror.ExitOK
}

// NewRun builds a run record from an engine result
func NewRun(origin Origin, name string, source []byte, res *lox.Result) *Run {
	run := &Run{
		Origin:   origin,
		Name:     name,
		Source:   string(source),
		Tree:     res.String(),
		ExitCode: res.ExitCode(),
	}
	if res.Tokens != nil {
		run.Tokens = res.Tokens.Len()
	}
	for _, d := range res.Diagnostics {
		run.Diagnostics = append(run.Diagnostics, d.String())
	}
	run.DurationMS = float64(res.Duration.Microseconds()) / 1000
	return run
}

// Filter defines criteria for listing runs
type Filter struct {
	Origin     Origin
	SessionID  string
	OnlyFailed bool
	Since      time.Time
	Limit      int
	Offset     int
}

// Stats summarizes the history
type Stats struct {
	Total    int            `json:"total"`
	Failed   int            `json:"failed"`
	ByOrigin map[Origin]int `json:"by_origin"`
}

// RunStore defines the interface for run persistence
type RunStore interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, filter Filter) ([]*Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// ErrNotFound is returned by Get for unknown ids
var ErrNotFound = mdwerror.New("run not found").WithCode(mdwerror.CodeNotFound)

func prepare(run *Run) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
}

func dbError(err error, op string) error {
	return mdwerror.Wrap(err, "history store failure").
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(op)
}

// SQLiteStore implements RunStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *mdwlog.Logger
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path   string
	Logger *mdwlog.Logger
}

// NewSQLiteStore opens (and creates) the history database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}

	// Ensure directory exists
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, mdwerror.Wrap(err, "failed to create directory").
				WithCode(mdwerror.CodeIOError).
				WithOperation("store.NewSQLiteStore").
				WithDetail("path", cfg.Path)
		}
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "store.NewSQLiteStore")
	}
	if cfg.Path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteStore{db: db, logger: cfg.Logger.WithComponent("lox-store")}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "store.initSchema")
	}

	s.logger.Debug("history store opened", mdwlog.Fields{"path": cfg.Path})
	return s, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		timestamp DATETIME NOT NULL,
		origin TEXT NOT NULL,
		name TEXT,
		source TEXT NOT NULL,
		tree TEXT,
		tokens INTEGER NOT NULL,
		diagnostics TEXT,
		exit_code INTEGER NOT NULL,
		duration_ms REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_origin ON runs(origin);
	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run, assigning ID and timestamp when unset
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)

	var diagJSON []byte
	if len(run.Diagnostics) > 0 {
		diagJSON, _ = json.Marshal(run.Diagnostics)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, timestamp, origin, name, source, tree, tokens, diagnostics, exit_code, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SessionID, run.Timestamp, string(run.Origin), run.Name, run.Source, run.Tree,
		run.Tokens, string(diagJSON), run.ExitCode, run.DurationMS)
	if err != nil {
		return dbError(err, "store.Record")
	}
	return nil
}

const selectRuns = `SELECT id, session_id, timestamp, origin, name, source, tree, tokens, diagnostics, exit_code, duration_ms FROM runs`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var sessionID, name, tree, diagJSON sql.NullString
	var origin string

	if err := row.Scan(&run.ID, &sessionID, &run.Timestamp, &origin, &name, &run.Source,
		&tree, &run.Tokens, &diagJSON, &run.ExitCode, &run.DurationMS); err != nil {
		return nil, err
	}
	run.Origin = Origin(origin)
	run.SessionID = sessionID.String
	run.Name = name.String
	run.Tree = tree.String
	if diagJSON.Valid && diagJSON.String != "" {
		_ = json.Unmarshal([]byte(diagJSON.String), &run.Diagnostics)
	}
	return &run, nil
}

// Get returns the run with the given id
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, mdwerror.Wrap(ErrNotFound, "run not found").WithDetail("id", id)
	}
	if err != nil {
		return nil, dbError(err, "store.Get")
	}
	return run, nil
}

// List returns runs matching filter, newest first
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns + ` WHERE 1=1`
	var args []interface{}

	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, string(filter.Origin))
	}
	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.OnlyFailed {
		query += " AND exit_code != 0"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "store.List")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, dbError(err, "store.List")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "store.List")
	}
	return runs, nil
}

// Stats counts runs in total, failed and per origin
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByOrigin: make(map[Origin]int)}
	rows, err := s.db.QueryContext(ctx, `
		SELECT origin, COUNT(*), SUM(CASE WHEN exit_code != 0 THEN 1 ELSE 0 END)
		FROM runs GROUP BY origin
	`)
	if err != nil {
		return nil, dbError(err, "store.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var origin string
		var total, failed int
		if err := rows.Scan(&origin, &total, &failed); err != nil {
			return nil, dbError(err, "store.Stats")
		}
		stats.ByOrigin[Origin(origin)] = total
		stats.Total += total
		stats.Failed += failed
	}
	return stats, rows.Err()
}

// Prune deletes runs older than the given age
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, dbError(err, "store.Prune")
	}
	n, _ := res.RowsAffected()
	s.logger.Debug("history pruned", mdwlog.Fields{"deleted": n})
	return n, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore implements RunStore in memory
type MemoryStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record stores a copy of run
func (s *MemoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)
	cp := *run
	s.runs = append(s.runs, &cp)
	return nil
}

// Get returns the run with the given id
func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, mdwerror.Wrap(ErrNotFound, "run not found").WithDetail("id", id)
}

// List returns runs matching filter, newest first
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Run
	for _, r := range s.runs {
		if filter.Origin != "" && r.Origin != filter.Origin {
			continue
		}
		if filter.SessionID != "" && r.SessionID != filter.SessionID {
			continue
		}
		if filter.OnlyFailed && !r.Failed() {
			continue
		}
		if !filter.Since.IsZero() && r.Timestamp.Before(filter.Since) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Stats counts runs in total, failed and per origin
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByOrigin: make(map[Origin]int)}
	for _, r := range s.runs {
		stats.Total++
		stats.ByOrigin[r.Origin]++
		if r.Failed() {
			stats.Failed++
		}
	}
	return stats, nil
}

// Prune removes old entries
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	kept := s.runs[:0]
	var deleted int64
	for _, r := range s.runs {
		if r.Timestamp.After(cutoff) {
			kept = append(kept, r)
		} else {
			deleted++
		}
	}
	s.runs = kept
	return deleted, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
