// Package history persists scan verdicts to a local SQLite database so the
// server can answer "what did we check recently" without keeping everything
// in memory.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

//go:embed schema.sql
var schemaFS embed.FS

// Entry is one persisted scan row.
type Entry struct {
	ID             string               `json:"id"`
	Input          string               `json:"input"`
	Kind           target.Kind          `json:"type"`
	Domain         string               `json:"domain"`
	HeuristicScore int                  `json:"heuristicScore"`
	RiskScore      int                  `json:"riskScore"`
	WarningLevel   verdict.WarningLevel `json:"warningLevel"`
	IsSafe         bool                 `json:"isSafe"`
	Degraded       bool                 `json:"degraded"`
	ThreatDetails  string               `json:"threatDetails"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// Store wraps the scans table. Safe for concurrent use; database/sql
// serializes access to the underlying SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle and runs migrations from schema.sql.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("execute schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one verdict under the given scan ID.
func (s *Store) Record(ctx context.Context, scanID string, v verdict.Verdict) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans
             (id, input, kind, domain, heuristic_score, risk_score,
              warning_level, is_safe, degraded, threat_details, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scanID, v.Input, string(v.Kind), v.Domain, v.HeuristicScore, v.RiskScore,
		string(v.WarningLevel), boolToInt(v.IsSafe), boolToInt(v.Degraded),
		v.ThreatDetails, v.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first. limit <= 0 means
// the default of 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, kind, domain, heuristic_score, risk_score,
                warning_level, is_safe, degraded, threat_details, created_at
         FROM scans
         ORDER BY created_at DESC, id
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ByDomain returns entries for one domain, newest first.
func (s *Store) ByDomain(ctx context.Context, domain string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, kind, domain, heuristic_score, risk_score,
                warning_level, is_safe, degraded, threat_details, created_at
         FROM scans
         WHERE domain = ?
         ORDER BY created_at DESC, id
         LIMIT ?`,
		domain, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the total number of stored scans.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&n)
	return n, err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			kind      string
			level     string
			isSafe    int
			degraded  int
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Input, &kind, &e.Domain, &e.HeuristicScore,
			&e.RiskScore, &level, &isSafe, &degraded, &e.ThreatDetails, &createdAt); err != nil {
			return nil, err
		}
		e.Kind = target.Kind(kind)
		e.WarningLevel = verdict.WarningLevel(level)
		e.IsSafe = isSafe != 0
		e.Degraded = degraded != 0
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
