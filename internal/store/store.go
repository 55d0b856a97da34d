// Package store persists screening runs and their ranked markers to SQL.
// SQLite (pure Go) and PostgreSQL (pgx) are reached through database/sql.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"ampliscreen/internal/variant"
)

// fixed-width so created_at sorts as text
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a run sink backed by one database/sql pool.
type Store struct {
	db     *sql.DB
	driver string
}

// Run describes one saved screening run.
type Run struct {
	ID        string
	CreatedAt time.Time
	Target    string
	Fallback  bool
	Markers   int
}

// Open connects to dsn. postgres:// and postgresql:// URLs use pgx;
// anything else is a SQLite path, optionally prefixed with "sqlite:".
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, src := resolve(dsn)
	if driver == "sqlite" && src != ":memory:" {
		if dir := filepath.Dir(src); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	}
	db, err := sql.Open(driver, src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func resolve(dsn string) (driver, src string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn
	case strings.HasPrefix(dsn, "sqlite:"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite:")
	}
	return "sqlite", dsn
}

// Close releases the pool.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			target TEXT NOT NULL,
			fallback BOOLEAN NOT NULL,
			n_markers INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS markers (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			rank INTEGER NOT NULL,
			chrom TEXT NOT NULL,
			pos BIGINT NOT NULL,
			qual DOUBLE PRECISION,
			primer_compliant BOOLEAN NOT NULL,
			amplicon_start BIGINT,
			amplicon_end BIGINT,
			displacement INTEGER NOT NULL,
			quality_score DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, rank)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// bind rewrites ? placeholders for drivers that number them.
func (s *Store) bind(q string) string {
	if s.driver != "pgx" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveRun stores markers (already ranked) under a fresh run id in one transaction.
func (s *Store) SaveRun(ctx context.Context, target string, fallback bool, markers []variant.Variant) (_ Run, retErr error) {
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Target:    target,
		Fallback:  fallback,
		Markers:   len(markers),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, s.bind(`INSERT INTO runs (run_id, created_at, target, fallback, n_markers) VALUES (?, ?, ?, ?, ?)`),
		run.ID, run.CreatedAt.Format(tsLayout), run.Target, run.Fallback, run.Markers); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.bind(`INSERT INTO markers
		(run_id, rank, chrom, pos, qual, primer_compliant, amplicon_start, amplicon_end, displacement, quality_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return Run{}, fmt.Errorf("prepare markers: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, v := range markers {
		var qual sql.NullFloat64
		if v.HasQual {
			qual = sql.NullFloat64{Float64: v.Qual, Valid: true}
		}
		var start, end sql.NullInt64
		if v.Amplicon != nil {
			start = sql.NullInt64{Int64: int64(v.Amplicon.Start), Valid: true}
			end = sql.NullInt64{Int64: int64(v.Amplicon.End), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i+1, v.Chrom, v.Pos, qual, v.Compliant, start, end, v.Displacement, v.Score); err != nil {
			return Run{}, fmt.Errorf("insert marker %s:%d: %w", v.Chrom, v.Pos, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// Markers loads a saved run's markers in rank order. Only the persisted
// columns are filled in.
func (s *Store) Markers(ctx context.Context, runID string) ([]variant.Variant, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT chrom, pos, qual, primer_compliant, amplicon_start, amplicon_end, displacement, quality_score
		FROM markers WHERE run_id = ? ORDER BY rank`), runID)
	if err != nil {
		return nil, fmt.Errorf("select markers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []variant.Variant
	for rows.Next() {
		var (
			v          variant.Variant
			qual       sql.NullFloat64
			start, end sql.NullInt64
		)
		if err := rows.Scan(&v.Chrom, &v.Pos, &qual, &v.Compliant, &start, &end, &v.Displacement, &v.Score); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		v.Qual, v.HasQual = qual.Float64, qual.Valid
		if start.Valid && end.Valid {
			v.Amplicon = &variant.Window{Start: int(start.Int64), End: int(end.Int64)}
		}
		v.Row = len(out)
		out = append(out, v)
	}
	return out, rows.Err()
}

// Runs lists saved runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, created_at, target, fallback, n_markers FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r  Run
			ts string
		)
		if err := rows.Scan(&r.ID, &ts, &r.Target, &r.Fallback, &r.Markers); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if r.CreatedAt, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkerSet wraps loaded markers in a set whose header holds only the
// persisted input columns.
func MarkerSet(markers []variant.Variant) variant.Set {
	return variant.Set{
		Header:   []string{variant.ColChrom, variant.ColPos, variant.ColQual},
		Variants: markers,
	}
}
