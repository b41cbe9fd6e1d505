// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists harvest runs and their photos in SQLite.
//
// A photo is stored once no matter how many runs return it; run_photos
// records which runs saw it and at what rank. Photos returned twice by the
// same run (overlapping interval boundaries) are counted and dropped.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/media-miner/pkg/types"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the harvest SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and ensures the schema
// exists.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("store path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			requested INTEGER NOT NULL,
			results INTEGER NOT NULL DEFAULT 0,
			probes INTEGER NOT NULL DEFAULT 0,
			pages INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS photos (
			id TEXT PRIMARY KEY,
			owner TEXT,
			secret TEXT,
			server TEXT,
			farm INTEGER,
			title TEXT,
			is_public INTEGER,
			first_seen_run TEXT REFERENCES runs(id)
		)`,
		`CREATE TABLE IF NOT EXISTS run_photos (
			run_id TEXT NOT NULL REFERENCES runs(id),
			photo_id TEXT NOT NULL REFERENCES photos(id),
			rank INTEGER NOT NULL,
			PRIMARY KEY (run_id, photo_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_photos_rank ON run_photos(run_id, rank)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run describes one harvest.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Query      string    `json:"query" yaml:"query"`
	Requested  int       `json:"requested" yaml:"requested"`
	Results    int       `json:"results" yaml:"results"`
	Probes     int       `json:"probes" yaml:"probes"`
	Pages      int       `json:"pages" yaml:"pages"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// NewRun starts a run record with a fresh ID.
func NewRun(query string, requested int) Run {
	return Run{
		ID:        uuid.New().String(),
		Query:     query,
		Requested: requested,
		StartedAt: time.Now().UTC(),
	}
}

// SaveSummary holds counts from SaveRun.
type SaveSummary struct {
	// New photos were not in the store before this run.
	New int
	// Known photos were already stored by an earlier run.
	Known int
	// Duplicates appeared more than once in this run's results.
	Duplicates int
}

// Saved is the number of distinct photos linked to the run.
func (s SaveSummary) Saved() int { return s.New + s.Known }

// SaveRun records run and its photos, in order, in one transaction. The
// stored run's results column is the number of distinct photos linked,
// which the returned summary reports as Saved.
func (s *Store) SaveRun(ctx context.Context, run Run, photos []types.Photo) (SaveSummary, error) {
	if run.ID == "" {
		return SaveSummary{}, errors.New("run has no ID")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, requested, probes, pages, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.Requested, run.Probes, run.Pages,
		run.StartedAt.Format(time.RFC3339Nano), run.FinishedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("inserting run: %w", err)
	}

	photoStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO photos (id, owner, secret, server, farm, title, is_public, first_seen_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("preparing photo insert: %w", err)
	}
	defer photoStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO run_photos (run_id, photo_id, rank) VALUES (?, ?, ?)`)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("preparing link insert: %w", err)
	}
	defer linkStmt.Close()

	var summary SaveSummary
	rank := 0
	for _, p := range photos {
		res, err := photoStmt.ExecContext(ctx, p.ID, p.Owner, p.Secret, p.Server, p.Farm, p.Title, p.IsPublic, run.ID)
		if err != nil {
			return SaveSummary{}, fmt.Errorf("inserting photo %s: %w", p.ID, err)
		}
		inserted, _ := res.RowsAffected()

		res, err = linkStmt.ExecContext(ctx, run.ID, p.ID, rank)
		if err != nil {
			return SaveSummary{}, fmt.Errorf("linking photo %s: %w", p.ID, err)
		}
		if linked, _ := res.RowsAffected(); linked == 0 {
			summary.Duplicates++
			continue
		}

		if inserted == 1 {
			summary.New++
		} else {
			summary.Known++
		}
		rank++
	}

	if _, err := tx.ExecContext(ctx, `UPDATE runs SET results = ? WHERE id = ?`, rank, run.ID); err != nil {
		return SaveSummary{}, fmt.Errorf("updating run totals: %w", err)
	}
	return summary, tx.Commit()
}
