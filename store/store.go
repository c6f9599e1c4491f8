// Package store keeps a sqlite history of search runs, so batch and console sessions
// can be compared after the fact.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"gridsearch/astar"
	"gridsearch/grid_world"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded search.
type Run struct {
	ID           string
	CreatedAt    time.Time
	Source       string
	Width        int
	Height       int
	Start        grid_world.Point
	Goal         grid_world.Point
	ClosedPolicy astar.ClosedPolicy
	Outcome      astar.Outcome
	Cost         int
	PathLen      int
	Expanded     int
	Elapsed      time.Duration
}

// NewRun describes a finished search over grid.
func NewRun(
	source string,
	grid *grid_world.CostGrid,
	start, goal grid_world.Point,
	policy astar.ClosedPolicy,
	result astar.Result,
	elapsed time.Duration,
) Run {
	return Run{
		Source:       source,
		Width:        grid.Width(),
		Height:       grid.Height(),
		Start:        start,
		Goal:         goal,
		ClosedPolicy: policy,
		Outcome:      result.Outcome,
		Cost:         result.Cost,
		PathLen:      len(result.Path),
		Expanded:     result.Expanded,
		Elapsed:      elapsed,
	}
}

// Store is a sqlite database of runs. Uses WAL mode so readers do not block the
// batch writer.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema. Safe to call on
// an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run and returns its id. A run without an id gets a fresh uuid, and
// one without a timestamp is stamped now.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, source, grid_width, grid_height,
			start_x, start_y, goal_x, goal_y, closed_policy,
			outcome, cost, path_len, expanded, elapsed_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.CreatedAt.UnixNano(), run.Source, run.Width, run.Height,
		run.Start.X, run.Start.Y, run.Goal.X, run.Goal.Y, run.ClosedPolicy.String(),
		run.Outcome.String(), run.Cost, run.PathLen, run.Expanded, int64(run.Elapsed),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, grid_width, grid_height,
			start_x, start_y, goal_x, goal_y, closed_policy,
			outcome, cost, path_len, expanded, elapsed_ns
		FROM runs
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// CountByOutcome tallies recorded runs per outcome.
func (s *Store) CountByOutcome(ctx context.Context) (map[astar.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM runs GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	defer rows.Close()

	counts := map[astar.Outcome]int{}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		outcome, err := parseOutcome(name)
		if err != nil {
			return nil, err
		}
		counts[outcome] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run             Run
		createdAt       int64
		elapsed         int64
		policy, outcome string
	)
	err := rows.Scan(
		&run.ID, &createdAt, &run.Source, &run.Width, &run.Height,
		&run.Start.X, &run.Start.Y, &run.Goal.X, &run.Goal.Y, &policy,
		&outcome, &run.Cost, &run.PathLen, &run.Expanded, &elapsed,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.CreatedAt = time.Unix(0, createdAt)
	run.Elapsed = time.Duration(elapsed)
	if run.ClosedPolicy, err = astar.ParseClosedPolicy(policy); err != nil {
		return Run{}, err
	}
	if run.Outcome, err = parseOutcome(outcome); err != nil {
		return Run{}, err
	}
	return run, nil
}

func parseOutcome(name string) (astar.Outcome, error) {
	for _, outcome := range []astar.Outcome{astar.Found, astar.NotFound, astar.Cancelled} {
		if outcome.String() == name {
			return outcome, nil
		}
	}
	return astar.NotFound, fmt.Errorf("unknown outcome %q", name)
}
