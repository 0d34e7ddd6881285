// Package sqlite persists sweep reports in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gw2-resim/internal/runes"
	"gw2-resim/internal/storage/sqlite/migrations"
	"gw2-resim/internal/sweep"
)

// ErrNotFound is returned when a run or candidate does not exist.
var ErrNotFound = errors.New("not found")

// Store persists sweep results.
type Store struct {
	sqlDB *sql.DB
}

// RunSummary describes one stored sweep.
type RunSummary struct {
	RunID          uuid.UUID
	Label          string
	Started        time.Time
	Elapsed        time.Duration
	TimelineEvents int
	Candidates     int
}

// Open opens or creates the store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveReport stores a finished sweep in one transaction. Per-source damage is
// kept for the first breakdown results in report order.
func (s *Store) SaveReport(ctx context.Context, label string, timelineEvents int, report *sweep.Report, breakdown int) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("report is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	runID := report.RunID.String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sweep_runs (run_id, label, started_at, elapsed_ms, timeline_events, candidates)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, label, report.Started.UTC().UnixMilli(), report.Elapsed.Milliseconds(), timelineEvents, len(report.Results),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	resultStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sweep_results (run_id, candidate_index, chest, expertise_infusions, condition_infusions, preset, sigils, total, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer resultStmt.Close()
	sourceStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sweep_result_sources (run_id, candidate_index, source_id, damage) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sources: %w", err)
	}
	defer sourceStmt.Close()

	for i, res := range report.Results {
		c := res.Candidate
		_, err = resultStmt.ExecContext(ctx,
			runID, c.Index, string(c.Chest), c.ExpertiseInfusions, c.ConditionInfusions,
			string(c.Preset), encodeSigils(c.Replacements), res.Total, int64(res.Fingerprint),
		)
		if err != nil {
			return fmt.Errorf("insert candidate %d: %w", c.Index, err)
		}
		if i >= breakdown {
			continue
		}
		for id, dmg := range res.BySource {
			if _, err = sourceStmt.ExecContext(ctx, runID, c.Index, id, dmg); err != nil {
				return fmt.Errorf("insert candidate %d source %d: %w", c.Index, id, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Runs lists stored sweeps, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT run_id, label, started_at, elapsed_ms, timeline_events, candidates
		 FROM sweep_runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rawID     string
			summary   RunSummary
			startedAt int64
			elapsedMS int64
		)
		if err := rows.Scan(&rawID, &summary.Label, &startedAt, &elapsedMS, &summary.TimelineEvents, &summary.Candidates); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if summary.RunID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("run id %q: %w", rawID, err)
		}
		summary.Started = time.UnixMilli(startedAt).UTC()
		summary.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, summary)
	}
	return out, rows.Err()
}

// TopResults returns up to limit results of a run by damage, highest first.
// Per-source damage is filled in where it was stored.
func (s *Store) TopResults(ctx context.Context, runID uuid.UUID, limit int) ([]sweep.Result, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT candidate_index, chest, expertise_infusions, condition_infusions, preset, sigils, total, fingerprint
		 FROM sweep_results WHERE run_id = ?
		 ORDER BY total DESC, candidate_index LIMIT ?`,
		runID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []sweep.Result
	for rows.Next() {
		var (
			res         sweep.Result
			chest       string
			preset      string
			sigils      string
			fingerprint int64
		)
		c := &res.Candidate
		if err := rows.Scan(&c.Index, &chest, &c.ExpertiseInfusions, &c.ConditionInfusions, &preset, &sigils, &res.Total, &fingerprint); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		c.Chest = runes.Chest(chest)
		c.Preset = runes.Preset(preset)
		if c.Replacements, err = decodeSigils(sigils); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", c.Index, err)
		}
		res.Fingerprint = uint64(fingerprint)
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	for i := range out {
		if out[i].BySource, err = s.breakdown(ctx, runID, out[i].Candidate.Index); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) breakdown(ctx context.Context, runID uuid.UUID, index int) (map[uint32]int64, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT source_id, damage FROM sweep_result_sources WHERE run_id = ? AND candidate_index = ?`,
		runID.String(), index)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()
	var out map[uint32]int64
	for rows.Next() {
		var (
			id  uint32
			dmg int64
		)
		if err := rows.Scan(&id, &dmg); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		if out == nil {
			out = make(map[uint32]int64)
		}
		out[id] = dmg
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its results.
func (s *Store) DeleteRun(ctx context.Context, runID uuid.UUID) (err error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	id := runID.String()
	for _, table := range []string{"sweep_result_sources", "sweep_results"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sweep_runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return tx.Commit()
}

// encodeSigils writes the four slots as "set1a,set1b,set2a,set2b".
func encodeSigils(r [2][2]runes.Sigil) string {
	return strings.Join([]string{r[0][0].String(), r[0][1].String(), r[1][0].String(), r[1][1].String()}, ",")
}

func decodeSigils(raw string) ([2][2]runes.Sigil, error) {
	var out [2][2]runes.Sigil
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return out, fmt.Errorf("malformed sigils %q", raw)
	}
	for i, p := range parts {
		s, ok := runes.ParseSigil(p)
		if !ok {
			return out, fmt.Errorf("unknown sigil %q", p)
		}
		out[i/2][i%2] = s
	}
	return out, nil
}
