package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"chords/pkg/key"
	"chords/pkg/playback"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT NOT NULL UNIQUE,
    source       TEXT NOT NULL,
    presses      INTEGER NOT NULL,
    held         INTEGER NOT NULL,
    chord        TEXT NOT NULL,
    started_ns   INTEGER NOT NULL,
    finished_ns  INTEGER,
    outcome      TEXT NOT NULL,
    error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_ns);

CREATE TABLE IF NOT EXISTS batches (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   TEXT NOT NULL REFERENCES runs(run_id),
    stage    TEXT NOT NULL,
    records  TEXT NOT NULL,
    sent_ns  INTEGER NOT NULL,
    error    TEXT
);

CREATE INDEX IF NOT EXISTS idx_batches_run ON batches(run_id, id);
`

// Journal is the SQLite playback history.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// Deferred releases record concurrently; one connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// BeginRun records the start of a playback.
func (j *Journal) BeginRun(runID, source string, presses []key.Press) error {
	chord := make([]string, len(presses))
	held := 0
	for i, p := range presses {
		chord[i] = p.String()
		if _, ok := p.Hold(); ok {
			held++
		}
	}
	data, err := json.Marshal(chord)
	if err != nil {
		return fmt.Errorf("encode chord: %w", err)
	}

	_, err = j.db.Exec(`
		INSERT INTO runs (run_id, source, presses, held, chord, started_ns, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, source, len(presses), held, string(data), time.Now().UnixNano(), OutcomeRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordBatch records one transmission call and its result.
func (j *Journal) RecordBatch(runID string, stage playback.Stage, batch []key.Record, sendErr error) error {
	records := make([]string, len(batch))
	for i, r := range batch {
		records[i] = r.String()
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	_, err = j.db.Exec(`
		INSERT INTO batches (run_id, stage, records, sent_ns, error)
		VALUES (?, ?, ?, ?, ?)`,
		runID, stage.String(), string(data), time.Now().UnixNano(), errorText(sendErr),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a playback.
func (j *Journal) FinishRun(runID string, playErr error) error {
	result, err := j.db.Exec(`
		UPDATE runs SET finished_ns = ?, outcome = ?, error = ?
		WHERE run_id = ?`,
		time.Now().UnixNano(), OutcomeOf(playErr), errorText(playErr), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// Run returns a single run, or nil if it does not exist.
func (j *Journal) Run(runID string) (*Run, error) {
	row := j.db.QueryRow(`
		SELECT id, run_id, source, presses, held, chord, started_ns, finished_ns, outcome, error
		FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// Runs returns the most recent runs, newest first.
func (j *Journal) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(`
		SELECT id, run_id, source, presses, held, chord, started_ns, finished_ns, outcome, error
		FROM runs
		ORDER BY started_ns DESC, id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Batches returns the calls made during a run in the order they were recorded.
func (j *Journal) Batches(runID string) ([]Batch, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, stage, records, sent_ns, error
		FROM batches
		WHERE run_id = ?
		ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			b       Batch
			records string
			errText sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.RunID, &b.Stage, &records, &b.SentNs, &errText); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if err := json.Unmarshal([]byte(records), &b.Records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		b.Error = errText.String
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r       Run
		chord   string
		outcome string
		errText sql.NullString
	)
	if err := s.Scan(&r.ID, &r.RunID, &r.Source, &r.Presses, &r.Held, &chord, &r.StartedNs, &r.FinishedNs, &outcome, &errText); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chord), &r.Chord); err != nil {
		return nil, fmt.Errorf("decode chord: %w", err)
	}
	r.Outcome = Outcome(outcome)
	r.Error = errText.String
	return &r, nil
}

func errorText(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
