package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"github.com/san-kum/nudyn/internal/nudyn"
)

//go:embed schema.sql
var schemaSQL string

// DBFile is the database file name inside the data directory.
const DBFile = "nudyn.db"

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("storage: run not found")

// Store persists analysis runs as flat collections of named binned-mean
// records in a SQLite database.
type Store struct {
	baseDir string
	db      *sql.DB
	log     *zap.Logger
}

func New(baseDir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{baseDir: baseDir, log: log}
}

// Init creates the data directory and opens the database.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	db, err := sql.Open("sqlite3", filepath.Join(s.baseDir, DBFile))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type RunMetadata struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Timestamp  time.Time    `json:"timestamp"`
	Config     string       `json:"config"`
	Layout     nudyn.Layout `json:"layout"`
	Species    []string     `json:"species"`
	Stats      nudyn.Stats  `json:"stats"`
	Inputs     []string     `json:"inputs"`
	MinEntries int64        `json:"min_entries"`
}

// Save writes the run metadata, every non-empty moment cell and every valid
// derived cell in one transaction and returns the new run id.
func (s *Store) Save(ctx context.Context, meta RunMetadata, acc *nudyn.Accumulator, derived *nudyn.Derived) (string, error) {
	if len(meta.Species) != meta.Layout.Species {
		return "", fmt.Errorf("%w: %d names for %d species", ErrSpeciesName, len(meta.Species), meta.Layout.Species)
	}
	if err := CheckSpeciesNames(meta.Species); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	meta.ID = id.String()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}

	layout, err := sonnet.Marshal(meta.Layout)
	if err != nil {
		return "", err
	}
	species, err := sonnet.Marshal(meta.Species)
	if err != nil {
		return "", err
	}
	stats, err := sonnet.Marshal(meta.Stats)
	if err != nil {
		return "", err
	}
	inputs, err := sonnet.Marshal(meta.Inputs)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, created_at, config, layout, species, stats, inputs, min_entries)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Timestamp.UnixNano(), meta.Config,
		string(layout), string(species), string(stats), string(inputs), meta.MinEntries)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, name, kind, ord, tuple, activity_bin, rapidity_bin, entries, sum, sum_sq, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	w := &recordWriter{ctx: ctx, stmt: stmt, runID: meta.ID, species: meta.Species}
	if acc != nil {
		if err := w.moments(acc); err != nil {
			return "", err
		}
	}
	if derived != nil {
		if err := w.derived(derived); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.log.Info("saved run",
		zap.String("run", meta.ID),
		zap.Int("records", w.written))
	return meta.ID, nil
}

func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, config, layout, species, stats, inputs, min_entries
		 FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			s.log.Warn("skipping unreadable run", zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(ctx context.Context, runID string) (*RunMetadata, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, config, layout, species, stats, inputs, min_entries
		 FROM runs WHERE id = ?`, runID)
	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return meta, err
}

// Delete removes a run and its records.
func (s *Store) Delete(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*RunMetadata, error) {
	var (
		meta                       RunMetadata
		created                    int64
		layout, species, stats, in string
	)
	if err := sc.Scan(&meta.ID, &meta.Name, &created, &meta.Config, &layout, &species, &stats, &in, &meta.MinEntries); err != nil {
		return nil, err
	}
	meta.Timestamp = time.Unix(0, created).UTC()
	if err := sonnet.Unmarshal([]byte(layout), &meta.Layout); err != nil {
		return nil, fmt.Errorf("run %s layout: %w", meta.ID, err)
	}
	if err := sonnet.Unmarshal([]byte(species), &meta.Species); err != nil {
		return nil, fmt.Errorf("run %s species: %w", meta.ID, err)
	}
	if err := sonnet.Unmarshal([]byte(stats), &meta.Stats); err != nil {
		return nil, fmt.Errorf("run %s stats: %w", meta.ID, err)
	}
	if err := sonnet.Unmarshal([]byte(in), &meta.Inputs); err != nil {
		return nil, fmt.Errorf("run %s inputs: %w", meta.ID, err)
	}
	return &meta, nil
}
