// Package state keeps the history of DDL dumps in a local SQLite database.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"

	_ "modernc.org/sqlite" // sqlite driver
)

// Store persists dumps.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// DumpRecord is one saved dump.
type DumpRecord struct {
	ID        string           `json:"id" yaml:"id"`
	Target    string           `json:"target" yaml:"target"`
	Schema    string           `json:"schema" yaml:"schema"`
	Format    ddl.Format       `json:"format" yaml:"format"`
	Canceled  bool             `json:"canceled" yaml:"canceled"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	Fragments []FragmentRecord `json:"fragments" yaml:"fragments"`
}

// FragmentRecord is one object of a saved dump. Error is empty on success.
type FragmentRecord struct {
	Kind   core.Kind `json:"kind" yaml:"kind"`
	Schema string    `json:"schema" yaml:"schema"`
	Name   string    `json:"name" yaml:"name"`
	DDL    string    `json:"ddl,omitempty" yaml:"ddl,omitempty"`
	Error  string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// DumpSummary is a row of the dump history.
type DumpSummary struct {
	ID        string     `json:"id" yaml:"id"`
	Target    string     `json:"target" yaml:"target"`
	Schema    string     `json:"schema" yaml:"schema"`
	Format    ddl.Format `json:"format" yaml:"format"`
	Canceled  bool       `json:"canceled" yaml:"canceled"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	Objects   int        `json:"objects" yaml:"objects"`
	Failed    int        `json:"failed" yaml:"failed"`
}

// NewDumpRecord converts a dump result for storage.
func NewDumpRecord(target, schema string, format ddl.Format, res *ddl.DumpResult) DumpRecord {
	rec := DumpRecord{Target: target, Schema: schema, Format: format, Canceled: res.Canceled}
	for _, f := range res.Fragments {
		fr := FragmentRecord{Kind: f.Kind, Schema: f.Schema, Name: f.Name, DDL: f.Text}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		}
		rec.Fragments = append(rec.Fragments, fr)
	}
	return rec
}

// Render joins the fragments the way ddl.DumpResult.Render does.
func (r *DumpRecord) Render() string {
	res := &ddl.DumpResult{Canceled: r.Canceled}
	for _, f := range r.Fragments {
		frag := ddl.Fragment{Kind: f.Kind, Schema: f.Schema, Name: f.Name, Text: f.DDL}
		if f.Error != "" {
			frag.Err = errors.New(f.Error)
		}
		res.Fragments = append(res.Fragments, frag)
	}
	return res.Render()
}

// NewStore creates a store. If logger is nil, a discard logger is used.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Open opens the database at path and applies pending migrations.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(ctx context.Context, path string) error {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return err
	}
	s.logger.Debug("state store opened", slog.String("path", path))
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// SaveDump stores a dump with its fragments in order and returns its id.
func (s *Store) SaveDump(ctx context.Context, rec DumpRecord) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}
	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dumps (id, target, schema_name, format, canceled, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Target, rec.Schema, string(rec.Format), rec.Canceled, rec.CreatedAt,
	); err != nil {
		return "", fmt.Errorf("failed to save dump: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dump_fragments (dump_id, position, kind, schema_name, object_name, ddl, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare fragment insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range rec.Fragments {
		var errText sql.NullString
		if f.Error != "" {
			errText = sql.NullString{String: f.Error, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, i, string(f.Kind), f.Schema, f.Name, f.DDL, errText); err != nil {
			return "", fmt.Errorf("failed to save fragment %s: %w", core.QualifiedName(f.Schema, f.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit dump: %w", err)
	}
	s.logger.Debug("dump saved", slog.String("id", rec.ID), slog.Int("fragments", len(rec.Fragments)))
	return rec.ID, nil
}

// ListDumps returns the dump history, newest first. An empty schema lists
// every schema.
func (s *Store) ListDumps(ctx context.Context, schema string) ([]DumpSummary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.target, d.schema_name, d.format, d.canceled, d.created_at,
		       COUNT(f.position), COUNT(f.error)
		FROM dumps d
		LEFT JOIN dump_fragments f ON f.dump_id = d.id
		WHERE ? = '' OR d.schema_name = ?
		GROUP BY d.id
		ORDER BY d.created_at DESC, d.id`, schema, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list dumps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DumpSummary
	for rows.Next() {
		var d DumpSummary
		var format string
		if err := rows.Scan(&d.ID, &d.Target, &d.Schema, &format, &d.Canceled, &d.CreatedAt, &d.Objects, &d.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan dump: %w", err)
		}
		d.Format = ddl.Format(format)
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDump loads a dump with its fragments. A missing id yields a
// core.NotFoundError.
func (s *Store) GetDump(ctx context.Context, id string) (*DumpRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rec := &DumpRecord{}
	var format string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, target, schema_name, format, canceled, created_at FROM dumps WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Target, &rec.Schema, &format, &rec.Canceled, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &core.NotFoundError{Kind: "DUMP", Name: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dump: %w", err)
	}
	rec.Format = ddl.Format(format)

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, schema_name, object_name, ddl, error
		FROM dump_fragments WHERE dump_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dump fragments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var f FragmentRecord
		var kind string
		var errText sql.NullString
		if err := rows.Scan(&kind, &f.Schema, &f.Name, &f.DDL, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}
		f.Kind = core.Kind(kind)
		f.Error = errText.String
		rec.Fragments = append(rec.Fragments, f)
	}
	return rec, rows.Err()
}

// DeleteDump removes a dump and its fragments.
func (s *Store) DeleteDump(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM dumps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dump: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Kind: "DUMP", Name: id}
	}
	return nil
}
