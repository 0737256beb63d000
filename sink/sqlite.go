package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dustin/go-wikietym/etym"
)

// A SQLiteDB stores records in the etymology table and unknown template
// counts in unknown_templates.
type SQLiteDB struct {
	ctx context.Context
	db  *sql.DB
}

// OpenSQLite opens or creates the database at path with WAL mode
// enabled.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDB{ctx: ctx, db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS etymology (
	term_id TEXT NOT NULL,
	lang TEXT NOT NULL,
	term TEXT NOT NULL,
	reltype TEXT NOT NULL,
	related_term_id TEXT NOT NULL,
	related_lang TEXT NOT NULL,
	related_term TEXT NOT NULL,
	position INTEGER NOT NULL,
	group_tag TEXT,
	parent_tag TEXT,
	parent_position INTEGER
);

CREATE INDEX IF NOT EXISTS idx_etymology_term ON etymology(term_id);
CREATE INDEX IF NOT EXISTS idx_etymology_related ON etymology(related_term_id);

CREATE TABLE IF NOT EXISTS unknown_templates (
	name TEXT PRIMARY KEY,
	count INTEGER NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// WriteRecords inserts recs in one transaction.
func (s *SQLiteDB) WriteRecords(recs []etym.Record) error {
	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(s.ctx, `
INSERT INTO etymology (term_id, lang, term, reltype, related_term_id,
	related_lang, related_term, position, group_tag, parent_tag, parent_position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		parentPos := sql.NullInt64{Int64: int64(r.ParentPosition), Valid: r.ParentTag != ""}
		if _, err := stmt.ExecContext(s.ctx, r.TermID, r.Lang, r.Term, r.Reltype,
			r.RelatedTermID, r.RelatedLang, r.RelatedTerm, r.Position,
			nullString(r.GroupTag), nullString(r.ParentTag), parentPos); err != nil {
			return fmt.Errorf("inserting %v %v: %w", r.Term, r.Reltype, err)
		}
	}
	return tx.Commit()
}

// WriteDiagnostics adds counts to the unknown_templates table.
func (s *SQLiteDB) WriteDiagnostics(counts map[string]int) error {
	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, n := range counts {
		if _, err := tx.ExecContext(s.ctx, `
INSERT INTO unknown_templates (name, count) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET count = count + excluded.count`, name, n); err != nil {
			return fmt.Errorf("counting %v: %w", name, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
