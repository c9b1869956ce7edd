package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// freetColumns must match the scan order in scanFreet.
const freetColumns = `seq, id, author_id, content, created_at, modified_at`

func scanFreet(scanner interface{ Scan(dest ...any) error }) (*domain.Freet, error) {
	var (
		f          domain.Freet
		seq        int64
		createdAt  string
		modifiedAt string
	)

	if err := scanner.Scan(&seq, &f.ID, &f.AuthorID, &f.Content, &createdAt, &modifiedAt); err != nil {
		return nil, err
	}
	f.Seq = uint64(seq)

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// loadFreetLists fills TagIDs and FlagIDs from the join tables.
func (t *tx) loadFreetLists(f *domain.Freet) error {
	var err error
	f.TagIDs, err = t.queryIDs(
		`SELECT tag_id FROM freet_tags WHERE freet_id = ? ORDER BY sort_order`, f.ID)
	if err != nil {
		return fmt.Errorf("query freet_tags: %w", err)
	}
	f.FlagIDs, err = t.queryIDs(
		`SELECT flag_id FROM freet_flags WHERE freet_id = ? ORDER BY sort_order`, f.ID)
	if err != nil {
		return fmt.Errorf("query freet_flags: %w", err)
	}
	return nil
}

func (t *tx) queryFreets(query string, args ...any) ([]*domain.Freet, error) {
	rows, err := t.tx.QueryContext(t.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query freets: %w", err)
	}

	var freets []*domain.Freet
	for rows.Next() {
		f, err := scanFreet(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan freet: %w", err)
		}
		freets = append(freets, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, f := range freets {
		if err := t.loadFreetLists(f); err != nil {
			return nil, err
		}
	}
	return freets, nil
}

// CreateFreet inserts a freet; Seq comes from the AUTOINCREMENT rowid.
func (t *tx) CreateFreet(f *domain.Freet) error {
	res, err := t.exec(`
		INSERT INTO freets (id, author_id, content, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.AuthorID, f.Content, formatTime(f.CreatedAt), formatTime(f.ModifiedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert freet: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("freet seq: %w", err)
	}
	f.Seq = uint64(seq)

	if err := t.replaceList("freet_tags", "freet_id", "tag_id", f.ID, f.TagIDs); err != nil {
		return err
	}
	return t.replaceList("freet_flags", "freet_id", "flag_id", f.ID, f.FlagIDs)
}

func (t *tx) GetFreet(id string) (*domain.Freet, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+freetColumns+` FROM freets WHERE id = ?`, id)
	f, err := scanFreet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := t.loadFreetLists(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (t *tx) UpdateFreet(f *domain.Freet) error {
	err := t.execOne(`
		UPDATE freets SET author_id = ?, content = ?, created_at = ?, modified_at = ?
		WHERE id = ?`,
		f.AuthorID, f.Content, formatTime(f.CreatedAt), formatTime(f.ModifiedAt), f.ID)
	if err != nil {
		return err
	}
	if err := t.replaceList("freet_tags", "freet_id", "tag_id", f.ID, f.TagIDs); err != nil {
		return err
	}
	return t.replaceList("freet_flags", "freet_id", "flag_id", f.ID, f.FlagIDs)
}

// DeleteFreet removes the freet; its join rows cascade.
func (t *tx) DeleteFreet(id string) error {
	return t.execOne(`DELETE FROM freets WHERE id = ?`, id)
}

func (t *tx) ListFreets() ([]*domain.Freet, error) {
	return t.queryFreets(`SELECT ` + freetColumns + ` FROM freets ORDER BY seq`)
}

func (t *tx) ListFreetsByAuthors(authorIDs []string) ([]*domain.Freet, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(authorIDs)), ",")
	args := make([]any, len(authorIDs))
	for i, a := range authorIDs {
		args[i] = a
	}
	return t.queryFreets(
		`SELECT `+freetColumns+` FROM freets WHERE author_id IN (`+placeholders+`) ORDER BY seq`,
		args...)
}
