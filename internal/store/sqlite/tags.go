package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// tagColumns must match the scan order in scanTag.
const tagColumns = `id, content, created_at, updated_at`

// scanTag scans a tag row. TaggedIDs is loaded separately by loadTaggedIDs.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		tag       domain.Tag
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&tag.ID, &tag.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if tag.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if tag.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (t *tx) loadTaggedIDs(tag *domain.Tag) error {
	ids, err := t.queryIDs(
		`SELECT freet_id FROM tag_freets WHERE tag_id = ? ORDER BY sort_order`, tag.ID)
	if err != nil {
		return fmt.Errorf("query tag_freets: %w", err)
	}
	tag.TaggedIDs = ids
	return nil
}

func (t *tx) getTagWhere(where string, arg any) (*domain.Tag, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+tagColumns+` FROM tags WHERE `+where, arg)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := t.loadTaggedIDs(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateTag inserts a new tag. Returns store.ErrAlreadyExists on duplicate content.
func (t *tx) CreateTag(tag *domain.Tag) error {
	_, err := t.exec(`
		INSERT INTO tags (id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Content, formatTime(tag.CreatedAt), formatTime(tag.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return t.replaceList("tag_freets", "tag_id", "freet_id", tag.ID, tag.TaggedIDs)
}

func (t *tx) GetTag(id string) (*domain.Tag, error) {
	return t.getTagWhere(`id = ?`, id)
}

func (t *tx) GetTagByContent(content string) (*domain.Tag, error) {
	return t.getTagWhere(`content = ?`, content)
}

func (t *tx) UpdateTag(tag *domain.Tag) error {
	err := t.execOne(`UPDATE tags SET content = ?, updated_at = ? WHERE id = ?`,
		tag.Content, formatTime(tag.UpdatedAt), tag.ID)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	return t.replaceList("tag_freets", "tag_id", "freet_id", tag.ID, tag.TaggedIDs)
}

// ListTags returns all tags ordered by content. BINARY collation keeps the
// order byte-wise, matching the case-sensitive uniqueness rule.
func (t *tx) ListTags() ([]*domain.Tag, error) {
	rows, err := t.tx.QueryContext(t.ctx, `SELECT `+tagColumns+` FROM tags ORDER BY content ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}

	tags := []*domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, tag := range tags {
		if err := t.loadTaggedIDs(tag); err != nil {
			return nil, err
		}
	}
	return tags, nil
}
