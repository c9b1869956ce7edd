package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// feedColumns must match the scan order in scanFeed.
const feedColumns = `id, owner_id, user_ids, tag_ids, created_at, updated_at`

func scanFeed(scanner interface{ Scan(dest ...any) error }) (*domain.Feed, error) {
	var (
		f         domain.Feed
		userIDs   string
		tagIDs    string
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&f.ID, &f.OwnerID, &userIDs, &tagIDs, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(userIDs), &f.UserIDs); err != nil {
		return nil, fmt.Errorf("unmarshal user_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(tagIDs), &f.TagIDs); err != nil {
		return nil, fmt.Errorf("unmarshal tag_ids: %w", err)
	}

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func marshalFeedLists(f *domain.Feed) (users, tags string, err error) {
	u, err := json.Marshal(nonNil(f.UserIDs))
	if err != nil {
		return "", "", fmt.Errorf("marshal user_ids: %w", err)
	}
	tg, err := json.Marshal(nonNil(f.TagIDs))
	if err != nil {
		return "", "", fmt.Errorf("marshal tag_ids: %w", err)
	}
	return string(u), string(tg), nil
}

func (t *tx) CreateFeed(f *domain.Feed) error {
	users, tags, err := marshalFeedLists(f)
	if err != nil {
		return err
	}

	_, err = t.exec(`
		INSERT INTO feeds (id, owner_id, user_ids, tag_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, users, tags, formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert feed: %w", err)
	}
	return nil
}

func (t *tx) GetFeed(id string) (*domain.Feed, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id)
	f, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (t *tx) UpdateFeed(f *domain.Feed) error {
	users, tags, err := marshalFeedLists(f)
	if err != nil {
		return err
	}
	return t.execOne(`
		UPDATE feeds SET owner_id = ?, user_ids = ?, tag_ids = ?, updated_at = ?
		WHERE id = ?`,
		f.OwnerID, users, tags, formatTime(f.UpdatedAt), f.ID)
}

func (t *tx) DeleteFeed(id string) error {
	return t.execOne(`DELETE FROM feeds WHERE id = ?`, id)
}

func (t *tx) ListFeeds() ([]*domain.Feed, error) {
	return t.queryFeeds(`SELECT ` + feedColumns + ` FROM feeds ORDER BY created_at, id`)
}

func (t *tx) ListFeedsByOwner(ownerID string) ([]*domain.Feed, error) {
	return t.queryFeeds(
		`SELECT `+feedColumns+` FROM feeds WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
}

func (t *tx) queryFeeds(query string, args ...any) ([]*domain.Feed, error) {
	rows, err := t.tx.QueryContext(t.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*domain.Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}
