package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// flagColumns must match the scan order in scanFlag.
const flagColumns = `id, freet_id, kind, source, challenges, challenger_ids,
	state, retired_reason, created_at, retired_at`

func scanFlag(scanner interface{ Scan(dest ...any) error }) (*domain.Flag, error) {
	var (
		f             domain.Flag
		kind          string
		state         string
		challengers   string
		retiredReason sql.NullString
		createdAt     string
		retiredAt     sql.NullString
	)

	err := scanner.Scan(
		&f.ID,
		&f.FreetID,
		&kind,
		&f.Source,
		&f.Challenges,
		&challengers,
		&state,
		&retiredReason,
		&createdAt,
		&retiredAt,
	)
	if err != nil {
		return nil, err
	}

	f.Kind = domain.FlagKind(kind)
	f.State = domain.FlagState(state)
	f.RetiredReason = domain.RetiredReason(retiredReason.String)

	if err := json.Unmarshal([]byte(challengers), &f.ChallengerIDs); err != nil {
		return nil, fmt.Errorf("unmarshal challenger_ids: %w", err)
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.RetiredAt, err = parseNullableTime(retiredAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (t *tx) CreateFlag(f *domain.Flag) error {
	challengers, err := json.Marshal(nonNil(f.ChallengerIDs))
	if err != nil {
		return fmt.Errorf("marshal challenger_ids: %w", err)
	}

	_, err = t.exec(`
		INSERT INTO flags (id, freet_id, kind, source, challenges, challenger_ids,
			state, retired_reason, created_at, retired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.FreetID,
		string(f.Kind),
		f.Source,
		f.Challenges,
		string(challengers),
		string(f.State),
		nullString(string(f.RetiredReason)),
		formatTime(f.CreatedAt),
		nullTimeString(f.RetiredAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert flag: %w", err)
	}
	return nil
}

func (t *tx) GetFlag(id string) (*domain.Flag, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+flagColumns+` FROM flags WHERE id = ?`, id)
	f, err := scanFlag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (t *tx) UpdateFlag(f *domain.Flag) error {
	challengers, err := json.Marshal(nonNil(f.ChallengerIDs))
	if err != nil {
		return fmt.Errorf("marshal challenger_ids: %w", err)
	}

	return t.execOne(`
		UPDATE flags SET challenges = ?, challenger_ids = ?, state = ?,
			retired_reason = ?, retired_at = ?, source = ?
		WHERE id = ?`,
		f.Challenges,
		string(challengers),
		string(f.State),
		nullString(string(f.RetiredReason)),
		nullTimeString(f.RetiredAt),
		f.Source,
		f.ID,
	)
}

func (t *tx) ListFlags() ([]*domain.Flag, error) {
	rows, err := t.tx.QueryContext(t.ctx, `SELECT `+flagColumns+` FROM flags ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query flags: %w", err)
	}
	defer rows.Close()

	var flags []*domain.Flag
	for rows.Next() {
		f, err := scanFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// nonNil keeps empty id lists encoded as [] rather than null.
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
