package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/scorebridge/internal/match"
)

// Profile is a stored player identity.
type Profile struct {
	ID   string           `json:"id" yaml:"id"`
	Info match.PlayerInfo `json:"info" yaml:"info"`
}

// UpsertProfile inserts or replaces the profile id. Scores are not stored.
func (s *Store) UpsertProfile(ctx context.Context, id string, info match.PlayerInfo) error {
	if id == "" {
		return errors.New("upsert profile: id is empty")
	}
	if info.Name == "" {
		return fmt.Errorf("upsert profile %q: name is empty", id)
	}
	chars, err := marshalCharacters(info.Characters)
	if err != nil {
		return fmt.Errorf("upsert profile %q: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, team, country, characters_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			team = excluded.team,
			country = excluded.country,
			characters_json = excluded.characters_json,
			updated_at = excluded.updated_at
	`, id, info.Name, info.Team, info.Country, chars, s.now())
	if err != nil {
		return fmt.Errorf("upsert profile %q: %w", id, err)
	}
	return nil
}

// Profile loads one profile. found is false for an unknown id.
//
// Implements command.ProfileSource.
func (s *Store) Profile(ctx context.Context, id string) (match.PlayerInfo, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, team, country, characters_json
		FROM profiles
		WHERE id = ?
	`, id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return match.PlayerInfo{}, false, nil
	}
	if err != nil {
		return match.PlayerInfo{}, false, fmt.Errorf("read profile %q: %w", id, err)
	}
	return p.Info, true, nil
}

// ListProfiles returns every profile ordered by id.
func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, team, country, characters_json
		FROM profiles
		ORDER BY id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// DeleteProfile removes a profile and reports whether it existed.
func (s *Store) DeleteProfile(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete profile %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete profile %q: %w", id, err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(sc scanner) (Profile, error) {
	var (
		p     Profile
		chars string
	)
	if err := sc.Scan(&p.ID, &p.Info.Name, &p.Info.Team, &p.Info.Country, &chars); err != nil {
		return Profile{}, err
	}
	var err error
	if p.Info.Characters, err = unmarshalCharacters(chars); err != nil {
		return Profile{}, err
	}
	return p, nil
}
