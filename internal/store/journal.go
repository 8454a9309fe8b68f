package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/scorebridge/internal/command"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/result"
)

// JournalRow is one stored dispatch.
type JournalRow struct {
	Seq        int64            `json:"seq"`
	ID         string           `json:"id,omitempty"`
	Action     command.Action   `json:"action"`
	Command    string           `json:"command"`
	OK         bool             `json:"ok"`
	Code       result.Code      `json:"code,omitempty"`
	Message    string           `json:"message"`
	Match      match.MatchState `json:"match"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// Record appends a dispatch outcome to the journal.
//
// Implements command.Journal.
func (s *Store) Record(ctx context.Context, e command.Entry) error {
	matchJSON, err := marshalMatch(e.Match)
	if err != nil {
		return fmt.Errorf("write journal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal
		(id, action, command, ok, code, message, match_json, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		string(e.Action),
		e.Command,
		e.Result.OK,
		string(e.Result.Code),
		e.Result.Message,
		matchJSON,
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// ReadJournal returns the newest limit rows in seq order (oldest first).
// A limit <= 0 returns every row.
func (s *Store) ReadJournal(ctx context.Context, limit int) ([]JournalRow, error) {
	query := `
		SELECT seq, id, action, command, ok, code, message, match_json, recorded_at
		FROM journal
		ORDER BY seq ASC
	`
	args := []any{}
	if limit > 0 {
		query = `
			SELECT seq, id, action, command, ok, code, message, match_json, recorded_at
			FROM (
				SELECT * FROM journal ORDER BY seq DESC LIMIT ?
			)
			ORDER BY seq ASC
		`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var out []JournalRow
	for rows.Next() {
		var (
			row       JournalRow
			action    string
			code      string
			matchJSON string
			recorded  string
		)
		if err := rows.Scan(&row.Seq, &row.ID, &action, &row.Command, &row.OK, &code, &row.Message, &matchJSON, &recorded); err != nil {
			return nil, fmt.Errorf("read journal: scan: %w", err)
		}
		row.Action = command.Action(action)
		row.Code = result.Code(code)
		if row.Match, err = unmarshalMatch(matchJSON); err != nil {
			return nil, fmt.Errorf("read journal seq %d: %w", row.Seq, err)
		}
		if row.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			return nil, fmt.Errorf("read journal seq %d: recorded_at: %w", row.Seq, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// JournalLen returns the number of stored rows.
func (s *Store) JournalLen(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal").Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}
