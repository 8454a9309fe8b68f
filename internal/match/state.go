package match

import (
	"fmt"
	"math"
	"strings"
)

// Side selects one of the two players.
type Side int

const (
	// P1 is the left-hand player.
	P1 Side = iota + 1
	// P2 is the right-hand player.
	P2
)

// String returns "p1" or "p2".
func (s Side) String() string {
	switch s {
	case P1:
		return "p1"
	case P2:
		return "p2"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Valid reports whether s is P1 or P2.
func (s Side) Valid() bool {
	return s == P1 || s == P2
}

// ParseSide accepts "p1", "1", "p2" or "2".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p1", "1":
		return P1, nil
	case "p2", "2":
		return P2, nil
	default:
		return 0, fmt.Errorf("unknown side %q: want p1 or p2", s)
	}
}

// MatchState is the authoritative description of the displayed match.
//
// Invariant: each player's score lies in [scoreMin, Format.WinsRequired()].
// The threshold is derived from Format, never stored.
type MatchState struct {
	RoundLabel string     `json:"round_label" yaml:"round_label"`
	Format     Format     `json:"format" yaml:"format"`
	Player1    PlayerInfo `json:"player1" yaml:"player1"`
	Player2    PlayerInfo `json:"player2" yaml:"player2"`
}

// WinsRequired is shorthand for m.Format.WinsRequired().
func (m MatchState) WinsRequired() int {
	return m.Format.WinsRequired()
}

// Player returns the player on the given side.
func (m MatchState) Player(side Side) PlayerInfo {
	if side == P2 {
		return m.Player2.clone()
	}
	return m.Player1.clone()
}

// WithPlayer returns a copy of m with the player on side replaced.
func (m MatchState) WithPlayer(side Side, p PlayerInfo) MatchState {
	out := m.clone()
	if side == P2 {
		out.Player2 = p.clone()
	} else {
		out.Player1 = p.clone()
	}
	return out
}

// WithScores returns a copy of m with both scores replaced.
func (m MatchState) WithScores(p1, p2 int) MatchState {
	out := m.clone()
	out.Player1.Score = p1
	out.Player2.Score = p2
	return out
}

// Swapped returns a copy of m with Player1 and Player2 exchanged.
func (m MatchState) Swapped() MatchState {
	out := m.clone()
	out.Player1, out.Player2 = out.Player2, out.Player1
	return out
}

// Equal reports whether both states are identical field by field.
func (m MatchState) Equal(other MatchState) bool {
	return m.RoundLabel == other.RoundLabel &&
		m.Format == other.Format &&
		m.Player1.Equal(other.Player1) &&
		m.Player2.Equal(other.Player2)
}

func (m MatchState) clone() MatchState {
	m.Player1 = m.Player1.clone()
	m.Player2 = m.Player2.clone()
	return m
}

// AddScore returns ClampScore(score+delta, ...) with the sum saturating at
// the int range instead of wrapping.
func AddScore(score, delta, min, max int, format Format) int {
	sum := score + delta
	switch {
	case delta > 0 && sum < score:
		sum = math.MaxInt
	case delta < 0 && sum > score:
		sum = math.MinInt
	}
	return ClampScore(sum, min, max, format)
}

// ClampScore bounds score to [min, format.WinsRequired()]. A positive max
// lowers the upper bound further; max <= 0 means no extra cap.
func ClampScore(score, min, max int, format Format) int {
	upper := format.WinsRequired()
	if max > 0 && max < upper {
		upper = max
	}
	if upper < min {
		upper = min
	}
	switch {
	case score < min:
		return min
	case score > upper:
		return upper
	default:
		return score
	}
}
