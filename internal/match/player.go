package match

import "slices"

// PlayerInfo describes one side of a match.
// Treat it as immutable; use the With* helpers to derive changed copies.
type PlayerInfo struct {
	Name       string   `json:"name" yaml:"name"`
	Team       string   `json:"team,omitempty" yaml:"team,omitempty"`
	Country    string   `json:"country,omitempty" yaml:"country,omitempty"`
	Characters []string `json:"characters,omitempty" yaml:"characters,omitempty"`
	Score      int      `json:"score" yaml:"score"`
}

// WithScore returns a copy of p with the given score.
func (p PlayerInfo) WithScore(score int) PlayerInfo {
	out := p.clone()
	out.Score = score
	return out
}

// WithIdentity returns a copy of other's identity fields (name, team,
// country, characters) carrying p's score.
func (p PlayerInfo) WithIdentity(other PlayerInfo) PlayerInfo {
	out := other.clone()
	out.Score = p.Score
	return out
}

// Equal reports whether p and other hold the same values.
func (p PlayerInfo) Equal(other PlayerInfo) bool {
	return p.Name == other.Name &&
		p.Team == other.Team &&
		p.Country == other.Country &&
		p.Score == other.Score &&
		slices.Equal(p.Characters, other.Characters)
}

// clone copies the Characters slice so the copy never aliases p.
func (p PlayerInfo) clone() PlayerInfo {
	p.Characters = slices.Clone(p.Characters)
	return p
}
