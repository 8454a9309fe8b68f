package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/scorebridge/internal/match"
)

// marshalJSON encodes v as compact JSON TEXT.
// HTML escaping is disabled so player names with & or < stay readable in the
// database.
func marshalJSON(what string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func marshalMatch(m match.MatchState) (string, error) {
	return marshalJSON("match", m)
}

func unmarshalMatch(data string) (match.MatchState, error) {
	var m match.MatchState
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return match.MatchState{}, fmt.Errorf("unmarshal match: %w", err)
	}
	return m, nil
}

// marshalCharacters always yields a JSON array; nil becomes "[]".
func marshalCharacters(chars []string) (string, error) {
	if chars == nil {
		chars = []string{}
	}
	return marshalJSON("characters", chars)
}

// unmarshalCharacters returns nil for an empty array.
func unmarshalCharacters(data string) ([]string, error) {
	var chars []string
	if err := json.Unmarshal([]byte(data), &chars); err != nil {
		return nil, fmt.Errorf("unmarshal characters: %w", err)
	}
	if len(chars) == 0 {
		return nil, nil
	}
	return chars, nil
}
