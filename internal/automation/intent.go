package automation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/result"
)

// Verb names an intent.
type Verb string

const (
	VerbConnect    Verb = "connect"
	VerbDisconnect Verb = "disconnect"
	VerbScene      Verb = "scene"
	VerbScore      Verb = "score"
	VerbSwap       Verb = "swap"
	VerbReset      Verb = "reset"
	VerbNext       Verb = "next"
	VerbUndo       Verb = "undo"
	VerbRedo       Verb = "redo"
	VerbPlayer     Verb = "player"
	VerbProfile    Verb = "profile"
	VerbEnqueue    Verb = "enqueue"
	VerbSync       Verb = "sync"
)

// Intent is one parsed operator action.
type Intent struct {
	Verb    Verb
	Side    match.Side       // score, player, profile
	Delta   int              // score
	Arg     string           // scene key, profile id
	Player  match.PlayerInfo // player
	Match   match.MatchState // enqueue
	Literal string           // the line it was parsed from
}

// ParseIntent parses one intent line. Blank lines and lines starting with
// '#' are not intents and return an error.
func ParseIntent(line string) (Intent, error) {
	words, err := tokenize(line)
	if err != nil {
		return Intent{}, err
	}
	if len(words) == 0 || strings.HasPrefix(words[0], "#") {
		return Intent{}, errors.New("empty intent")
	}

	in := Intent{Verb: Verb(strings.ToLower(words[0])), Literal: strings.TrimSpace(line)}
	args := words[1:]

	switch in.Verb {
	case VerbConnect, VerbDisconnect, VerbSwap, VerbReset, VerbNext, VerbUndo, VerbRedo, VerbSync:
		if len(args) != 0 {
			return Intent{}, fmt.Errorf("%s takes no arguments", in.Verb)
		}

	case VerbScene:
		if len(args) == 0 {
			return Intent{}, errors.New("scene needs a scene name")
		}
		in.Arg = strings.Join(args, " ")

	case VerbScore:
		if len(args) != 2 {
			return Intent{}, errors.New("usage: score <p1|p2> <+n|-n>")
		}
		if in.Side, err = match.ParseSide(args[0]); err != nil {
			return Intent{}, err
		}
		if in.Delta, err = strconv.Atoi(args[1]); err != nil {
			return Intent{}, fmt.Errorf("score delta %q is not an integer", args[1])
		}

	case VerbProfile:
		if len(args) != 2 {
			return Intent{}, errors.New("usage: profile <p1|p2> <id>")
		}
		if in.Side, err = match.ParseSide(args[0]); err != nil {
			return Intent{}, err
		}
		in.Arg = args[1]

	case VerbPlayer:
		if len(args) < 2 {
			return Intent{}, errors.New("usage: player <p1|p2> name=<name> [team=] [country=] [chars=a,b]")
		}
		if in.Side, err = match.ParseSide(args[0]); err != nil {
			return Intent{}, err
		}
		if in.Player, err = parsePlayer(args[1:]); err != nil {
			return Intent{}, err
		}

	case VerbEnqueue:
		if in.Match, err = parseMatch(args); err != nil {
			return Intent{}, err
		}

	default:
		return Intent{}, fmt.Errorf("unknown intent %q", words[0])
	}
	return in, nil
}

// Do performs a parsed intent.
func (h *Host) Do(ctx context.Context, in Intent) result.Result {
	switch in.Verb {
	case VerbConnect:
		return h.Connect(ctx)
	case VerbDisconnect:
		return h.Disconnect(ctx)
	case VerbScene:
		return h.SwitchScene(ctx, in.Arg)
	case VerbScore:
		return h.AdjustScore(ctx, in.Side, in.Delta)
	case VerbSwap:
		return h.SwapPlayers(ctx)
	case VerbReset:
		return h.ResetMatch(ctx)
	case VerbNext:
		return h.LoadNext(ctx)
	case VerbUndo:
		return h.Undo(ctx)
	case VerbRedo:
		return h.Redo(ctx)
	case VerbPlayer:
		return h.SetPlayer(ctx, in.Side, in.Player)
	case VerbProfile:
		return h.ApplyProfile(ctx, in.Side, in.Arg)
	case VerbEnqueue:
		return h.Enqueue(in.Match)
	case VerbSync:
		return h.Sync(ctx)
	default:
		return invalid(fmt.Sprintf("unknown intent %q", in.Verb))
	}
}

// Exec parses and performs one intent line. Parse failures are
// INVALID_ARGUMENT results.
func (h *Host) Exec(ctx context.Context, line string) result.Result {
	in, err := ParseIntent(line)
	if err != nil {
		return result.Fail(result.InvalidArgument, err.Error(), err)
	}
	return h.Do(ctx, in)
}

func parsePlayer(args []string) (match.PlayerInfo, error) {
	var p match.PlayerInfo
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return match.PlayerInfo{}, fmt.Errorf("expected key=value, got %q", arg)
		}
		switch strings.ToLower(key) {
		case "name":
			p.Name = value
		case "team":
			p.Team = value
		case "country":
			p.Country = value
		case "chars", "characters":
			p.Characters = splitList(value)
		default:
			return match.PlayerInfo{}, fmt.Errorf("unknown player key %q", key)
		}
	}
	if p.Name == "" {
		return match.PlayerInfo{}, errors.New("player name is required")
	}
	return p, nil
}

func parseMatch(args []string) (match.MatchState, error) {
	var m match.MatchState
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return match.MatchState{}, fmt.Errorf("expected key=value, got %q", arg)
		}
		switch strings.ToLower(key) {
		case "round":
			m.RoundLabel = value
		case "format":
			f, err := match.ParseFormat(value)
			if err != nil {
				return match.MatchState{}, err
			}
			m.Format = f
		case "p1":
			m.Player1.Name = value
		case "p2":
			m.Player2.Name = value
		default:
			return match.MatchState{}, fmt.Errorf("unknown match key %q", key)
		}
	}
	if !m.Format.Valid() {
		return match.MatchState{}, errors.New("enqueue needs format=")
	}
	return m, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// tokenize splits a line on whitespace. Double quotes group words and may
// appear mid-token (name="Eve Online"); a backslash escapes the next rune
// inside quotes.
func tokenize(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quoted  bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
			inWord = true
		case !quoted && (r == ' ' || r == '\t'):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
