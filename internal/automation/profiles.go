package automation

import (
	"context"

	"github.com/roach88/scorebridge/internal/command"
	"github.com/roach88/scorebridge/internal/match"
)

// ProfileChain looks a profile up in each source in turn and returns the
// first hit. An error from any source stops the lookup.
type ProfileChain []command.ProfileSource

// Profile implements command.ProfileSource.
func (c ProfileChain) Profile(ctx context.Context, id string) (match.PlayerInfo, bool, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		info, found, err := src.Profile(ctx, id)
		if err != nil || found {
			return info, found, err
		}
	}
	return match.PlayerInfo{}, false, nil
}
