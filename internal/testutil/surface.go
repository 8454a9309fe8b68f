package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/scorebridge/internal/remote"
)

// ScoreboardTextFields are the text inputs NewScoreboard creates, one per
// overlay slot.
var ScoreboardTextFields = []string{
	"p1_name", "p1_team", "p1_country", "p1_score",
	"p2_name", "p2_team", "p2_country", "p2_score",
	"round", "format",
}

// NewScoreboard returns an in-memory control surface laid out like a typical
// fighting-game scoreboard: one text input per slot, two flag image inputs
// and three scenes.
func NewScoreboard() *remote.Memory {
	m := remote.NewMemory()
	for _, name := range ScoreboardTextFields {
		m.AddField(name, "text_gdiplus_v2", remote.Settings{"text": ""})
	}
	m.AddField("p1_flag", "image_source", remote.Settings{"file": ""})
	m.AddField("p2_flag", "image_source", remote.Settings{"file": ""})
	m.AddScene("Standby")
	m.AddScene("In Game", remote.SceneItem{ID: 1, Name: "Scoreboard", Enabled: true})
	m.AddScene("Break")
	return m
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
