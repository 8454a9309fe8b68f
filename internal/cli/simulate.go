package cli

import (
	"sort"

	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/remote"
)

// Field kinds the simulated surface uses.
const (
	simTextKind  = "text_gdiplus_v2"
	simImageKind = "image_source"
)

// simulatedSurface builds an in-memory control surface laid out from cfg:
// one text field per wired text slot, an image field per wired flag slot
// and one scene per scene_names entry.
func simulatedSurface(cfg config.Config) *remote.Memory {
	m := remote.NewMemory()
	f := cfg.FieldNames
	for _, name := range []string{
		f.P1Name, f.P1Team, f.P1Country, f.P1Score,
		f.P2Name, f.P2Team, f.P2Country, f.P2Score,
		f.Round, f.Format,
	} {
		if name != "" {
			m.AddField(name, simTextKind, remote.Settings{"text": ""})
		}
	}
	for _, name := range []string{f.P1Flag, f.P2Flag} {
		if name != "" {
			m.AddField(name, simImageKind, remote.Settings{"file": ""})
		}
	}

	scenes := make([]string, 0, len(cfg.SceneNames))
	for _, name := range cfg.SceneNames {
		scenes = append(scenes, name)
	}
	sort.Strings(scenes)
	for _, name := range scenes {
		m.AddScene(name)
	}
	return m
}
