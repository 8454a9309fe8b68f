package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const eventConfig = `
connection:
  url: mem://test
scene_names:
  ingame: In Game
  break: Break
countries:
  fr: {acronym: FRA}
match:
  round_label: Winners Final
  format: BO5
  player1: {name: Alice, country: fr}
  player2: {name: Bob}
queue:
  - round_label: Losers Final
    format: FT3
    player1: {name: Carol}
    player2: {name: Dave}
profiles:
  daigo: {name: Daigo, team: BST, country: jp}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and stdin, returning stdout and stderr.
func execute(cmd *cobra.Command, stdin string, args ...string) (stdout, stderr string, err error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
