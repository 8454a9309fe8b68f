package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/store"
)

// journalDB runs a short session that journals three dispatches.
func journalDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}),
		"connect\nscore p1 +1\nscene ingame\nundo\n", writeConfig(t, eventConfig), "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}

func TestJournalMissingDatabaseFlag(t *testing.T) {
	_, _, err := execute(NewJournalCommand(&RootOptions{Format: "text"}), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "db")
}

func TestJournalDatabaseNotFound(t *testing.T) {
	_, _, err := execute(NewJournalCommand(&RootOptions{Format: "text"}), "",
		"--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestJournalEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(NewJournalCommand(&RootOptions{Format: "text"}), "", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Journal is empty.")
}

func TestJournalText(t *testing.T) {
	dbPath := journalDB(t)

	out, _, err := execute(NewJournalCommand(&RootOptions{Format: "text", Verbose: true}), "", "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "DO   adjust-score")
	assert.Contains(t, out, "UNDO switch-scene")
	assert.Contains(t, out, "Match: Winners Final Alice 1-0 Bob (BO5)")
	assert.Contains(t, out, "ID: ")
}

func TestJournalLimitJSON(t *testing.T) {
	dbPath := journalDB(t)

	out, _, err := execute(NewJournalCommand(&RootOptions{Format: "json"}), "", "--db", dbPath, "--limit", "2")
	require.NoError(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   []store.JournalRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "switch-scene", resp.Data[0].Command)
	assert.Equal(t, "UNDO", string(resp.Data[1].Action))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "rec-0001", truncateID("rec-0001"))
	assert.Equal(t, "01890a5d...9a7e7c1d", truncateID("01890a5d-ac96-774b-bcce-b302099a7e7c1d"))
}
