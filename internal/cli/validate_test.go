package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidConfig(t *testing.T) {
	path := writeConfig(t, eventConfig)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Config valid")
	assert.Contains(t, out, "Winners Final Alice vs Bob (BO5)")
	assert.Contains(t, out, "Fields:   12 wired")
	assert.Contains(t, out, "Queued:   1")
	assert.Contains(t, out, "Profiles: 1")
}

func TestValidateValidConfigJSON(t *testing.T) {
	path := writeConfig(t, eventConfig)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), "", path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.NotNil(t, resp.Data.Summary)
	assert.Equal(t, 2, resp.Data.Summary.Scenes)
}

func TestValidateFileNotFound(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "", "/nonexistent/event.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeConfigRead+"]")
}

func TestValidateSchemaErrors(t *testing.T) {
	path := writeConfig(t, "score_min: -1\n")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "score_min")
}

func TestValidateCrossFieldErrorsJSON(t *testing.T) {
	path := writeConfig(t, `
score_min: 3
score_max: 1
`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), "", path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotEmpty(t, resp.Data.Errors)
	assert.Contains(t, resp.Data.Errors[0], "score_max 1 is below score_min 3")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfigInvalid, resp.Error.Code)
}

func TestConfigErrors_SplitsLines(t *testing.T) {
	msgs := configErrors(assertErr("first problem\n\n  second problem\n"))
	assert.Equal(t, []string{"first problem", "second problem"}, msgs)

	assert.Equal(t, []string{"invalid config"}, configErrors(assertErr("")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
