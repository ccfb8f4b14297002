package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadence/internal/store"
)

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Create empty database
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	out, err := execute(t, "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No classes found")
}

func TestReplayJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	id := createClass(t, dbPath)

	_, err := execute(t, "cancel", id, "2024-01-05", "--db", dbPath, "--now", beforeCourse)
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "replay", "--db", dbPath, "--class", id, "--now", beforeCourse)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Classes, 1)
	assert.Equal(t, id, resp.Data.Classes[0].ClassID)
	assert.Equal(t, 1, resp.Data.Classes[0].Entries)
	assert.Equal(t, 6, resp.Data.Classes[0].Sessions)
	assert.Empty(t, resp.Data.Classes[0].Problems)
}

func TestReplayUnknownClass(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	_, err := execute(t, "replay", "--db", dbPath, "--class", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestReplayDetectsGap(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	id := createClass(t, dbPath)

	// Advance the class version without writing an entry, leaving seq 1 missing.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.DB().ExecContext(context.Background(), "UPDATE classes SET version = 1 WHERE id = ?", id)
	require.NoError(t, err)
	st.Close()

	out, err := execute(t, "replay", "--db", dbPath, "--now", beforeCourse)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "ledger seqs are not dense")
	assert.Contains(t, out, "Replay verification FAILED.")
}
