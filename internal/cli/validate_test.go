package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	validCatalog   = filepath.Join("..", "catalog", "testdata", "valid")
	invalidCatalog = filepath.Join("..", "catalog", "testdata", "invalid")
)

func TestValidateValidCatalog(t *testing.T) {
	out, err := execute(t, "validate", validCatalog)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Catalog valid: 2 class(es)")
}

func TestValidateValidCatalogJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", validCatalog)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.ElementsMatch(t, []string{"evening_english", "weekend_ielts"}, resp.Data.Classes)
}

func TestValidateInvalidCatalog(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", invalidCatalog)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, []string{"ok"}, resp.Data.Classes)

	codes := make([]string, len(resp.Data.Errors))
	for i, e := range resp.Data.Errors {
		codes[i] = e.Code
	}
	assert.ElementsMatch(t, []string{"E202", "E201"}, codes)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/catalog")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
