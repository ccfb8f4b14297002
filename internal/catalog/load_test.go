package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir_Valid(t *testing.T) {
	result, errs := LoadDir("testdata/valid", LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Classes, 2)
	assert.Equal(t, "evening_english", result.Classes[0].Key)
	assert.Equal(t, "T2 / T4 / T6 • 18:30", result.Classes[0].Pattern)
	assert.Equal(t, "weekend_ielts", result.Classes[1].Key)
	assert.Equal(t, "T7 / CN • 09:00", result.Classes[1].Pattern)
}

func TestLoadDir_CollectAll(t *testing.T) {
	result, errs := LoadDir("testdata/invalid", LoadModeCollectAll)
	require.Len(t, errs, 2)

	codes := make([]string, len(errs))
	for i, err := range errs {
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		codes[i] = loadErr.Code
		assert.True(t, loadErr.Pos.IsValid(), "error without position: %v", err)
	}
	assert.Equal(t, []string{ErrCodeBadPattern, ErrCodeMissingField}, codes)

	require.Len(t, result.Classes, 1)
	assert.Equal(t, "Fine", result.Classes[0].Name)
}

func TestLoadDir_FailFast(t *testing.T) {
	_, errs := LoadDir("testdata/invalid", LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "class.no_days")
}

func TestLoadDir_Duplicate(t *testing.T) {
	dir := t.TempDir()
	src := `package catalog

class: a: { name: "Same", pattern: "T2 • 18:00", start: "2024-01-01", sessions: 1 }
class: b: { name: "Same", pattern: "T3 • 18:00", start: "2024-01-01", sessions: 1 }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.cue"), []byte(src), 0644))

	result, errs := LoadDir(dir, LoadModeCollectAll)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeDuplicate, loadErr.Code)
	assert.Len(t, result.Classes, 1)
}

func TestLoadDir_Missing(t *testing.T) {
	_, errs := LoadDir(filepath.Join(t.TempDir(), "nope"), LoadModeFailFast)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadDir_NoFiles(t *testing.T) {
	_, errs := LoadDir(t.TempDir(), LoadModeFailFast)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadDir_NoClasses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.cue"), []byte("package catalog\n\nother: 1\n"), 0644))

	_, errs := LoadDir(dir, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no classes")
}
