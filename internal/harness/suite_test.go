package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqliteurl/internal/store"
)

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios([]string{"testdata/scenarios"}, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join("testdata", "scenarios", "builder.yaml"),
		filepath.Join("testdata", "scenarios", "escape.cue"),
		filepath.Join("testdata", "scenarios", "query_each.yaml"),
	}, files)

	files, err = FindScenarios([]string{"testdata/scenarios"}, "query_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "query_each.yaml")}, files)

	files, err = FindScenarios([]string{"testdata/scenarios/escape.cue", "testdata/scenarios/golden/builder.golden"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/scenarios/escape.cue"}, files)
}

func TestFindScenarios_Errors(t *testing.T) {
	_, err := FindScenarios([]string{"testdata/nope"}, "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = FindScenarios([]string{"testdata"}, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestRunSuite(t *testing.T) {
	files, err := FindScenarios([]string{"testdata/scenarios"}, "")
	require.NoError(t, err)

	result, err := RunSuite(context.Background(), files, SuiteOptions{Driver: store.DriverPure})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Passed, "%+v", result.Scenarios)
	assert.Zero(t, result.Failed)

	golden := map[string]string{}
	for _, s := range result.Scenarios {
		golden[s.Name] = s.Golden
	}
	assert.Equal(t, "match", golden["query_each"])
	assert.Equal(t, "match", golden["builder"])
	assert.Equal(t, "", golden["escape"])
}

func TestRunSuite_Failures(t *testing.T) {
	files, err := FindScenarios([]string{"testdata/invalid"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	result, err := RunSuite(context.Background(), files, SuiteOptions{Driver: store.DriverPure})
	require.NoError(t, err)
	assert.Equal(t, len(files), result.Failed)
	for _, s := range result.Scenarios {
		assert.False(t, s.Pass)
		require.NotEmpty(t, s.Errors)
		assert.Contains(t, s.Errors[0], "failed to load scenario")
	}
}

func TestRunSuite_UpdateGolden(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile("testdata/scenarios/escape.cue")
	require.NoError(t, err)
	file := filepath.Join(dir, "escape.cue")
	require.NoError(t, os.WriteFile(file, src, 0o644))

	opts := SuiteOptions{Driver: store.DriverCGO, UpdateGolden: true}
	result, err := RunSuite(context.Background(), []string{file}, opts)
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "updated", result.Scenarios[0].Golden)
	assert.FileExists(t, GoldenPath(file))

	// A trace from the other driver matches the freshly written file.
	opts = SuiteOptions{Driver: store.DriverPure}
	result, err = RunSuite(context.Background(), []string{file}, opts)
	require.NoError(t, err)
	assert.Equal(t, "match", result.Scenarios[0].Golden)
	assert.True(t, result.Scenarios[0].Pass)
}

func TestRunSuite_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile("testdata/scenarios/escape.cue")
	require.NoError(t, err)
	file := filepath.Join(dir, "escape.cue")
	require.NoError(t, os.WriteFile(file, src, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(GoldenPath(file), []byte("{}\n"), 0o644))

	result, err := RunSuite(context.Background(), []string{file}, SuiteOptions{Driver: store.DriverPure})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Scenarios[0].Errors, "trace does not match golden file (run with --update to regenerate)")
}

func TestRunSuite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunSuite(ctx, []string{"testdata/scenarios/escape.cue"}, SuiteOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
