package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSuitesDir = filepath.Join("..", "..", "testdata", "suites")

// writeSuite writes a suite that references the shared test definitions.
func writeSuite(t *testing.T, dir, name, cases string) string {
	t.Helper()
	defs, err := filepath.Abs(filepath.Join(testDefsDir, "basics.cue"))
	require.NoError(t, err)
	src := "name: " + name + "\ndefs:\n  - " + defs + "\ncases:\n" + cases
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

const passingCases = `  - name: name is string
    extends:
      left: "#Name"
      right: string
      expect: "true"
`

const failingCases = `  - name: wrong expectation
    extends:
      left: number
      right: string
      expect: "true"
`

func TestRunTestsSuiteDir(t *testing.T) {
	out, err := execute(t, "test", testSuitesDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ basics")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestRunTestsJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", testSuitesDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["passed"])
}

func TestRunTestsFailure(t *testing.T) {
	dir := t.TempDir()
	writeSuite(t, dir, "broken", failingCases)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "expected true, got false")
}

func TestRunTestsFailureJSON(t *testing.T) {
	dir := t.TempDir()
	writeSuite(t, dir, "broken", failingCases)

	out, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestRunTestsFilter(t *testing.T) {
	dir := t.TempDir()
	writeSuite(t, dir, "good", passingCases)
	writeSuite(t, dir, "broken", failingCases)

	out, err := execute(t, "test", dir, "--filter", "go*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ good")
	assert.NotContains(t, out, "broken")
}

func TestRunTestsGoldenUpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	file := writeSuite(t, dir, "good", passingCases)

	out, err := execute(t, "test", file, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ good (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "good.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"outcome":"true"`)

	out, err = execute(t, "--format", "json", "test", file)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]any)
	suites := data["suites"].([]any)
	require.Len(t, suites, 1)
	assert.Equal(t, "match", suites[0].(map[string]any)["golden"])
}

func TestRunTestsGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	file := writeSuite(t, dir, "good", passingCases)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "good.golden"), []byte(`{"suite":"good","trace":[]}`), 0644))

	out, err := execute(t, "test", file)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestRunTestsChecks(t *testing.T) {
	out, err := execute(t, "test", "--checks", testDefsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ checks:defs")
}

func TestRunTestsNoArgs(t *testing.T) {
	out, err := execute(t, "test")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no suite paths given")
}

func TestRunTestsMissingPath(t *testing.T) {
	out, err := execute(t, "test", "/nonexistent/suites")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestRunTestsEmptyDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No suites found.\n", out)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "golden", "c.golden"), goldenFilePath(filepath.Join("a", "b", "c.yaml")))
}
