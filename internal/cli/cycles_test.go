package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefs(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte(src), 0644))
	return dir
}

func TestCyclesNone(t *testing.T) {
	out, err := execute(t, "cycles", "--defs", testDefsDir)
	require.NoError(t, err)
	assert.Equal(t, "✓ No reference cycles among 3 definition(s)\n", out)
}

func TestCyclesReported(t *testing.T) {
	dir := writeDefs(t, `package x

defs: {
	List: {kind: "object", properties: {next: "#List"}}
	A: {kind: "array", items: "#B"}
	B: {kind: "array", items: "#A"}
}
`)
	out, err := execute(t, "cycles", "--defs", dir)
	require.NoError(t, err, "cycles are legal")
	assert.Contains(t, out, "[info] List → List")
	assert.Contains(t, out, "[warning]")
}

func TestCyclesRequiresSource(t *testing.T) {
	out, err := execute(t, "cycles")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E008")
}
