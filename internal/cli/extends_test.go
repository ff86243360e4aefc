package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendsKeywords(t *testing.T) {
	out, err := execute(t, "extends", `{"kind":"literal","const":"a"}`, "string")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(t, "extends", "number", "string")
	require.NoError(t, err, "a false outcome is not a command failure")
	assert.Equal(t, "false\n", out)
}

func TestExtendsWithDefs(t *testing.T) {
	out, err := execute(t, "extends", "--defs", testDefsDir, "#Name", "string")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(t, "extends", "--defs", testDefsDir, "#User", "#Name")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestExtendsBindings(t *testing.T) {
	out, err := execute(t, "extends",
		`{"kind":"array","items":"string"}`,
		`{"kind":"array","items":{"kind":"infer","name":"T"}}`)
	require.NoError(t, err)
	assert.Equal(t, "true\n  T = string\n", out)
}

func TestExtendsJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "extends", "any", "string")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ambiguous", data["outcome"])
	assert.Equal(t, "any", data["left"])
	assert.Equal(t, "string", data["right"])
}

func TestExtendsBadDescriptor(t *testing.T) {
	out, err := execute(t, "extends", "strang", "string")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E008")
	assert.Contains(t, out, "left")
}

func TestExtendsMissingDefs(t *testing.T) {
	out, err := execute(t, "extends", "--defs", "/nonexistent/defs", "string", "string")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestExtendsRecordRequiresDB(t *testing.T) {
	out, err := execute(t, "extends", "--record", "string", "string")
	require.Error(t, err)
	assert.Contains(t, out, "--record requires --db")
}

func TestExtendsRecord(t *testing.T) {
	db := filepath.Join(t.TempDir(), "registry.db")

	out, err := execute(t, "extends", "--db", db, "--record", "string", "unknown")
	require.NoError(t, err)
	assert.Contains(t, out, "true\n")
	assert.Contains(t, out, "recorded as ")
	assert.Contains(t, out, "(seq 1)")

	out, err = execute(t, "extends", "--db", db, "--record", "string", "unknown")
	require.NoError(t, err)
	assert.Contains(t, out, "already recorded as ")
	assert.Contains(t, out, "(seq 1)")
}
