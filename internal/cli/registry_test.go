package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPutAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "registry.db")

	out, err := execute(t, "--format", "json", "registry", "put", "--db", db, "--defs", testDefsDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]any)
	defs := data["definitions"].([]any)
	require.Len(t, defs, 3)
	names := []string{}
	for _, d := range defs {
		names = append(names, d.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"Name", "User", "Box"}, names)

	out, err = execute(t, "registry", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Box")
}

func TestRegistryListEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "registry.db")

	out, err := execute(t, "registry", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No definitions.\n", out)
}

func TestRegistryRequiresDB(t *testing.T) {
	_, err := execute(t, "registry", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestRegistryDefsFeedExtends(t *testing.T) {
	db := filepath.Join(t.TempDir(), "registry.db")
	_, err := execute(t, "registry", "put", "--db", db, "--defs", testDefsDir)
	require.NoError(t, err)

	out, err := execute(t, "extends", "--db", db, "#Name", "string")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestRegistryChecks(t *testing.T) {
	db := filepath.Join(t.TempDir(), "registry.db")

	_, err := execute(t, "extends", "--db", db, "--record", "string", "unknown")
	require.NoError(t, err)
	_, err = execute(t, "extends", "--db", db, "--record", "number", "string")
	require.NoError(t, err)
	_, err = execute(t, "extends", "--db", db, "--record",
		`{"kind":"array","items":"number"}`,
		`{"kind":"array","items":{"kind":"infer","name":"T"}}`)
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "registry", "checks", "--db", db)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	checks := resp.Data.(map[string]any)["checks"].([]any)
	require.Len(t, checks, 3)

	out, err = execute(t, "registry", "checks", "--db", db, "--outcome", "false")
	require.NoError(t, err)
	assert.Contains(t, out, "number extends string")
	assert.NotContains(t, out, "unknown")

	out, err = execute(t, "registry", "checks", "--db", db, "--outcome", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "T = number")
}

func TestRegistryChecksBadOutcome(t *testing.T) {
	db := filepath.Join(t.TempDir(), "registry.db")

	out, err := execute(t, "registry", "checks", "--db", db, "--outcome", "maybe")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E008")
}
