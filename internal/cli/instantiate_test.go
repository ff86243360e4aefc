package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantiateCall(t *testing.T) {
	out, err := execute(t, "instantiate", "--defs", testDefsDir,
		`{"kind":"call","target":"#Box","args":["string"]}`)
	require.NoError(t, err)
	assert.Equal(t, "string[]\n", out)
}

func TestInstantiateKeyOf(t *testing.T) {
	out, err := execute(t, "instantiate", "--defs", testDefsDir, `{"kind":"keyof","of":"#User"}`)
	require.NoError(t, err)
	assert.Equal(t, "\"id\" | \"name\"\n", out)
}

func TestInstantiateJSONWire(t *testing.T) {
	out, err := execute(t, "--format", "json", "instantiate", "--defs", testDefsDir,
		`{"kind":"call","target":"#Box","args":["string"]}`)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	wire, ok := data["wire"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", wire["kind"])
	assert.Equal(t, map[string]any{"kind": "string"}, wire["items"])
}

func TestInstantiateConstraintViolation(t *testing.T) {
	out, err := execute(t, "--format", "json", "instantiate", "--defs", testDefsDir,
		`{"kind":"call","target":"#Box","args":["number"]}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONSTRAINT_VIOLATION", resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "T", details["param"])
	assert.Equal(t, "number", details["arg"])
	assert.Equal(t, "string", details["constraint"])
}

func TestInstantiateArityMismatch(t *testing.T) {
	out, err := execute(t, "instantiate", "--defs", testDefsDir,
		`{"kind":"call","target":"#Box","args":["string","string"]}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "ARITY_MISMATCH")
}

func TestInstantiateDeferredCallIsLeftInPlace(t *testing.T) {
	out, err := execute(t, "instantiate", `{"kind":"call","target":"#Missing","args":["string"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Missing<string>\n", out)
}
