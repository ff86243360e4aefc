package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternFinite(t *testing.T) {
	out, err := execute(t, "pattern", "(0|1)(0|1)")
	require.NoError(t, err)
	assert.Contains(t, out, "finite:  true (4 strings)")
	for _, s := range []string{`"00"`, `"01"`, `"10"`, `"11"`} {
		assert.Contains(t, out, s)
	}
}

func TestPatternJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "pattern", "a(b|c)")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["finite"])
	assert.Equal(t, []any{"ab", "ac"}, data["strings"])
}

func TestPatternUnboundedIsNotEnumerated(t *testing.T) {
	out, err := execute(t, "--format", "json", "pattern", "--match", "ax", "--match", "b", "a(.*)")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["finite"])
	assert.NotContains(t, data, "strings")
	assert.Equal(t, map[string]any{"ax": true, "b": false}, data["matches"])
}

func TestPatternMalformed(t *testing.T) {
	out, err := execute(t, "--format", "json", "pattern", "(a")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MALFORMED_PATTERN", resp.Error.Code)
}
