package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunExitCodes(t *testing.T) {
	assert.Equal(t, 0, run([]string{"--format", "json", "extends", "string", "unknown"}))
	assert.Equal(t, 2, run([]string{"--format", "json", "extends", "strang", "string"}))
	assert.Equal(t, 1, run([]string{"--format", "json", "instantiate", "--defs", "../../testdata/defs",
		`{"kind":"call","target":"#Box","args":["number"]}`}))
}
