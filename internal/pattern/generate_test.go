package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typerel/internal/ir"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		text     string
		expected []string
	}{
		{"(0|1)(0|1)", []string{"00", "01", "10", "11"}},
		{"A|(B|C)", []string{"A", "B", "C"}},
		{`\(`, []string{"("}},
		{"", []string{""}},
		{"A(B)(C)", []string{"ABC"}},
		{"A(B|C)", []string{"AB", "AC"}},
		{"(A|B)C", []string{"AC", "BC"}},
		{"|A", []string{"", "A"}},
		{"||A", []string{"", "A"}},
		{"(|)A", []string{"A"}},
		{"(a|a)(b|b)", []string{"ab"}},
		{"on(Click|Key(Up|Down))", []string{"onClick", "onKeyUp", "onKeyDown"}},
		{"(true|false)", []string{"true", "false"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p, err := Parse(tt.text)
			require.NoError(t, err)

			got, err := Generate(p)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGenerateIsRestartable(t *testing.T) {
	p := MustParse("(a|b)(c|d)")

	first, err := Generate(p)
	require.NoError(t, err)
	second, err := Generate(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	first[0] = "mutated"
	third, err := Generate(p)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestGenerateUnbounded(t *testing.T) {
	for _, p := range []ir.Pattern{StringPattern, NumberPattern, IntegerPattern, MustParse("id-(.*)")} {
		_, err := Generate(p)
		assert.ErrorIs(t, err, ErrUnbounded)
	}
}

func TestToUnion(t *testing.T) {
	u, err := ToUnion(MustParse("a|b"))
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.LiteralUnion("a", "b"), u))

	single, err := ToUnion(MustParse("x"))
	require.NoError(t, err)
	assert.Equal(t, ir.StringLit("x"), single)

	_, err = ToUnion(StringPattern)
	assert.ErrorIs(t, err, ErrUnbounded)
}
