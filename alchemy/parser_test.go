package alchemy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	const input = `variables:
a
b
factors:
a/b// 0 0 0 0
`

	m, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, 2, m.NumVariables())
	require.Equal(t, 1, m.NumFactors())

	tbl := m.Factor(0)
	require.Equal(t, 4, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		assert.Equal(t, 0.0, tbl.LogP(i))
	}
	assert.Equal(t, 1.0, tbl.Weight())

	name, ok := m.VarName(0)
	require.True(t, ok)
	assert.Equal(t, "a", name)
	name, ok = m.VarName(1)
	require.True(t, ok)
	assert.Equal(t, "b", name)

	assert.Equal(t, []int{0}, m.FactorIDs(0))
	assert.Equal(t, []int{0}, m.FactorIDs(1))
}

func TestParseDeclaredArity(t *testing.T) {
	const input = "variables:\na\nc\t3\nfactors:\nc// 1 2 3\n"

	m, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	vars := m.Variables()
	require.Len(t, vars, 1) // only c appears in a factor
	assert.Equal(t, 3, vars[0].Arity)

	tbl := m.Factor(0)
	assert.Equal(t, []float64{1, 2, 3}, tbl.LogValues())
}

func TestParseCanonicalization(t *testing.T) {
	// Listing arguments as a/b or b/a must yield the same canonical table
	// when the value lists agree under the index permutation. With both
	// variables binary, position i+2j holds (a=i, b=j) in the first file
	// and position j+2i holds (a=i, b=j) in the second.
	const ab = "variables:\na\nb\nfactors:\na/b// 1 2 3 4\n"
	const ba = "variables:\na\nb\nfactors:\nb/a// 1 3 2 4\n"

	m1, err := Parse(strings.NewReader(ab))
	require.NoError(t, err)
	m2, err := Parse(strings.NewReader(ba))
	require.NoError(t, err)

	t1, t2 := m1.Factor(0), m2.Factor(0)
	require.True(t, t1.Domain().Equal(t2.Domain()))
	assert.Equal(t, t1.LogValues(), t2.LogValues())
	assert.Equal(t, []float64{1, 2, 3, 4}, t1.LogValues())
}

func TestParseListedOrderRemap(t *testing.T) {
	// x is declared first (id 0, arity 2), y second (id 1, arity 3). The
	// factor lists y first, so the file's k-th value belongs to
	// (y = k%3, x = k/3) and must land at canonical index x + 2*y.
	const input = "variables:\nx\ny\t3\nfactors:\ny/x// 10 11 12 13 14 15\n"

	m, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	tbl := m.Factor(0)
	require.Equal(t, 6, tbl.Len())

	for k := 0; k < 6; k++ {
		y, x := k%3, k/3
		assert.Equal(t, float64(10+k), tbl.LogP(x+2*y), "file position %d", k)
	}
}

func TestParseWeightSuffix(t *testing.T) {
	const input = "variables:\na\nfactors:\na// 0.5 -0.5 /// 2.5\n"

	m, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	tbl := m.Factor(0)
	assert.Equal(t, 2.5, tbl.Weight())
	assert.Equal(t, []float64{0.5, -0.5}, tbl.LogValues())
}

func TestParseSkipsBlankFactorLines(t *testing.T) {
	const input = "variables:\na\nb\nfactors:\n\na// 1 2\n\n\nb// 3 4\n"

	m, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumFactors())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		line  int
	}{
		{
			name:  "missing variables header",
			input: "factors:\n",
			want:  ErrMissingVariablesSection,
			line:  1,
		},
		{
			name:  "empty file",
			input: "",
			want:  ErrMissingVariablesSection,
		},
		{
			name:  "missing factors header",
			input: "variables:\na\n",
			want:  ErrMissingFactorsSection,
			line:  2,
		},
		{
			name:  "blank line in variables",
			input: "variables:\na\n\nb\nfactors:\n",
			want:  ErrBlankVariableLine,
			line:  3,
		},
		{
			name:  "bad arity",
			input: "variables:\na\tx\nfactors:\n",
			want:  ErrBadArity,
			line:  2,
		},
		{
			name:  "zero arity",
			input: "variables:\na\t0\nfactors:\n",
			want:  ErrBadArity,
			line:  2,
		},
		{
			name:  "duplicate declaration",
			input: "variables:\na\na\nfactors:\n",
			want:  ErrDuplicateName,
			line:  3,
		},
		{
			name:  "unknown variable",
			input: "variables:\na\nfactors:\na/b// 0 0 0 0\n",
			want:  ErrUnknownVariable,
			line:  4,
		},
		{
			name:  "duplicate argument",
			input: "variables:\na\nfactors:\na/a// 0 0 0 0\n",
			want:  ErrDuplicateArgument,
			line:  4,
		},
		{
			name:  "missing terminator",
			input: "variables:\na\nfactors:\na 0 0\n",
			want:  ErrMalformedFactor,
			line:  4,
		},
		{
			name:  "truncated values",
			input: "variables:\na\nb\nfactors:\na/b// 0 0 0\n",
			want:  ErrBadValueCount,
			line:  5,
		},
		{
			name:  "surplus values",
			input: "variables:\na\nfactors:\na// 0 0 0\n",
			want:  ErrBadValueCount,
			line:  4,
		},
		{
			name:  "unparseable value",
			input: "variables:\na\nfactors:\na// 0 zero\n",
			want:  ErrMalformedFactor,
			line:  4,
		},
		{
			name:  "bad weight",
			input: "variables:\na\nfactors:\na// 0 0 /// heavy\n",
			want:  ErrMalformedFactor,
			line:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			require.Nil(t, m, "no partial model on error")
			require.ErrorIs(t, err, tt.want)

			if tt.line > 0 {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.line, pe.Line)
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile("does/not/exist.fg")
	require.Error(t, err)
}
