package factor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		dom  Domain
	}{
		{"single binary", MustDomain(NewVariable(0, 2))},
		{"pair", MustDomain(NewVariable(0, 2), NewVariable(1, 3))},
		{"mixed arity", MustDomain(NewVariable(0, 3), NewVariable(2, 2), NewVariable(7, 4))},
		{"empty", MustDomain()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for linear := 0; linear < tt.dom.Card(); linear++ {
				a := AssignmentAt(tt.dom, linear)
				if got := a.LinearIndex(); got != linear {
					t.Fatalf("decode/encode mismatch: %d -> %v -> %d", linear, a, got)
				}
			}
		})
	}
}

func TestAssignmentFirstVariableVariesFastest(t *testing.T) {
	d := MustDomain(NewVariable(0, 2), NewVariable(1, 3))

	want := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}, {1, 2}}

	a := NewAssignment(d)
	for i, w := range want {
		assert.Equal(t, w[0], a.Value(0), "step %d", i)
		assert.Equal(t, w[1], a.Value(1), "step %d", i)
		assert.Equal(t, i, a.LinearIndex(), "step %d", i)

		if i < len(want)-1 {
			require.True(t, a.Next())
		}
	}

	// Advancing past the last assignment wraps to all zeros.
	require.False(t, a.Next())
	assert.Equal(t, 0, a.LinearIndex())
}

func TestAssignmentsSeq(t *testing.T) {
	d := MustDomain(NewVariable(3, 2), NewVariable(5, 3))

	seen := make(map[int]bool)
	for a := range d.Assignments() {
		seen[a.LinearIndex()] = true
	}

	require.Len(t, seen, d.Card())
}

func TestAssignmentSetValue(t *testing.T) {
	d := MustDomain(NewVariable(1, 2), NewVariable(4, 3))

	a := NewAssignment(d)
	a.SetValue(4, 2)
	a.SetValue(1, 1)

	assert.Equal(t, 1, a.Value(1))
	assert.Equal(t, 2, a.Value(4))
	assert.Equal(t, 1+2*2, a.LinearIndex())

	assert.Panics(t, func() { a.SetValue(9, 0) })
	assert.Panics(t, func() { a.SetValue(1, 2) })
	assert.Panics(t, func() { a.Value(9) })
}

func TestAssignmentAtOutOfRange(t *testing.T) {
	d := MustDomain(NewVariable(0, 2))

	assert.Panics(t, func() { AssignmentAt(d, -1) })
	assert.Panics(t, func() { AssignmentAt(d, 2) })
}

func TestAssignmentUniformSample(t *testing.T) {
	d := MustDomain(NewVariable(0, 2), NewVariable(1, 5))
	rng := rand.New(rand.NewSource(42))

	a := NewAssignment(d)
	for i := 0; i < 100; i++ {
		a.UniformSample(rng)
		require.Less(t, a.Value(0), 2)
		require.Less(t, a.Value(1), 5)
		require.GreaterOrEqual(t, a.Value(0), 0)
		require.GreaterOrEqual(t, a.Value(1), 0)
	}
}

func TestAssignmentCloneIndependent(t *testing.T) {
	d := MustDomain(NewVariable(0, 3))

	a := NewAssignment(d)
	b := a.Clone()
	b.SetValue(0, 2)

	assert.Equal(t, 0, a.Value(0))
	assert.Equal(t, 2, b.Value(0))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a.Clone()))
}
