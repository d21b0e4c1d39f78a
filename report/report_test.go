package report

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gibbsgo/factor"
	"github.com/hupe1980/gibbsgo/model"
	"github.com/hupe1980/gibbsgo/mrf"
)

func pairGraph(t *testing.T) *mrf.Graph {
	t.Helper()

	a := factor.NewVariable(0, 2)
	b := factor.NewVariable(1, 2)

	m := model.New()
	m.AddFactor(factor.NewUniformTable(factor.MustDomain(a, b), 0))

	g, err := mrf.NewGraph(m, func(o *mrf.Options) {
		o.Rand = rand.New(rand.NewSource(42))
	})
	require.NoError(t, err)

	return g
}

func TestWriteBeliefs(t *testing.T) {
	g := pairGraph(t)
	g.Vertex(0).IncUpdates()

	var sb strings.Builder
	require.NoError(t, WriteBeliefs(&sb, g))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	// All-LogZero beliefs normalize to the uniform distribution.
	for i, wantUpdates := range []string{"1", "0"} {
		fields := strings.Split(lines[i], "\t")
		require.Len(t, fields, 3)
		require.Equal(t, wantUpdates, fields[0])

		for _, f := range fields[1:] {
			p, err := strconv.ParseFloat(f, 64)
			require.NoError(t, err)
			require.InDelta(t, 0.5, p, 1e-12)
		}
	}
}

func TestWriteBeliefsLeavesTableUntouched(t *testing.T) {
	g := pairGraph(t)
	before := g.Vertex(0).Belief().LogP(0)

	var sb strings.Builder
	require.NoError(t, WriteBeliefs(&sb, g))

	require.Equal(t, before, g.Vertex(0).Belief().LogP(0))
}

func TestWriteAssignments(t *testing.T) {
	g := pairGraph(t)
	g.Vertex(0).SetValue(1)
	g.Vertex(1).SetValue(0)

	var sb strings.Builder
	require.NoError(t, WriteAssignments(&sb, g))

	require.Equal(t, "1\n0\n", sb.String())
}

func TestWriteColors(t *testing.T) {
	g := pairGraph(t)

	var sb strings.Builder
	require.NoError(t, WriteColors(&sb, g))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	// Adjacent vertices must differ.
	require.NotEqual(t, lines[0], lines[1])
}

func TestWriteTreeState(t *testing.T) {
	g := pairGraph(t)

	require.NoError(t, g.Vertex(0).BecomeRoot())
	require.NoError(t, g.Vertex(1).Propose(0))
	require.NoError(t, g.Vertex(1).Accept(0, 0))

	var sb strings.Builder
	require.NoError(t, WriteTreeState(&sb, g))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	// Root carries the null-vertex sentinel as its parent.
	require.Equal(t, "0\t2\t4294967295", lines[0])
	require.Equal(t, "1\t2\t0", lines[1])
}
