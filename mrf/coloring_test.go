package mrf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeColoringProper(t *testing.T) {
	tests := []struct {
		name    string
		factors [][]uint32
	}{
		{"triangle", [][]uint32{{0, 1, 2}}},
		{"path", [][]uint32{{0, 1}, {1, 2}, {2, 3}}},
		{"star", [][]uint32{{0, 1}, {0, 2}, {0, 3}, {0, 4}}},
		{"disjoint", [][]uint32{{0, 1}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraph(buildModel(t, tt.factors...), seeded(1))
			require.NoError(t, err)

			n := g.ComputeColoring()
			require.Greater(t, n, 0)

			for e := 0; e < g.NumEdges(); e++ {
				edge := g.Edge(EdgeID(e))
				assert.NotEqual(t,
					g.Color(edge.Source()), g.Color(edge.Target()),
					"edge %d->%d shares a color", edge.Source(), edge.Target())
			}

			for v := 0; v < g.NumVertices(); v++ {
				assert.Less(t, int(g.Color(VertexID(v))), n)
			}
		})
	}
}

func TestComputeColoringTriangleNeedsThree(t *testing.T) {
	g, err := NewGraph(buildModel(t, []uint32{0, 1, 2}), seeded(1))
	require.NoError(t, err)

	assert.Equal(t, 3, g.ComputeColoring())
}

func TestComputeColoringPathNeedsTwo(t *testing.T) {
	g, err := NewGraph(buildModel(t, []uint32{0, 1}, []uint32{1, 2}), seeded(1))
	require.NoError(t, err)

	assert.Equal(t, 2, g.ComputeColoring())
}

func TestComputeColoringCached(t *testing.T) {
	g, err := NewGraph(buildModel(t, []uint32{0, 1}), seeded(1))
	require.NoError(t, err)

	first := g.ComputeColoring()
	assert.Equal(t, first, g.ComputeColoring())
}
