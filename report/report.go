// Package report writes analysis-facing text exports of a sampler graph:
// belief marginals, current samples, vertex colors and tree state. The
// exports are one-way derived views and are never read back by the
// sampler.
package report

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/hupe1980/gibbsgo/mrf"
)

// WriteBeliefs writes one line per vertex: the update count followed by
// the vertex's marginal, one probability per value, tab-separated.
// Probabilities are exp of the normalized belief; normalization runs on
// a copy, the live table is untouched.
func WriteBeliefs(w io.Writer, g *mrf.Graph) error {
	bw := bufio.NewWriter(w)
	for id := 0; id < g.NumVertices(); id++ {
		v := g.Vertex(mrf.VertexID(id))

		marginal := v.Belief().Clone()
		marginal.Normalize()

		bw.WriteString(strconv.FormatUint(v.Updates(), 10))
		for i := 0; i < marginal.Len(); i++ {
			bw.WriteByte('\t')
			bw.WriteString(formatFloat(math.Exp(marginal.LogP(i))))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteAssignments writes each vertex's currently sampled value, one per
// line in vertex-id order.
func WriteAssignments(w io.Writer, g *mrf.Graph) error {
	bw := bufio.NewWriter(w)
	for id := 0; id < g.NumVertices(); id++ {
		bw.WriteString(strconv.Itoa(g.Vertex(mrf.VertexID(id)).Value()))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteColors writes each vertex's greedy color, one per line in
// vertex-id order, computing the coloring on first use. Adjacent
// vertices always carry distinct colors.
func WriteColors(w io.Writer, g *mrf.Graph) error {
	g.ComputeColoring()

	bw := bufio.NewWriter(w)
	for id := 0; id < g.NumVertices(); id++ {
		bw.WriteString(strconv.FormatUint(uint64(g.Color(mrf.VertexID(id))), 10))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteTreeState writes one line per vertex: vertex id, the raw state
// enumerant and the parent vertex id, tab-separated. Vertices without a
// parent report the null-vertex sentinel.
func WriteTreeState(w io.Writer, g *mrf.Graph) error {
	bw := bufio.NewWriter(w)
	for id := 0; id < g.NumVertices(); id++ {
		v := g.Vertex(mrf.VertexID(id))

		bw.WriteString(strconv.Itoa(id))
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatUint(uint64(v.State()), 10))
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatUint(uint64(v.Parent()), 10))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
