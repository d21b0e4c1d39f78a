package mrf

import (
	"github.com/hupe1980/gibbsgo/factor"
)

// EdgeID indexes the graph's directed edge array.
type EdgeID uint32

// Edge is a directed edge record of the pairwise graph. Every neighbor
// relation is materialized in both directions, each direction with its
// own record.
//
// The message table ranges over the TARGET's single-variable domain and
// the edge factor over the {source,target} pair domain. Construction
// only shapes the tables; their numeric content, like the weight, is
// owned by the consumer. All mutation happens under the engine's
// external per-edge lock.
type Edge struct {
	source     VertexID
	target     VertexID
	weight     float64
	message    *factor.Table
	edgeFactor *factor.Table
	exploring  bool
}

func newEdge(source, target factor.Variable) Edge {
	return Edge{
		source:     VertexID(source.ID),
		target:     VertexID(target.ID),
		message:    factor.NewTable(factor.MustDomain(target)),
		edgeFactor: factor.NewTable(factor.MustDomain(source, target)),
	}
}

// Source returns the edge's source vertex id.
func (e *Edge) Source() VertexID { return e.source }

// Target returns the edge's target vertex id.
func (e *Edge) Target() VertexID { return e.target }

// Weight returns the edge weight.
func (e *Edge) Weight() float64 { return e.weight }

// SetWeight sets the edge weight.
func (e *Edge) SetWeight(w float64) { e.weight = w }

// Message returns the log-space message table over the target's domain.
func (e *Edge) Message() *factor.Table { return e.message }

// EdgeFactor returns the log-space pair table over {source,target}.
func (e *Edge) EdgeFactor() *factor.Table { return e.edgeFactor }

// Exploring reports whether the source has an outstanding recruitment
// attempt along this edge.
func (e *Edge) Exploring() bool { return e.exploring }

// SetExploring records or clears a recruitment attempt.
func (e *Edge) SetExploring(on bool) { e.exploring = on }
