package mrf

import (
	"errors"
	"fmt"
	"iter"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gibbsgo/factor"
	"github.com/hupe1980/gibbsgo/model"
)

var (
	// ErrVertexIDMismatch is returned when the model's variable ids cannot
	// serve as dense vertex ids.
	ErrVertexIDMismatch = errors.New("vertex id does not match variable id")
	// ErrEmptyFactorList is returned when a variable participates in no
	// factor.
	ErrEmptyFactorList = errors.New("vertex has an empty factor list")
)

// Options configure graph construction.
type Options struct {
	// Rand draws the initial per-vertex assignments. Defaults to a
	// time-seeded source.
	Rand *rand.Rand
	// Parallelism bounds the number of concurrent construction workers.
	// Defaults to runtime.GOMAXPROCS(0).
	Parallelism int
}

// Graph is the pairwise Markov random field materialized from a
// factorized model: one vertex per variable, vertex id equal to variable
// id, and a directed edge for every ordered pair of variables sharing a
// factor.
//
// Storage is array-indexed CSR: out-edges of a vertex are contiguous and
// sorted by target id, so construction and iteration are deterministic.
type Graph struct {
	model    *model.FactorizedModel
	vertices []Vertex
	edges    []Edge
	offsets  []int    // out-edges of v are edges[offsets[v]:offsets[v+1]]
	reverse  []EdgeID // reverse[e] = opposite-direction edge id

	colors    []uint32 // lazily computed greedy coloring
	numColors int
}

// NewGraph materializes the pairwise clique graph of the model. Each
// vertex starts available, with a uniformly sampled assignment, an
// all-LogZero belief and a zeroed scratch table.
func NewGraph(m *model.FactorizedModel, optFns ...func(o *Options)) (*Graph, error) {
	opts := Options{Parallelism: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	vars := m.Variables()
	n := len(vars)

	g := &Graph{model: m, vertices: make([]Vertex, n)}

	// Vertex records are filled sequentially: they share the caller's RNG.
	for i, va := range vars {
		if va.ID != uint32(i) {
			return nil, fmt.Errorf("%w: position %d holds variable %d", ErrVertexIDMismatch, i, va.ID)
		}

		fids := m.FactorIDs(va.ID)
		if len(fids) == 0 {
			return nil, fmt.Errorf("%w: variable %d", ErrEmptyFactorList, va.ID)
		}

		dom := factor.MustDomain(va)
		asg := factor.NewAssignment(dom)
		asg.UniformSample(opts.Rand)

		v := &g.vertices[i]
		v.variable = va
		v.asg = asg
		v.factorIDs = fids
		v.belief = factor.NewUniformTable(dom, factor.LogZero)
		v.scratch = factor.NewTable(dom)
		v.tree = Available{}
	}

	// Neighbor sets: per vertex, the union of co-occurring variables
	// across its factors, minus itself. Bitmap iteration yields targets
	// in ascending order.
	neighbors := make([][]uint32, n)

	var eg errgroup.Group
	eg.SetLimit(opts.Parallelism)
	for i := range g.vertices {
		eg.Go(func() error {
			v := &g.vertices[i]

			bm := roaring.New()
			for _, fid := range v.factorIDs {
				for _, fv := range m.Factor(fid).Domain().Vars() {
					if fv.ID != v.variable.ID {
						bm.Add(fv.ID)
					}
				}
			}
			neighbors[i] = bm.ToArray()

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g.offsets = make([]int, n+1)
	for i, nb := range neighbors {
		g.offsets[i+1] = g.offsets[i] + len(nb)
	}
	g.edges = make([]Edge, g.offsets[n])

	// Edge records, one contiguous run per source vertex.
	var eg2 errgroup.Group
	eg2.SetLimit(opts.Parallelism)
	for i := range neighbors {
		eg2.Go(func() error {
			base := g.offsets[i]
			src := g.vertices[i].variable
			for j, tid := range neighbors[i] {
				g.edges[base+j] = newEdge(src, vars[tid])
			}
			return nil
		})
	}
	if err := eg2.Wait(); err != nil {
		return nil, err
	}

	g.reverse = make([]EdgeID, len(g.edges))
	for e := range g.edges {
		re, ok := g.edgeBetween(g.edges[e].target, g.edges[e].source)
		if !ok {
			return nil, fmt.Errorf("missing reverse edge for %d->%d", g.edges[e].source, g.edges[e].target)
		}
		g.reverse[e] = re
	}

	return g, nil
}

// Model returns the model the graph was built from.
func (g *Graph) Model() *model.FactorizedModel { return g.model }

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int { return len(g.vertices) }

// Vertex returns the vertex with the given id.
func (g *Graph) Vertex(id VertexID) *Vertex { return &g.vertices[id] }

// NumEdges returns the number of directed edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Edge returns the edge with the given id.
func (g *Graph) Edge(id EdgeID) *Edge { return &g.edges[id] }

// OutDegree returns the number of v's outgoing edges.
func (g *Graph) OutDegree(v VertexID) int { return g.offsets[v+1] - g.offsets[v] }

// OutEdges iterates the ids of v's outgoing edges in ascending target
// order.
func (g *Graph) OutEdges(v VertexID) iter.Seq[EdgeID] {
	return func(yield func(EdgeID) bool) {
		for e := g.offsets[v]; e < g.offsets[v+1]; e++ {
			if !yield(EdgeID(e)) {
				return
			}
		}
	}
}

// Neighbors returns v's neighbor vertex ids in ascending order.
func (g *Graph) Neighbors(v VertexID) []VertexID {
	out := make([]VertexID, 0, g.OutDegree(v))
	for e := g.offsets[v]; e < g.offsets[v+1]; e++ {
		out = append(out, g.edges[e].target)
	}
	return out
}

// EdgeBetween returns the id of the directed edge u->v.
func (g *Graph) EdgeBetween(u, v VertexID) (EdgeID, bool) {
	return g.edgeBetween(u, v)
}

func (g *Graph) edgeBetween(u, v VertexID) (EdgeID, bool) {
	lo, hi := g.offsets[u], g.offsets[u+1]
	i := lo + sort.Search(hi-lo, func(i int) bool { return g.edges[lo+i].target >= v })
	if i < hi && g.edges[i].target == v {
		return EdgeID(i), true
	}
	return 0, false
}

// Reverse returns the opposite-direction edge id.
func (g *Graph) Reverse(e EdgeID) EdgeID { return g.reverse[e] }

// PendingProposals returns the ids of vertices with an outstanding
// exploring edge into v, in ascending order. The first entry is the
// deterministic tie-break winner.
//
// Callers must hold the locks required to read the incoming exploring
// flags, i.e. the round's attempts must have settled.
func (g *Graph) PendingProposals(v VertexID) []VertexID {
	var out []VertexID
	for e := g.offsets[v]; e < g.offsets[v+1]; e++ {
		if g.edges[g.reverse[e]].exploring {
			out = append(out, g.edges[e].target)
		}
	}
	return out
}

// ResetRound returns every vertex to the available pool, zeroes all
// child-candidate counters and clears every exploring flag. Only legal
// once the engine has quiesced its workers.
func (g *Graph) ResetRound() {
	for i := range g.vertices {
		g.vertices[i].ResetTree()
	}
	for i := range g.edges {
		g.edges[i].exploring = false
	}
}

// Stats summarizes the graph's size.
type Stats struct {
	Vertices     int    // vertex records
	Edges        int    // directed edge records
	TableEntries uint64 // log-potential entries across all record tables
	MemoryBytes  uint64 // estimated memory usage
}

// Stats returns size statistics for logging and resource accounting.
// MemoryBytes counts table payloads exactly and record overhead by a
// fixed per-record estimate.
func (g *Graph) Stats() Stats {
	s := Stats{
		Vertices: len(g.vertices),
		Edges:    len(g.edges),
	}

	for i := range g.vertices {
		v := &g.vertices[i]
		entries := uint64(v.belief.Len() + v.scratch.Len())
		s.TableEntries += entries
		s.MemoryBytes += entries*8 + uint64(len(v.factorIDs))*8
	}
	for i := range g.edges {
		e := &g.edges[i]
		entries := uint64(e.message.Len() + e.edgeFactor.Len())
		s.TableEntries += entries
		s.MemoryBytes += entries * 8
	}

	// Record structs, CSR offsets, reverse-edge index and coloring.
	s.MemoryBytes += uint64(len(g.vertices))*96 + uint64(len(g.edges))*64
	s.MemoryBytes += uint64(len(g.offsets))*8 + uint64(len(g.reverse)+len(g.colors))*4

	return s
}

// UpdateBounds returns the minimum and maximum per-vertex update counts.
func (g *Graph) UpdateBounds() (minUpdates, maxUpdates uint64) {
	if len(g.vertices) == 0 {
		return 0, 0
	}

	minUpdates = g.vertices[0].updates
	maxUpdates = g.vertices[0].updates
	for i := 1; i < len(g.vertices); i++ {
		u := g.vertices[i].updates
		if u < minUpdates {
			minUpdates = u
		}
		if u > maxUpdates {
			maxUpdates = u
		}
	}

	return minUpdates, maxUpdates
}
