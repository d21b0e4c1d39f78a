// Package mrf materializes a factorized model as a pairwise Markov
// random field and carries the per-vertex machinery for growing disjoint
// sampling trees over it.
//
// # Graph Shape
//
// The graph holds one vertex per model variable, with vertex id equal to
// variable id, and a directed edge for every ordered pair of variables
// that co-occur in at least one factor. Both directions are materialized
// with their own edge record. Storage is array-indexed CSR: a vertex's
// out-edges are contiguous and sorted by target id, which makes the
// construction and all iteration orders deterministic.
//
// # Tree Growth
//
// Each vertex carries a TreeState, one variant type per state:
// Available, Candidate, Boundary, TreeNode, Calibrated. Boundary
// vertices recruit available neighbors as children; a contended neighbor
// counts concurrent proposals in its lock-free child-candidate counter,
// with each proposal recorded on the proposer's exploring edge. When the
// attempts have settled, the neighbor accepts the proposer with the
// lowest vertex id and the rest retract. Rounds end by resetting every
// vertex to Available; nothing is unwound.
//
// # Locking Contract
//
// The graph performs no internal locking. Every field except the
// child-candidate counter is single-writer under an external per-vertex
// or per-edge lock owned by the sampling engine. The counter is the one
// piece of state meant for lock-free mutation by concurrent proposers.
package mrf
