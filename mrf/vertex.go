package mrf

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/gibbsgo/factor"
)

// VertexID identifies a vertex of the pairwise graph. Vertex ids equal
// variable ids by construction.
type VertexID uint32

// NullVertex is the "no vertex" sentinel (all bits set).
const NullVertex = ^VertexID(0)

// ErrInvalidTransition indicates a tree-growth operation applied in a
// state that does not permit it.
type ErrInvalidTransition struct {
	Vertex VertexID
	From   StateKind
	Op     string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("vertex %d: cannot %s from %s", e.Vertex, e.Op, e.From)
}

// Vertex is the per-variable record of the pairwise graph.
//
// Apart from the child-candidate counter, every field is single-writer
// under the sampling engine's external per-vertex lock; the record
// itself performs no synchronization.
type Vertex struct {
	variable  factor.Variable
	asg       factor.Assignment // single-variable; current sample
	factorIDs []int
	belief    *factor.Table
	scratch   *factor.Table
	updates   uint64
	tree      TreeState

	// Incremented by concurrent proposers that do not share a lock.
	childCandidates atomic.Uint64
}

// ID returns the vertex id, which equals the variable id.
func (v *Vertex) ID() VertexID { return VertexID(v.variable.ID) }

// Variable returns the model variable this vertex represents.
func (v *Vertex) Variable() factor.Variable { return v.variable }

// Value returns the current sampled value.
func (v *Vertex) Value() int { return v.asg.ValueAt(0) }

// SetValue records a new sampled value.
func (v *Vertex) SetValue(val int) { v.asg.SetValueAt(0, val) }

// Assignment returns the single-variable assignment holding the current
// sample. The returned value shares the vertex's storage.
func (v *Vertex) Assignment() factor.Assignment { return v.asg }

// FactorIDs returns the ids of the factors referencing this vertex's
// variable. The returned slice is a view; callers must not modify it.
func (v *Vertex) FactorIDs() []int { return v.factorIDs }

// Belief returns the running log-space marginal estimate.
func (v *Vertex) Belief() *factor.Table { return v.belief }

// ScratchBelief returns the scratch table used during tree-local
// message passing.
func (v *Vertex) ScratchBelief() *factor.Table { return v.scratch }

// Updates returns the number of completed block-samples that touched
// this vertex.
func (v *Vertex) Updates() uint64 { return v.updates }

// IncUpdates records one completed block-sample.
func (v *Vertex) IncUpdates() { v.updates++ }

// SetUpdates overwrites the update counter. Checkpoint restore only.
func (v *Vertex) SetUpdates(n uint64) { v.updates = n }

// TreeState returns the current tree-growth state.
func (v *Vertex) TreeState() TreeState { return v.tree }

// State returns the raw state enumerant.
func (v *Vertex) State() StateKind { return v.tree.Kind() }

// Parent returns the parent vertex id for states that have one, the
// tentative proposer for a candidate, and NullVertex otherwise.
func (v *Vertex) Parent() VertexID {
	switch s := v.tree.(type) {
	case Candidate:
		return s.Proposer
	case Boundary:
		return s.Parent
	case TreeNode:
		return s.Parent
	case Calibrated:
		return s.Parent
	default:
		return NullVertex
	}
}

// Height returns the distance from the tree root, or 0 when the vertex
// is not part of a tree.
func (v *Vertex) Height() uint32 {
	switch s := v.tree.(type) {
	case Boundary:
		return s.Height
	case TreeNode:
		return s.Height
	case Calibrated:
		return s.Height
	default:
		return 0
	}
}

// MarkedUp returns the upward-pass counter of a tree node, 0 otherwise.
func (v *Vertex) MarkedUp() uint32 {
	if s, ok := v.tree.(TreeNode); ok {
		return s.MarkedUp
	}
	return 0
}

func (v *Vertex) transitionErr(op string) error {
	return &ErrInvalidTransition{Vertex: v.ID(), From: v.State(), Op: op}
}

// Propose records an adoption proposal from the given boundary vertex,
// making it the tentative parent. Only available vertices can become
// candidates.
func (v *Vertex) Propose(proposer VertexID) error {
	if _, ok := v.tree.(Available); !ok {
		return v.transitionErr("propose")
	}
	v.tree = Candidate{Proposer: proposer}
	return nil
}

// Accept confirms the unique winning proposal for this round: the
// candidate joins the tree one level below parent. The winner may differ
// from the tentative proposer when the tie-break picked another suitor.
func (v *Vertex) Accept(parent VertexID, parentHeight uint32) error {
	if _, ok := v.tree.(Candidate); !ok {
		return v.transitionErr("accept")
	}
	v.tree = Boundary{Parent: parent, Height: parentHeight + 1}
	return nil
}

// Reject abandons the pending proposal and returns the vertex to the
// available pool.
func (v *Vertex) Reject() error {
	if _, ok := v.tree.(Candidate); !ok {
		return v.transitionErr("reject")
	}
	v.tree = Available{}
	return nil
}

// BecomeRoot starts a new tree at this vertex.
func (v *Vertex) BecomeRoot() error {
	if _, ok := v.tree.(Available); !ok {
		return v.transitionErr("become root")
	}
	v.tree = Boundary{Parent: NullVertex, Height: 0}
	return nil
}

// BecomeTreeNode retires the vertex from the frontier once it has
// attempted to recruit all remaining available neighbors.
func (v *Vertex) BecomeTreeNode() error {
	b, ok := v.tree.(Boundary)
	if !ok {
		return v.transitionErr("become tree node")
	}
	v.tree = TreeNode{Parent: b.Parent, Height: b.Height}
	return nil
}

// MarkUp counts one child that has reported its upward message.
func (v *Vertex) MarkUp() error {
	n, ok := v.tree.(TreeNode)
	if !ok {
		return v.transitionErr("mark up")
	}
	n.MarkedUp++
	v.tree = n
	return nil
}

// Calibrate finishes the upward sweep for this round.
func (v *Vertex) Calibrate() error {
	n, ok := v.tree.(TreeNode)
	if !ok {
		return v.transitionErr("calibrate")
	}
	v.tree = Calibrated{Parent: n.Parent, Height: n.Height}
	return nil
}

// ResetTree returns the vertex to the available pool and zeroes the
// child-candidate counter. Rounds are reset, never unwound, so this is
// legal from any state once the engine has quiesced its workers.
func (v *Vertex) ResetTree() {
	v.tree = Available{}
	v.childCandidates.Store(0)
}

// RestoreTreeState overwrites the tree state. Checkpoint restore only.
func (v *Vertex) RestoreTreeState(st TreeState) { v.tree = st }

// AddChildCandidate atomically counts one adoption proposal targeting
// this vertex and returns the updated count. Safe without the vertex
// lock.
func (v *Vertex) AddChildCandidate() uint64 { return v.childCandidates.Add(1) }

// RemoveChildCandidate atomically retracts one proposal and returns the
// updated count.
func (v *Vertex) RemoveChildCandidate() uint64 { return v.childCandidates.Add(^uint64(0)) }

// ChildCandidates returns the number of outstanding proposals.
func (v *Vertex) ChildCandidates() uint64 { return v.childCandidates.Load() }

// ResetChildCandidates zeroes the counter. Only legal when no proposer
// can be mid-increment, i.e. after the round's attempts have settled.
func (v *Vertex) ResetChildCandidates() { v.childCandidates.Store(0) }

// StoreChildCandidates overwrites the counter. Checkpoint restore only.
func (v *Vertex) StoreChildCandidates(n uint64) { v.childCandidates.Store(n) }
