package mrf

import "fmt"

// StateKind enumerates the tree-growth states. The raw values are what
// checkpoints store.
type StateKind uint8

const (
	StateAvailable StateKind = iota
	StateCandidate
	StateBoundary
	StateTreeNode
	StateCalibrated
)

// String returns the state name.
func (k StateKind) String() string {
	switch k {
	case StateAvailable:
		return "AVAILABLE"
	case StateCandidate:
		return "CANDIDATE"
	case StateBoundary:
		return "BOUNDARY"
	case StateTreeNode:
		return "TREE_NODE"
	case StateCalibrated:
		return "CALIBRATED"
	default:
		return fmt.Sprintf("StateKind(%d)", uint8(k))
	}
}

// TreeState is the tree-growth state of a vertex, encoded as one variant
// type per state so that each state carries exactly the fields that are
// meaningful in it.
type TreeState interface {
	Kind() StateKind
	treeState()
}

// Available marks a vertex that belongs to no growing tree.
type Available struct{}

// Candidate marks a vertex with a pending adoption proposal. Proposer is
// the tentative parent; the tie-break may later confirm a different
// proposer.
type Candidate struct {
	Proposer VertexID
}

// Boundary marks a vertex on the recruiting frontier of a growing tree.
// Roots are boundaries with Parent == NullVertex and Height == 0.
type Boundary struct {
	Parent VertexID
	Height uint32
}

// TreeNode marks an interior tree vertex whose frontier role is done.
// MarkedUp counts children that have reported their upward message; it
// is round-local state and not part of the checkpoint image.
type TreeNode struct {
	Parent   VertexID
	Height   uint32
	MarkedUp uint32
}

// Calibrated marks a tree vertex whose upward sweep has completed. It is
// terminal for the current round.
type Calibrated struct {
	Parent VertexID
	Height uint32
}

func (Available) Kind() StateKind  { return StateAvailable }
func (Candidate) Kind() StateKind  { return StateCandidate }
func (Boundary) Kind() StateKind   { return StateBoundary }
func (TreeNode) Kind() StateKind   { return StateTreeNode }
func (Calibrated) Kind() StateKind { return StateCalibrated }

func (Available) treeState()  {}
func (Candidate) treeState()  {}
func (Boundary) treeState()   {}
func (TreeNode) treeState()   {}
func (Calibrated) treeState() {}

// StateFrom reconstructs a TreeState from its serialized fields. The
// parent slot doubles as the tentative proposer for candidates.
func StateFrom(kind StateKind, parent VertexID, height uint32) (TreeState, error) {
	switch kind {
	case StateAvailable:
		return Available{}, nil
	case StateCandidate:
		return Candidate{Proposer: parent}, nil
	case StateBoundary:
		return Boundary{Parent: parent, Height: height}, nil
	case StateTreeNode:
		return TreeNode{Parent: parent, Height: height}, nil
	case StateCalibrated:
		return Calibrated{Parent: parent, Height: height}, nil
	default:
		return nil, fmt.Errorf("unknown tree state %d", uint8(kind))
	}
}
