package factor

import (
	"fmt"
	"math/rand"
	"strings"
)

// Assignment holds a concrete value for every variable of a domain, in
// canonical order. Assignments map bijectively onto [0, Card) through the
// mixed-radix linear index in which the first canonical variable varies
// fastest.
type Assignment struct {
	dom  Domain
	vals []int
}

// NewAssignment returns the first assignment (all zeros) of the domain.
func NewAssignment(d Domain) Assignment {
	return Assignment{dom: d, vals: make([]int, d.NumVars())}
}

// AssignmentAt decodes a linear index into the corresponding assignment.
// It panics if linear is outside [0, Card).
func AssignmentAt(d Domain, linear int) Assignment {
	if linear < 0 || linear >= d.Card() {
		panic(fmt.Sprintf("linear index %d out of range [0,%d)", linear, d.Card()))
	}

	a := NewAssignment(d)
	for i := range a.vals {
		arity := d.Var(i).Arity
		a.vals[i] = linear % arity
		linear /= arity
	}

	return a
}

// Domain returns the domain the assignment ranges over.
func (a Assignment) Domain() Domain { return a.dom }

// LinearIndex encodes the assignment as its mixed-radix linear index.
func (a Assignment) LinearIndex() int {
	idx, mult := 0, 1
	for i, v := range a.vals {
		idx += v * mult
		mult *= a.dom.Var(i).Arity
	}
	return idx
}

// ValueAt returns the value of the i-th canonical variable.
func (a Assignment) ValueAt(i int) int { return a.vals[i] }

// Value returns the value of the variable with the given id. It panics if
// the domain does not contain the variable.
func (a Assignment) Value(id uint32) int {
	i := a.dom.IndexOf(id)
	if i < 0 {
		panic(fmt.Sprintf("variable %d not in domain %s", id, a.dom))
	}
	return a.vals[i]
}

// SetValue assigns a value to the variable with the given id. It panics
// if the domain does not contain the variable or the value lies outside
// the variable's arity.
func (a *Assignment) SetValue(id uint32, val int) {
	i := a.dom.IndexOf(id)
	if i < 0 {
		panic(fmt.Sprintf("variable %d not in domain %s", id, a.dom))
	}
	a.SetValueAt(i, val)
}

// SetValueAt assigns a value to the i-th canonical variable. It panics if
// the value lies outside the variable's arity.
func (a *Assignment) SetValueAt(i, val int) {
	if val < 0 || val >= a.dom.Var(i).Arity {
		panic(fmt.Sprintf("value %d out of range for variable %s", val, a.dom.Var(i)))
	}
	a.vals[i] = val
}

// Next advances the assignment in place to its linear-index successor. It
// returns false when the assignment wraps around past the last one, at
// which point it holds all zeros again.
func (a *Assignment) Next() bool {
	for i := range a.vals {
		a.vals[i]++
		if a.vals[i] < a.dom.Var(i).Arity {
			return true
		}
		a.vals[i] = 0
	}
	return false
}

// UniformSample redraws every variable independently and uniformly at
// random.
func (a *Assignment) UniformSample(rng *rand.Rand) {
	for i := range a.vals {
		a.vals[i] = rng.Intn(a.dom.Var(i).Arity)
	}
}

// Clone returns an independent copy of the assignment.
func (a Assignment) Clone() Assignment {
	vals := make([]int, len(a.vals))
	copy(vals, a.vals)
	return Assignment{dom: a.dom, vals: vals}
}

// Equal reports whether both assignments range over the same domain and
// agree on every value.
func (a Assignment) Equal(other Assignment) bool {
	if !a.dom.Equal(other.dom) {
		return false
	}
	for i := range a.vals {
		if a.vals[i] != other.vals[i] {
			return false
		}
	}
	return true
}

// String returns a string representation of the assignment.
func (a Assignment) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.vals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "x%d=%d", a.dom.Var(i).ID, v)
	}
	sb.WriteByte(']')
	return sb.String()
}
