package factor

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
)

var (
	// ErrInvalidArity is returned when a variable's arity is not positive.
	ErrInvalidArity = errors.New("variable arity must be positive")
	// ErrDuplicateVariable is returned when a domain would contain the same
	// variable id twice.
	ErrDuplicateVariable = errors.New("duplicate variable id in domain")
	// ErrArityMismatch is returned when two domains disagree on the arity of
	// a shared variable.
	ErrArityMismatch = errors.New("conflicting arities for variable")
)

// Domain is an ordered set of distinct variables. The canonical order is
// ascending variable ID regardless of construction order. The zero value
// is the empty domain, which has exactly one (empty) assignment.
type Domain struct {
	vars []Variable
	card int
}

// NewDomain builds the canonical domain over the given variables.
func NewDomain(vars ...Variable) (Domain, error) {
	vs := make([]Variable, len(vars))
	copy(vs, vars)
	sort.Slice(vs, func(i, j int) bool { return vs[i].ID < vs[j].ID })

	card := 1
	for i, v := range vs {
		if v.Arity < 1 {
			return Domain{}, fmt.Errorf("%w: variable %d has arity %d", ErrInvalidArity, v.ID, v.Arity)
		}
		if i > 0 && vs[i-1].ID == v.ID {
			return Domain{}, fmt.Errorf("%w: %d", ErrDuplicateVariable, v.ID)
		}
		card *= v.Arity
	}

	return Domain{vars: vs, card: card}, nil
}

// MustDomain is like NewDomain but panics on invalid input.
func MustDomain(vars ...Variable) Domain {
	d, err := NewDomain(vars...)
	if err != nil {
		panic(err)
	}
	return d
}

// NumVars returns the number of variables in the domain.
func (d Domain) NumVars() int { return len(d.vars) }

// Var returns the i-th variable in canonical order.
func (d Domain) Var(i int) Variable { return d.vars[i] }

// Vars returns the variables in canonical order. The returned slice is a
// view into the domain; callers must not modify it.
func (d Domain) Vars() []Variable { return d.vars }

// Card returns the number of distinct assignments to the domain, i.e. the
// product of the variable arities.
func (d Domain) Card() int {
	if d.vars == nil && d.card == 0 {
		return 1
	}
	return d.card
}

// IndexOf returns the canonical position of the variable with the given
// id, or -1 if the domain does not contain it.
func (d Domain) IndexOf(id uint32) int {
	i := sort.Search(len(d.vars), func(i int) bool { return d.vars[i].ID >= id })
	if i < len(d.vars) && d.vars[i].ID == id {
		return i
	}
	return -1
}

// Contains reports whether the domain contains the variable with the
// given id.
func (d Domain) Contains(id uint32) bool { return d.IndexOf(id) >= 0 }

// Union returns the canonical union of the two domains. Variables present
// in both must agree on arity.
func (d Domain) Union(other Domain) (Domain, error) {
	merged := make([]Variable, 0, len(d.vars)+len(other.vars))
	i, j := 0, 0

	for i < len(d.vars) && j < len(other.vars) {
		switch {
		case d.vars[i].ID < other.vars[j].ID:
			merged = append(merged, d.vars[i])
			i++
		case d.vars[i].ID > other.vars[j].ID:
			merged = append(merged, other.vars[j])
			j++
		default:
			if d.vars[i].Arity != other.vars[j].Arity {
				return Domain{}, fmt.Errorf("%w %d: %d vs %d",
					ErrArityMismatch, d.vars[i].ID, d.vars[i].Arity, other.vars[j].Arity)
			}
			merged = append(merged, d.vars[i])
			i++
			j++
		}
	}
	merged = append(merged, d.vars[i:]...)
	merged = append(merged, other.vars[j:]...)

	card := 1
	for _, v := range merged {
		card *= v.Arity
	}

	return Domain{vars: merged, card: card}, nil
}

// Equal reports whether both domains contain exactly the same variables.
func (d Domain) Equal(other Domain) bool {
	if len(d.vars) != len(other.vars) {
		return false
	}
	for i := range d.vars {
		if d.vars[i] != other.vars[i] {
			return false
		}
	}
	return true
}

// Assignments iterates every assignment to the domain in linear-index
// order: the first canonical variable varies fastest. Each yielded
// assignment is an independent copy.
func (d Domain) Assignments() iter.Seq[Assignment] {
	return func(yield func(Assignment) bool) {
		a := NewAssignment(d)
		for {
			if !yield(a.Clone()) {
				return
			}
			if !a.Next() {
				return
			}
		}
	}
}

// String returns a string representation of the domain.
func (d Domain) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range d.vars {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
