package factor

import "fmt"

// Variable identifies a single discrete variable of a factorized model.
// The ID is the variable's identity; Arity is the size of its value range
// [0, Arity). Variables order by ascending ID.
type Variable struct {
	ID    uint32
	Arity int
}

// NewVariable returns a variable with the given id and arity.
func NewVariable(id uint32, arity int) Variable {
	return Variable{ID: id, Arity: arity}
}

// Less orders variables by ascending ID.
func (v Variable) Less(other Variable) bool {
	return v.ID < other.ID
}

// String returns a string representation of the variable.
func (v Variable) String() string {
	return fmt.Sprintf("x%d/%d", v.ID, v.Arity)
}
