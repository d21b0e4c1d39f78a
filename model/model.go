package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/gibbsgo/factor"
)

// ErrSparseVariableIDs is returned by Validate when the model's variable
// ids do not form the dense range {0..n-1}.
var ErrSparseVariableIDs = errors.New("variable ids are not dense")

// FactorizedModel is an ordered collection of log-space potential tables
// together with the variable set they range over and the reverse index
// from each variable to the factors referencing it.
//
// Factor ids are dense and assigned in insertion order. The model is not
// safe for concurrent mutation.
type FactorizedModel struct {
	variables []factor.Variable // ascending id
	factors   []*factor.Table   // factor id = slice index
	varIndex  map[uint32][]int  // variable id -> referencing factor ids
	names     map[uint32]string // optional display names
}

// New returns an empty model.
func New() *FactorizedModel {
	return &FactorizedModel{
		varIndex: make(map[uint32][]int),
		names:    make(map[uint32]string),
	}
}

// AddFactor appends a factor table to the model, registers its variables
// and extends the reverse index. It returns the new factor's id.
//
// Re-registering a variable with a different arity is a programming
// error and panics.
func (m *FactorizedModel) AddFactor(t *factor.Table) int {
	id := len(m.factors)
	m.factors = append(m.factors, t)

	for _, v := range t.Domain().Vars() {
		m.registerVariable(v)
		m.varIndex[v.ID] = append(m.varIndex[v.ID], id)
	}

	return id
}

func (m *FactorizedModel) registerVariable(v factor.Variable) {
	i := sort.Search(len(m.variables), func(i int) bool { return m.variables[i].ID >= v.ID })
	if i < len(m.variables) && m.variables[i].ID == v.ID {
		if m.variables[i].Arity != v.Arity {
			panic(fmt.Sprintf("variable %d re-registered with arity %d, have %d",
				v.ID, v.Arity, m.variables[i].Arity))
		}
		return
	}

	m.variables = append(m.variables, factor.Variable{})
	copy(m.variables[i+1:], m.variables[i:])
	m.variables[i] = v
}

// Factor returns the table with the given factor id.
func (m *FactorizedModel) Factor(id int) *factor.Table { return m.factors[id] }

// Factors returns all factor tables in insertion order. The returned
// slice is a view; callers must not modify it.
func (m *FactorizedModel) Factors() []*factor.Table { return m.factors }

// NumFactors returns the number of factors.
func (m *FactorizedModel) NumFactors() int { return len(m.factors) }

// Variables returns the variable set in ascending id order. The returned
// slice is a view; callers must not modify it.
func (m *FactorizedModel) Variables() []factor.Variable { return m.variables }

// NumVariables returns the number of distinct variables.
func (m *FactorizedModel) NumVariables() int { return len(m.variables) }

// FactorIDs returns the ids of the factors referencing the given
// variable, in insertion order. Asking for a variable that was never
// registered through AddFactor is a programming error and panics.
func (m *FactorizedModel) FactorIDs(varID uint32) []int {
	ids, ok := m.varIndex[varID]
	if !ok {
		panic(fmt.Sprintf("variable %d not registered in model", varID))
	}
	return ids
}

// SetVarName records a display name for the given variable id.
func (m *FactorizedModel) SetVarName(varID uint32, name string) {
	m.names[varID] = name
}

// VarName returns the display name recorded for the given variable id.
func (m *FactorizedModel) VarName(varID uint32) (string, bool) {
	name, ok := m.names[varID]
	return name, ok
}

// VarNames returns all recorded display names keyed by variable id. The
// returned map is a view; callers must not modify it.
func (m *FactorizedModel) VarNames() map[uint32]string {
	return m.names
}

// Validate checks the invariant graph construction relies on: variable
// ids form the dense range {0..n-1}. Every registered variable is
// referenced by at least one factor by construction.
func (m *FactorizedModel) Validate() error {
	for i, v := range m.variables {
		if v.ID != uint32(i) {
			return fmt.Errorf("%w: position %d holds variable %d", ErrSparseVariableIDs, i, v.ID)
		}
	}
	return nil
}
