package factor

import (
	"math"
)

// LogZero is the log-space representation of zero probability mass.
// It is the most negative finite float64 rather than -Inf so that
// normalizer subtraction never produces an Inf-Inf NaN: normalizing an
// all-LogZero table yields the exact uniform distribution.
const LogZero = -math.MaxFloat64

// Table is a dense potential table over a domain, stored in log space and
// indexed by the domain's linear assignment index.
//
// The weight is an uninterpreted per-table annotation carried through
// from model files; it never influences the stored values.
type Table struct {
	dom    Domain
	logP   []float64
	weight float64
}

// NewTable returns a table of log-potential zeros over the domain.
func NewTable(d Domain) *Table {
	return &Table{dom: d, logP: make([]float64, d.Card()), weight: 1}
}

// NewUniformTable returns a table with every entry set to logValue.
func NewUniformTable(d Domain, logValue float64) *Table {
	t := NewTable(d)
	t.Fill(logValue)
	return t
}

// Domain returns the domain the table ranges over.
func (t *Table) Domain() Domain { return t.dom }

// Len returns the number of entries, i.e. the domain cardinality.
func (t *Table) Len() int { return len(t.logP) }

// LogP returns the log potential at the given linear index.
func (t *Table) LogP(i int) float64 { return t.logP[i] }

// SetLogP sets the log potential at the given linear index.
func (t *Table) SetLogP(i int, v float64) { t.logP[i] = v }

// At returns the log potential of the given assignment. The assignment
// must range over the table's domain.
func (t *Table) At(a Assignment) float64 { return t.logP[a.LinearIndex()] }

// SetAt sets the log potential of the given assignment. The assignment
// must range over the table's domain.
func (t *Table) SetAt(a Assignment, v float64) { t.logP[a.LinearIndex()] = v }

// Fill sets every entry to the given log value.
func (t *Table) Fill(logValue float64) {
	for i := range t.logP {
		t.logP[i] = logValue
	}
}

// LogValues returns the table's backing storage in linear-index order.
// The returned slice is a view; callers must not resize it.
func (t *Table) LogValues() []float64 { return t.logP }

// Weight returns the uninterpreted table weight. It defaults to 1.
func (t *Table) Weight() float64 { return t.weight }

// SetWeight sets the uninterpreted table weight.
func (t *Table) SetWeight(w float64) { t.weight = w }

// LogSumExp returns log(sum(exp(logP))) evaluated with the usual
// max-shift so that finite inputs cannot overflow.
func (t *Table) LogSumExp() float64 {
	max := t.logP[0]
	for _, v := range t.logP[1:] {
		if v > max {
			max = v
		}
	}

	sum := 0.0
	for _, v := range t.logP {
		sum += math.Exp(v - max)
	}

	return max + math.Log(sum)
}

// Normalize shifts the table in place so that its probability mass sums
// to one. A table with no mass anywhere (every entry LogZero) normalizes
// to the uniform distribution; LogZero sits at the edge of the float64
// range, where the log(n) correction would vanish in rounding.
func (t *Table) Normalize() {
	max := t.logP[0]
	for _, v := range t.logP[1:] {
		if v > max {
			max = v
		}
	}
	if max == LogZero {
		u := -math.Log(float64(len(t.logP)))
		for i := range t.logP {
			t.logP[i] = u
		}
		return
	}

	logZ := t.LogSumExp()
	for i := range t.logP {
		t.logP[i] -= logZ
	}
}

// Clone returns an independent deep copy of the table.
func (t *Table) Clone() *Table {
	logP := make([]float64, len(t.logP))
	copy(logP, t.logP)
	return &Table{dom: t.dom, logP: logP, weight: t.weight}
}
