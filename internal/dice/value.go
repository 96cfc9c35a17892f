package dice

import (
	"fmt"
	"strings"
)

// Value ties an amount to a Unit: one contribution of a face, or one running
// total of a roll.
type Value struct {
	Unit   Unit
	Amount int32
}

// V is shorthand for Value{Unit: u, Amount: amount}.
func V(u Unit, amount int32) Value { return Value{Unit: u, Amount: amount} }

// Equal reports whether v and o have the same unit identity and amount.
func (v Value) Equal(o Value) bool {
	return SameUnit(v.Unit, o.Unit) && v.Amount == o.Amount
}

// Neg returns v with its amount negated.
func (v Value) Neg() Value { return Value{Unit: v.Unit, Amount: -v.Amount} }

// Output renders the amount through the unit's format.
func (v Value) Output() string { return v.Unit.Format(v.Amount) }

func (v Value) String() string { return fmt.Sprintf("%s: %d", v.Unit.Name(), v.Amount) }

// Values is an ordered accumulator holding at most one Value per unit.
//
// Adding a Value whose unit is already present sums into that entry and
// keeps its position; otherwise the Value is appended. Lookups are linear
// scans: there are rarely more than five units in play and units carry no
// hash contract.
//
// Values is immutable. Every operation returns a new Values, so a face's
// payload can be handed out as a roll total without copying.
//
// The zero Values is empty and ready to use.
type Values struct {
	entries []Value
}

// NewValues accumulates vals in order.
func NewValues(vals ...Value) Values {
	var out Values
	for _, v := range vals {
		out = out.Add(v)
	}
	return out
}

// SumValues folds every Values into one, in order.
func SumValues(all ...Values) Values {
	var out Values
	for _, v := range all {
		out = out.AddAll(v)
	}
	return out
}

// Add returns vs with val merged in.
func (vs Values) Add(val Value) Values {
	out := make([]Value, len(vs.entries), len(vs.entries)+1)
	copy(out, vs.entries)
	for i := range out {
		if SameUnit(out[i].Unit, val.Unit) {
			out[i].Amount += val.Amount
			return Values{entries: out}
		}
	}
	return Values{entries: append(out, val)}
}

// AddAll returns vs with every entry of other merged in, in other's order.
func (vs Values) AddAll(other Values) Values {
	out := vs
	for _, v := range other.entries {
		out = out.Add(v)
	}
	return out
}

// Subtract returns vs with the negation of val merged in.
func (vs Values) Subtract(val Value) Values { return vs.Add(val.Neg()) }

// SubtractAll returns vs with the negation of every entry of other merged in.
func (vs Values) SubtractAll(other Values) Values { return vs.AddAll(other.Neg()) }

// Neg returns vs with every amount negated.
func (vs Values) Neg() Values {
	out := make([]Value, len(vs.entries))
	for i, v := range vs.entries {
		out[i] = v.Neg()
	}
	return Values{entries: out}
}

// Get returns the amount recorded for u. The second result is false when vs
// has no entry for u; the caller decides what absence means.
func (vs Values) Get(u Unit) (int32, bool) {
	for _, v := range vs.entries {
		if SameUnit(v.Unit, u) {
			return v.Amount, true
		}
	}
	return 0, false
}

// Len returns the number of distinct units in vs.
func (vs Values) Len() int { return len(vs.entries) }

// Entries returns a copy of the entries in insertion order.
func (vs Values) Entries() []Value { return append([]Value(nil), vs.entries...) }

// Units returns the units of vs in insertion order.
func (vs Values) Units() []Unit {
	out := make([]Unit, len(vs.entries))
	for i, v := range vs.entries {
		out[i] = v.Unit
	}
	return out
}

// Equal reports whether vs and o hold equal entries in the same order.
func (vs Values) Equal(o Values) bool {
	if len(vs.entries) != len(o.entries) {
		return false
	}
	for i := range vs.entries {
		if !vs.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	return true
}

// String renders each entry through its unit, one per line. Entries whose
// unit suppresses the total are left out.
func (vs Values) String() string {
	lines := make([]string, 0, len(vs.entries))
	for _, v := range vs.entries {
		if out := v.Output(); out != "" {
			lines = append(lines, out)
		}
	}
	return strings.Join(lines, "\n")
}
