package dice

import "strings"

// Op tags a term of a MathRoller.
type Op int

const (
	// OpFirst is the leading term; it carries no operator.
	OpFirst Op = iota
	// OpAdd adds the term's totals.
	OpAdd
	// OpSubtract subtracts the term's totals.
	OpSubtract
)

func (o Op) prefix() string {
	switch o {
	case OpAdd:
		return " + "
	case OpSubtract:
		return " - "
	default:
		return ""
	}
}

type mathTerm struct {
	op     Op
	roller SubRoller
}

// MathRoller is a chain of additions and subtractions of other rollers,
// e.g. "d20 + Proficiency - d4".
//
// The builder methods return extended copies; a MathRoller is never
// modified after construction.
type MathRoller struct {
	terms []mathTerm
}

// NewSum returns lhs + rhs.
func NewSum(lhs, rhs SubRoller) *MathRoller {
	return &MathRoller{terms: []mathTerm{{OpFirst, lhs}, {OpAdd, rhs}}}
}

// NewDifference returns lhs - rhs.
func NewDifference(lhs, rhs SubRoller) *MathRoller {
	return &MathRoller{terms: []mathTerm{{OpFirst, lhs}, {OpSubtract, rhs}}}
}

func (m *MathRoller) with(op Op, rollers ...SubRoller) *MathRoller {
	terms := make([]mathTerm, len(m.terms), len(m.terms)+len(rollers))
	copy(terms, m.terms)
	for _, r := range rollers {
		terms = append(terms, mathTerm{op: op, roller: r})
	}
	return &MathRoller{terms: terms}
}

// Plus appends "+ r".
func (m *MathRoller) Plus(r SubRoller) *MathRoller { return m.with(OpAdd, r) }

// Minus appends "- r".
func (m *MathRoller) Minus(r SubRoller) *MathRoller { return m.with(OpSubtract, r) }

// PlusAll appends "+ r" for each of rs.
func (m *MathRoller) PlusAll(rs ...SubRoller) *MathRoller { return m.with(OpAdd, rs...) }

// MinusAll appends "- r" for each of rs.
func (m *MathRoller) MinusAll(rs ...SubRoller) *MathRoller { return m.with(OpSubtract, rs...) }

// PlusModifier appends an unnamed constant.
func (m *MathRoller) PlusModifier(v Values) *MathRoller {
	return m.with(OpAdd, NewConstant(v))
}

// MinusModifier subtracts an unnamed constant.
func (m *MathRoller) MinusModifier(v Values) *MathRoller {
	return m.with(OpSubtract, NewConstant(v))
}

// PlusNamedModifier appends a constant displayed as name.
func (m *MathRoller) PlusNamedModifier(name Name, v Values) *MathRoller {
	return m.with(OpAdd, NewNamedConstant(name, v))
}

// MinusNamedModifier subtracts a constant displayed as name.
func (m *MathRoller) MinusNamedModifier(name Name, v Values) *MathRoller {
	return m.with(OpSubtract, NewNamedConstant(name, v))
}

func (m *MathRoller) Description() string {
	var b strings.Builder
	for _, t := range m.terms {
		b.WriteString(t.op.prefix())
		b.WriteString(InnerDescription(t.roller))
	}
	return b.String()
}

func (m *MathRoller) IsSimple() bool { return false }

func (m *MathRoller) IsDie() bool { return false }

func (m *MathRoller) RollWith(rng Rng) Roll { return m.InnerRollWith(rng) }

// InnerRollWith rolls every term in order against rng.
func (m *MathRoller) InnerRollWith(rng Rng) SubRoll {
	out := &MathRoll{terms: make([]mathResult, len(m.terms))}
	for i, t := range m.terms {
		out.terms[i] = mathResult{op: t.op, roll: t.roller.InnerRollWith(rng)}
	}
	return out
}

type mathResult struct {
	op   Op
	roll SubRoll
}

// MathRoll is the result of a MathRoller.
type MathRoll struct {
	terms []mathResult
}

func (r *MathRoll) IntermediateResults() string {
	var b strings.Builder
	for _, t := range r.terms {
		b.WriteString(t.op.prefix())
		b.WriteString(InnerResults(t.roll))
	}
	return b.String()
}

func (r *MathRoll) FinalResult() string { return r.Totals().String() }

func (r *MathRoll) IsSimple() bool { return false }

func (r *MathRoll) RolledFaces() []*DieRoll {
	var out []*DieRoll
	for _, t := range r.terms {
		out = append(out, t.roll.RolledFaces()...)
	}
	return out
}

func (r *MathRoll) Totals() Values {
	var out Values
	for _, t := range r.terms {
		if t.op == OpSubtract {
			out = out.SubtractAll(t.roll.Totals())
		} else {
			out = out.AddAll(t.roll.Totals())
		}
	}
	return out
}
