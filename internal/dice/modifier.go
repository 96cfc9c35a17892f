package dice

// ModifierRoller adds one fixed Value to every result of an inner roller.
type ModifierRoller struct {
	inner    SubRoller
	modifier Value
}

// NewModifier wraps inner so that modifier is added to each of its results.
//
// Precondition: inner must be non-nil; modifier.Unit must be non-nil.
func NewModifier(inner SubRoller, modifier Value) *ModifierRoller {
	return &ModifierRoller{inner: inner, modifier: modifier}
}

// Modifier returns the value added to every result.
func (m *ModifierRoller) Modifier() Value { return m.modifier }

// Description renders "<inner> + <modifier>", e.g. "2d6 + 3".
func (m *ModifierRoller) Description() string {
	return InnerDescription(m.inner) + " + " + m.modifier.Output()
}

// IsSimple is always true: once evaluated a modified roll is one atomic total.
func (m *ModifierRoller) IsSimple() bool { return true }

func (m *ModifierRoller) IsDie() bool { return false }

func (m *ModifierRoller) RollWith(rng Rng) Roll { return m.InnerRollWith(rng) }

func (m *ModifierRoller) InnerRollWith(rng Rng) SubRoll {
	return &ModifierRoll{inner: m.inner.InnerRollWith(rng), modifier: m.modifier}
}

// ModifierRoll is the result of a ModifierRoller.
type ModifierRoll struct {
	inner    SubRoll
	modifier Value
}

// Inner returns the unmodified roll.
func (r *ModifierRoll) Inner() SubRoll { return r.inner }

func (r *ModifierRoll) IntermediateResults() string {
	return InnerResults(r.inner) + " + " + r.modifier.Output()
}

func (r *ModifierRoll) FinalResult() string { return r.Totals().String() }

func (r *ModifierRoll) IsSimple() bool { return true }

func (r *ModifierRoll) RolledFaces() []*DieRoll { return r.inner.RolledFaces() }

func (r *ModifierRoll) Totals() Values { return r.inner.Totals().Add(r.modifier) }
