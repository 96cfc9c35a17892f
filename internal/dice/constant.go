package dice

// ConstantRoller is a flat bonus: it ignores the stream and always yields
// its stored values. A name, when given, is what descriptions and traces
// show ("Proficiency"); otherwise the values render themselves.
type ConstantRoller struct {
	name   Name
	values Values
}

// NewConstant creates an unnamed constant.
func NewConstant(values Values) *ConstantRoller {
	return &ConstantRoller{values: values}
}

// NewNamedConstant creates a constant displayed as name.
func NewNamedConstant(name Name, values Values) *ConstantRoller {
	return &ConstantRoller{name: name, values: values}
}

func (c *ConstantRoller) label() string {
	if c.name.IsZero() {
		return c.values.String()
	}
	return c.name.String()
}

func (c *ConstantRoller) Description() string { return c.label() }

// IsSimple is true only for named constants. An unnamed constant renders
// its values one per line, which is not safe to inline.
func (c *ConstantRoller) IsSimple() bool { return !c.name.IsZero() }

func (c *ConstantRoller) IsDie() bool { return false }

func (c *ConstantRoller) RollWith(rng Rng) Roll { return c.InnerRollWith(rng) }

func (c *ConstantRoller) InnerRollWith(Rng) SubRoll {
	return &ConstantRoll{label: c.label(), simple: c.IsSimple(), values: c.values}
}

// ConstantRoll is the result of a ConstantRoller.
type ConstantRoll struct {
	label  string
	simple bool
	values Values
}

func (r *ConstantRoll) IntermediateResults() string { return r.label }

func (r *ConstantRoll) FinalResult() string { return r.values.String() }

func (r *ConstantRoll) IsSimple() bool { return r.simple }

func (r *ConstantRoll) RolledFaces() []*DieRoll { return nil }

func (r *ConstantRoll) Totals() Values { return r.values }
