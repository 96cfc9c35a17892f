package dice

// Roller describes how to produce a result.
//
// MultiRoller and StatsRoller are plain Rollers: their results cannot be
// reduced to one total, so they cannot be nested inside another roller.
type Roller interface {
	// Description returns stable notation for what is rolled, e.g. "2d6 + 3".
	Description() string
	// RollWith evaluates the roller against rng.
	RollWith(rng Rng) Roll
}

// Roll is the evaluated result of a Roller.
type Roll interface {
	// IntermediateResults traces what was actually rolled and how it combined.
	IntermediateResults() string
	// FinalResult renders the totals.
	FinalResult() string
}

// SubRoller is a Roller that yields exactly one combinable total, and so may
// be nested inside another roller.
//
// Implementations must return InnerRollWith(rng) from RollWith; rolling a
// composable node at the top level is never different from rolling it
// nested.
type SubRoller interface {
	Roller
	// IsSimple reports whether the description reads unambiguously when
	// embedded in a wrapper's description without parentheses.
	IsSimple() bool
	// IsDie is true only for leaf dice. A pool uses it to decide whether its
	// count prefix needs parentheses ("3d6" versus "3(d6 + 1)").
	IsDie() bool
	// InnerRollWith is RollWith returning the composable roll.
	InnerRollWith(rng Rng) SubRoll
}

// SubRoll is the composable counterpart of Roll.
type SubRoll interface {
	Roll
	// IsSimple reports whether the trace can be embedded without parentheses.
	IsSimple() bool
	// RolledFaces returns every leaf die result that counts toward Totals.
	RolledFaces() []*DieRoll
	// Totals returns the combined per-unit result.
	Totals() Values
}

// InnerDescription returns r's description, parenthesized unless r is simple.
// Wrapping rollers use it instead of Description when embedding a child.
func InnerDescription(r SubRoller) string {
	return wrapped(r.Description(), r.IsSimple())
}

// InnerResults returns r's trace, parenthesized unless r is simple.
func InnerResults(r SubRoll) string {
	return wrapped(r.IntermediateResults(), r.IsSimple())
}

// RollRandom rolls r against a freshly seeded stream.
func RollRandom(r Roller) Roll {
	return r.RollWith(NewRng())
}

func facesOf(rolls []SubRoll) []*DieRoll {
	var out []*DieRoll
	for _, r := range rolls {
		out = append(out, r.RolledFaces()...)
	}
	return out
}
