package dice

import (
	"strconv"
	"strings"
)

// NamedRoller is one entry of a MultiRoller.
type NamedRoller struct {
	name   string
	roller Roller
}

// Named labels roller with name.
func Named(name Name, roller Roller) NamedRoller {
	return NamedRoller{name: name.String(), roller: roller}
}

// Numbered leaves roller unnamed; it is labelled by its 1-based position.
func Numbered(roller Roller) NamedRoller {
	return NamedRoller{roller: roller}
}

func (n NamedRoller) label(i int) string {
	if n.name == "" {
		return strconv.Itoa(i + 1)
	}
	return n.name
}

// MultiRoller rolls several unrelated rollers at once, such as an attack
// and its damage. It is not a SubRoller: its results have no single total.
type MultiRoller struct {
	entries []NamedRoller
}

// NewMulti groups entries in order.
func NewMulti(entries ...NamedRoller) *MultiRoller {
	return &MultiRoller{entries: append([]NamedRoller(nil), entries...)}
}

// With returns a copy of m with entry appended.
func (m *MultiRoller) With(entry NamedRoller) *MultiRoller {
	return NewMulti(append(m.Entries(), entry)...)
}

// Entries returns the entries in order.
func (m *MultiRoller) Entries() []NamedRoller { return append([]NamedRoller(nil), m.entries...) }

func (m *MultiRoller) Description() string {
	lines := make([]string, len(m.entries))
	for i, e := range m.entries {
		lines[i] = e.label(i) + ": " + e.roller.Description()
	}
	return strings.Join(lines, "\n")
}

// RollWith rolls each entry in order against rng.
func (m *MultiRoller) RollWith(rng Rng) Roll {
	out := &MultiRoll{names: make([]string, len(m.entries)), rolls: make([]Roll, len(m.entries))}
	for i, e := range m.entries {
		out.names[i] = e.label(i)
		out.rolls[i] = e.roller.RollWith(rng)
	}
	return out
}

// MultiRoll is the result of a MultiRoller.
type MultiRoll struct {
	names []string
	rolls []Roll
}

// Len returns the number of entries.
func (r *MultiRoll) Len() int { return len(r.rolls) }

// Entry returns the label and roll of the i-th entry.
func (r *MultiRoll) Entry(i int) (string, Roll) { return r.names[i], r.rolls[i] }

func (r *MultiRoll) render(text func(Roll) string) string {
	lines := make([]string, len(r.rolls))
	for i, roll := range r.rolls {
		lines[i] = r.names[i] + ": " + text(roll)
	}
	return strings.Join(lines, "\n")
}

func (r *MultiRoll) IntermediateResults() string {
	return r.render(Roll.IntermediateResults)
}

func (r *MultiRoll) FinalResult() string {
	return r.render(Roll.FinalResult)
}
