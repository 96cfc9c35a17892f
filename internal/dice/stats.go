package dice

import (
	"fmt"
	"strings"
)

// StatKind names one of the statistics a StatsRoll reports.
type StatKind int

const (
	StatAverage StatKind = iota
	StatMedian
	StatMode
	StatStdDeviation
)

func (k StatKind) String() string {
	switch k {
	case StatAverage:
		return "Average"
	case StatMedian:
		return "Median"
	case StatMode:
		return "Mode"
	case StatStdDeviation:
		return "Standard Deviation"
	default:
		return "Unknown"
	}
}

// StatValue is one unit's value for a statistic.
type StatValue struct {
	Unit  Unit
	Value float64
}

func (v StatValue) String() string { return fmt.Sprintf("%s: %.2f", v.Unit.Name(), v.Value) }

// Stat is one statistic across every unit.
type Stat struct {
	Kind   StatKind
	Values []StatValue
}

// For returns the statistic's value for u.
func (s Stat) For(u Unit) (float64, bool) {
	for _, v := range s.Values {
		if SameUnit(v.Unit, u) {
			return v.Value, true
		}
	}
	return 0, false
}

// String renders a heading line followed by one "<unit>: x.xx" line per unit,
// each line ending in "\n".
func (s Stat) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String() + ":\n")
	for _, v := range s.Values {
		b.WriteString(v.String() + "\n")
	}
	return b.String()
}

// StatsRoller rolls a composable roller many times and reports average,
// median, mode and standard deviation per unit.
type StatsRoller struct {
	roller SubRoller
	runs   int
}

// NewStats creates a StatsRoller over runs rolls of roller.
//
// Postcondition: Returns a roller, or ErrNoRuns when runs < 1.
func NewStats(roller SubRoller, runs int) (*StatsRoller, error) {
	if runs < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrNoRuns, runs)
	}
	return &StatsRoller{roller: roller, runs: runs}, nil
}

// Runs returns how many times the roller is sampled.
func (s *StatsRoller) Runs() int { return s.runs }

func (s *StatsRoller) Description() string {
	return fmt.Sprintf("Runs '%s' %d times", s.roller.Description(), s.runs)
}

func (s *StatsRoller) RollWith(rng Rng) Roll { return s.StatsRollWith(rng) }

// StatsRollWith is RollWith returning the concrete *StatsRoll.
func (s *StatsRoller) StatsRollWith(rng Rng) *StatsRoll {
	rolls := make([]SubRoll, s.runs)
	samples := make([]Values, s.runs)
	for i := range rolls {
		rolls[i] = s.roller.InnerRollWith(rng)
		samples[i] = rolls[i].Totals()
	}
	return &StatsRoll{rolls: rolls, stats: Collect(samples)}
}

// StatsRoll holds every sampled roll and the statistics computed over them.
type StatsRoll struct {
	rolls []SubRoll
	stats CollectedStats
}

// Rolls returns the individual samples in the order they were drawn.
func (r *StatsRoll) Rolls() []SubRoll { return append([]SubRoll(nil), r.rolls...) }

// Stats returns the collected statistics.
func (r *StatsRoll) Stats() CollectedStats { return r.stats }

// StatsFor returns the statistics for u.
func (r *StatsRoll) StatsFor(u Unit) (UnitStats, bool) { return r.stats.For(u) }

func (r *StatsRoll) Averages() Stat { return r.stats.Averages() }

func (r *StatsRoll) Medians() Stat { return r.stats.Medians() }

func (r *StatsRoll) Modes() Stat { return r.stats.Modes() }

func (r *StatsRoll) StdDeviations() Stat { return r.stats.StdDeviations() }

// IntermediateResults summarizes rather than lists: "Result of N rolls".
func (r *StatsRoll) IntermediateResults() string {
	return fmt.Sprintf("Result of %d rolls", len(r.rolls))
}

// FinalResult renders the summary line and one block per statistic,
// separated by blank lines. Every line, the last included, ends in "\n".
func (r *StatsRoll) FinalResult() string {
	blocks := []string{
		r.Averages().String(),
		r.Medians().String(),
		r.Modes().String(),
		r.StdDeviations().String(),
	}
	return r.IntermediateResults() + ":\n" + strings.Join(blocks, "\n")
}
