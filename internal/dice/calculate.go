package dice

import (
	"math"
	"slices"
)

// UnitStats holds every statistic gathered for one unit, along with the
// sample it was computed from.
type UnitStats struct {
	Unit Unit
	// Values is the sample, one entry per roll, sorted ascending. Rolls
	// with no total for Unit contribute 0.
	Values       []int32
	Average      float64
	Median       float64
	Mode         float64
	StdDeviation float64
}

// CollectedStats groups UnitStats by unit, in the order units were first
// seen across the sample.
type CollectedStats struct {
	stats []UnitStats
}

// Collect computes statistics over the totals of a series of rolls.
func Collect(samples []Values) CollectedStats {
	var units []Unit
	var series [][]int32
	for _, vals := range samples {
		for _, v := range vals.entries {
			idx := slices.IndexFunc(units, func(u Unit) bool { return SameUnit(u, v.Unit) })
			if idx < 0 {
				units = append(units, v.Unit)
				series = append(series, make([]int32, 0, len(samples)))
				idx = len(units) - 1
			}
			series[idx] = append(series[idx], v.Amount)
		}
	}

	out := CollectedStats{stats: make([]UnitStats, len(units))}
	for i, u := range units {
		out.stats[i] = calculate(u, series[i], len(samples))
	}
	return out
}

func calculate(u Unit, vals []int32, size int) UnitStats {
	for len(vals) < size {
		vals = append(vals, 0)
	}
	slices.Sort(vals)
	avg := average(vals)
	return UnitStats{
		Unit:         u,
		Values:       vals,
		Average:      avg,
		Median:       median(vals),
		Mode:         mode(vals),
		StdDeviation: stdDeviation(vals, avg),
	}
}

func average(sorted []int32) float64 {
	var sum int64
	for _, v := range sorted {
		sum += int64(v)
	}
	return float64(sum) / float64(len(sorted))
}

func median(sorted []int32) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
	}
	return float64(sorted[mid])
}

// mode returns the most frequent value. Among equally frequent values the
// smallest wins.
func mode(sorted []int32) float64 {
	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return float64(best)
}

// stdDeviation is the population standard deviation around avg.
func stdDeviation(vals []int32, avg float64) float64 {
	var sq float64
	for _, v := range vals {
		d := float64(v) - avg
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)))
}

// For returns the statistics for u.
func (c CollectedStats) For(u Unit) (UnitStats, bool) {
	for _, s := range c.stats {
		if SameUnit(s.Unit, u) {
			return s, true
		}
	}
	return UnitStats{}, false
}

// All returns the statistics for every unit in first-seen order.
func (c CollectedStats) All() []UnitStats { return append([]UnitStats(nil), c.stats...) }

func (c CollectedStats) pick(kind StatKind, field func(UnitStats) float64) Stat {
	out := Stat{Kind: kind, Values: make([]StatValue, len(c.stats))}
	for i, s := range c.stats {
		out.Values[i] = StatValue{Unit: s.Unit, Value: field(s)}
	}
	return out
}

// Averages returns the average of every unit.
func (c CollectedStats) Averages() Stat {
	return c.pick(StatAverage, func(s UnitStats) float64 { return s.Average })
}

// Medians returns the median of every unit.
func (c CollectedStats) Medians() Stat {
	return c.pick(StatMedian, func(s UnitStats) float64 { return s.Median })
}

// Modes returns the mode of every unit.
func (c CollectedStats) Modes() Stat {
	return c.pick(StatMode, func(s UnitStats) float64 { return s.Mode })
}

// StdDeviations returns the standard deviation of every unit.
func (c CollectedStats) StdDeviations() Stat {
	return c.pick(StatStdDeviation, func(s UnitStats) float64 { return s.StdDeviation })
}
