package dice

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// StrategyKind selects what a pool keeps.
type StrategyKind int

const (
	// KeepAllKind keeps every result.
	KeepAllKind StrategyKind = iota
	// DropLowestKind drops the lowest Count results.
	DropLowestKind
	// DropHighestKind drops the highest Count results.
	DropHighestKind
)

// MissingPolicy decides what amount a roll with no total for an order-by
// unit sorts as.
type MissingPolicy int

const (
	// MissingAsZero treats an absent total as 0.
	MissingAsZero MissingPolicy = iota
	// MissingAsMinimum treats an absent total as lower than any real total.
	MissingAsMinimum
)

// Strategy tells a PoolRoller which results to keep.
//
// OrderBy lists the units compared, in priority order, to rank results: the
// first unit whose totals differ decides. With an empty OrderBy every result
// ranks equal, so DropLowest drops the earliest rolls and DropHighest the
// latest.
type Strategy struct {
	Kind    StrategyKind
	Count   int
	OrderBy []Unit
	Missing MissingPolicy
}

// KeepAll keeps every result.
func KeepAll() Strategy { return Strategy{Kind: KeepAllKind} }

// DropLowest drops the k lowest results ranked by orderBy.
func DropLowest(k int, orderBy ...Unit) Strategy {
	return Strategy{Kind: DropLowestKind, Count: k, OrderBy: orderBy}
}

// DropHighest drops the k highest results ranked by orderBy.
func DropHighest(k int, orderBy ...Unit) Strategy {
	return Strategy{Kind: DropHighestKind, Count: k, OrderBy: orderBy}
}

// WithMissing returns s using policy for absent totals.
func (s Strategy) WithMissing(policy MissingPolicy) Strategy {
	s.Missing = policy
	return s
}

// Drops returns how many results s discards.
func (s Strategy) Drops() int {
	if s.Kind == KeepAllKind {
		return 0
	}
	return s.Count
}

func (s Strategy) amount(vals Values, u Unit) int32 {
	if n, ok := vals.Get(u); ok {
		return n
	}
	if s.Missing == MissingAsMinimum {
		return math.MinInt32
	}
	return 0
}

// compare ranks two totals lexicographically over OrderBy.
func (s Strategy) compare(a, b Values) int {
	for _, u := range s.OrderBy {
		if c := cmp.Compare(s.amount(a, u), s.amount(b, u)); c != 0 {
			return c
		}
	}
	return 0
}

func (s Strategy) suffix() string {
	var word string
	switch s.Kind {
	case DropLowestKind:
		word = " drop lowest"
	case DropHighestKind:
		word = " drop highest"
	default:
		return ""
	}
	if s.Count == 1 {
		return word
	}
	return fmt.Sprintf("%s %d", word, s.Count)
}

// PoolRoller rolls one roller several times and sums the kept results, e.g.
// "4d6 drop lowest". The repeated roller need not be a die: "2(d20 + 5) drop
// lowest" is advantage on an attack roll.
type PoolRoller struct {
	count    int
	roller   SubRoller
	strategy Strategy
}

// NewPool creates a pool of count rolls of roller.
//
// Postcondition: Returns a pool, ErrEmptyPool when count < 1, or ErrDropsAll
// when the strategy would leave nothing kept.
func NewPool(roller SubRoller, count int, strategy Strategy) (*PoolRoller, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrEmptyPool, count)
	}
	if strategy.Count < 0 {
		return nil, fmt.Errorf("pool drop count must be >= 0, got %d", strategy.Count)
	}
	if strategy.Drops() >= count {
		return nil, fmt.Errorf("%w: dropping %d of %d", ErrDropsAll, strategy.Drops(), count)
	}
	return &PoolRoller{count: count, roller: roller, strategy: strategy}, nil
}

// Repeat rolls roller count times and keeps everything.
//
// Precondition: count >= 1. Panics otherwise.
func Repeat(roller SubRoller, count int) *PoolRoller {
	p, err := NewPool(roller, count, KeepAll())
	if err != nil {
		panic("dice: Repeat: " + err.Error())
	}
	return p
}

// BetterOf rolls roller twice and keeps the higher result.
func BetterOf(roller SubRoller, orderBy ...Unit) *PoolRoller {
	return &PoolRoller{count: 2, roller: roller, strategy: DropLowest(1, orderBy...)}
}

// WorseOf rolls roller twice and keeps the lower result.
func WorseOf(roller SubRoller, orderBy ...Unit) *PoolRoller {
	return &PoolRoller{count: 2, roller: roller, strategy: DropHighest(1, orderBy...)}
}

// Count returns how many times the roller is rolled.
func (p *PoolRoller) Count() int { return p.count }

// Strategy returns the keep/drop strategy.
func (p *PoolRoller) Strategy() Strategy { return p.strategy }

func (p *PoolRoller) Description() string {
	if p.roller.IsDie() {
		return fmt.Sprintf("%d%s%s", p.count, p.roller.Description(), p.strategy.suffix())
	}
	return fmt.Sprintf("%d(%s)%s", p.count, p.roller.Description(), p.strategy.suffix())
}

func (p *PoolRoller) IsSimple() bool {
	return p.roller.IsSimple() && p.strategy.Kind == KeepAllKind
}

func (p *PoolRoller) IsDie() bool { return false }

func (p *PoolRoller) RollWith(rng Rng) Roll { return p.InnerRollWith(rng) }

// InnerRollWith draws count rolls from rng, then splits them into kept and
// dropped. Ranking uses a stable sort, so among equal results the earlier
// roll sorts first.
func (p *PoolRoller) InnerRollWith(rng Rng) SubRoll {
	rolls := make([]SubRoll, p.count)
	for i := range rolls {
		rolls[i] = p.roller.InnerRollWith(rng)
	}
	if p.strategy.Kind == KeepAllKind {
		return &PoolRoll{kept: rolls}
	}

	type ranked struct {
		roll   SubRoll
		totals Values
	}
	order := make([]ranked, len(rolls))
	for i, r := range rolls {
		order[i] = ranked{roll: r, totals: r.Totals()}
	}
	slices.SortStableFunc(order, func(a, b ranked) int {
		return p.strategy.compare(a.totals, b.totals)
	})
	for i := range order {
		rolls[i] = order[i].roll
	}

	if p.strategy.Kind == DropLowestKind {
		k := p.strategy.Count
		return &PoolRoll{kept: rolls[k:], dropped: rolls[:k]}
	}
	cut := len(rolls) - p.strategy.Count
	return &PoolRoll{kept: rolls[:cut], dropped: rolls[cut:]}
}

// PoolRoll is the result of a PoolRoller.
type PoolRoll struct {
	kept    []SubRoll
	dropped []SubRoll
}

// Kept returns the results that count toward the totals.
func (r *PoolRoll) Kept() []SubRoll { return append([]SubRoll(nil), r.kept...) }

// Dropped returns the discarded results.
func (r *PoolRoll) Dropped() []SubRoll { return append([]SubRoll(nil), r.dropped...) }

func joinResults(rolls []SubRoll, sep string) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = InnerResults(r)
	}
	return strings.Join(parts, sep)
}

// IntermediateResults renders kept results joined by " + ", then
// ", [dropped: ...]" when anything was dropped.
func (r *PoolRoll) IntermediateResults() string {
	out := joinResults(r.kept, " + ")
	if len(r.dropped) > 0 {
		out += ", [dropped: " + joinResults(r.dropped, ", ") + "]"
	}
	return out
}

func (r *PoolRoll) FinalResult() string { return r.Totals().String() }

func (r *PoolRoll) IsSimple() bool { return len(r.dropped) == 0 }

// RolledFaces covers the kept results only.
func (r *PoolRoll) RolledFaces() []*DieRoll { return facesOf(r.kept) }

// Totals merges the kept results only.
func (r *PoolRoll) Totals() Values {
	var out Values
	for _, k := range r.kept {
		out = out.AddAll(k.Totals())
	}
	return out
}
