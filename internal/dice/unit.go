package dice

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Unit identifies a category of numeric outcome ("Successes", "Advantage")
// and knows how to render a total of it.
//
// Two units are the same unit iff their IDs match; see SameUnit.
type Unit interface {
	// ID returns the unit's stable identity.
	ID() uint64
	// Name returns the display name used in statistics and value listings.
	Name() string
	// Format renders total for display. An empty result means the line
	// should be suppressed (e.g. banes and boons that cancelled out).
	Format(total int32) string
}

// SameUnit reports whether a and b identify the same unit.
// A nil unit is never the same as anything.
func SameUnit(a, b Unit) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}

// NumericID is the reserved identity of the Numeric unit.
const NumericID uint64 = 0

// NewUnitID returns a fresh random unit identity. It never returns NumericID.
func NewUnitID() uint64 {
	for {
		u := uuid.New()
		if id := binary.BigEndian.Uint64(u[:8]); id != NumericID {
			return id
		}
	}
}

type numericUnit struct{}

func (numericUnit) ID() uint64                { return NumericID }
func (numericUnit) Name() string              { return "Total" }
func (numericUnit) Format(total int32) string { return strconv.Itoa(int(total)) }

// Numeric is the unit of ordinary numbered dice. It renders the bare total.
var Numeric Unit = numericUnit{}

// formatTotal expands "{|}" to |total| and "{}" to total.
func formatTotal(format string, total int32) string {
	abs := int64(total)
	if abs < 0 {
		abs = -abs
	}
	out := strings.ReplaceAll(format, "{|}", strconv.FormatInt(abs, 10))
	return strings.ReplaceAll(out, "{}", strconv.Itoa(int(total)))
}

// BasicUnit is a unit with a single output format.
//
// The format replaces "{}" with the total and "{|}" with its absolute value.
// When IgnoreZero is set a zero total produces no output at all.
type BasicUnit struct {
	id         uint64
	name       Name
	format     string
	ignoreZero bool
}

// NewBasicUnit creates a BasicUnit with a fresh identity.
//
// Precondition: name must be a valid Name.
// Postcondition: Returns a unit whose ID is unique to this process, or a name error.
func NewBasicUnit(name, format string, ignoreZero bool) (*BasicUnit, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &BasicUnit{id: NewUnitID(), name: n, format: format, ignoreZero: ignoreZero}, nil
}

// RebuildBasicUnit recreates a persisted BasicUnit with its original identity.
func RebuildBasicUnit(id uint64, name Name, format string, ignoreZero bool) *BasicUnit {
	return &BasicUnit{id: id, name: name, format: format, ignoreZero: ignoreZero}
}

func (u *BasicUnit) ID() uint64 { return u.id }

func (u *BasicUnit) Name() string { return u.name.String() }

// OutputFormat returns the raw format string.
func (u *BasicUnit) OutputFormat() string { return u.format }

// IgnoreZero reports whether zero totals are suppressed.
func (u *BasicUnit) IgnoreZero() bool { return u.ignoreZero }

func (u *BasicUnit) Format(total int32) string {
	if total == 0 && u.ignoreZero {
		return ""
	}
	return formatTotal(u.format, total)
}

// Tier is an inclusive range of totals sharing one output format.
type Tier struct {
	Min    int32
	Max    int32
	Format string
}

// Contains reports whether total falls within the tier.
func (t Tier) Contains(total int32) bool { return total >= t.Min && total <= t.Max }

// TieredUnit picks its output format by the range the total falls in, e.g.
// "{|} Failures" below zero and "{} Successes" above it. Totals outside
// every tier produce no output.
type TieredUnit struct {
	id    uint64
	name  Name
	tiers []Tier
}

// NewTieredUnit creates a TieredUnit with a fresh identity. Tiers are
// checked in order; the first match wins.
func NewTieredUnit(name string, tiers ...Tier) (*TieredUnit, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &TieredUnit{id: NewUnitID(), name: n, tiers: append([]Tier(nil), tiers...)}, nil
}

// RebuildTieredUnit recreates a persisted TieredUnit with its original identity.
func RebuildTieredUnit(id uint64, name Name, tiers ...Tier) *TieredUnit {
	return &TieredUnit{id: id, name: name, tiers: append([]Tier(nil), tiers...)}
}

// PosZeroNeg builds a three-tier unit: negative, exactly zero, positive.
func PosZeroNeg(name, pos, zero, neg string) (*TieredUnit, error) {
	return NewTieredUnit(name,
		Tier{Min: math.MinInt32, Max: -1, Format: neg},
		Tier{Min: 0, Max: 0, Format: zero},
		Tier{Min: 1, Max: math.MaxInt32, Format: pos},
	)
}

// PosNeg builds a two-tier unit; a zero total produces no output.
func PosNeg(name, pos, neg string) (*TieredUnit, error) {
	return NewTieredUnit(name,
		Tier{Min: math.MinInt32, Max: -1, Format: neg},
		Tier{Min: 1, Max: math.MaxInt32, Format: pos},
	)
}

func (u *TieredUnit) ID() uint64 { return u.id }

func (u *TieredUnit) Name() string { return u.name.String() }

// Tiers returns a copy of the unit's tiers.
func (u *TieredUnit) Tiers() []Tier { return append([]Tier(nil), u.tiers...) }

func (u *TieredUnit) Format(total int32) string {
	for _, t := range u.tiers {
		if t.Contains(total) {
			return formatTotal(t.Format, total)
		}
	}
	return ""
}
