package dice_test

import (
	"strings"
	"testing"

	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeric(t *testing.T) {
	assert.Equal(t, dice.NumericID, dice.Numeric.ID())
	assert.Equal(t, "Total", dice.Numeric.Name())
	assert.Equal(t, "-3", dice.Numeric.Format(-3))
}

func TestBasicUnit_Format(t *testing.T) {
	u := mustBasic(t, "Failures", "{|} Failures ({})", false)
	assert.Equal(t, "2 Failures (-2)", u.Format(-2))
	assert.Equal(t, "0 Failures (0)", u.Format(0))
}

func TestBasicUnit_IgnoreZero(t *testing.T) {
	u := mustBasic(t, "Boons", "{} Boons", true)
	assert.Equal(t, "", u.Format(0))
	assert.Equal(t, "1 Boons", u.Format(1))
}

func TestBasicUnit_RejectsBadName(t *testing.T) {
	_, err := dice.NewBasicUnit("", "{}", false)
	assert.ErrorIs(t, err, dice.ErrNameEmpty)
}

func TestNewUnitID_UniqueAndNotNumeric(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 200; i++ {
		id := dice.NewUnitID()
		require.NotEqual(t, dice.NumericID, id)
		require.False(t, seen[id], "duplicate unit id %d", id)
		seen[id] = true
	}
}

func TestSameUnit(t *testing.T) {
	a := mustBasic(t, "A", "{}", false)
	rebuilt := dice.RebuildBasicUnit(a.ID(), dice.MustName("Renamed"), "x", true)
	other := mustBasic(t, "A", "{}", false)

	assert.True(t, dice.SameUnit(a, rebuilt), "identity follows the id, not the name")
	assert.False(t, dice.SameUnit(a, other))
	assert.False(t, dice.SameUnit(a, nil))
	assert.False(t, dice.SameUnit(nil, nil))
}

func TestPosZeroNeg(t *testing.T) {
	u, err := dice.PosZeroNeg("Success", "{} Successes", "Even", "{|} Failures")
	require.NoError(t, err)
	assert.Equal(t, "3 Successes", u.Format(3))
	assert.Equal(t, "Even", u.Format(0))
	assert.Equal(t, "4 Failures", u.Format(-4))
}

func TestPosNeg_ZeroSuppressed(t *testing.T) {
	u, err := dice.PosNeg("Advantage", "{} Advantage", "{|} Threat")
	require.NoError(t, err)
	assert.Equal(t, "", u.Format(0))
	assert.Equal(t, "2 Threat", u.Format(-2))
}

func TestTieredUnit_GapProducesNoOutput(t *testing.T) {
	u, err := dice.NewTieredUnit("Grade",
		dice.Tier{Min: 1, Max: 3, Format: "low {}"},
		dice.Tier{Min: 10, Max: 20, Format: "high {}"},
	)
	require.NoError(t, err)
	assert.Equal(t, "low 2", u.Format(2))
	assert.Equal(t, "high 15", u.Format(15))
	assert.Equal(t, "", u.Format(5))
	assert.Len(t, u.Tiers(), 2)
}

func TestNewName(t *testing.T) {
	_, err := dice.NewName("   ")
	assert.ErrorIs(t, err, dice.ErrNameEmpty)

	_, err = dice.NewName(strings.Repeat("x", dice.MaxNameLen+1))
	assert.ErrorIs(t, err, dice.ErrNameTooLong)

	n, err := dice.NewName(strings.Repeat("é", dice.MaxNameLen))
	require.NoError(t, err, "length is counted in characters, not bytes")
	assert.False(t, n.IsZero())
}

func TestMustName_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustName("") })
}

func TestNameFromIndex(t *testing.T) {
	assert.Equal(t, "3", dice.NameFromIndex(3).String())
}
