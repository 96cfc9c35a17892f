package dice_test

import (
	"testing"

	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func numbers(n int32) dice.Values { return dice.NewValues(dice.V(dice.Numeric, n)) }

func TestConstant_Unnamed(t *testing.T) {
	c := dice.NewConstant(numbers(3))
	assert.Equal(t, "3", c.Description())
	assert.False(t, c.IsSimple())
	assert.False(t, c.IsDie())

	roll := c.InnerRollWith(dice.Seeded(1))
	assert.Equal(t, "3", roll.IntermediateResults())
	assert.Equal(t, "3", roll.FinalResult())
	assert.Nil(t, roll.RolledFaces())
}

func TestConstant_NamedDoesNotAdvanceStream(t *testing.T) {
	c := dice.NewNamedConstant(dice.MustName("Proficiency"), numbers(2))
	rng := dice.Seeded(1)
	roll := c.RollWith(rng)

	assert.Equal(t, uint64(1), rng.State())
	assert.Equal(t, "Proficiency", roll.IntermediateResults())
	assert.Equal(t, "2", roll.FinalResult())
	assert.True(t, c.IsSimple())
}

func TestModifier(t *testing.T) {
	m := dice.NewModifier(dice.NumericDie(6), dice.V(dice.Numeric, 3))
	assert.Equal(t, "d6 + 3", m.Description())
	assert.True(t, m.IsSimple())

	roll := m.InnerRollWith(dice.Seeded(1)).(*dice.ModifierRoll)
	assert.Equal(t, "d6:[1] + 3", roll.IntermediateResults())
	assert.Equal(t, "4", roll.FinalResult())
	assert.Equal(t, "d6:[1]", roll.Inner().IntermediateResults())
	assert.Len(t, roll.RolledFaces(), 1)
}

func TestModifier_AddsNewUnit(t *testing.T) {
	adv := mustBasic(t, "Advantage", "{} Advantage", false)
	m := dice.NewModifier(dice.NumericDie(6), dice.V(adv, 1))
	roll := m.InnerRollWith(dice.Seeded(1))
	assert.Equal(t, "1\n1 Advantage", roll.FinalResult())
	assert.Equal(t, "d6 + 1 Advantage", m.Description())
}

func TestModifier_WrapsComplexInner(t *testing.T) {
	p, err := dice.NewPool(dice.NumericDie(6), 4, dice.DropLowest(1, dice.Numeric))
	require.NoError(t, err)
	m := dice.NewModifier(p, dice.V(dice.Numeric, 2))
	assert.Equal(t, "(4d6 drop lowest) + 2", m.Description())

	roll := m.RollWith(dice.Seeded(1))
	assert.Equal(t, "(d6:[1] + d6:[6] + d6:[6], [dropped: d6:[1]]) + 2", roll.IntermediateResults())
	assert.Equal(t, "15", roll.FinalResult())
}

func TestMath_SumWithNamedModifier(t *testing.T) {
	m := dice.NewSum(dice.NumericDie(6), dice.NewNamedConstant(dice.MustName("Proficiency"), numbers(2)))
	assert.Equal(t, "d6 + Proficiency", m.Description())
	assert.False(t, m.IsSimple())

	roll := m.RollWith(dice.Seeded(1))
	assert.Equal(t, "d6:[1] + Proficiency", roll.IntermediateResults())
	assert.Equal(t, "3", roll.FinalResult())
}

func TestMath_MinusModifierSubtracts(t *testing.T) {
	five := dice.NewNamedConstant(dice.MustName("Five"), numbers(5))
	m := dice.NewSum(five, dice.NewConstant(numbers(1))).MinusModifier(numbers(2))

	assert.Equal(t, "Five + (1) - (2)", m.Description())
	assert.Equal(t, "4", m.RollWith(dice.Seeded(1)).FinalResult())
}

func TestMath_BuildersDoNotModifyReceiver(t *testing.T) {
	base := dice.NewDifference(dice.NewNamedConstant(dice.MustName("Ten"), numbers(10)), dice.NumericDie(4))
	_ = base.Plus(dice.NumericDie(8))
	_ = base.MinusNamedModifier(dice.MustName("Cover"), numbers(2))
	assert.Equal(t, "Ten - d4", base.Description())

	longer := base.PlusAll(dice.NumericDie(6), dice.NumericDie(6)).MinusAll(dice.NumericDie(2))
	assert.Equal(t, "Ten - d4 + d6 + d6 - d2", longer.Description())
}

func TestMath_NestedInPoolIsParenthesized(t *testing.T) {
	m := dice.NewSum(dice.NumericDie(4), dice.NumericDie(4))
	p := dice.Repeat(m, 2)
	assert.Equal(t, "2(d4 + d4)", p.Description())
	assert.False(t, p.IsSimple())

	roll := p.InnerRollWith(dice.Seeded(1))
	assert.Len(t, roll.RolledFaces(), 4)
}

func TestMath_PlusNamedModifier(t *testing.T) {
	m := dice.NewSum(dice.NumericDie(20), dice.NumericDie(4)).PlusNamedModifier(dice.MustName("Bless"), numbers(1))
	assert.Equal(t, "d20 + d4 + Bless", m.Description())
	m = m.PlusModifier(numbers(2)).Minus(dice.NumericDie(6))
	assert.Equal(t, "d20 + d4 + Bless + (2) - d6", m.Description())
}

func TestMulti(t *testing.T) {
	m := dice.NewMulti(
		dice.Named(dice.MustName("Attack"), dice.NumericDie(20)),
		dice.Numbered(dice.NumericDie(6)),
	)
	assert.Equal(t, "Attack: d20\n2: d6", m.Description())

	roll := m.RollWith(dice.Seeded(1)).(*dice.MultiRoll)
	assert.Equal(t, "Attack: d20:[11]\n2: d6:[6]", roll.IntermediateResults())
	assert.Equal(t, "Attack: 11\n2: 6", roll.FinalResult())
	require.Equal(t, 2, roll.Len())
	name, _ := roll.Entry(1)
	assert.Equal(t, "2", name)
}

func TestMulti_WithCopies(t *testing.T) {
	base := dice.NewMulti(dice.Numbered(dice.NumericDie(6)))
	more := base.With(dice.Numbered(dice.NumericDie(8)))
	assert.Len(t, base.Entries(), 1)
	assert.Equal(t, "1: d6\n2: d8", more.Description())
}

func TestProperty_RollerTreeIsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		tree := dice.NewSum(dice.MustParse("4d6dl1+2"), dice.MustParse("d20"))
		a := tree.RollWith(dice.Seeded(seed))
		b := tree.RollWith(dice.Seeded(seed))
		assert.Equal(rt, a.IntermediateResults(), b.IntermediateResults())
		assert.Equal(rt, a.FinalResult(), b.FinalResult())
	})
}

func TestProperty_TotalsEqualSumOfFaces(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		count := rapid.IntRange(1, 6).Draw(rt, "count")
		sides := rapid.IntRange(1, 12).Draw(rt, "sides")
		tree := dice.NewSum(dice.Repeat(dice.NumericDie(sides), count), dice.NumericDie(sides))

		roll := tree.InnerRollWith(dice.Seeded(seed))
		var sum int32
		for _, f := range roll.RolledFaces() {
			n, _ := f.Totals().Get(dice.Numeric)
			sum += n
		}
		got, _ := roll.Totals().Get(dice.Numeric)
		assert.Equal(rt, sum, got)
	})
}
