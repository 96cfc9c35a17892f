package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/cory-johannsen/udice/internal/storage"
)

type fixture struct {
	success *dice.BasicUnit
	boost   *dice.BasicUnit
	plain   *dice.Die
	burst   *dice.Die
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	success, err := dice.NewBasicUnit("Success", "{} Successes", false)
	require.NoError(t, err)
	boost, err := dice.NewBasicUnit("Boost", "{} Boosts", true)
	require.NoError(t, err)

	hit := dice.NewFace("Hit", dice.V(success, 1))
	plain := dice.MustDie("Plain", dice.BlankFace(success), hit)
	burst := dice.MustDie("Burst", hit, dice.NewFace("Star", dice.V(success, 1), dice.V(boost, 1))).
		WithExplosion(boost, 3)
	return fixture{success: success, boost: boost, plain: plain, burst: burst}
}

func TestMemoryRepository_StoreAndFetch(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	repo := storage.NewMemoryRepository()

	id, err := repo.StoreDice(ctx, "Narrative", []*dice.Die{fx.plain, fx.burst})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	got, err := repo.SetDice(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Same(t, fx.plain, got[0])
	assert.Same(t, fx.burst, got[1])

	d, err := repo.Die(ctx, id, "Burst")
	require.NoError(t, err)
	assert.Same(t, fx.burst, d)

	units, err := repo.SetUnits(ctx, id)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.True(t, dice.SameUnit(fx.success, units[0]))
	assert.True(t, dice.SameUnit(fx.boost, units[1]))

	u, err := repo.Unit(ctx, id, "Boost")
	require.NoError(t, err)
	assert.True(t, dice.SameUnit(fx.boost, u))

	sets, err := repo.Sets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.SetInfo{{ID: id, Name: "Narrative", Dice: 2}}, sets)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	repo := storage.NewMemoryRepository()
	id, err := repo.StoreDice(ctx, "Narrative", []*dice.Die{fx.plain})
	require.NoError(t, err)

	_, err = repo.SetDice(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrSetNotFound)
	_, err = repo.SetUnits(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrSetNotFound)
	_, err = repo.Die(ctx, id, "Burst")
	assert.ErrorIs(t, err, storage.ErrDieNotFound)
	_, err = repo.Unit(ctx, id, "Boost")
	assert.ErrorIs(t, err, storage.ErrUnitNotFound)
}

func TestMemoryRepository_RejectsBadSets(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	repo := storage.NewMemoryRepository()

	_, err := repo.StoreDice(ctx, "", []*dice.Die{fx.plain})
	assert.ErrorIs(t, err, dice.ErrNameEmpty)
	_, err = repo.StoreDice(ctx, strings.Repeat("x", 36), []*dice.Die{fx.plain})
	assert.ErrorIs(t, err, dice.ErrNameTooLong)
	_, err = repo.StoreDice(ctx, "Empty", nil)
	assert.ErrorIs(t, err, storage.ErrNoDice)
}

func TestMemoryRepository_AllAcrossSets(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	repo := storage.NewMemoryRepository()

	_, err := repo.StoreDice(ctx, "First", []*dice.Die{fx.plain})
	require.NoError(t, err)
	_, err = repo.StoreDice(ctx, "Second", []*dice.Die{fx.burst, dice.NumericDie(6)})
	require.NoError(t, err)

	all, err := repo.AllDice(ctx)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name()
	}
	assert.Equal(t, []string{"Plain", "Burst", "d6"}, names)

	units, err := repo.AllUnits(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 3, "Success is shared by both sets and listed once")
}

func TestMemoryRepository_StoredSliceIsCopied(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	repo := storage.NewMemoryRepository()
	ds := []*dice.Die{fx.plain}
	id, err := repo.StoreDice(ctx, "Copy", ds)
	require.NoError(t, err)

	ds[0] = fx.burst
	got, err := repo.SetDice(ctx, id)
	require.NoError(t, err)
	assert.Same(t, fx.plain, got[0])
}

func TestUnitsOf_IncludesExplosionTrigger(t *testing.T) {
	ghost, err := dice.NewBasicUnit("Ghost", "{} Ghosts", false)
	require.NoError(t, err)
	d := dice.NumericDie(4).WithExplosion(ghost, 0)

	units := storage.UnitsOf([]*dice.Die{d})
	require.Len(t, units, 2)
	assert.True(t, dice.SameUnit(dice.Numeric, units[0]))
	assert.True(t, dice.SameUnit(ghost, units[1]))
}

// Property: every stored set gets a distinct id and is listed in store order.
func TestPropertyMemoryRepository_StoreOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		repo := storage.NewMemoryRepository()
		n := rapid.IntRange(1, 8).Draw(t, "sets")
		ids := make([]storage.SetID, n)
		for i := range ids {
			sides := rapid.IntRange(1, 20).Draw(t, "sides")
			id, err := repo.StoreDice(ctx, "Set", []*dice.Die{dice.NumericDie(sides)})
			if err != nil {
				t.Fatalf("StoreDice: %v", err)
			}
			ids[i] = id
		}
		sets, err := repo.Sets(ctx)
		if err != nil {
			t.Fatalf("Sets: %v", err)
		}
		seen := make(map[storage.SetID]bool)
		for i, s := range sets {
			if s.ID != ids[i] {
				t.Fatalf("set %d: got id %s, want %s", i, s.ID, ids[i])
			}
			if seen[s.ID] {
				t.Fatalf("duplicate id %s", s.ID)
			}
			seen[s.ID] = true
		}
	})
}
