package scripting_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/cory-johannsen/udice/internal/scripting"
)

const successesScript = `
function format(total)
	if total == 0 then return nil end
	if total < 0 then
		return udice.abs(total) .. udice.plural(total, " Failure", " Failures")
	end
	return total .. udice.plural(total, " Success", " Successes")
end
`

func newUnit(t *testing.T, src string, limit int) (*scripting.LuaUnit, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	u, err := scripting.NewLuaUnit("Successes", src, limit, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(u.Close)
	return u, logs
}

func TestLuaUnit_Format(t *testing.T) {
	u, _ := newUnit(t, successesScript, 0)
	assert.Equal(t, "1 Success", u.Format(1))
	assert.Equal(t, "3 Successes", u.Format(3))
	assert.Equal(t, "2 Failures", u.Format(-2))
	assert.Equal(t, "", u.Format(0))
	assert.Equal(t, "Successes", u.Name())
	assert.NotEqual(t, dice.NumericID, u.ID())
	assert.Equal(t, scripting.DefaultInstructionLimit, u.InstructionLimit())
}

func TestLuaUnit_NumberResultIsRendered(t *testing.T) {
	u, _ := newUnit(t, `function format(total) return total * 10 end`, 0)
	assert.Equal(t, "30", u.Format(3))
}

func TestLuaUnit_MissingFormatFunction(t *testing.T) {
	_, err := scripting.NewLuaUnit("Bad", `local x = 1`, 0, zap.NewNop())
	assert.ErrorIs(t, err, scripting.ErrNoFormatFunc)
}

func TestLuaUnit_CompileError(t *testing.T) {
	_, err := scripting.NewLuaUnit("Bad", `function format(`, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestLuaUnit_InvalidName(t *testing.T) {
	_, err := scripting.NewLuaUnit("", successesScript, 0, zap.NewNop())
	assert.ErrorIs(t, err, dice.ErrNameEmpty)
}

func TestLuaUnit_RuntimeErrorFallsBackToTotal(t *testing.T) {
	u, logs := newUnit(t, `function format(total) error("boom") end`, 0)
	assert.Equal(t, "-4", u.Format(-4))
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestLuaUnit_BudgetIsRenewedPerCall(t *testing.T) {
	src := `
function format(total)
	local n = 0
	for i = 1, 200 do n = n + 1 end
	return tostring(n)
end
`
	u, logs := newUnit(t, src, 5_000)
	for i := 0; i < 20; i++ {
		require.Equal(t, "200", u.Format(int32(i)), "call %d ran out of budget", i)
	}
	assert.Equal(t, 0, logs.Len())
}

func TestLuaUnit_RunawayScriptIsStopped(t *testing.T) {
	u, logs := newUnit(t, `function format(total) while true do end end`, 1_000)
	assert.Equal(t, "7", u.Format(7))
	assert.Equal(t, "8", u.Format(8), "the unit stays usable after a budget overrun")
	assert.Equal(t, 2, logs.Len())
}

func TestLuaUnit_Rebuild(t *testing.T) {
	u, err := scripting.RebuildLuaUnit(42, dice.MustName("Hits"), `function format(t) return t .. " hits" end`, 0, zap.NewNop())
	require.NoError(t, err)
	defer u.Close()
	assert.Equal(t, uint64(42), u.ID())
	assert.Equal(t, "2 hits", u.Format(2))
	assert.Contains(t, u.Source(), "hits")
}

func TestLuaUnit_FormatAfterClose(t *testing.T) {
	u, logs := newUnit(t, successesScript, 0)
	u.Close()
	u.Close()
	assert.Equal(t, "2", u.Format(2))
	assert.Equal(t, 1, logs.FilterMessage("scripting: unit used after Close").Len())
}

func TestLuaUnit_WorksAsValueUnit(t *testing.T) {
	u, _ := newUnit(t, successesScript, 0)
	vs := dice.NewValues(dice.V(u, 2), dice.V(dice.Numeric, 5))
	assert.Equal(t, "2 Successes\n5", vs.String())
}

func TestLuaUnit_ConcurrentFormat(t *testing.T) {
	u, _ := newUnit(t, successesScript, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, "3 Successes", u.Format(3))
			}
		}()
	}
	wg.Wait()
}

func TestProperty_LuaUnitMatchesBasicFormat(t *testing.T) {
	u, _ := newUnit(t, `function format(total) return total .. " pts" end`, 0)
	basic, err := dice.NewBasicUnit("Points", "{} pts", false)
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.Int32Range(-100_000, 100_000).Draw(rt, "total")
		assert.Equal(rt, basic.Format(n), u.Format(n))
	})
}
