// Package scripting provides a sandboxed GopherLua execution environment
// for units whose output is computed by a script instead of a format
// string. It depends on the dice package only for the Unit contract.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// script call when no override is configured.
const DefaultInstructionLimit = 100_000

// opBudget is the context a budgeted call runs under. GopherLua asks for
// Done once per opcode, so each request spends one opcode; the request that
// spends the last one cancels, and the VM stops with a context error.
type opBudget struct {
	context.Context
	stop context.CancelFunc
	left atomic.Int64
}

func (b *opBudget) Done() <-chan struct{} {
	if b.left.Add(-1) == 0 {
		b.stop()
	}
	return b.Context.Done()
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return DefaultInstructionLimit
	}
	return limit
}

// Budget allows the next code run on L at most limit opcodes (0 uses
// DefaultInstructionLimit), replacing any earlier budget.
//
// Postcondition: the returned release func must be called once the budgeted
// run is over.
func Budget(L *lua.LState, limit int) (release func()) {
	ctx, stop := context.WithCancel(context.Background())
	b := &opBudget{Context: ctx, stop: stop}
	b.left.Store(int64(effectiveLimit(limit)))
	L.SetContext(b)
	return stop
}

// NewSandboxedState creates a GopherLua LState with only base, table,
// string and math opened, and with dofile, loadfile, load, collectgarbage
// and require removed. It carries no opcode budget; run untrusted code
// under Budget.
//
// Postcondition: Returns a non-nil LState. The caller owns it and must call
// L.Close() when done.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
