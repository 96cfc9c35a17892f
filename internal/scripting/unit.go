package scripting

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/udice/internal/dice"
)

// ErrNoFormatFunc is returned when a unit script does not define a global
// format(total) function.
var ErrNoFormatFunc = errors.New("script must define a global format(total) function")

// LuaUnit is a dice.Unit whose output is produced by a Lua function:
//
//	function format(total)
//	  if total == 0 then return nil end
//	  return udice.abs(total) .. udice.plural(total, " Success", " Successes")
//	end
//
// A nil or empty return suppresses the line. Each Format call gets a fresh
// instruction budget; a script that errors or runs out of budget is logged
// at warn level and the bare total is shown instead.
//
// LuaUnit is safe for concurrent use; calls into the interpreter are
// serialized.
type LuaUnit struct {
	id     uint64
	name   dice.Name
	source string
	limit  int
	logger *zap.Logger

	mu sync.Mutex
	L  *lua.LState
	fn *lua.LFunction
}

// NewLuaUnit compiles source into a unit with a fresh identity.
//
// Precondition: name must be a valid dice.Name; logger must be non-nil.
// Postcondition: Returns a ready unit, a name error, a Lua compile error, or
// ErrNoFormatFunc.
func NewLuaUnit(name, source string, limit int, logger *zap.Logger) (*LuaUnit, error) {
	n, err := dice.NewName(name)
	if err != nil {
		return nil, err
	}
	return RebuildLuaUnit(dice.NewUnitID(), n, source, limit, logger)
}

// RebuildLuaUnit recreates a persisted script unit with its original identity.
//
// Postcondition: Same as NewLuaUnit.
func RebuildLuaUnit(id uint64, name dice.Name, source string, limit int, logger *zap.Logger) (*LuaUnit, error) {
	L := NewSandboxedState()
	RegisterHelpers(L)

	release := Budget(L, limit)
	err := L.DoString(source)
	release()
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: compiling unit %q: %w", name, err)
	}

	fn, ok := L.GetGlobal("format").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("scripting: unit %q: %w", name, ErrNoFormatFunc)
	}

	return &LuaUnit{
		id:     id,
		name:   name,
		source: source,
		limit:  effectiveLimit(limit),
		logger: logger,
		L:      L,
		fn:     fn,
	}, nil
}

func (u *LuaUnit) ID() uint64 { return u.id }

func (u *LuaUnit) Name() string { return u.name.String() }

// Source returns the script the unit was compiled from.
func (u *LuaUnit) Source() string { return u.source }

// InstructionLimit returns the per-call opcode budget.
func (u *LuaUnit) InstructionLimit() int { return u.limit }

// Format calls the script's format function with total.
//
// Postcondition: Returns the script's string result, "" for nil, or the bare
// total if the script fails.
func (u *LuaUnit) Format(total int32) string {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.L == nil {
		u.logger.Warn("scripting: unit used after Close", zap.String("unit", u.name.String()))
		return strconv.Itoa(int(total))
	}
	release := Budget(u.L, u.limit)
	defer release()

	if err := u.L.CallByParam(lua.P{
		Fn:      u.fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(total)); err != nil {
		u.logger.Warn("scripting: Lua runtime error",
			zap.String("unit", u.name.String()),
			zap.Int32("total", total),
			zap.Error(err),
		)
		return strconv.Itoa(int(total))
	}

	ret := u.L.Get(-1)
	u.L.Pop(1)
	switch v := ret.(type) {
	case lua.LString:
		return string(v)
	case *lua.LNilType:
		return ""
	default:
		return v.String()
	}
}

// Close releases the interpreter. Later Format calls show the bare total.
func (u *LuaUnit) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.L != nil {
		u.L.Close()
		u.L, u.fn = nil, nil
	}
}
