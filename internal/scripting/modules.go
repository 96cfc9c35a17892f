package scripting

import lua "github.com/yuin/gopher-lua"

// RegisterHelpers installs the udice helper table into L:
//
//	udice.abs(n)               absolute value
//	udice.sign(n)              -1, 0 or 1
//	udice.plural(n, one, many) one when |n| == 1, many otherwise
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: udice global is defined in L.
func RegisterHelpers(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "abs", L.NewFunction(luaAbs))
	L.SetField(mod, "sign", L.NewFunction(luaSign))
	L.SetField(mod, "plural", L.NewFunction(luaPlural))
	L.SetGlobal("udice", mod)
}

func luaAbs(L *lua.LState) int {
	n := L.CheckNumber(1)
	if n < 0 {
		n = -n
	}
	L.Push(n)
	return 1
}

func luaSign(L *lua.LState) int {
	n := L.CheckNumber(1)
	switch {
	case n < 0:
		L.Push(lua.LNumber(-1))
	case n > 0:
		L.Push(lua.LNumber(1))
	default:
		L.Push(lua.LNumber(0))
	}
	return 1
}

func luaPlural(L *lua.LState) int {
	n := L.CheckNumber(1)
	one := L.CheckString(2)
	many := L.CheckString(3)
	if n == 1 || n == -1 {
		L.Push(lua.LString(one))
	} else {
		L.Push(lua.LString(many))
	}
	return 1
}
