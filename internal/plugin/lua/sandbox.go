package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are base functions that load code or modules.
var blockedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

// Sandbox restricts a Lua state to safe operations.
type Sandbox struct {
	L     *lua.LState
	print func(string)
}

// NewSandbox creates a sandbox for L. print receives the output of the Lua
// print function; nil discards it.
func NewSandbox(L *lua.LState, print func(string)) *Sandbox {
	return &Sandbox{L: L, print: print}
}

// Install opens the safe standard libraries and removes loaders.
func (s *Sandbox) Install() {
	// io, os, package and debug stay closed
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		s.L.Push(s.L.NewFunction(open))
		s.L.Call(0, 0)
	}

	for _, name := range blockedGlobals {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installPrint()
}

// installPrint replaces print so scripts never write to the terminal.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		if s.print != nil {
			s.print(strings.Join(parts, "\t"))
		}
		return 0
	}))
}
