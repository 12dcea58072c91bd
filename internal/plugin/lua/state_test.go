package lua

import (
	"context"
	"errors"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestState_CallFunc(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`function add(a, b) return a + b, "sum" end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	results, err := s.CallFunc(context.Background(), s.GetGlobal("add"), 2, glua.LNumber(2), glua.LNumber(3))
	if err != nil {
		t.Fatalf("CallFunc() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0] != glua.LNumber(5) || results[1] != glua.LString("sum") {
		t.Errorf("CallFunc() = %v, want [5 sum]", results)
	}
	if top := s.L.GetTop(); top != 0 {
		t.Errorf("stack top = %d, want 0", top)
	}
}

func TestState_RegisterModule(t *testing.T) {
	s := NewState()
	defer s.Close()

	var got string
	s.RegisterModule("host", map[string]glua.LGFunction{
		"notify": func(L *glua.LState) int {
			got = L.CheckString(1)
			return 0
		},
	})

	if err := s.DoString(`host.notify("hello")`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("notify received %q, want %q", got, "hello")
	}
}

func TestState_Closed(t *testing.T) {
	s := NewState()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := s.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want %v", err, ErrStateClosed)
	}
	if v := s.GetGlobal("print"); v != glua.LNil {
		t.Errorf("GetGlobal() = %v, want nil", v)
	}
}
