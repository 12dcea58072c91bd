package lua

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/rename"
)

// RenameFunc is the global function a script must define.
const RenameFunc = "rename"

// NoResultMessage is the rejection reason when rename(ctx) returns nothing.
const NoResultMessage = "No result."

// Resolver resolves renames by calling a script's rename(ctx) function.
type Resolver struct {
	name  string
	state *State

	// mu serializes calls; tables passed to and from Lua belong to the state
	mu sync.Mutex
	fn lua.LValue
}

// NewResolver loads the script at path.
func NewResolver(path string, opts ...StateOption) (*Resolver, error) {
	return newResolver(path, func(s *State) error { return s.DoFile(path) }, opts)
}

// NewResolverFromSource loads a script from code. name identifies it in
// errors.
func NewResolverFromSource(name, code string, opts ...StateOption) (*Resolver, error) {
	return newResolver(name, func(s *State) error { return s.DoString(code) }, opts)
}

func newResolver(name string, load func(*State) error, opts []StateOption) (*Resolver, error) {
	state := NewState(opts...)
	if err := load(state); err != nil {
		_ = state.Close()
		return nil, &ScriptError{Script: name, Err: err}
	}

	fn := state.GetGlobal(RenameFunc)
	if fn.Type() != lua.LTFunction {
		_ = state.Close()
		return nil, &ScriptError{Script: name, Err: ErrNoRenameFunc}
	}
	return &Resolver{name: name, state: state, fn: fn}, nil
}

// Name returns the script name.
func (r *Resolver) Name() string {
	return r.name
}

// Close releases the script's state.
func (r *Resolver) Close() error {
	return r.state.Close()
}

// Resolve implements rename.Resolver.
func (r *Resolver) Resolve(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (rename.Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	arg := r.context(buf, pos, newName)
	results, err := r.state.CallFunc(ctx, r.fn, 2, arg)
	if err != nil {
		return rename.Resolution{}, &ScriptError{Script: r.name, Err: err}
	}

	edits, reason := results[0], results[1]
	switch v := edits.(type) {
	case *lua.LTable:
		we, err := toWorkspaceEdit(buf.Path(), v)
		if err != nil {
			return rename.Resolution{}, &ScriptError{Script: r.name, Err: err}
		}
		return rename.Edits(we), nil
	case *lua.LNilType:
		if s, ok := reason.(lua.LString); ok && s != "" {
			return rename.Rejected(string(s)), nil
		}
		return rename.Rejected(NoResultMessage), nil
	default:
		return rename.Resolution{}, &ScriptError{
			Script: r.name,
			Err:    fmt.Errorf("rename returned %s, want table or nil", edits.Type()),
		}
	}
}

// context builds the table passed to rename(ctx).
func (r *Resolver) context(buf *buffer.Buffer, pos buffer.Point, newName string) *lua.LTable {
	L := r.state.L
	t := L.NewTable()
	t.RawSetString("path", lua.LString(buf.Path()))
	t.RawSetString("language", lua.LString(buf.LanguageID()))
	t.RawSetString("line", lua.LNumber(pos.Line+1))
	t.RawSetString("col", lua.LNumber(pos.Column+1))
	t.RawSetString("new_name", lua.LString(newName))
	t.RawSetString("text", lua.LString(buf.Text()))

	occurrences := L.NewTable()
	if w, ok := buf.WordAt(pos); ok {
		t.RawSetString("word", lua.LString(w.Text))
		for _, o := range buf.FindWords(w.Text) {
			occurrences.Append(wordTable(L, o))
		}
	}
	t.RawSetString("occurrences", occurrences)
	return t
}

func wordTable(L *lua.LState, w buffer.Word) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("line", lua.LNumber(w.Line+1))
	t.RawSetString("col", lua.LNumber(w.StartColumn+1))
	t.RawSetString("end_col", lua.LNumber(w.EndColumn+1))
	return t
}

// toWorkspaceEdit converts a list of edit tables. Relative paths are
// resolved against the directory of path; a missing path means path.
func toWorkspaceEdit(path string, list *lua.LTable) (bulkedit.WorkspaceEdit, error) {
	var we bulkedit.WorkspaceEdit
	index := make(map[string]int)

	for i := 1; i <= list.Len(); i++ {
		item, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			return bulkedit.WorkspaceEdit{}, fmt.Errorf("edit %d: not a table", i)
		}

		target, edit, err := toEdit(path, item)
		if err != nil {
			return bulkedit.WorkspaceEdit{}, fmt.Errorf("edit %d: %w", i, err)
		}

		j, ok := index[target]
		if !ok {
			j = len(we.Documents)
			index[target] = j
			we.Documents = append(we.Documents, bulkedit.DocumentEdit{Path: target})
		}
		we.Documents[j].Edits = append(we.Documents[j].Edits, edit)
	}
	return we, nil
}

func toEdit(path string, t *lua.LTable) (string, buffer.Edit, error) {
	target := path
	if p, ok := t.RawGetString("path").(lua.LString); ok && p != "" {
		target = string(p)
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
	}

	line, err := intField(t, "line", 0)
	if err != nil {
		return "", buffer.Edit{}, err
	}
	col, err := intField(t, "col", 0)
	if err != nil {
		return "", buffer.Edit{}, err
	}
	endLine, err := intField(t, "end_line", line)
	if err != nil {
		return "", buffer.Edit{}, err
	}
	endCol, err := intField(t, "end_col", col)
	if err != nil {
		return "", buffer.Edit{}, err
	}

	text, ok := t.RawGetString("text").(lua.LString)
	if !ok {
		return "", buffer.Edit{}, fmt.Errorf("text must be a string")
	}

	r := buffer.NewRange(
		buffer.Point{Line: line - 1, Column: col - 1},
		buffer.Point{Line: endLine - 1, Column: endCol - 1},
	)
	return target, buffer.NewEdit(r, string(text)), nil
}

// intField reads a 1-based integer field. def is used when the field is
// nil; zero means the field is required.
func intField(t *lua.LTable, name string, def int) (int, error) {
	switch v := t.RawGetString(name).(type) {
	case lua.LNumber:
		n := int(v)
		if float64(n) != float64(v) || n < 1 {
			return 0, fmt.Errorf("%s must be a positive integer, got %v", name, v)
		}
		return n, nil
	case *lua.LNilType:
		if def == 0 {
			return 0, fmt.Errorf("missing %s", name)
		}
		return def, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %s", name, v.Type())
	}
}
