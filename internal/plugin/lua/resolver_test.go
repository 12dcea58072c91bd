package lua

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/rename"
)

const mainSource = "package main\n\nfunc main() {\n\tfoo := 1\n\tprintln(foo)\n}\n"

const occurrencesScript = `
function rename(ctx)
  local edits = {}
  for _, o in ipairs(ctx.occurrences) do
    edits[#edits + 1] = {line = o.line, col = o.col, end_col = o.end_col, text = ctx.new_name}
  end
  return edits
end
`

func newBuffer() *buffer.Buffer {
	return buffer.New(mainSource, buffer.WithPath("/tmp/renamekit/main.go"), buffer.WithLanguage("go"))
}

func mustResolver(t *testing.T, code string, opts ...StateOption) *Resolver {
	t.Helper()
	r, err := NewResolverFromSource("test.lua", code, opts...)
	if err != nil {
		t.Fatalf("NewResolverFromSource() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestResolver_Occurrences(t *testing.T) {
	r := mustResolver(t, occurrencesScript)

	res, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.IsRejected() {
		t.Fatalf("Resolve() rejected: %q", res.Reason())
	}

	want := bulkedit.WorkspaceEdit{Documents: []bulkedit.DocumentEdit{{
		Path: "/tmp/renamekit/main.go",
		Edits: []buffer.Edit{
			buffer.NewEdit(buffer.LineRange(3, 1, 4), "bar"),
			buffer.NewEdit(buffer.LineRange(4, 9, 12), "bar"),
		},
	}}}
	if diff := cmp.Diff(want, res.WorkspaceEdit()); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_Context(t *testing.T) {
	r := mustResolver(t, `
function rename(ctx)
  return nil, ctx.path .. "|" .. ctx.language .. "|" .. ctx.line .. ":" .. ctx.col ..
    "|" .. ctx.word .. "|" .. ctx.new_name .. "|" .. #ctx.occurrences .. "|" .. #ctx.text
end
`)

	res, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := "/tmp/renamekit/main.go|go|4:3|foo|bar|2|" + strconv.Itoa(len(mainSource))
	if res.Reason() != want {
		t.Errorf("Reason() = %q, want %q", res.Reason(), want)
	}
}

func TestResolver_Results(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		wantReason string
		wantErr    string
	}{
		{
			name:       "reason",
			script:     `function rename(ctx) return nil, "not a symbol" end`,
			wantReason: "not a symbol",
		},
		{
			name:       "bare nil",
			script:     `function rename(ctx) return nil end`,
			wantReason: NoResultMessage,
		},
		{
			name:       "no return",
			script:     `function rename(ctx) end`,
			wantReason: NoResultMessage,
		},
		{
			name:    "lua error",
			script:  `function rename(ctx) error("boom") end`,
			wantErr: "boom",
		},
		{
			name:    "wrong type",
			script:  `function rename(ctx) return 42 end`,
			wantErr: "rename returned number",
		},
		{
			name:    "missing text",
			script:  `function rename(ctx) return {{line = 1, col = 1}} end`,
			wantErr: "edit 1: text must be a string",
		},
		{
			name:    "missing line",
			script:  `function rename(ctx) return {{col = 1, text = "x"}} end`,
			wantErr: "edit 1: missing line",
		},
		{
			name:    "zero column",
			script:  `function rename(ctx) return {{line = 1, col = 0, text = "x"}} end`,
			wantErr: "edit 1: col must be a positive integer",
		},
		{
			name:    "fractional line",
			script:  `function rename(ctx) return {{line = 1.5, col = 1, text = "x"}} end`,
			wantErr: "edit 1: line must be a positive integer",
		},
		{
			name:    "item not a table",
			script:  `function rename(ctx) return {"x"} end`,
			wantErr: "edit 1: not a table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustResolver(t, tt.script)
			res, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want containing %q", err, tt.wantErr)
				}
				var scriptErr *ScriptError
				if !errors.As(err, &scriptErr) || scriptErr.Script != "test.lua" {
					t.Errorf("Resolve() error = %T, want *ScriptError for test.lua", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !res.IsRejected() || res.Reason() != tt.wantReason {
				t.Errorf("Resolve() = rejected %v %q, want %q", res.IsRejected(), res.Reason(), tt.wantReason)
			}
		})
	}
}

func TestResolver_OtherDocuments(t *testing.T) {
	r := mustResolver(t, `
function rename(ctx)
  return {
    {path = "util.go", line = 2, col = 6, end_col = 9, text = ctx.new_name},
    {line = 4, col = 2, end_line = 4, end_col = 5, text = ctx.new_name},
    {path = "/abs/other.go", line = 1, col = 1, text = "// renamed\n"},
    {path = "util.go", line = 3, col = 1, end_col = 4, text = ctx.new_name},
  }
end
`)

	res, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := bulkedit.WorkspaceEdit{Documents: []bulkedit.DocumentEdit{
		{
			Path: filepath.Join("/tmp/renamekit", "util.go"),
			Edits: []buffer.Edit{
				buffer.NewEdit(buffer.LineRange(1, 5, 8), "bar"),
				buffer.NewEdit(buffer.LineRange(2, 0, 3), "bar"),
			},
		},
		{
			Path:  "/tmp/renamekit/main.go",
			Edits: []buffer.Edit{buffer.NewEdit(buffer.LineRange(3, 1, 4), "bar")},
		},
		{
			Path:  "/abs/other.go",
			Edits: []buffer.Edit{buffer.NewInsert(buffer.Point{}, "// renamed\n")},
		},
	}}
	if diff := cmp.Diff(want, res.WorkspaceEdit()); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_NoWord(t *testing.T) {
	r := mustResolver(t, `
function rename(ctx)
  return nil, tostring(ctx.word) .. " " .. #ctx.occurrences
end
`)

	// Blank line
	res, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 1, Column: 0}, "bar")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Reason() != "nil 0" {
		t.Errorf("Reason() = %q, want %q", res.Reason(), "nil 0")
	}
}

func TestNewResolver_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   error
	}{
		{name: "missing function", script: `x = 1`, want: ErrNoRenameFunc},
		{name: "not a function", script: `rename = "x"`, want: ErrNoRenameFunc},
		{name: "syntax error", script: `function rename(`},
		{name: "runtime error", script: `error("load failed")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolverFromSource("bad.lua", tt.script)
			if err == nil {
				t.Fatal("NewResolverFromSource() error = nil")
			}
			var scriptErr *ScriptError
			if !errors.As(err, &scriptErr) {
				t.Errorf("NewResolverFromSource() error = %T, want *ScriptError", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("NewResolverFromSource() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewResolver_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rename.lua")
	if err := os.WriteFile(path, []byte(occurrencesScript), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewResolver(path)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	defer r.Close()

	if r.Name() != path {
		t.Errorf("Name() = %q, want %q", r.Name(), path)
	}
	res, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 4, Column: 10}, "bar")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := res.WorkspaceEdit().EditCount(); got != 2 {
		t.Errorf("EditCount() = %d, want 2", got)
	}

	if _, err := NewResolver(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("NewResolver(missing) error = nil")
	}
}

func TestResolver_Sandbox(t *testing.T) {
	r := mustResolver(t, `
function rename(ctx)
  return nil, table.concat({
    tostring(os), tostring(io), tostring(debug), tostring(package),
    tostring(require), tostring(load), tostring(loadstring),
    tostring(dofile), tostring(loadfile),
  }, ",")
end
`)

	res, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := "nil,nil,nil,nil,nil,nil,nil,nil,nil"
	if res.Reason() != want {
		t.Errorf("Reason() = %q, want %q", res.Reason(), want)
	}
}

func TestResolver_Print(t *testing.T) {
	var lines []string
	r := mustResolver(t, `
print("loaded")
function rename(ctx)
  print("renaming", ctx.word, 2)
  return nil
end
`, WithPrint(func(s string) { lines = append(lines, s) }))

	if _, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []string{"loaded", "renaming\tfoo\t2"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("print mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_Timeout(t *testing.T) {
	r := mustResolver(t, `function rename(ctx) while true do end end`, WithExecutionTimeout(50*time.Millisecond))

	_, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrExecutionTimeout)
	}

	// The state stays usable
	if _, err := r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar"); !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("second Resolve() error = %v, want %v", err, ErrExecutionTimeout)
	}
}

func TestResolver_Cancelled(t *testing.T) {
	r := mustResolver(t, `function rename(ctx) while true do end end`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := r.Resolve(ctx, newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want %v", err, context.Canceled)
	}
}

func TestResolver_Closed(t *testing.T) {
	r, err := NewResolverFromSource("test.lua", occurrencesScript)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err = r.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if !errors.Is(err, ErrStateClosed) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrStateClosed)
	}
}

func TestResolver_Registry(t *testing.T) {
	reg := rename.NewRegistry()
	reg.Register("go", mustResolver(t, occurrencesScript))

	res, err := reg.Resolve(context.Background(), newBuffer(), buffer.Point{Line: 3, Column: 2}, "bar")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := res.WorkspaceEdit().EditCount(); got != 2 {
		t.Errorf("EditCount() = %d, want 2", got)
	}
}
