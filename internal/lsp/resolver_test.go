package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/rename"
)

var (
	_ Renamer = (*Client)(nil)
	_ Syncer  = (*Client)(nil)
)

type renamerFunc func() (*WorkspaceEdit, error)

func (f renamerFunc) Rename(context.Context, *buffer.Buffer, buffer.Point, string) (*WorkspaceEdit, error) {
	return f()
}

type docSource map[string]*buffer.Buffer

func (d docSource) Buffers(_ context.Context, paths []string) ([]*buffer.Buffer, error) {
	out := make([]*buffer.Buffer, len(paths))
	for i, p := range paths {
		b, ok := d[p]
		if !ok {
			return nil, fmt.Errorf("open %s: not found", p)
		}
		out[i] = b
	}
	return out, nil
}

func TestResolver_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		edit       *WorkspaceEdit
		err        error
		wantReason string
		wantErr    bool
	}{
		{
			name:       "null result",
			wantReason: NoResultMessage,
		},
		{
			name:       "request failed",
			err:        &RPCError{Code: CodeRequestFailed, Message: "cannot rename a builtin"},
			wantReason: "cannot rename a builtin",
		},
		{
			name:    "other rpc error",
			err:     &RPCError{Code: CodeInternalError, Message: "panic"},
			wantErr: true,
		},
		{
			name:    "transport error",
			err:     ErrServerCrashed,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(renamerFunc(func() (*WorkspaceEdit, error) { return tt.edit, tt.err }), nil)

			res, err := r.Resolve(context.Background(), buffer.New("x"), buffer.Point{}, "y")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve() = %+v, want error", res)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !res.IsRejected() || res.Reason() != tt.wantReason {
				t.Errorf("Resolve() rejected = %v, reason %q; want %q", res.IsRejected(), res.Reason(), tt.wantReason)
			}
		})
	}
}

func TestResolver_Changes(t *testing.T) {
	buf := buffer.New("a := \"\U0001F600\"\nprint(a, \"\U0001F600\", a)", buffer.WithPath("/tmp/project/main.go"))
	uri := FilePathToURI(buf.Path())

	r := NewResolver(renamerFunc(func() (*WorkspaceEdit, error) {
		return &WorkspaceEdit{Changes: map[DocumentURI][]TextEdit{
			uri: {
				{Range: Range{Start: Position{0, 0}, End: Position{0, 1}}, NewText: "count"},
				{Range: Range{Start: Position{1, 6}, End: Position{1, 7}}, NewText: "count"},
				{Range: Range{Start: Position{1, 15}, End: Position{1, 16}}, NewText: "count"},
			},
		}}, nil
	}), nil)

	res, err := r.Resolve(context.Background(), buf, buffer.Point{}, "count")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := bulkedit.WorkspaceEdit{Documents: []bulkedit.DocumentEdit{{
		Path: buf.Path(),
		Edits: []buffer.Edit{
			buffer.NewEdit(buffer.LineRange(0, 0, 1), "count"),
			buffer.NewEdit(buffer.LineRange(1, 6, 7), "count"),
			buffer.NewEdit(buffer.LineRange(1, 17, 18), "count"),
		},
	}}}
	if diff := cmp.Diff(want, res.WorkspaceEdit()); diff != "" {
		t.Errorf("WorkspaceEdit mismatch (-want +got):\n%s", diff)
	}

	if _, err := buf.Apply(res.WorkspaceEdit().Documents[0].Edits); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := buf.Text(); got != "count := \"\U0001F600\"\nprint(count, \"\U0001F600\", count)" {
		t.Errorf("Text() = %q", got)
	}
}

func TestResolver_DocumentChanges(t *testing.T) {
	main := buffer.New("use(é, fooBar)", buffer.WithPath("/tmp/project/main.go"))
	other := buffer.New("var fooBar = 1", buffer.WithPath("/tmp/project/other.go"))

	version := 3
	raw := func(v any) json.RawMessage {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	r := NewResolver(renamerFunc(func() (*WorkspaceEdit, error) {
		return &WorkspaceEdit{DocumentChanges: []json.RawMessage{
			raw(TextDocumentEdit{
				TextDocument: OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: TextDocumentIdentifier{URI: FilePathToURI(main.Path())},
					Version:                &version,
				},
				Edits: []TextEdit{{Range: Range{Start: Position{0, 7}, End: Position{0, 13}}, NewText: "baz"}},
			}),
			raw(TextDocumentEdit{
				TextDocument: OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: TextDocumentIdentifier{URI: FilePathToURI(other.Path())},
				},
				Edits: []TextEdit{{Range: Range{Start: Position{0, 4}, End: Position{0, 10}}, NewText: "baz"}},
			}),
		}}, nil
	}), docSource{other.Path(): other})

	res, err := r.Resolve(context.Background(), main, buffer.Point{}, "baz")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := bulkedit.WorkspaceEdit{Documents: []bulkedit.DocumentEdit{
		{Path: main.Path(), Edits: []buffer.Edit{buffer.NewEdit(buffer.LineRange(0, 8, 14), "baz")}},
		{Path: other.Path(), Edits: []buffer.Edit{buffer.NewEdit(buffer.LineRange(0, 4, 10), "baz")}},
	}}
	if diff := cmp.Diff(want, res.WorkspaceEdit()); diff != "" {
		t.Errorf("WorkspaceEdit mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_ResourceOperation(t *testing.T) {
	r := NewResolver(renamerFunc(func() (*WorkspaceEdit, error) {
		return &WorkspaceEdit{DocumentChanges: []json.RawMessage{
			json.RawMessage(`{"kind":"rename","oldUri":"file:///a.go","newUri":"file:///b.go"}`),
		}}, nil
	}), nil)

	_, err := r.Resolve(context.Background(), buffer.New("x"), buffer.Point{}, "y")
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("Resolve() error = %v, want ErrNotSupported", err)
	}
}

func TestResolver_RegistryIntegration(t *testing.T) {
	reg := rename.NewRegistry()
	reg.Register("go", NewResolver(renamerFunc(func() (*WorkspaceEdit, error) { return nil, nil }), nil))

	res, err := reg.Resolve(context.Background(), buffer.New("x", buffer.WithLanguage("go")), buffer.Point{}, "y")
	if err != nil || res.Reason() != NoResultMessage {
		t.Errorf("Resolve() = %q, %v", res.Reason(), err)
	}
}

type syncingRenamer struct {
	calls []string
}

func (s *syncingRenamer) Sync(_ context.Context, buf *buffer.Buffer) error {
	s.calls = append(s.calls, "sync "+buf.Path()+" "+buf.Text())
	return nil
}

func (s *syncingRenamer) Rename(_ context.Context, buf *buffer.Buffer, _ buffer.Point, _ string) (*WorkspaceEdit, error) {
	s.calls = append(s.calls, "rename "+buf.Path())
	return nil, nil
}

type modifiedDocs struct {
	docSource
	modified []string
}

func (m *modifiedDocs) Modified() []string {
	return m.modified
}

func TestResolver_SyncsModifiedDocuments(t *testing.T) {
	main := buffer.New("use(fooBar)", buffer.WithPath("/tmp/project/main.go"))
	other := buffer.New("var fooBar = 1", buffer.WithPath("/tmp/project/other.go"))
	// Changed in memory by an earlier rename, not saved
	other.Reload("var fooBar = 2")

	client := &syncingRenamer{}
	docs := &modifiedDocs{
		docSource: docSource{main.Path(): main, other.Path(): other},
		modified:  []string{main.Path(), other.Path()},
	}
	r := NewResolver(client, docs)

	if _, err := r.Resolve(context.Background(), main, buffer.Point{}, "baz"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []string{
		"sync /tmp/project/other.go var fooBar = 2",
		"rename /tmp/project/main.go",
	}
	if diff := cmp.Diff(want, client.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	// Saved since, but the server still holds the copy sent above
	docs.modified = nil
	other.Reload("var fooBar = 3")
	client.calls = nil

	if _, err := r.Resolve(context.Background(), main, buffer.Point{}, "baz"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want = []string{
		"sync /tmp/project/other.go var fooBar = 3",
		"rename /tmp/project/main.go",
	}
	if diff := cmp.Diff(want, client.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}
