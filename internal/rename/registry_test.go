package rename

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	called := ""
	resolverFor := func(lang string) Resolver {
		return ResolverFunc(func(context.Context, *buffer.Buffer, buffer.Point, string) (Resolution, error) {
			called = lang
			return Rejected(lang), nil
		})
	}
	reg.Register("go", resolverFor("go"))
	reg.Register("lua", resolverFor("lua"))

	if diff := cmp.Diff([]string{"go", "lua"}, reg.Languages()); diff != "" {
		t.Errorf("Languages() mismatch (-want +got):\n%s", diff)
	}

	res, err := reg.Resolve(context.Background(), buffer.New("x", buffer.WithLanguage("lua")), buffer.Point{}, "y")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if called != "lua" || res.Reason() != "lua" {
		t.Errorf("Resolve() used %q resolver", called)
	}

	_, err = reg.Resolve(context.Background(), buffer.New("x", buffer.WithLanguage("rust")), buffer.Point{}, "y")
	if !errors.Is(err, ErrNoResolver) {
		t.Errorf("Resolve(rust) error = %v, want ErrNoResolver", err)
	}

	reg.Unregister("go")
	if reg.Has("go") || !reg.Has("lua") {
		t.Error("Unregister(go) removed the wrong resolver")
	}
}

func TestResolution(t *testing.T) {
	r := Rejected("No result.")
	if !r.IsRejected() || r.Reason() != "No result." {
		t.Errorf("Rejected() = %v, %q", r.IsRejected(), r.Reason())
	}
	if !r.WorkspaceEdit().IsEmpty() {
		t.Error("rejection carries edits")
	}

	var zero Resolution
	if zero.IsRejected() {
		t.Error("zero Resolution is rejected")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusNoWord, "no-word"},
		{StatusCancelled, "cancelled"},
		{StatusRejected, "rejected"},
		{StatusCommitted, "committed"},
		{StatusFailed, "failed"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
