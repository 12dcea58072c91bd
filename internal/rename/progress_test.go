package rename

import (
	"testing"
	"time"
)

func TestShowWhile(t *testing.T) {
	t.Run("nil progress", func(t *testing.T) {
		if got := showWhile(nil, 0, "x", func() int { return 7 }); got != 7 {
			t.Errorf("showWhile() = %d, want 7", got)
		}
	})

	t.Run("fast", func(t *testing.T) {
		p := newFakeProgress()
		showWhile(p, time.Hour, "x", func() struct{} { return struct{}{} })
		if started, stops := p.counts(); started != 0 || stops != 0 {
			t.Errorf("progress started %d, stopped %d; want 0, 0", started, stops)
		}
	})

	t.Run("slow", func(t *testing.T) {
		p := newFakeProgress()
		got := showWhile(p, time.Millisecond, "working", func() string {
			<-p.startCh
			return "done"
		})
		if got != "done" {
			t.Errorf("showWhile() = %q", got)
		}
		if started, stops := p.counts(); started != 1 || stops != 1 {
			t.Errorf("progress started %d, stopped %d; want 1, 1", started, stops)
		}
	})
}
