package tui

import (
	"testing"

	"toolbar-cli/internal/reorder"

	"github.com/google/go-cmp/cmp"
)

func TestListSurface_BoundsAndHitRows(t *testing.T) {
	t.Parallel()

	l := &listSurface{ids: []string{"a", "b", "c"}, top: 3}
	if got, _ := l.bounds("b"); got != (reorder.Rect{Top: 5, Bottom: 7}) {
		t.Fatalf("bounds(b) = %+v", got)
	}

	tests := []struct {
		y    int
		want string
		ok   bool
	}{
		{y: 2},
		{y: 3, want: "a", ok: true},
		{y: 4, want: "a", ok: true},
		{y: 5, want: "b", ok: true},
		{y: 8, want: "c", ok: true},
		{y: 9},
	}
	for _, tt := range tests {
		got, ok := l.rowAt(tt.y)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("rowAt(%d) = %q, %v; want %q, %v", tt.y, got, ok, tt.want, tt.ok)
		}
	}

	l.scroll = 1
	if got, _ := l.bounds("a"); got != (reorder.Rect{Top: 1, Bottom: 3}) {
		t.Fatalf("scrolled bounds(a) = %+v", got)
	}
	if got, _ := l.rowAt(3); got != "b" {
		t.Fatalf("scrolled rowAt(3) = %q", got)
	}
}

func TestListSurface_LiftFloatSettle(t *testing.T) {
	t.Parallel()

	l := &listSurface{ids: []string{"a", "b", "c"}, top: 3}
	l.Lift("b", reorder.Rect{Top: 5, Bottom: 7}, 1)
	l.Float("b", 8)

	if diff := cmp.Diff([]string{"a", "", "c"}, l.rows()); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
	if got, _ := l.bounds("b"); got != (reorder.Rect{Top: 8, Bottom: 10}) {
		t.Fatalf("lifted bounds = %+v", got)
	}
	if _, ok := l.rowAt(5); ok {
		t.Fatalf("the placeholder is not a row")
	}

	l.MovePlaceholder(2)
	if diff := cmp.Diff([]string{"a", "c", ""}, l.rows()); diff != "" {
		t.Fatalf("rows after move (-want +got):\n%s", diff)
	}
	if got, _ := l.bounds("c"); got != (reorder.Rect{Top: 5, Bottom: 7}) {
		t.Fatalf("bounds(c) = %+v", got)
	}

	l.Settle("b", 2)
	if diff := cmp.Diff([]string{"a", "c", "b"}, l.ids); diff != "" {
		t.Fatalf("settled ids (-want +got):\n%s", diff)
	}
	if l.lifted != "" {
		t.Fatalf("settle should clear the lifted row")
	}
}
