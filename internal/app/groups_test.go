package app

import (
	"fmt"
	"slices"
	"testing"
)

func TestGroups(t *testing.T) {
	g := NewGroups()
	g.Subscribe("r1", "a")
	g.Subscribe("r1", "b")
	g.Subscribe("r1", "b")
	g.Subscribe("r2", "a")

	got := g.Members("r1", "a")
	if fmt.Sprint(got) != "[b]" {
		t.Fatalf("Members(r1, except a)=%v, want [b]", got)
	}
	all := g.Members("r1", "")
	slices.Sort(all)
	if fmt.Sprint(all) != "[a b]" {
		t.Fatalf("Members(r1)=%v, want [a b]", all)
	}

	g.Unsubscribe("r1", "b")
	if g.Subscribed("r1", "b") {
		t.Fatalf("b still subscribed")
	}
	g.Unsubscribe("missing", "b")

	left := g.UnsubscribeAll("a")
	slices.Sort(left)
	if fmt.Sprint(left) != "[r1 r2]" {
		t.Fatalf("UnsubscribeAll=%v, want [r1 r2]", left)
	}
	if n := len(g.Members("r1", "")); n != 0 {
		t.Fatalf("r1 members=%d, want 0", n)
	}
	if len(g.groups) != 0 {
		t.Fatalf("empty groups retained: %v", g.groups)
	}
}
