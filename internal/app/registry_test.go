package app

import (
	"testing"

	"github.com/dkeye/Rendezvous/internal/core"
)

type stubConn struct{ id core.ConnID }

func (s stubConn) ID() core.ConnID          { return s.id }
func (s stubConn) TrySend(core.Frame) error { return nil }
func (s stubConn) Close()                   {}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	canceled := 0
	r.Bind(stubConn{"a"}, func() { canceled++ })
	r.Bind(stubConn{"b"}, nil)

	if _, ok := r.Get("a"); !ok {
		t.Fatalf("Get(a) missing")
	}
	if others := r.Others("a"); len(others) != 1 || others[0].ID() != "b" {
		t.Fatalf("Others(a)=%v", others)
	}
	if r.Count() != 2 || len(r.All()) != 2 {
		t.Fatalf("Count=%d All=%d, want 2", r.Count(), len(r.All()))
	}
	if !r.Cancel("a") || canceled != 1 {
		t.Fatalf("Cancel(a) did not run cancel func")
	}
	if r.Cancel("zzz") {
		t.Fatalf("Cancel on unknown id reported success")
	}
	r.CancelAll()
	if canceled != 2 {
		t.Fatalf("canceled=%d, want 2", canceled)
	}
	if !r.Unbind("a") || r.Unbind("a") {
		t.Fatalf("Unbind not idempotent")
	}
}

func TestPolicyFor(t *testing.T) {
	for name, want := range map[string]BackpressureAction{"": DropFrame, "drop": DropFrame, "kick": KickConn} {
		p, err := PolicyFor(name)
		if err != nil {
			t.Fatalf("PolicyFor(%q): %v", name, err)
		}
		if got := p.OnBackPressure("a", "offer"); got != want {
			t.Fatalf("PolicyFor(%q) action=%v, want %v", name, got, want)
		}
	}
	if _, err := PolicyFor("explode"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
