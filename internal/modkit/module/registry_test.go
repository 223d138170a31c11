package module

import (
	"sort"
	"sync"
	"testing"

	kit "seedsearch/internal/platform/testkit"
)

type stubModule struct {
	name  string
	ports any
}

func (s stubModule) Ports() any   { return s.ports }
func (s stubModule) Name() string { return s.name }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("a", 1)
	r.RegisterModule(stubModule{name: "b", ports: "two"})

	if v, ok := PortsAs[int](r, "a"); !ok || v != 1 {
		t.Fatalf("PortsAs[int] = %v, %v", v, ok)
	}
	if _, ok := PortsAs[int](r, "b"); ok {
		t.Fatalf("wrong type should miss")
	}
	if _, ok := PortsAs[int](r, "missing"); ok {
		t.Fatalf("missing should miss")
	}
	names := r.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("Names = %v", names)
	}
}

func TestRegistry_Isolation(t *testing.T) {
	r1, r2 := NewRegistry(), NewRegistry()
	r1.Register("x", 1)
	if _, ok := PortsAs[int](r2, "x"); ok {
		t.Fatalf("registries must not share state")
	}
	var zero Registry
	zero.Register("y", 2)
	if v, ok := PortsAs[int](&zero, "y"); !ok || v != 2 {
		t.Fatalf("zero-value registry should work")
	}
	var nilReg *Registry
	if _, ok := PortsAs[int](nilReg, "y"); ok {
		t.Fatalf("nil registry should miss")
	}
}

func TestRegistry_MustPortsAsPanics(t *testing.T) {
	r := NewRegistry()
	r.Register("s", "str")
	kit.MustPanic(t, func() { _ = MustPortsAs[int](r, "nope") })
	kit.MustPanic(t, func() { _ = MustPortsAs[int](r, "s") })
	kit.MustNotPanic(t, func() { _ = MustPortsAs[string](r, "s") })
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); r.Register("k", i) }()
		go func() { defer wg.Done(); _, _ = PortsAs[int](r, "k") }()
	}
	wg.Wait()
}
