package modkit

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

type stub struct{ ports any }

func (s *stub) Ports() any   { return s.ports }
func (s *stub) Name() string { return "stub" }

var _ Module = (*stub)(nil)

func TestDeps_ZeroValue_IsOK(t *testing.T) {
	t.Parallel()
	var d Deps
	if !d.ZeroOK() {
		t.Fatal("zero-value Deps should be safe in tests")
	}
	if d.Registerer() == nil {
		t.Fatal("zero Deps should still hand out a registerer")
	}
}

func TestDeps_RegistererPassthrough(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	d := Deps{Metrics: reg}
	if d.Registerer() != reg {
		t.Fatal("Registerer should return the injected registry")
	}
}
