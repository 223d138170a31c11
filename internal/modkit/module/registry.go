package module

import "sync"

// Registry holds port sets by module name for cross wiring during bootstrap
// main owns one and passes it through Deps; there is no package-level instance
type Registry struct {
	mu  sync.RWMutex
	reg map[string]any
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry { return &Registry{reg: map[string]any{}} }

// Register stores a port set for a module name, replacing any previous value
func (r *Registry) Register(name string, ports any) {
	r.mu.Lock()
	if r.reg == nil {
		r.reg = map[string]any{}
	}
	r.reg[name] = ports
	r.mu.Unlock()
}

// RegisterModule stores m's ports under m's name
func (r *Registry) RegisterModule(m Module) { r.Register(m.Name(), m.Ports()) }

// Names lists registered module names in no particular order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.reg))
	for k := range r.reg {
		out = append(out, k)
	}
	return out
}

func (r *Registry) get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.reg[name]
	return v, ok
}

// PortsAs fetches and type asserts a port set for name
func PortsAs[T any](r *Registry, name string) (T, bool) {
	v, ok := r.get(name)
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// MustPortsAs panics when the port set is missing or of another type
func MustPortsAs[T any](r *Registry, name string) T {
	v, ok := PortsAs[T](r, name)
	if !ok {
		panic("module: ports for " + name + " not registered")
	}
	return v
}
