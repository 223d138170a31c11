// Package module holds the port registry modules publish into while main
// builds them in dependency order
package module

// Module is what the registry needs from a module. It mirrors modkit.Module
// so this package does not import its parent
type Module interface {
	Ports() any
	Name() string
}
