package module

import (
	"seedsearch/internal/services/profile/domain"
	"seedsearch/internal/services/profile/service"
)

// Ports is the public surface of the profile module
type Ports struct {
	State       domain.StatePort
	Persistence *service.Persistence
}
