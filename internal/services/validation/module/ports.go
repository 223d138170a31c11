package module

import "seedsearch/internal/services/validation/service"

// Ports is the public surface of the validation module
type Ports struct {
	Controller *service.Controller
}
