package module

import dom "seedsearch/internal/services/filters/domain"

// Ports holds the ports exposed by the filters module
type Ports struct {
	Store dom.StorePort
}
