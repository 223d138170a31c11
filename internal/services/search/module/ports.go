package module

import (
	dom "seedsearch/internal/services/search/domain"
	"seedsearch/internal/services/search/service"
)

// Ports is the public surface of the search module
type Ports struct {
	Manager  *service.Manager
	Quick    dom.QuickSearcher
	Reserver dom.Reserver
}
