// Package providers holds the search provider adapters and the
// catalog that builds a provider registry from configuration. Each
// adapter translates one upstream API into raw hits; normalization,
// scoring and deduplication happen downstream.
package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

type Factory func(pc config.ProviderConfig, sc config.SearchConfig) (sourcing.Provider, error)

// Catalog maps provider type names to their factories.
type Catalog struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

func NewCatalog() *Catalog {
	c := &Catalog{
		factories: make(map[string]Factory),
	}

	c.Register("searchapi", NewSearchAPI)
	c.Register("serpapi", NewSerpAPI)
	c.Register("rainforest", NewRainforest)
	c.Register("ebay", NewEbay)
	c.Register("kroger", NewKroger)
	c.Register("google_cse", NewGoogleCSE)
	c.Register("ticketmaster", NewTicketmaster)
	c.Register("vendor_directory", NewVendorDirectory)
	c.Register("mock", NewMock)

	return c
}

func (c *Catalog) Register(providerType string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[providerType] = factory
}

func (c *Catalog) Create(pc config.ProviderConfig, sc config.SearchConfig) (sourcing.Provider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	factory, ok := c.factories[pc.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", pc.Type)
	}
	return factory(pc, sc)
}

func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	types := make([]string, 0, len(c.factories))
	for t := range c.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build constructs every enabled provider from the search config and
// registers them in priority order (lower first, name as tie-break).
// Registration order fixes merge precedence for duplicate results.
func Build(sc config.SearchConfig) (*sourcing.Registry, error) {
	catalog := NewCatalog()

	enabled := make([]config.ProviderConfig, 0, len(sc.Providers))
	for _, pc := range sc.Providers {
		if pc.Enabled {
			enabled = append(enabled, pc)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		if enabled[i].Priority != enabled[j].Priority {
			return enabled[i].Priority < enabled[j].Priority
		}
		return enabled[i].Name < enabled[j].Name
	})

	registry := sourcing.NewRegistry()
	for _, pc := range enabled {
		p, err := catalog.Create(pc, sc)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", pc.Name, err)
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
