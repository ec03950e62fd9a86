package parts

import (
	"context"
	"fmt"
	"sync"
)

// Catalog holds the components loaded from a library directory and serves
// compatibility queries. Reload swaps the whole set atomically.
type Catalog struct {
	mu         sync.RWMutex
	loader     *Loader
	dir        string
	components []*Component
	byName     map[string]*Component
	stats      LoadStats
}

// NewCatalog creates an empty catalog backed by dir.
func NewCatalog(loader *Loader, dir string) *Catalog {
	return &Catalog{
		loader: loader,
		dir:    dir,
		byName: make(map[string]*Component),
	}
}

// Load reads every datasheet in the library directory.
func (c *Catalog) Load(ctx context.Context) error {
	comps, stats, err := c.loader.LoadDir(ctx, c.dir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	byName := make(map[string]*Component, len(comps))
	for _, comp := range comps {
		// Same base name in two subdirectories: first in path order wins.
		key := NormalizeName(comp.Name())
		if _, exists := byName[key]; !exists {
			byName[key] = comp
		}
	}

	c.mu.Lock()
	c.components = comps
	c.byName = byName
	c.stats = stats
	c.mu.Unlock()
	return nil
}

// Reload re-reads the library directory (hot reload).
func (c *Catalog) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Components returns the loaded components in load order.
func (c *Catalog) Components() []*Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Component, len(c.components))
	copy(out, c.components)
	return out
}

// Get looks a component up by name, ignoring case and accents.
func (c *Catalog) Get(name string) (*Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.byName[NormalizeName(name)]
	return comp, ok
}

// Compatible returns the names of components that work at q.
func (c *Catalog) Compatible(q Query) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FindCompatible(c.components, q)
}

// Count returns the number of loaded components.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.components)
}

// Stats returns the statistics of the last load.
func (c *Catalog) Stats() LoadStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Dir returns the library directory.
func (c *Catalog) Dir() string { return c.dir }
