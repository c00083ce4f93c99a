package persona

import "sync"

// Catalog is the live persona set: the base contracts with the current
// workspace overrides applied. Safe for concurrent readers while the
// override watcher swaps in reloaded documents.
type Catalog struct {
	mu        sync.RWMutex
	contracts []Contract
}

// NewCatalog builds a catalog from the base contracts and optional initial
// overrides.
func NewCatalog(overrides *OverridesFile) *Catalog {
	return &Catalog{contracts: Apply(Contracts(), overrides)}
}

// All returns the current contracts.
func (c *Catalog) All() []Contract {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Contract, len(c.contracts))
	copy(out, c.contracts)
	return out
}

// Lookup returns the current contract for name, or nil if unknown or
// disabled by overrides.
func (c *Catalog) Lookup(name string) *Contract {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.contracts {
		if c.contracts[i].Name == name {
			ct := c.contracts[i]
			return &ct
		}
	}
	return nil
}

// SetOverrides replaces the active overrides, rebuilding from the base
// catalog. A nil document reverts to the base contracts.
func (c *Catalog) SetOverrides(f *OverridesFile) {
	merged := Apply(Contracts(), f)
	c.mu.Lock()
	c.contracts = merged
	c.mu.Unlock()
}
