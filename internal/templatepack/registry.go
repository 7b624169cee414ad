package templatepack

import (
	"fmt"
	"log"
	"sort"
)

// Registry holds discovered template packs in memory, indexed by pack name.
type Registry struct {
	packs map[string]*PackMetadata
}

// NewRegistry creates a new empty pack registry.
func NewRegistry() *Registry {
	return &Registry{
		packs: make(map[string]*PackMetadata),
	}
}

// Register adds a pack to the registry.
// Returns an error if a pack with the same name is already registered.
func (r *Registry) Register(meta *PackMetadata) error {
	if _, exists := r.packs[meta.Name]; exists {
		return fmt.Errorf("pack already registered: %s", meta.Name)
	}
	r.packs[meta.Name] = meta
	return nil
}

// Get retrieves a pack by name.
func (r *Registry) Get(name string) (*PackMetadata, bool) {
	meta, ok := r.packs[name]
	return meta, ok
}

// List returns all registered packs as a slice, sorted by name for
// deterministic ordering.
func (r *Registry) List() []*PackMetadata {
	packs := make([]*PackMetadata, 0, len(r.packs))
	for _, meta := range r.packs {
		packs = append(packs, meta)
	}

	sort.Slice(packs, func(i, j int) bool {
		return packs[i].Name < packs[j].Name
	})

	return packs
}

// Count returns the number of registered packs.
func (r *Registry) Count() int {
	return len(r.packs)
}

// LoadRegistry discovers packs from the specified directory and registers
// them in a new Registry.
//
// Duplicate pack names are logged and skipped. An empty registry is not an
// error (no packs found is valid).
func LoadRegistry(packDir string) (*Registry, error) {
	discovered, err := DiscoverPacks(packDir)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, meta := range discovered {
		if err := registry.Register(meta); err != nil {
			log.Printf("Warning: duplicate pack name, skipping %s: %v", meta.Name, err)
			continue
		}
	}

	return registry, nil
}
