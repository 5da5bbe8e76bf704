package platform

import (
	"fmt"
	"sort"
	"sync"
)

type Registry struct {
	mu          sync.RWMutex
	definitions map[Platform]Definition
}

func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[Platform]Definition),
	}
}

func (r *Registry) Register(d Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[d.ID]; exists {
		return fmt.Errorf("platform with ID '%s' already registered", d.ID)
	}
	if len(d.Markers) == 0 {
		return fmt.Errorf("platform '%s' has no base URL markers", d.ID)
	}
	r.definitions[d.ID] = d
	return nil
}

func (r *Registry) Get(id Platform) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.definitions[id]
	return d, ok
}

func (r *Registry) All() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds := make([]Definition, 0, len(r.definitions))
	for _, d := range r.definitions {
		ds = append(ds, d)
	}

	sort.Slice(ds, func(i, j int) bool {
		return ds[i].ID < ds[j].ID
	})

	return ds
}

func (r *Registry) byPrecedence() []Definition {
	ds := r.All()
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Precedence < ds[j].Precedence
	})
	return ds
}

// DisplayName returns the human name of a platform, falling back to its ID.
func DisplayName(p Platform) string {
	if d, ok := defaultRegistry.Get(p); ok {
		return d.DisplayName
	}
	return string(p)
}

var builtinDefinitions = []Definition{
	{ID: ZAI, DisplayName: "Z.ai", Markers: []string{"api.z.ai"}, Precedence: 0},
	{ID: ZHIPU, DisplayName: "智谱", Markers: []string{"open.bigmodel.cn", "dev.bigmodel.cn"}, Precedence: 1},
}

var defaultRegistry = mustRegistry(builtinDefinitions)

func mustRegistry(defs []Definition) *Registry {
	r := NewRegistry()
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("platform: %v", err))
		}
	}
	return r
}
