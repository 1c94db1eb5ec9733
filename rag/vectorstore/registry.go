package vectorstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lookatitude/beluga-ai/config"
)

// Factory constructs a VectorStore from provider configuration. Providers
// register a Factory under a name via Register, typically from an init()
// in their own package.
type Factory func(cfg config.ProviderConfig) (VectorStore, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a provider factory available under name. Registering the
// same name twice overwrites the earlier factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// New constructs a VectorStore using the factory registered under name.
func New(name string, cfg config.ProviderConfig) (VectorStore, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("vectorstore: unknown provider %q", name)
	}
	return f(cfg)
}

// List returns the names of all registered providers, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
