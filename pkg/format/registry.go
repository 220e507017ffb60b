package format

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Driver)
	extIndex   = make(map[string]string)
)

// Register adds a driver to the registry, claiming its extensions.
// Called by format implementations in their init() functions.
func Register(d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
	for _, ext := range d.Extensions() {
		extIndex[strings.ToLower(ext)] = d.Name()
	}
}

// ForName retrieves a driver by name.
func ForName(name string) (Driver, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}

// ForPath resolves the driver claiming the path's extension.
// Returns UnknownFormatError when no registered driver does.
func ForPath(path string) (Driver, error) {
	ext := strings.ToLower(filepath.Ext(path))

	registryMu.RLock()
	defer registryMu.RUnlock()
	name, ok := extIndex[ext]
	if !ok {
		return nil, &UnknownFormatError{Ext: ext, Available: listLocked()}
	}
	return registry[name], nil
}

// List returns all registered driver names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return listLocked()
}

func listLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extensions returns all claimed extensions (sorted).
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	exts := make([]string, 0, len(extIndex))
	for ext := range extIndex {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsRegistered checks if a driver name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
