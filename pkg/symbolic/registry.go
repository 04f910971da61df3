package symbolic

import (
	"sort"
	"strings"
	"sync"
)

// Info describes a registered dialect independently of its native type.
type Info interface {
	GetName() string
	GetDescription() string
	FunctionNames() []string
}

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]Info)
)

// Register registers a dialect in the global registry.
// Called by dialect implementations in their init() functions.
func Register(d Info) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.GetName())] = d
}

// Get returns a dialect by name (case-insensitive).
func Get(name string) (Info, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Lookup returns a registered dialect with the concrete native type T.
// It reports false if no dialect has that name or its native type differs.
func Lookup[T any](name string) (*Dialect[T], bool) {
	info, ok := Get(name)
	if !ok {
		return nil, false
	}
	d, ok := info.(*Dialect[T])
	return d, ok
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
