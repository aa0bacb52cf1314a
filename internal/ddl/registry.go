package ddl

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
)

// Register adds a dialect to the global registry under its key. Called by
// dialect packages in their init() functions.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[d.Key()] = d
}

// Get returns a dialect by key or display name, ignoring case.
func Get(name string) (*Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	key := strings.ToLower(strings.TrimSpace(name))
	if d, ok := dialects[key]; ok {
		return d, true
	}
	for _, d := range dialects {
		if strings.EqualFold(d.Name(), key) {
			return d, true
		}
	}
	return nil, false
}

// MustGet is Get for callers that have already validated the name.
func MustGet(name string) *Dialect {
	d, ok := Get(name)
	if !ok {
		panic(fmt.Sprintf("ddl: dialect %q is not registered", name))
	}
	return d
}

// List returns all registered dialect keys (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	keys := make([]string, 0, len(dialects))
	for key := range dialects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
