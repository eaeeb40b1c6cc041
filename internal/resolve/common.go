package resolve

import (
	"sort"
	"strings"
	"sync"

	"github.com/refdoc-tools/refdoc/internal/schema"
)

// CommonPool accumulates reusable object definitions discovered during
// resolution, keyed by version-stripped reference. One pool serves a
// whole generation run: the same common object may be reached from many
// schemas and must be registered exactly once. Registration is guarded
// so that independent schemas can be resolved concurrently.
type CommonPool struct {
	mu      sync.Mutex
	entries map[string]*schema.Definition
}

// NewCommonPool returns an empty pool.
func NewCommonPool() *CommonPool {
	return &CommonPool{entries: make(map[string]*schema.Definition)}
}

// Register records def under key. The first registration wins;
// later ones for the same key are ignored.
func (p *CommonPool) Register(key string, def *schema.Definition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[key]; !ok {
		p.entries[key] = def
	}
}

// Get returns the definition registered under key, or nil.
func (p *CommonPool) Get(key string) *schema.Definition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries[key]
}

// Len returns the number of registered common objects.
func (p *CommonPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Entry pairs a pool key with its definition.
type Entry struct {
	Key string
	Def *schema.Definition
}

// Sorted returns the pool contents ordered by property name, latest
// version, and key, folding case.
func (p *CommonPool) Sorted() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entry, 0, len(p.entries))
	for key, def := range p.entries {
		out = append(out, Entry{Key: key, Def: def})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(sortKey(out[i])) < strings.ToLower(sortKey(out[j]))
	})
	return out
}

func sortKey(e Entry) string {
	return e.Def.PropName + " " + schema.RefVersion(e.Def.RefURI) + e.Key
}
