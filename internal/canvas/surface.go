// Package canvas applies computed layouts to a canvas surface with the
// minimal set of create, update and delete operations, preserving shape
// identity across recomputation.
package canvas

import (
	"sort"
	"sync"

	"github.com/alexjunanjing-2/openOii-doubao/internal/layout"
)

// KindConnector marks edge shapes on the surface.
const KindConnector = "connector"

// Shape is the unit the surface renders: a positioned block or an edge
// between two block keys.
type Shape struct {
	Key     string
	Kind    string
	X, Y    float64
	W, H    float64
	Payload layout.Payload
	From    string
	To      string
}

// Surface is the capability the reconciler programs against. Selection,
// zoom and input handling belong to the host surface, not here.
type Surface interface {
	Create(s Shape)
	Update(s Shape)
	Delete(key string)
	Keys() []string
}

// MemorySurface is a plain in-process Surface, used by tests and by the
// CLI scene dump.
type MemorySurface struct {
	mu     sync.Mutex
	shapes map[string]Shape
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{shapes: make(map[string]Shape)}
}

func (m *MemorySurface) Create(s Shape) {
	m.mu.Lock()
	m.shapes[s.Key] = s
	m.mu.Unlock()
}

func (m *MemorySurface) Update(s Shape) {
	m.mu.Lock()
	m.shapes[s.Key] = s
	m.mu.Unlock()
}

func (m *MemorySurface) Delete(key string) {
	m.mu.Lock()
	delete(m.shapes, key)
	m.mu.Unlock()
}

func (m *MemorySurface) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.shapes))
	for k := range m.shapes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns all shapes ordered by key.
func (m *MemorySurface) Snapshot() []Shape {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Shape, 0, len(m.shapes))
	for _, s := range m.shapes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
