package memory

import (
	"context"
	"sync"
)

// StaticNameResolver resolves student names from a fixed in-memory map.
type StaticNameResolver struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewStaticNameResolver(names map[string]string) *StaticNameResolver {
	if names == nil {
		names = make(map[string]string)
	}
	return &StaticNameResolver{names: names}
}

func (r *StaticNameResolver) ResolveNames(_ context.Context, studentIDs []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(studentIDs))
	for _, id := range studentIDs {
		if name, ok := r.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// SetName registers or updates a student's display name.
func (r *StaticNameResolver) SetName(studentID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[studentID] = name
}
