package layouts

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryLayoutRepository provides an in-memory implementation of
// LayoutRepository. Layouts are rediscovered from disk on every build, so no
// durable backend is needed.
type MemoryLayoutRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Layout
	byName map[string]uuid.UUID
}

// NewMemoryLayoutRepository constructs an empty memory-backed layout repository.
func NewMemoryLayoutRepository() *MemoryLayoutRepository {
	return &MemoryLayoutRepository{
		byID:   make(map[uuid.UUID]*Layout),
		byName: make(map[string]uuid.UUID),
	}
}

func (r *MemoryLayoutRepository) Create(_ context.Context, layout *Layout) (*Layout, error) {
	if layout == nil {
		return nil, nil
	}
	cloned := cloneLayout(layout)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	r.byName[canonicalKey(cloned.Name)] = cloned.ID

	return cloneLayout(cloned), nil
}

func (r *MemoryLayoutRepository) Update(_ context.Context, layout *Layout) (*Layout, error) {
	if layout == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[layout.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "layout", Key: layout.ID.String()}
	}

	cloned := cloneLayout(layout)
	if canonicalKey(current.Name) != canonicalKey(cloned.Name) {
		delete(r.byName, canonicalKey(current.Name))
	}
	r.byID[cloned.ID] = cloned
	r.byName[canonicalKey(cloned.Name)] = cloned.ID

	return cloneLayout(cloned), nil
}

func (r *MemoryLayoutRepository) GetByID(_ context.Context, id uuid.UUID) (*Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "layout", Key: id.String()}
	}
	return cloneLayout(record), nil
}

func (r *MemoryLayoutRepository) GetByName(_ context.Context, name string) (*Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[canonicalKey(name)]
	if !ok {
		return nil, &NotFoundError{Resource: "layout", Key: name}
	}
	return cloneLayout(r.byID[id]), nil
}

func (r *MemoryLayoutRepository) List(_ context.Context) ([]*Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Layout, 0, len(r.byID))
	for _, layout := range r.byID {
		out = append(out, cloneLayout(layout))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func canonicalKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func cloneLayout(layout *Layout) *Layout {
	if layout == nil {
		return nil
	}
	cloned := *layout
	return &cloned
}
