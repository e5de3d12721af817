package catalog

import (
	"context"
	"sync"
)

// memoryHistoryCap bounds the in-memory store. Watch mode records every
// rebuild, so the store trims the oldest entries instead of growing without
// bound.
const memoryHistoryCap = 100

// MemoryRepository keeps build records in memory, newest first. It is the
// default store when no database is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	cap     int
	records []*BuildRecord
}

// NewMemoryRepository constructs an empty memory-backed record store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{cap: memoryHistoryCap}
}

func (r *MemoryRepository) Create(_ context.Context, record *BuildRecord) (*BuildRecord, error) {
	if record == nil {
		return nil, errRecordRequired
	}
	cloned := cloneRecord(record)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append([]*BuildRecord{cloned}, r.records...)
	if r.cap > 0 && len(r.records) > r.cap {
		r.records = r.records[:r.cap]
	}

	return cloneRecord(cloned), nil
}

func (r *MemoryRepository) Latest(_ context.Context) (*BuildRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.records) == 0 {
		return nil, ErrNoBuilds
	}
	return cloneRecord(r.records[0]), nil
}

func (r *MemoryRepository) History(_ context.Context, limit int) ([]*BuildRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := len(r.records)
	if limit > 0 && limit < count {
		count = limit
	}
	out := make([]*BuildRecord, 0, count)
	for _, record := range r.records[:count] {
		out = append(out, cloneRecord(record))
	}
	return out, nil
}
