package clti

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// caseRepoMemory keeps records in process. It backs the server when no
// database is configured and the service tests.
type caseRepoMemory struct {
	mu    sync.RWMutex
	store map[uuid.UUID]*CaseRecord
	now   func() time.Time
}

func NewCaseRepoMemory() CaseRepository {
	return &caseRepoMemory{store: make(map[uuid.UUID]*CaseRecord), now: time.Now}
}

func cloneRecord(r *CaseRecord) *CaseRecord {
	c := *r
	c.Snapshot.CompletedSteps = append([]string(nil), r.Snapshot.CompletedSteps...)
	return &c
}

func (m *caseRepoMemory) Create(_ context.Context, r *CaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.syncColumns()
	r.CreatedAt = m.now()
	r.UpdatedAt = r.CreatedAt
	m.store[r.ID] = cloneRecord(r)
	return nil
}

func (m *caseRepoMemory) GetByID(_ context.Context, id uuid.UUID) (*CaseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return cloneRecord(r), nil
}

func (m *caseRepoMemory) Update(_ context.Context, r *CaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.store[r.ID]
	if !ok {
		return ErrCaseNotFound
	}
	r.syncColumns()
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = m.now()
	m.store[r.ID] = cloneRecord(r)
	return nil
}

func (m *caseRepoMemory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrCaseNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *caseRepoMemory) List(_ context.Context, limit, offset int) ([]*CaseRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]*CaseRecord, 0, len(m.store))
	for _, r := range m.store {
		items = append(items, cloneRecord(r))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	total := len(items)
	if offset >= total {
		return []*CaseRecord{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return items[offset:end], total, nil
}
