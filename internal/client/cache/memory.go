package cache

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/common"
)

// MemoryStore keeps the snapshot in process memory. Every Read and Write
// copies, so callers never alias the stored records.
type MemoryStore struct {
	mu            sync.Mutex
	snap          *models.Snapshot
	lastSubmitted []models.BillRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Open(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Read(ctx context.Context) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, common.ErrNoData
	}
	return m.snap.Clone(), nil
}

func (m *MemoryStore) Write(ctx context.Context, s *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s.Clone()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	m.lastSubmitted = nil
	return nil
}

func (m *MemoryStore) ReadLastSubmitted(ctx context.Context) ([]models.BillRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastSubmitted == nil {
		return nil, nil
	}
	return append([]models.BillRecord(nil), m.lastSubmitted...), nil
}

func (m *MemoryStore) WriteLastSubmitted(ctx context.Context, records []models.BillRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSubmitted = append(make([]models.BillRecord, 0, len(records)), records...)
	return nil
}
