package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/common"
	"github.com/dmitrijs2005/billkeeper/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// DefaultTTL is the freshness window of a fetched snapshot.
const DefaultTTL = 24 * time.Hour

// maxReaders bounds concurrent readers; a mutator acquires all of it.
const maxReaders = 1 << 16

// Manager is the only owner of the cached snapshot.
//
// Readers share the snapshot; mutators (Replace, UpsertLocal, Update,
// Clear) are exclusive, so a replace can never interleave with a
// reconciliation and no reader sees a half-applied change. Update holds
// the lock for as long as fn runs, network round trips included, so
// readers that must stay responsive should bound their ctx.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   logging.Logger
	sem   *semaphore.Weighted
}

type Option func(*Manager)

// WithTTL sets the default freshness window used by Replace when no ttl is given.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for freshness tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
		log:   logging.Nop(),
		sem:   semaphore.NewWeighted(maxReaders),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Now() time.Time { return m.now() }

func (m *Manager) rlock(ctx context.Context) (func(), error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { m.sem.Release(1) }, nil
}

func (m *Manager) lock(ctx context.Context) (func(), error) {
	if err := m.sem.Acquire(ctx, maxReaders); err != nil {
		return nil, err
	}
	return func() { m.sem.Release(maxReaders) }, nil
}

// Read returns the snapshot regardless of freshness, or common.ErrNoData.
func (m *Manager) Read(ctx context.Context) (*models.Snapshot, error) {
	unlock, err := m.rlock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return m.store.Read(ctx)
}

// ReadIfFresh returns the snapshot while now <= ExpiresAt. A cold cache
// yields common.ErrNoData and an expired one common.ErrStaleData; both mean
// "absent" to the caller. Reading never changes the store.
func (m *Manager) ReadIfFresh(ctx context.Context) (*models.Snapshot, error) {
	unlock, err := m.rlock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return m.readFresh(ctx)
}

func (m *Manager) readFresh(ctx context.Context) (*models.Snapshot, error) {
	s, err := m.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if s.ExpiredAt(m.now()) {
		return nil, fmt.Errorf("%w: expired at %s", common.ErrStaleData, s.ExpiresAt.Format(time.RFC3339))
	}
	return s, nil
}

// Replace overwrites the whole snapshot with records fetched at fetchedAt.
// Pending local changes are discarded. A non-positive ttl uses the
// manager's default window.
func (m *Manager) Replace(ctx context.Context, records []models.BillRecord, fetchedAt time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	unlock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if prev, err := m.store.Read(ctx); err == nil {
		if pending := prev.Dirty(); len(pending) > 0 {
			m.log.Warn(ctx, "replacing cache drops pending local changes", "pending", len(pending), "bill_nos", pending)
		}
	}

	snap := models.NewSnapshot(append([]models.BillRecord(nil), records...), fetchedAt, ttl)
	if err := m.store.Write(ctx, snap); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	m.log.Info(ctx, "cache replaced", "records", len(records), "expires_at", snap.ExpiresAt)
	return nil
}

// UpsertLocal records a local mutation.
//
// DirtyNew inserts an unseen bill number as PendingCreate (with a fresh
// create token) and fails with common.ErrDuplicateKey for a known one,
// leaving the snapshot unchanged. DirtyModified replaces every record with
// that bill number, in place, and marks it PendingUpdate; a record still
// PendingCreate stays PendingCreate and keeps its token. An unseen bill
// number under DirtyModified is appended as PendingUpdate.
func (m *Manager) UpsertLocal(ctx context.Context, r models.BillRecord, kind models.DirtyKind) error {
	if r.BillNo == "" {
		return fmt.Errorf("%w: empty bill number", models.ErrValidation)
	}
	unlock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s, err := m.store.Read(ctx)
	if err != nil {
		return err
	}
	if err := applyUpsert(s, r, kind); err != nil {
		return err
	}
	if err := m.store.Write(ctx, s); err != nil {
		return fmt.Errorf("upsert %q: %w", r.BillNo, err)
	}
	m.log.Debug(ctx, "cache upsert", "bill_no", r.BillNo, "kind", kind)
	return nil
}

func applyUpsert(s *models.Snapshot, r models.BillRecord, kind models.DirtyKind) error {
	switch kind {
	case models.DirtyNew:
		for _, existing := range s.Records {
			if existing.BillNo == r.BillNo {
				return fmt.Errorf("%w: %q", common.ErrDuplicateKey, r.BillNo)
			}
		}
		r.Dirty = models.PendingCreate
		if r.CreateToken == "" {
			r.CreateToken = uuid.NewString()
		}
		s.Records = append(s.Records, r)
		return nil

	case models.DirtyModified:
		found := false
		for i, existing := range s.Records {
			if existing.BillNo != r.BillNo {
				continue
			}
			found = true
			next := r
			if existing.Dirty == models.PendingCreate {
				next.Dirty = models.PendingCreate
				next.CreateToken = existing.CreateToken
			} else {
				next.Dirty = models.PendingUpdate
				next.CreateToken = ""
			}
			s.Records[i] = next
		}
		if !found {
			r.Dirty = models.PendingUpdate
			r.CreateToken = ""
			s.Records = append(s.Records, r)
		}
		return nil

	default:
		return fmt.Errorf("unknown dirty kind %d", kind)
	}
}

// FindByKey returns every fresh cached record with billNo, in snapshot order.
func (m *Manager) FindByKey(ctx context.Context, billNo string) ([]models.BillRecord, error) {
	return m.Query(ctx, models.ByBillNo(billNo))
}

// Query scans the fresh snapshot and returns the matching records.
func (m *Manager) Query(ctx context.Context, p models.Predicate) ([]models.BillRecord, error) {
	unlock, err := m.rlock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := m.readFresh(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.BillRecord
	for _, r := range s.Records {
		if p(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Pending returns the bill numbers with unpushed changes, fresh or not.
func (m *Manager) Pending(ctx context.Context) ([]string, error) {
	s, err := m.Read(ctx)
	if err != nil {
		return nil, err
	}
	return s.Dirty(), nil
}

// Update runs fn on a private copy of the snapshot under the exclusive lock
// and writes the result back when fn returns nil. The fetch window is kept
// as read. Freshness is not checked, so expired dirty records can still be
// drained.
func (m *Manager) Update(ctx context.Context, fn func(s *models.Snapshot) error) error {
	unlock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s, err := m.store.Read(ctx)
	if err != nil {
		return err
	}
	fetchedAt, expiresAt := s.FetchedAt, s.ExpiresAt
	if err := fn(s); err != nil {
		return err
	}
	s.FetchedAt, s.ExpiresAt = fetchedAt, expiresAt
	if err := m.store.Write(ctx, s); err != nil {
		return fmt.Errorf("write back cache: %w", err)
	}
	return nil
}

// Clear drops the snapshot and the last-submitted slot.
func (m *Manager) Clear(ctx context.Context) error {
	unlock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return m.store.Clear(ctx)
}

// LastSubmitted returns the record set of the last full resubmission, or nil.
func (m *Manager) LastSubmitted(ctx context.Context) ([]models.BillRecord, error) {
	unlock, err := m.rlock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return m.store.ReadLastSubmitted(ctx)
}

func (m *Manager) SetLastSubmitted(ctx context.Context, records []models.BillRecord) error {
	unlock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return m.store.WriteLastSubmitted(ctx, records)
}

// IsAbsent reports whether err means "no usable snapshot".
func IsAbsent(err error) bool {
	return errors.Is(err, common.ErrNoData) || errors.Is(err, common.ErrStaleData)
}
