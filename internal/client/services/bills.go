// Package services contains the application services the billkeeper UI
// collaborator calls: creating, searching and editing bills against the
// local cache, fetching from and submitting to the remote store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/cache"
	"github.com/dmitrijs2005/billkeeper/internal/client/client"
	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/client/reconcile"
	"github.com/dmitrijs2005/billkeeper/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrEmptyKey  = errors.New("bill number is required")
	ErrNotFound  = errors.New("no bill with this number")
	ErrNoChanges = errors.New("no changes detected")
)

// BillService defines the operations behind the bill views.
//
// Contract:
//   - CreateBill: validate form input and add it to the fresh cache as a new record.
//   - SearchByBillNo: every cached record with the bill number, first match first.
//   - EditBill: store a changed record as pending update.
//   - Search: free-text search over all cached fields.
//   - Fetch: replace the cache with the remote records.
//   - Submit: push pending records to the remote store.
//   - Resubmit: wipe the remote store and recreate it from the cache.
//   - Pending: bill numbers not yet pushed.
//   - Status: record count, pending count and fetch window of the cache.
type BillService interface {
	CreateBill(ctx context.Context, in models.BillInput) (models.BillRecord, error)
	SearchByBillNo(ctx context.Context, billNo string) ([]models.BillRecord, error)
	EditBill(ctx context.Context, in models.BillInput) (models.BillRecord, error)
	Search(ctx context.Context, text string) ([]models.BillRecord, error)
	Fetch(ctx context.Context) (int, error)
	Submit(ctx context.Context) (*reconcile.Report, error)
	Resubmit(ctx context.Context) (*reconcile.Report, error)
	Pending(ctx context.Context) ([]string, error)
	Status(ctx context.Context) (CacheStatus, error)
}

type billService struct {
	cache  *cache.Manager
	remote client.RemoteStore
	engine *reconcile.Engine
	log    logging.Logger
	flight singleflight.Group
}

// NewBillService wires the cache, the remote store and the reconciliation
// engine. A nil logger discards output.
func NewBillService(m *cache.Manager, remote client.RemoteStore, engine *reconcile.Engine, log logging.Logger) BillService {
	if log == nil {
		log = logging.Nop()
	}
	return &billService{cache: m, remote: remote, engine: engine, log: log.With("component", "bills")}
}

// CreateBill requires a fresh cache so the duplicate check runs against
// current data. Uniqueness is local only; two clients may still create the
// same bill number remotely.
func (s *billService) CreateBill(ctx context.Context, in models.BillInput) (models.BillRecord, error) {
	r, err := in.Record()
	if err != nil {
		return models.BillRecord{}, err
	}
	if _, err := s.cache.ReadIfFresh(ctx); err != nil {
		return models.BillRecord{}, fmt.Errorf("create bill: %w", err)
	}
	if err := s.cache.UpsertLocal(ctx, r, models.DirtyNew); err != nil {
		return models.BillRecord{}, fmt.Errorf("create bill: %w", err)
	}
	s.log.Info(ctx, "bill created locally", "bill_no", r.BillNo)
	return r, nil
}

func (s *billService) SearchByBillNo(ctx context.Context, billNo string) ([]models.BillRecord, error) {
	billNo = strings.TrimSpace(billNo)
	if billNo == "" {
		return nil, ErrEmptyKey
	}
	found, err := s.cache.FindByKey(ctx, billNo)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, billNo)
	}
	return found, nil
}

// EditBill rejects a submission identical to the cached record it edits
// (the first match, the one an edit form is pre-filled from).
func (s *billService) EditBill(ctx context.Context, in models.BillInput) (models.BillRecord, error) {
	r, err := in.Record()
	if err != nil {
		return models.BillRecord{}, err
	}
	current, err := s.SearchByBillNo(ctx, r.BillNo)
	if err != nil {
		return models.BillRecord{}, err
	}
	if current[0].SameContent(r) {
		return models.BillRecord{}, ErrNoChanges
	}
	if err := s.cache.UpsertLocal(ctx, r, models.DirtyModified); err != nil {
		return models.BillRecord{}, fmt.Errorf("edit bill: %w", err)
	}
	s.log.Info(ctx, "bill edited locally", "bill_no", r.BillNo)
	return r, nil
}

func (s *billService) Search(ctx context.Context, text string) ([]models.BillRecord, error) {
	return s.cache.Query(ctx, models.ContainsText(strings.TrimSpace(text)))
}

// Fetch downloads every remote record and replaces the cache. Concurrent
// calls share one download, which is not cancelled with the caller that
// started it.
func (s *billService) Fetch(ctx context.Context) (int, error) {
	ctx = context.WithoutCancel(ctx)
	v, err, _ := s.flight.Do("fetch", func() (any, error) {
		records, err := s.remote.FetchAll(ctx)
		if err != nil {
			return 0, err
		}
		if err := s.cache.Replace(ctx, records, s.cache.Now(), 0); err != nil {
			return 0, err
		}
		return len(records), nil
	})
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	return v.(int), nil
}

func (s *billService) Submit(ctx context.Context) (*reconcile.Report, error) {
	return s.engine.Reconcile(ctx)
}

func (s *billService) Pending(ctx context.Context) ([]string, error) {
	return s.cache.Pending(ctx)
}

// Resubmit replaces the whole remote store with the cached records: delete
// everything remotely, then create every cached record. It refuses with
// ErrNoChanges when the cache equals the last successful resubmission.
// Records whose create fails are left PendingCreate so a later Submit
// retries them. Like Submit, a started resubmission is not cancelled.
func (s *billService) Resubmit(ctx context.Context) (*reconcile.Report, error) {
	ctx = context.WithoutCancel(ctx)

	last, err := s.cache.LastSubmitted(ctx)
	if err != nil {
		return nil, fmt.Errorf("resubmit: %w", err)
	}

	rep := &reconcile.Report{}
	var submitted []models.BillRecord
	err = s.cache.Update(ctx, func(cur *models.Snapshot) error {
		if last != nil && sameRecords(last, cur.Records) {
			return ErrNoChanges
		}

		deleted, err := s.remote.DeleteWhere(ctx, client.SelectAll())
		if err != nil {
			return err
		}
		s.log.Info(ctx, "remote store wiped for resubmission", "deleted", deleted, "records", len(cur.Records))

		// a failed create is retried by Submit under the same key
		for i := range cur.Records {
			if cur.Records[i].CreateToken == "" {
				cur.Records[i].CreateToken = uuid.NewString()
			}
		}
		outcomes := s.remote.CreateMany(ctx, cur.Records)
		for i, o := range outcomes {
			if o.Err != nil {
				rep.Failures = append(rep.Failures, reconcile.Failure{BillNo: cur.Records[i].BillNo, Kind: models.DirtyNew, Err: o.Err})
				rep.FailedCreates++
				cur.Records[i].Dirty = models.PendingCreate
				continue
			}
			cur.Records[i].Dirty = models.Clean
			cur.Records[i].CreateToken = ""
			rep.Created++
		}
		rep.RemainingDirty = cur.Dirty()
		submitted = append([]models.BillRecord(nil), cur.Records...)
		return nil
	})
	if errors.Is(err, ErrNoChanges) {
		return nil, ErrNoChanges
	}
	if err != nil {
		return nil, fmt.Errorf("resubmit: %w", err)
	}

	if rep.FailedCreates == 0 {
		if err := s.cache.SetLastSubmitted(ctx, submitted); err != nil {
			return rep, fmt.Errorf("resubmit: %w", err)
		}
	}
	s.log.Info(ctx, "resubmission finished", "created", rep.Created, "failed", rep.FailedCreates)
	return rep, nil
}

// CacheStatus summarises the local cache for a prompt or status line.
type CacheStatus struct {
	Records   int
	Pending   int
	FetchedAt time.Time
	ExpiresAt time.Time
	Fresh     bool
}

// Status describes the cache; a cold cache returns common.ErrNoData.
func (s *billService) Status(ctx context.Context) (CacheStatus, error) {
	snap, err := s.cache.Read(ctx)
	if err != nil {
		return CacheStatus{}, err
	}
	return CacheStatus{
		Records:   len(snap.Records),
		Pending:   len(snap.Dirty()),
		FetchedAt: snap.FetchedAt,
		ExpiresAt: snap.ExpiresAt,
		Fresh:     !snap.ExpiredAt(s.cache.Now()),
	}, nil
}

func sameRecords(a, b []models.BillRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].SameContent(b[i]) {
			return false
		}
	}
	return true
}
