// Package reconcile pushes locally pending bill records to the remote store.
//
// A pass walks the cached snapshot under the cache manager's exclusive lock,
// turns every PendingCreate record into a create task and every
// PendingUpdate bill number into an update task, and runs the tasks one at a
// time. A task that fails leaves its records pending and is reported; the
// pass always continues with the next task. Creates carry the record's
// create token as an idempotency key, so a create that reached the store but
// whose local flag-clear was lost is not duplicated by stores that honour it.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/cache"
	"github.com/dmitrijs2005/billkeeper/internal/client/client"
	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/common"
	"github.com/dmitrijs2005/billkeeper/internal/logging"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxRetries  = 2
	DefaultBaseBackoff = 200 * time.Millisecond
)

var errNothingToDo = errors.New("nothing to reconcile")

type Engine struct {
	cache   *cache.Manager
	remote  client.RemoteStore
	log     logging.Logger
	retries uint64
	backoff time.Duration
	flight  singleflight.Group
}

type Option func(*Engine)

// WithRetries sets how many times a transport failure of a single task is
// retried, with exponential backoff starting at base. Not-found is never
// retried.
func WithRetries(n uint64, base time.Duration) Option {
	return func(e *Engine) {
		e.retries = n
		if base > 0 {
			e.backoff = base
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(m *cache.Manager, remote client.RemoteStore, opts ...Option) *Engine {
	e := &Engine{
		cache:   m,
		remote:  remote,
		log:     logging.Nop(),
		retries: DefaultMaxRetries,
		backoff: DefaultBaseBackoff,
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With("component", "reconcile")
	return e
}

// task is one remote call and the snapshot positions it settles.
type task struct {
	kind    models.DirtyKind
	billNo  string
	record  models.BillRecord
	indexes []int
}

// plan lists the creates, then the updates, in snapshot order. Records that
// share a bill number and are all PendingUpdate collapse into one update.
func plan(s *models.Snapshot) []task {
	var creates, updates []task
	byKey := make(map[string]int)
	for i, r := range s.Records {
		switch r.Dirty {
		case models.PendingCreate:
			creates = append(creates, task{kind: models.DirtyNew, billNo: r.BillNo, record: r, indexes: []int{i}})
		case models.PendingUpdate:
			if j, ok := byKey[r.BillNo]; ok {
				updates[j].indexes = append(updates[j].indexes, i)
				continue
			}
			byKey[r.BillNo] = len(updates)
			updates = append(updates, task{kind: models.DirtyModified, billNo: r.BillNo, record: r, indexes: []int{i}})
		}
	}
	return append(creates, updates...)
}

// Reconcile drains the pending records. Concurrent calls share a single
// pass and its report. The pass is not cancelled when ctx is: a started
// reconciliation always runs to completion.
//
// It fails with common.ErrNoData on a cold cache. When the pass ran but the
// cache write-back failed, the report is returned together with the error.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	v, err, shared := e.flight.Do("reconcile", func() (any, error) {
		return e.run(context.WithoutCancel(ctx))
	})
	if shared {
		e.log.Debug(ctx, "joined in-flight reconciliation")
	}
	rep, _ := v.(*Report)
	return rep, err
}

func (e *Engine) run(ctx context.Context) (*Report, error) {
	rep := &Report{}
	ran := false

	err := e.cache.Update(ctx, func(s *models.Snapshot) error {
		tasks := plan(s)
		if len(tasks) == 0 {
			return errNothingToDo
		}
		ran = true
		e.log.Info(ctx, "reconciliation started", "tasks", len(tasks))

		for _, t := range tasks {
			err := e.push(ctx, t)
			if err != nil {
				rep.fail(t.billNo, t.kind, err)
				e.log.Warn(ctx, "record left pending", "bill_no", t.billNo, "kind", t.kind, "err", err)
				continue
			}
			for _, i := range t.indexes {
				s.Records[i].Dirty = models.Clean
				s.Records[i].CreateToken = ""
			}
			if t.kind == models.DirtyNew {
				rep.Created++
			} else {
				rep.Updated++
			}
		}
		rep.RemainingDirty = s.Dirty()
		return nil
	})

	switch {
	case errors.Is(err, errNothingToDo):
		rep.NothingToDo = true
		e.log.Info(ctx, "reconciliation: nothing to do")
		return rep, nil
	case err != nil && !ran:
		return nil, err
	case err != nil:
		if pending, perr := e.cache.Pending(ctx); perr == nil {
			rep.RemainingDirty = pending
		}
		e.log.Error(ctx, "reconciliation results not saved", "err", err, "pending", len(rep.RemainingDirty))
		return rep, err
	}

	e.log.Info(ctx, "reconciliation finished",
		"created", rep.Created, "updated", rep.Updated,
		"failed_creates", rep.FailedCreates, "failed_updates", rep.FailedUpdates,
		"pending", rep.RemainingDirty)
	return rep, nil
}

func (e *Engine) push(ctx context.Context, t task) error {
	b := retry.WithMaxRetries(e.retries, retry.NewExponential(e.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		if t.kind == models.DirtyNew {
			_, err = e.remote.CreateOne(ctx, t.record)
		} else {
			_, err = e.remote.UpdateByKey(ctx, t.billNo, t.record)
		}
		if errors.Is(err, common.ErrTransport) {
			return retry.RetryableError(err)
		}
		return err
	})
}
