// Package cache owns the local mirror of the remote bill records.
//
// A Store is the durable slot (SQLite in production, memory in tests) with
// an explicit Open/Read/Write/Clear/Close lifecycle. A Manager layers the
// freshness policy, the dirty-state transitions and the serialization rules
// on top of a Store. Nothing outside this package touches a Store directly
// once it is handed to a Manager.
package cache

import (
	"context"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
)

// Store is the durable snapshot slot.
//
// Read returns common.ErrNoData when no snapshot was ever written (or after
// Clear). Write replaces the whole slot. The second slot, LastSubmitted,
// holds the record set of the last successful full resubmission and is
// nil when absent.
type Store interface {
	Open(ctx context.Context) error
	Read(ctx context.Context) (*models.Snapshot, error)
	Write(ctx context.Context, s *models.Snapshot) error
	Clear(ctx context.Context) error
	Close() error

	ReadLastSubmitted(ctx context.Context) ([]models.BillRecord, error)
	WriteLastSubmitted(ctx context.Context, records []models.BillRecord) error
}
