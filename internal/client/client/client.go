package client

import (
	"context"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
)

// RemoteStore is the transport contract of the remote tabular store.
// Implementations do not retry and do not cache.
type RemoteStore interface {
	// FetchAll lists every remote record. Order is not significant.
	FetchAll(ctx context.Context) ([]models.BillRecord, error)

	// CreateOne appends a record. Uniqueness of BillNo is the caller's concern.
	CreateOne(ctx context.Context, r models.BillRecord) (models.BillRecord, error)

	// CreateMany creates several records and reports one outcome per input,
	// in input order. It never stops at the first failure.
	CreateMany(ctx context.Context, rs []models.BillRecord) []CreateOutcome

	// UpdateByKey replaces the record stored under billNo. A missing key
	// yields common.ErrNotFound.
	UpdateByKey(ctx context.Context, billNo string, r models.BillRecord) (models.BillRecord, error)

	// DeleteWhere removes the records matched by sel and returns how many
	// were deleted.
	DeleteWhere(ctx context.Context, sel Selector) (int, error)
}

// CreateOutcome is the per-record result of CreateMany.
type CreateOutcome struct {
	Record models.BillRecord
	Err    error
}

// Selector is a server-side predicate for DeleteWhere: either every record
// (All) or the records whose Column equals Value.
type Selector struct {
	All    bool
	Column string
	Value  string
}

// SelectAll matches every remote record.
func SelectAll() Selector { return Selector{All: true} }

// SelectBy matches records whose column equals value.
func SelectBy(column, value string) Selector {
	return Selector{Column: column, Value: value}
}

func (s Selector) String() string {
	if s.All {
		return "all"
	}
	return s.Column + "=" + s.Value
}
