package bills

import (
	"context"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
)

// Repository stores the ordered set of cached records.
type Repository interface {
	// ReplaceAll deletes every stored record and inserts records in order.
	ReplaceAll(ctx context.Context, records []models.BillRecord) error

	// GetAll returns the records in stored order.
	GetAll(ctx context.Context) ([]models.BillRecord, error)

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error
}
