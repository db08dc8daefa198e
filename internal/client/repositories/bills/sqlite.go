package bills

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/dbx"
	"github.com/shopspring/decimal"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// ReplaceAll is only atomic when the DBTX is a transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []models.BillRecord) error {
	if err := r.DeleteAll(ctx); err != nil {
		return err
	}

	query := `INSERT INTO bills (position, bill_no, name, billed_amount, paid_amount,
			billed_date, paid_date, paid_status, dirty, create_token)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, b := range records {
		_, err := r.db.ExecContext(ctx, query,
			i, b.BillNo, b.Name, b.BilledAmount.String(), b.PaidAmount.String(),
			b.BilledDate.String(), b.PaidDate.String(), string(b.PaidStatus),
			b.Dirty.String(), b.CreateToken)
		if err != nil {
			return fmt.Errorf("failed to insert bill %q: %w", b.BillNo, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.BillRecord, error) {
	query := `SELECT bill_no, name, billed_amount, paid_amount, billed_date, paid_date,
			paid_status, dirty, create_token FROM bills ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select bills: %w", err)
	}
	defer rows.Close()

	var result []models.BillRecord
	for rows.Next() {
		var (
			b                    models.BillRecord
			billed, paid         string
			billedDate, paidDate string
			status, dirty        string
		)
		if err := rows.Scan(&b.BillNo, &b.Name, &billed, &paid, &billedDate, &paidDate,
			&status, &dirty, &b.CreateToken); err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		if err := decode(&b, billed, paid, billedDate, paidDate, status, dirty); err != nil {
			return nil, fmt.Errorf("corrupt bill %q: %w", b.BillNo, err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return fmt.Errorf("failed to delete bills: %w", err)
	}
	return nil
}

func decode(b *models.BillRecord, billed, paid, billedDate, paidDate, status, dirty string) error {
	var err error
	if b.BilledAmount, err = decimal.NewFromString(billed); err != nil {
		return fmt.Errorf("billed_amount: %w", err)
	}
	if paid == "" {
		b.PaidAmount = decimal.Zero
	} else if b.PaidAmount, err = decimal.NewFromString(paid); err != nil {
		return fmt.Errorf("paid_amount: %w", err)
	}
	if b.BilledDate, err = models.ParseDate(billedDate); err != nil {
		return err
	}
	if b.PaidDate, err = models.ParseDate(paidDate); err != nil {
		return err
	}
	if b.PaidStatus, err = models.ParsePaidStatus(status); err != nil {
		return err
	}
	if b.Dirty, err = models.ParseDirtyState(dirty); err != nil {
		return err
	}
	return nil
}
