package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/billkeeper/internal/client/client"
	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/client/repositories/bills"
	"github.com/dmitrijs2005/billkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/billkeeper/internal/common"
	"github.com/dmitrijs2005/billkeeper/internal/dbx"
)

var ErrNotOpen = errors.New("cache store is not open")

// SQLiteStore persists the snapshot in a SQLite database: rows in the bills
// table, fetch window and last-submitted slot in the metadata table.
type SQLiteStore struct {
	dsn string
	db  *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dsn string) *SQLiteStore {
	return &SQLiteStore{dsn: dsn}
}

// NewSQLiteStoreFromDB wraps an already migrated database. Open is a no-op.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Open(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	db, err := client.InitDatabase(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("open cache %q: %w", s.dsn, err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Read(ctx context.Context) (*models.Snapshot, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var snap *models.Snapshot
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)

		fetchedAt, ok, err := meta.GetTime(ctx, metadata.KeyFetchedAt)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrNoData
		}
		expiresAt, ok, err := meta.GetTime(ctx, metadata.KeyExpiresAt)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: expiry missing", common.ErrNoData)
		}

		records, err := bills.NewSQLiteRepository(tx).GetAll(ctx)
		if err != nil {
			return err
		}
		snap = &models.Snapshot{Records: records, FetchedAt: fetchedAt, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) Write(ctx context.Context, snap *models.Snapshot) error {
	if s.db == nil {
		return ErrNotOpen
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := bills.NewSQLiteRepository(tx).ReplaceAll(ctx, snap.Records); err != nil {
			return err
		}
		meta := metadata.NewSQLiteRepository(tx)
		if err := meta.SetTime(ctx, metadata.KeyFetchedAt, snap.FetchedAt); err != nil {
			return err
		}
		return meta.SetTime(ctx, metadata.KeyExpiresAt, snap.ExpiresAt)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrNotOpen
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := bills.NewSQLiteRepository(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Clear(ctx)
	})
}

func (s *SQLiteStore) ReadLastSubmitted(ctx context.Context) ([]models.BillRecord, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, metadata.KeyLastSubmitted)
	if err != nil || raw == nil {
		return nil, err
	}
	var records []models.BillRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode last submitted: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) WriteLastSubmitted(ctx context.Context, records []models.BillRecord) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if records == nil {
		records = []models.BillRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode last submitted: %w", err)
	}
	return metadata.NewSQLiteRepository(s.db).Set(ctx, metadata.KeyLastSubmitted, raw)
}
