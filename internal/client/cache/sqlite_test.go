package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T, dsn string) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(dsn)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_NotOpen(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(":memory:")

	_, err := s.Read(ctx)
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, s.Write(ctx, &models.Snapshot{}), ErrNotOpen)
	require.ErrorIs(t, s.Clear(ctx), ErrNotOpen)
	_, err = s.ReadLastSubmitted(ctx)
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, s.WriteLastSubmitted(ctx, nil), ErrNotOpen)
	require.NoError(t, s.Close())
}

func TestSQLiteStore_ColdRead(t *testing.T) {
	s := openSQLite(t, ":memory:")
	_, err := s.Read(context.Background())
	require.ErrorIs(t, err, common.ErrNoData)
}

func TestSQLiteStore_WriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, ":memory:")

	pendingNew := rec("N-1", models.Unpaid, 42)
	pendingNew.Dirty = models.PendingCreate
	pendingNew.CreateToken = "token-1"
	modified := rec("M-1", models.Paid, 10)
	modified.Dirty = models.PendingUpdate

	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	in := models.NewSnapshot([]models.BillRecord{rec("C-1", models.Unpaid, 5), pendingNew, modified, rec("C-1", models.Paid, 5)}, at, 24*time.Hour)
	require.NoError(t, s.Write(ctx, in))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.FetchedAt))
	assert.True(t, in.ExpiresAt.Equal(got.ExpiresAt))
	require.Len(t, got.Records, 4)
	assert.Equal(t, []string{"C-1", "N-1", "M-1", "C-1"}, keys(got.Records))
	for i := range in.Records {
		assert.True(t, in.Records[i].SameContent(got.Records[i]), "record %d", i)
		assert.Equal(t, in.Records[i].Dirty, got.Records[i].Dirty)
		assert.Equal(t, in.Records[i].CreateToken, got.Records[i].CreateToken)
	}

	// a second write replaces, never merges
	require.NoError(t, s.Write(ctx, models.NewSnapshot([]models.BillRecord{rec("Z", models.Unpaid, 1)}, at, time.Hour)))
	got, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, keys(got.Records))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "cache.db")
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	first := NewSQLiteStore(dsn)
	require.NoError(t, first.Open(ctx))
	require.NoError(t, first.Write(ctx, models.NewSnapshot([]models.BillRecord{rec("A", models.Unpaid, 1)}, at, time.Hour)))
	require.NoError(t, first.WriteLastSubmitted(ctx, []models.BillRecord{rec("A", models.Unpaid, 1)}))
	require.NoError(t, first.Close())

	second := openSQLite(t, dsn)
	got, err := second.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, keys(got.Records))

	last, err := second.ReadLastSubmitted(ctx)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.True(t, last[0].SameContent(rec("A", models.Unpaid, 1)))
}

func TestSQLiteStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, ":memory:")

	require.NoError(t, s.Write(ctx, models.NewSnapshot([]models.BillRecord{rec("A", models.Unpaid, 1)}, time.Now(), time.Hour)))
	require.NoError(t, s.WriteLastSubmitted(ctx, nil))
	require.NoError(t, s.Clear(ctx))

	_, err := s.Read(ctx)
	require.ErrorIs(t, err, common.ErrNoData)
	last, err := s.ReadLastSubmitted(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestSQLiteStore_BackedManager(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := NewManager(openSQLite(t, ":memory:"), WithClock(clock.Now))

	require.NoError(t, m.Replace(ctx, []models.BillRecord{rec("A", models.Unpaid, 1)}, clock.Now(), 0))
	require.NoError(t, m.UpsertLocal(ctx, rec("B", models.Unpaid, 2), models.DirtyNew))

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, pending)

	clock.Advance(DefaultTTL + time.Second)
	_, err = m.ReadIfFresh(ctx)
	require.ErrorIs(t, err, common.ErrStaleData)
}
