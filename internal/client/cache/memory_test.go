package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Open(ctx))
	defer s.Close()

	_, err := s.Read(ctx)
	require.ErrorIs(t, err, common.ErrNoData)

	snap := models.NewSnapshot([]models.BillRecord{rec("A", models.Unpaid, 1)}, time.Now(), time.Hour)
	require.NoError(t, s.Write(ctx, snap))

	snap.Records[0].Name = "changed after write"
	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Customer A", got.Records[0].Name)

	got.Records[0].Name = "changed after read"
	again, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Customer A", again.Records[0].Name)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Read(ctx)
	require.ErrorIs(t, err, common.ErrNoData)
}

func TestMemoryStore_LastSubmitted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	last, err := s.ReadLastSubmitted(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, s.WriteLastSubmitted(ctx, nil))
	last, err = s.ReadLastSubmitted(ctx)
	require.NoError(t, err)
	assert.NotNil(t, last)
	assert.Empty(t, last)
}
