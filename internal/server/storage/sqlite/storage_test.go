package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/otagate/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func TestSlotStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "store new slot", key: "k0", value: "first"},
		{name: "replace existing slot", key: "k0", value: "second"},
		{name: "store at max size", key: "k1", value: strings.Repeat("x", storage.MaxSlotValueSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.PutSlot(ctx, tt.key, tt.value))

			got, err := s.GetSlot(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestSlotStorage_PutTooLarge(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.PutSlot(ctx, "k0", strings.Repeat("x", storage.MaxSlotValueSize+1))
	assert.ErrorIs(t, err, storage.ErrValueTooLarge)
}

func TestSlotStorage_GetMissing(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetSlot(ctx, "k42")
	assert.ErrorIs(t, err, storage.ErrSlotNotFound)
}

func TestSlotStorage_Delete(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.PutSlot(ctx, "k3", "value"))

	require.NoError(t, s.DeleteSlot(ctx, "k3"))
	assert.ErrorIs(t, s.DeleteSlot(ctx, "k3"), storage.ErrSlotNotFound)

	_, err := s.GetSlot(ctx, "k3")
	assert.ErrorIs(t, err, storage.ErrSlotNotFound)
}

func TestSlotStorage_List(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	keys, err := s.ListSlots(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, k := range []string{"k0", "k10", "k2"} {
		require.NoError(t, s.PutSlot(ctx, k, "v-"+k))
	}

	keys, err = s.ListSlots(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k0", "k10", "k2"}, keys)
}

func TestMetadataStorage_LastSyncTimestamp(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	ts, err := s.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.NoError(t, s.SaveLastSyncTimestamp(ctx, 1709254800))
	require.NoError(t, s.SaveLastSyncTimestamp(ctx, 1709258400))

	ts, err = s.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1709258400), ts)
}

func TestNew_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "slots.db")

	s, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, s.PutSlot(ctx, "k7", "persisted"))
	require.NoError(t, s.Close())

	// миграции повторно применяются без ошибок
	s, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetSlot(ctx, "k7")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}
