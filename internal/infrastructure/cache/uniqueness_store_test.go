package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/config"
)

func newTestStore(t *testing.T) *RedisUniquenessStore {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisUniquenessStore(&config.RedisConfig{
		Address:      mr.Addr(),
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		KeyPrefix:    "npbtest",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisUniquenessStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Record(ctx,
		[]string{"+573001234567", "+525512345678"},
		[]string{"57300", "5255"},
	)
	require.NoError(t, err)

	sets := numbering.NewUniquenessSets()
	require.NoError(t, store.Seed(ctx, sets))

	assert.True(t, sets.Seen("+573001234567", ""))
	assert.True(t, sets.Seen("", "5255"))
	assert.False(t, sets.Seen("+579999999999", "57999"))
}

func TestRedisUniquenessStoreEmptyRecord(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Record(context.Background(), nil, nil))
}

func TestRedisUniquenessStoreSeedMergesIntoExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, []string{"+56912345678"}, []string{"569"}))

	sets := numbering.NewUniquenessSets()
	sets.AddFull("+51987654321")
	require.NoError(t, store.Seed(ctx, sets))

	// Both local and stored entries survive the merge.
	assert.True(t, sets.Seen("+51987654321", ""))
	assert.True(t, sets.Seen("+56912345678", ""))
}

func TestNewRedisUniquenessStoreRequiresDeps(t *testing.T) {
	_, err := NewRedisUniquenessStore(nil, zap.NewNop())
	assert.Error(t, err)
	_, err = NewRedisUniquenessStore(&config.RedisConfig{}, nil)
	assert.Error(t, err)
}
