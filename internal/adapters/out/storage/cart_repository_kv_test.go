// internal/adapters/out/storage/cart_repository_kv_test.go
package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkmaster/internal/adapters/out/kv"
	cartdom "milkmaster/internal/domain/cart"
)

func TestPartitionKeys(t *testing.T) {
	assert.Equal(t, "cartItems", partitionKey(""))
	assert.Equal(t, "cartItems", partitionKey("  "))
	assert.Equal(t, "cartItems_u1", partitionKey("u1"))
}

func TestLoadPartitionMissingReturnsEmpty(t *testing.T) {
	repo := NewCartRepositoryKV(kv.NewMemory())

	s, err := repo.LoadPartition(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, s.Lines)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepositoryKV(kv.NewMemory())

	s := cartdom.NewState()
	require.NoError(t, s.Add(cartdom.Line{
		ProductRef: "p1",
		Identity:   "u1",
		Name:       "Full Cream Milk 1L",
		Price:      decimal.RequireFromString("55.50"),
		Stock:      10,
	}, 2))
	require.NoError(t, repo.SavePartition(ctx, "u1", s))

	loaded, err := repo.LoadPartition(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "p1", loaded.Lines[0].ProductRef)
	assert.Equal(t, 2, loaded.Lines[0].Quantity)
	assert.True(t, loaded.Lines[0].Price.Equal(decimal.RequireFromString("55.50")))
}

func TestLoadPartitionCorruptFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "cartItems_u1", []byte("{not json")))

	repo := NewCartRepositoryKV(store)
	s, err := repo.LoadPartition(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, s.Lines)
}

func TestLoadPartitionAcceptsStringPrices(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	blob := `[{"productId":"p1","userId":"u1","price":"42.00","quantity":2,"stock":5}]`
	require.NoError(t, store.Set(ctx, "cartItems_u1", []byte(blob)))

	repo := NewCartRepositoryKV(store)
	s, err := repo.LoadPartition(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.True(t, s.TotalFor("u1").Equal(decimal.RequireFromString("84.00")))
}

func TestLoadPartitionNormalizesLegacyBlobs(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	// duplicate lines and an over-stock quantity from legacy storage
	blob := `[
		{"productId":"p1","userId":"u1","price":10,"quantity":2,"stock":5},
		{"productId":"p1","userId":"u1","price":10,"quantity":9,"stock":5}
	]`
	require.NoError(t, store.Set(ctx, "cartItems_u1", []byte(blob)))

	repo := NewCartRepositoryKV(store)
	s, err := repo.LoadPartition(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 5, s.Lines[0].Quantity)
}

func TestDeletePartitionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepositoryKV(kv.NewMemory())

	require.NoError(t, repo.SavePartition(ctx, "u1", cartdom.NewState()))
	require.NoError(t, repo.DeletePartition(ctx, "u1"))
	require.NoError(t, repo.DeletePartition(ctx, "u1"))
}
