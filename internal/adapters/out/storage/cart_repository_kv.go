// internal/adapters/out/storage/cart_repository_kv.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"milkmaster/internal/adapters/out/kv"
	cartdom "milkmaster/internal/domain/cart"
)

// Partition keys match the browser-era layout: one serialized line
// array per identity, anonymous lines in a shared key.
const anonymousPartitionKey = "cartItems"

func partitionKey(identityID string) string {
	id := strings.TrimSpace(identityID)
	if id == "" {
		return anonymousPartitionKey
	}
	return anonymousPartitionKey + "_" + id
}

// CartRepositoryKV implements cart.Repository over a kv.Store.
type CartRepositoryKV struct {
	Store kv.Store
}

func NewCartRepositoryKV(store kv.Store) *CartRepositoryKV {
	return &CartRepositoryKV{Store: store}
}

// LoadPartition hydrates identityID's partition. Missing or corrupt
// data falls back to an empty partition; hydration never fails the
// caller over bad stored bytes.
func (r *CartRepositoryKV) LoadPartition(ctx context.Context, identityID string) (*cartdom.State, error) {
	if r == nil || r.Store == nil {
		return nil, errors.New("cart_repository_kv: store is nil")
	}

	key := partitionKey(identityID)
	raw, err := r.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return cartdom.NewState(), nil
		}
		return nil, err
	}

	var lines []cartdom.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		log.Printf("[cart_repo] WARN: corrupt partition key=%s, starting empty: %v", key, err)
		return cartdom.NewState(), nil
	}

	s := &cartdom.State{Lines: lines}
	s.Normalize()
	return s, nil
}

// SavePartition re-serializes identityID's partition as a line array.
func (r *CartRepositoryKV) SavePartition(ctx context.Context, identityID string, s *cartdom.State) error {
	if r == nil || r.Store == nil {
		return errors.New("cart_repository_kv: store is nil")
	}
	if s == nil {
		return errors.New("cart_repository_kv: state is nil")
	}

	lines := s.Lines
	if lines == nil {
		lines = []cartdom.Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, partitionKey(identityID), raw)
}

// DeletePartition removes identityID's partition key entirely.
func (r *CartRepositoryKV) DeletePartition(ctx context.Context, identityID string) error {
	if r == nil || r.Store == nil {
		return errors.New("cart_repository_kv: store is nil")
	}
	if err := r.Store.Remove(ctx, partitionKey(identityID)); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return err
	}
	return nil
}
