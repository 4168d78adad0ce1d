// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository is the persistence port for cart partitions.
//
// Partition keying (kv adapter):
// - anonymous: "cartItems"
// - identified: "cartItems_<identity>"
// - value: serialized line array
//
// Not-found policy:
// - LoadPartition returns an empty State for a missing or corrupt
//   partition; hydration never fails the caller over bad stored data.
type Repository interface {
	// LoadPartition hydrates identityID's partition.
	LoadPartition(ctx context.Context, identityID string) (*State, error)

	// SavePartition re-serializes identityID's partition.
	SavePartition(ctx context.Context, identityID string, s *State) error

	// DeletePartition removes identityID's partition entirely
	// (clearCart). Deleting a missing partition is a no-op.
	DeletePartition(ctx context.Context, identityID string) error
}
