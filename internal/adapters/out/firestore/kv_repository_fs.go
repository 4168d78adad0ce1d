// internal/adapters/out/firestore/kv_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"milkmaster/internal/adapters/out/kv"
)

// KVRepositoryFS implements kv.Store on Firestore.
//
// Collection design:
// - collection: clientStorage
// - docId: storage key (e.g. "cartItems_<identity>")
// - fields: value (bytes)
type KVRepositoryFS struct {
	Client     *firestore.Client
	Collection string
}

type kvDoc struct {
	Value []byte `firestore:"value"`
}

const defaultKVCollection = "clientStorage"

func NewKVRepositoryFS(client *firestore.Client) *KVRepositoryFS {
	return &KVRepositoryFS{Client: client, Collection: defaultKVCollection}
}

func (r *KVRepositoryFS) col() *firestore.CollectionRef {
	name := strings.TrimSpace(r.Collection)
	if name == "" {
		name = defaultKVCollection
	}
	return r.Client.Collection(name)
}

func (r *KVRepositoryFS) Get(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("kv_repository_fs: firestore client is nil")
	}
	k := strings.TrimSpace(key)
	if k == "" {
		return nil, errors.New("kv_repository_fs: key is empty")
	}

	snap, err := r.col().Doc(k).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}

	var doc kvDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (r *KVRepositoryFS) Set(ctx context.Context, key string, value []byte) error {
	if r == nil || r.Client == nil {
		return errors.New("kv_repository_fs: firestore client is nil")
	}
	k := strings.TrimSpace(key)
	if k == "" {
		return errors.New("kv_repository_fs: key is empty")
	}

	// Overwrite full doc (simple & predictable).
	_, err := r.col().Doc(k).Set(ctx, kvDoc{Value: value})
	return err
}

func (r *KVRepositoryFS) Remove(ctx context.Context, key string) error {
	if r == nil || r.Client == nil {
		return errors.New("kv_repository_fs: firestore client is nil")
	}
	k := strings.TrimSpace(key)
	if k == "" {
		return errors.New("kv_repository_fs: key is empty")
	}

	// Delete is a no-op for a missing doc.
	_, err := r.col().Doc(k).Delete(ctx)
	return err
}
