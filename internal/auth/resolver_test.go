// internal/auth/resolver_test.go
package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkmaster/internal/adapters/out/kv"
	"milkmaster/internal/domain/identity"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestResolvePrefersContextIdentity(t *testing.T) {
	r := NewResolver(kv.NewMemory())
	ctx := WithIdentity(context.Background(), identity.Identity{ID: "ctx-user"})

	got := r.Resolve(ctx)
	assert.Equal(t, "ctx-user", got.ID)
}

func TestResolveReadsCachedUserRecord(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "user", []byte(`{"_id":"mongo-1","email":"m@example.com"}`)))

	r := NewResolver(store)
	got := r.Resolve(ctx)
	assert.Equal(t, "mongo-1", got.ID)
	assert.Equal(t, "m@example.com", got.Email)
}

func TestResolveDecodesBearerClaims(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	token := signedToken(t, jwt.MapClaims{"userId": "u-77", "email": "tok@example.com"})
	require.NoError(t, store.Set(ctx, "token", []byte(token)))

	r := NewResolver(store)
	got := r.Resolve(ctx)
	assert.Equal(t, "u-77", got.ID)
	assert.Equal(t, "tok@example.com", got.Email)
}

func TestResolveFallsBackToAnonymous(t *testing.T) {
	r := NewResolver(kv.NewMemory())
	got := r.Resolve(context.Background())
	assert.True(t, got.IsAnonymous())
}

func TestBearerTokenPrefersContext(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "token", []byte("stored-token")))

	r := NewResolver(store)
	assert.Equal(t, "stored-token", r.BearerToken(ctx))
	assert.Equal(t, "header-token", r.BearerToken(WithBearerToken(ctx, "header-token")))
}

func TestCachedDeliveryProfile(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "user", []byte(`{
		"id":"u1","email":"asha@example.com","firstName":"Asha","lastName":"Patel",
		"phone":"9876543210","address":"12 Dairy Lane","city":"Pune","state":"MH","pincode":"411001"
	}`)))

	r := NewResolver(store)
	form, ok := r.CachedDeliveryProfile(ctx)
	require.True(t, ok)
	assert.Equal(t, "Asha", form.FirstName)
	assert.Equal(t, "411001", form.Pincode)

	// no cached record
	empty := NewResolver(kv.NewMemory())
	_, ok = empty.CachedDeliveryProfile(ctx)
	assert.False(t, ok)
}
