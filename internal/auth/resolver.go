// internal/auth/resolver.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"milkmaster/internal/adapters/out/kv"
	"milkmaster/internal/domain/checkout"
	"milkmaster/internal/domain/identity"
)

// Storage keys owned by the auth module; the cart/checkout side only
// reads them through this resolver.
const (
	userRecordKey  = "user"
	bearerTokenKey = "token"
)

type ctxKey int

const (
	ctxKeyIdentity ctxKey = iota
	ctxKeyBearerToken
)

// WithIdentity attaches a pre-resolved identity (e.g. from the bearer
// middleware) to ctx.
func WithIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, ident)
}

// WithBearerToken attaches the raw bearer token to ctx.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyBearerToken, strings.TrimSpace(token))
}

// Resolver centralizes identity derivation so the Cart Store and the
// Checkout Flow Controller never re-implement token decoding.
//
// Resolution order:
//  1. identity attached to ctx
//  2. cached "user" record in client storage (id / _id field)
//  3. bearer token payload claims (id / userId / sub)
//
// Every step degrades to the next; the final fallback is Anonymous.
type Resolver struct {
	Store kv.Store
}

func NewResolver(store kv.Store) *Resolver {
	return &Resolver{Store: store}
}

var _ identity.Resolver = (*Resolver)(nil)

type userRecord struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
	Email   string `json:"email"`

	// Profile fields kept alongside the id for delivery prefill.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

func (r *Resolver) Resolve(ctx context.Context) identity.Identity {
	if v, ok := ctx.Value(ctxKeyIdentity).(identity.Identity); ok && !v.IsAnonymous() {
		return v
	}

	if rec, err := r.loadUserRecord(ctx); err == nil {
		id := rec.ID
		if id == "" {
			id = rec.MongoID
		}
		if id != "" {
			return identity.Identity{ID: id, Email: rec.Email}
		}
	}

	if token := r.BearerToken(ctx); token != "" {
		if ident, err := decodeClaims(token); err == nil {
			return ident
		} else {
			log.Printf("[auth] WARN: token decode failed: %v", err)
		}
	}

	return identity.Anonymous
}

func (r *Resolver) BearerToken(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyBearerToken).(string); ok && v != "" {
		return v
	}
	if r == nil || r.Store == nil {
		return ""
	}
	raw, err := r.Store.Get(ctx, bearerTokenKey)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// CachedDeliveryProfile returns the delivery fields of the cached
// "user" record. Used as the prefill fallback when the profile
// endpoint is unreachable.
func (r *Resolver) CachedDeliveryProfile(ctx context.Context) (checkout.DeliveryForm, bool) {
	rec, err := r.loadUserRecord(ctx)
	if err != nil {
		return checkout.DeliveryForm{}, false
	}
	form := checkout.DeliveryForm{
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Address:   rec.Address,
		City:      rec.City,
		State:     rec.State,
		Pincode:   rec.Pincode,
	}
	if len(form.MissingFields()) == 8 {
		return checkout.DeliveryForm{}, false
	}
	return form, true
}

func (r *Resolver) loadUserRecord(ctx context.Context) (userRecord, error) {
	if r == nil || r.Store == nil {
		return userRecord{}, errors.New("auth: store is nil")
	}
	raw, err := r.Store.Get(ctx, userRecordKey)
	if err != nil {
		return userRecord{}, err
	}
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return userRecord{}, err
	}
	return rec, nil
}

// decodeClaims reads the purchaser id out of a bearer token payload
// without signature verification; the storefront API is the verifier,
// this side only needs the partition key.
func decodeClaims(token string) (identity.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return identity.Anonymous, err
	}

	id := ""
	for _, claim := range []string{"id", "userId", "sub"} {
		if v, ok := claims[claim].(string); ok && strings.TrimSpace(v) != "" {
			id = strings.TrimSpace(v)
			break
		}
	}
	if id == "" {
		return identity.Anonymous, errors.New("auth: no user id claim in token")
	}

	email := ""
	if v, ok := claims["email"].(string); ok {
		email = strings.TrimSpace(v)
	}

	return identity.Identity{ID: id, Email: email}, nil
}
