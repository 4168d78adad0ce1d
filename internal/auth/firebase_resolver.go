// internal/auth/firebase_resolver.go
package auth

import (
	"context"
	"log"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"

	"milkmaster/internal/domain/identity"
)

// FirebaseResolver verifies the bearer token against Firebase Auth
// before trusting its uid. When verification is unavailable or fails
// it degrades to the unverified fallback resolver, so deployments
// without Firebase keep working.
type FirebaseResolver struct {
	Auth     *firebaseauth.Client
	Fallback identity.Resolver
}

func NewFirebaseResolver(client *firebaseauth.Client, fallback identity.Resolver) *FirebaseResolver {
	return &FirebaseResolver{Auth: client, Fallback: fallback}
}

var _ identity.Resolver = (*FirebaseResolver)(nil)

func (r *FirebaseResolver) Resolve(ctx context.Context) identity.Identity {
	token := r.BearerToken(ctx)
	if r == nil || r.Auth == nil || token == "" {
		return r.fallbackResolve(ctx)
	}

	decoded, err := r.Auth.VerifyIDToken(ctx, token)
	if err != nil {
		log.Printf("[auth] WARN: firebase token verify failed: %v", err)
		return r.fallbackResolve(ctx)
	}

	uid := strings.TrimSpace(decoded.UID)
	if uid == "" {
		return r.fallbackResolve(ctx)
	}

	email := ""
	if v, ok := decoded.Claims["email"].(string); ok {
		email = strings.TrimSpace(v)
	}
	return identity.Identity{ID: uid, Email: email}
}

func (r *FirebaseResolver) BearerToken(ctx context.Context) string {
	if r != nil && r.Fallback != nil {
		return r.Fallback.BearerToken(ctx)
	}
	return ""
}

func (r *FirebaseResolver) fallbackResolve(ctx context.Context) identity.Identity {
	if r != nil && r.Fallback != nil {
		return r.Fallback.Resolve(ctx)
	}
	return identity.Anonymous
}
