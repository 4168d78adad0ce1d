// internal/adapters/in/http/middleware/bearer.go
package middleware

import (
	"net/http"
	"strings"

	"milkmaster/internal/auth"
	"milkmaster/internal/domain/identity"
)

// Bearer extracts the Authorization bearer token, resolves the caller
// identity once, and attaches both to the request context. Anonymous
// requests pass through: the Cart Store serves them, checkout rejects
// them at entry.
type Bearer struct {
	Resolver identity.Resolver
}

func (m *Bearer) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token != "" {
				ctx = auth.WithBearerToken(ctx, token)
			}
		}

		if m.Resolver != nil {
			if ident := m.Resolver.Resolve(ctx); !ident.IsAnonymous() {
				ctx = auth.WithIdentity(ctx, ident)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
