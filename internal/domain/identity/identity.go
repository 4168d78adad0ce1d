// internal/domain/identity/identity.go
package identity

import (
	"context"
	"strings"
)

// Identity is the logical purchaser a cart partition belongs to.
// The zero value means "anonymous": cart operations still work, but
// checkout requires a resolved identity.
type Identity struct {
	ID    string
	Email string
}

// Anonymous is the zero identity.
var Anonymous = Identity{}

// IsAnonymous reports whether no purchaser could be resolved.
func (i Identity) IsAnonymous() bool {
	return strings.TrimSpace(i.ID) == ""
}

// Resolver derives the current identity from session data.
//
// Resolution order (see auth.Resolver):
//  1. identity attached to ctx by the bearer middleware
//  2. cached "user" record in client storage
//  3. bearer token payload claims
//
// Resolve never fails for the anonymous case; it returns Anonymous.
// BearerToken returns the raw bearer token ("" when absent) for
// forwarding to the storefront API.
type Resolver interface {
	Resolve(ctx context.Context) Identity
	BearerToken(ctx context.Context) string
}
