// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"milkmaster/internal/adapters/in/http/handlers"
	"milkmaster/internal/adapters/in/http/middleware"
	"milkmaster/internal/application/usecase"
	"milkmaster/internal/domain/identity"
)

// RouterDeps collects the usecases and the resolver injected from the
// composition root.
type RouterDeps struct {
	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase
	Resolver   identity.Resolver
}

// NewRouter sets up HTTP routing. Chain order matters: Recover
// innermost so a panic still gets CORS headers, Bearer inside CORS so
// preflights skip identity resolution.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.CartUC != nil {
		cart := handlers.NewCartHandler(deps.CartUC)
		mux.Handle("/cart/", cart)
	}

	if deps.CheckoutUC != nil {
		checkout := handlers.NewCheckoutHandler(deps.CheckoutUC)
		mux.Handle("/checkout/sessions", checkout)
		mux.Handle("/checkout/sessions/", checkout)
	}

	bearer := &middleware.Bearer{Resolver: deps.Resolver}

	var h http.Handler = mux
	h = middleware.Recover(h)
	h = bearer.Handler(h)
	h = middleware.CORS(h)
	return h
}
