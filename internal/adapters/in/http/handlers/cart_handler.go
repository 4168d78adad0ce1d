// internal/adapters/in/http/handlers/cart_handler.go
package handlers

import (
	"net/http"
	"strings"

	"milkmaster/internal/application/usecase"
	cartdom "milkmaster/internal/domain/cart"
)

// CartHandler serves /cart endpoints. All identity handling happens in
// the usecase via the resolver; the handler never inspects tokens.
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) http.Handler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/cart/items":
		h.items(w, r)
	case r.Method == http.MethodGet && path == "/cart/count":
		h.count(w, r)
	case r.Method == http.MethodGet && path == "/cart/total":
		h.total(w, r)
	case r.Method == http.MethodGet && path == "/cart/open":
		writeJSON(w, http.StatusOK, map[string]bool{"open": h.uc.IsCartOpen()})
	case r.Method == http.MethodPost && path == "/cart/toggle":
		writeJSON(w, http.StatusOK, map[string]bool{"open": h.uc.ToggleCart()})
	case r.Method == http.MethodPost && path == "/cart/items":
		h.add(w, r)
	case r.Method == http.MethodPatch && strings.HasPrefix(path, "/cart/items/"):
		h.updateQuantity(w, r, strings.TrimPrefix(path, "/cart/items/"))
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/cart/items/"):
		h.remove(w, r, strings.TrimPrefix(path, "/cart/items/"))
	case r.Method == http.MethodDelete && path == "/cart/items":
		h.clear(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	}
}

// GET /cart/items
func (h *CartHandler) items(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.GetUserCartItems(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if items == nil {
		items = []cartdom.Line{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GET /cart/count
func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	count, err := h.uc.GetCartCount(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// GET /cart/total
func (h *CartHandler) total(w http.ResponseWriter, r *http.Request) {
	total, err := h.uc.GetCartTotal(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}

// POST /cart/items
func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var line cartdom.Line
	if !decodeBody(w, r, &line) {
		return
	}
	res, err := h.uc.AddToCart(r.Context(), line)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, res)
}

// PATCH /cart/items/{productRef}
func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request, ref string) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := h.uc.UpdateQuantity(r.Context(), ref, body.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, res)
}

// DELETE /cart/items/{productRef}
func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request, ref string) {
	res, err := h.uc.RemoveFromCart(r.Context(), ref)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, res)
}

// DELETE /cart/items
func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.ClearCart(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeResult(w http.ResponseWriter, res usecase.Result) {
	code := http.StatusOK
	if !res.Success {
		code = http.StatusConflict
	}
	writeJSON(w, code, res)
}
