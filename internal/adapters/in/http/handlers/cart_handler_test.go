// internal/adapters/in/http/handlers/cart_handler_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkmaster/internal/adapters/out/kv"
	"milkmaster/internal/adapters/out/storage"
	"milkmaster/internal/application/usecase"
	"milkmaster/internal/domain/identity"
)

type staticResolver struct {
	ident identity.Identity
}

func (s staticResolver) Resolve(context.Context) identity.Identity { return s.ident }
func (s staticResolver) BearerToken(context.Context) string        { return "" }

func newCartAPI() http.Handler {
	repo := storage.NewCartRepositoryKV(kv.NewMemory())
	uc := usecase.NewCartUsecase(repo, staticResolver{ident: identity.Identity{ID: "u1"}})
	return NewCartHandler(uc)
}

func doReq(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCartAddListRemoveOverHTTP(t *testing.T) {
	api := newCartAPI()

	rec := doReq(t, api, http.MethodPost, "/cart/items",
		`{"productId":"p1","name":"Full Cream Milk 1L","price":"55.50","quantity":2,"stock":10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res usecase.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "Item added to cart successfully", res.Message)

	rec = doReq(t, api, http.MethodGet, "/cart/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = doReq(t, api, http.MethodGet, "/cart/total", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":"111.00"}`, rec.Body.String())

	rec = doReq(t, api, http.MethodDelete, "/cart/items/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doReq(t, api, http.MethodGet, "/cart/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestCartStockRejectionReturnsConflict(t *testing.T) {
	api := newCartAPI()

	rec := doReq(t, api, http.MethodPost, "/cart/items",
		`{"productId":"p1","name":"Butter 500g","price":"240","quantity":3,"stock":2}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var res usecase.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "Butter 500g: Requested 3, only 2 in stock", res.Message)
}

func TestCartQuantityUpdateOverHTTP(t *testing.T) {
	api := newCartAPI()

	doReq(t, api, http.MethodPost, "/cart/items",
		`{"productId":"p1","name":"Paneer","price":"80","quantity":1,"stock":4}`)

	rec := doReq(t, api, http.MethodPatch, "/cart/items/p1", `{"quantity":-2}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var res usecase.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Quantity cannot be negative", res.Message)

	rec = doReq(t, api, http.MethodPatch, "/cart/items/p1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doReq(t, api, http.MethodGet, "/cart/count", "")
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())
}

func TestCartToggleOverHTTP(t *testing.T) {
	api := newCartAPI()

	rec := doReq(t, api, http.MethodPost, "/cart/toggle", "")
	assert.JSONEq(t, `{"open":true}`, rec.Body.String())

	rec = doReq(t, api, http.MethodGet, "/cart/open", "")
	assert.JSONEq(t, `{"open":true}`, rec.Body.String())
}

func TestUnknownCartRouteIs404(t *testing.T) {
	api := newCartAPI()
	rec := doReq(t, api, http.MethodGet, "/cart/bogus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
