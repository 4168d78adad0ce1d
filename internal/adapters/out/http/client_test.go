// internal/adapters/out/http/client_test.go
package httpout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkmaster/internal/application/usecase"
	"milkmaster/internal/domain/checkout"
	"milkmaster/internal/domain/order"
)

func TestHTMLErrorPageNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
	}))
	defer srv.Close()

	_, err := NewProfileClient(srv.URL).FetchProfile(context.Background(), "tok")
	require.ErrorIs(t, err, ErrServerUnreachable)
	assert.Equal(t, "Server is down or returned an HTML error page. Please try again later.", err.Error())
}

func TestMalformedJSONNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"firstName": truncated`))
	}))
	defer srv.Close()

	_, err := NewProfileClient(srv.URL).FetchProfile(context.Background(), "tok")
	require.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, "Server returned an invalid response format. Please try again.", err.Error())
}

func TestConnectionRefusedNormalizes(t *testing.T) {
	// closed server: the port refuses connections
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewProfileClient(url).FetchProfile(context.Background(), "tok")
	require.ErrorIs(t, err, ErrServerUnreachable)
}

func TestFetchProfileReadsNestedUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user":{"firstName":"Asha","email":"asha@example.com"}}`))
	}))
	defer srv.Close()

	form, err := NewProfileClient(srv.URL).FetchProfile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Asha", form.FirstName)
	assert.Equal(t, "asha@example.com", form.Email)
}

func TestValidateStockParsesInvalidItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/validate-stock", r.URL.Path)

		var body struct {
			Items []usecase.StockRequest `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Items, 1)
		assert.Equal(t, "p1", body.Items[0].ProductID)

		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"invalidItems":[{"name":"Full Cream Milk","requested":4,"available":2}]}`))
	}))
	defer srv.Close()

	err := NewStockClient(srv.URL).ValidateStock(context.Background(), "tok", []usecase.StockRequest{{ProductID: "p1", Quantity: 4}})

	var stockErr *usecase.StockConflictError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Items, 1)
	assert.Equal(t, 2, stockErr.Items[0].Available)
}

func TestValidateStockSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	err := NewStockClient(srv.URL).ValidateStock(context.Background(), "tok", nil)
	require.NoError(t, err)
}

func TestSubmitOrderMongoIDFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)

		var got order.Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "u1", got.UserID)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"order":{"_id":"abc123","orderNumber":"MM-1001","status":"created","paymentStatus":"Pending","stockUpdates":[{"productId":"p1","stock":3}]}}`))
	}))
	defer srv.Close()

	o, err := order.New("u1",
		[]order.Item{{ProductID: "p1", Price: decimal.NewFromInt(55), Quantity: 2}},
		decimal.NewFromInt(110),
		order.DeliveryAddress{Name: "Asha Patel"},
		"cod", nil, order.PaymentStatusPending)
	require.NoError(t, err)

	conf, err := NewOrderClient(srv.URL).SubmitOrder(context.Background(), "tok", o)
	require.NoError(t, err)
	assert.Equal(t, "abc123", conf.OrderID)
	assert.Equal(t, "MM-1001", conf.OrderNumber)
	require.Len(t, conf.StockUpdates, 1)
	assert.Equal(t, 3, conf.StockUpdates[0].Stock)
}

func TestSubmitOrderFailureSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Stock validation failed: Milk is out of stock"}`))
	}))
	defer srv.Close()

	o, err := order.New("u1",
		[]order.Item{{ProductID: "p1", Quantity: 1}},
		decimal.NewFromInt(55),
		order.DeliveryAddress{}, "cod", nil, order.PaymentStatusPending)
	require.NoError(t, err)

	_, err = NewOrderClient(srv.URL).SubmitOrder(context.Background(), "tok", o)
	require.EqualError(t, err, "Stock validation failed: Milk is out of stock")
}

func TestVerifyCardSendsRawFormOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verify-card", r.URL.Path)

		var got map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "4111111111111111", got["cardNumber"])
		assert.Equal(t, "123", got["cardCvv"])

		_, _ = w.Write([]byte(`{"success":true,"otp":"654321"}`))
	}))
	defer srv.Close()

	resp, err := NewPaymentClient(srv.URL).VerifyCard(context.Background(), "tok", checkout.CardForm{
		Number: "4111111111111111", Expiry: "12/27", CVV: "123", HolderName: "ASHA",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "654321", resp.OTP)
}

func TestVerifyOTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verify-otp", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid OTP"}`))
	}))
	defer srv.Close()

	ok, msg, err := NewPaymentClient(srv.URL).VerifyOTP(context.Background(), "tok", "111111", "654321")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Invalid OTP", msg)
}
