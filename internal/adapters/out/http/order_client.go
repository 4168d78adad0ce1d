// internal/adapters/out/http/order_client.go
package httpout

import (
	"context"
	"errors"
	"net/http"

	"milkmaster/internal/domain/order"
)

// OrderClient calls POST /api/orders.
type OrderClient struct {
	apiClient
}

func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{apiClient: newAPIClient(baseURL)}
}

type orderRecord struct {
	ID            string              `json:"id"`
	MongoID       string              `json:"_id"`
	OrderNumber   string              `json:"orderNumber"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"paymentMethod"`
	PaymentStatus order.PaymentStatus `json:"paymentStatus"`
	StockUpdates  []order.StockUpdate `json:"stockUpdates"`
}

type orderResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   *orderRecord `json:"order"`
	orderRecord
}

// SubmitOrder implements CheckoutUsecase's OrderSubmitter port.
func (c *OrderClient) SubmitOrder(ctx context.Context, bearerToken string, o order.Order) (order.Confirmation, error) {
	var res orderResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/api/orders", bearerToken, o, &res)
	if err != nil {
		return order.Confirmation{}, err
	}

	rec := res.orderRecord
	if res.Order != nil {
		rec = *res.Order
	}

	failed := status < 200 || status >= 300
	if failed || (!res.Success && rec.OrderNumber == "") {
		msg := res.Message
		if msg == "" {
			msg = "Order submission failed. Please try again."
		}
		return order.Confirmation{}, errors.New(msg)
	}

	id := rec.ID
	if id == "" {
		id = rec.MongoID
	}

	return order.Confirmation{
		OrderID:       id,
		OrderNumber:   rec.OrderNumber,
		Status:        rec.Status,
		PaymentMethod: rec.PaymentMethod,
		PaymentStatus: rec.PaymentStatus,
		StockUpdates:  rec.StockUpdates,
	}, nil
}
