// internal/adapters/out/http/stock_client.go
package httpout

import (
	"context"
	"fmt"
	"net/http"

	"milkmaster/internal/application/usecase"
)

// StockClient calls POST /api/products/validate-stock.
type StockClient struct {
	apiClient
}

func NewStockClient(baseURL string) *StockClient {
	return &StockClient{apiClient: newAPIClient(baseURL)}
}

type validateStockRequest struct {
	Items []usecase.StockRequest `json:"items"`
}

type validateStockResponse struct {
	Success      bool                       `json:"success"`
	Message      string                     `json:"message"`
	InvalidItems []usecase.InvalidStockItem `json:"invalidItems"`
}

// ValidateStock implements CheckoutUsecase's StockValidator port. A
// stock discrepancy surfaces as *usecase.StockConflictError so callers
// can itemize it; transport problems surface as normalized errors.
func (c *StockClient) ValidateStock(ctx context.Context, bearerToken string, items []usecase.StockRequest) error {
	var res validateStockResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/api/products/validate-stock", bearerToken, validateStockRequest{Items: items}, &res)
	if err != nil {
		return err
	}

	if res.Success {
		return nil
	}
	if len(res.InvalidItems) > 0 || res.Message != "" {
		return &usecase.StockConflictError{Items: res.InvalidItems, Message: res.Message}
	}
	return fmt.Errorf("stock validation failed status=%d", status)
}
