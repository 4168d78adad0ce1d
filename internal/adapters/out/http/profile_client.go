// internal/adapters/out/http/profile_client.go
package httpout

import (
	"context"
	"fmt"
	"net/http"

	"milkmaster/internal/domain/checkout"
)

// ProfileClient reads GET /api/user/profile for delivery prefill.
type ProfileClient struct {
	apiClient
}

func NewProfileClient(baseURL string) *ProfileClient {
	return &ProfileClient{apiClient: newAPIClient(baseURL)}
}

type profileFields struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

type profileResponse struct {
	profileFields
	// Some deployments nest the record under "user".
	User *profileFields `json:"user"`
}

// FetchProfile implements CheckoutUsecase's ProfileFetcher port.
func (c *ProfileClient) FetchProfile(ctx context.Context, bearerToken string) (checkout.DeliveryForm, error) {
	var res profileResponse
	status, err := c.doJSON(ctx, http.MethodGet, "/api/user/profile", bearerToken, nil, &res)
	if err != nil {
		return checkout.DeliveryForm{}, err
	}
	if status < 200 || status >= 300 {
		return checkout.DeliveryForm{}, fmt.Errorf("profile fetch failed status=%d", status)
	}

	fields := res.profileFields
	if res.User != nil {
		fields = *res.User
	}
	return checkout.DeliveryForm{
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Email:     fields.Email,
		Phone:     fields.Phone,
		Address:   fields.Address,
		City:      fields.City,
		State:     fields.State,
		Pincode:   fields.Pincode,
	}, nil
}
