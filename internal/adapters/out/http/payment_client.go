// internal/adapters/out/http/payment_client.go
package httpout

import (
	"context"
	"net/http"
	"strings"

	"milkmaster/internal/application/usecase"
	"milkmaster/internal/domain/checkout"
)

// PaymentClient backs the card-verification sub-flow: POST
// /api/verify-card and POST /api/verify-otp.
type PaymentClient struct {
	apiClient
}

func NewPaymentClient(baseURL string) *PaymentClient {
	return &PaymentClient{apiClient: newAPIClient(baseURL)}
}

type verifyCardRequest struct {
	CardNumber string `json:"cardNumber"`
	CardExpiry string `json:"cardExpiry"`
	CardCvv    string `json:"cardCvv"`
	CardName   string `json:"cardName"`
}

// VerifyCard implements CheckoutUsecase's CardVerifier port. The raw
// card fields, CVV included, go to the verification endpoint only.
func (c *PaymentClient) VerifyCard(ctx context.Context, bearerToken string, card checkout.CardForm) (usecase.CardVerification, error) {
	req := verifyCardRequest{
		CardNumber: strings.TrimSpace(card.Number),
		CardExpiry: strings.TrimSpace(card.Expiry),
		CardCvv:    strings.TrimSpace(card.CVV),
		CardName:   strings.TrimSpace(card.HolderName),
	}

	var res usecase.CardVerification
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/verify-card", bearerToken, req, &res); err != nil {
		return usecase.CardVerification{}, err
	}
	return res, nil
}

type verifyOTPRequest struct {
	OTP      string `json:"otp"`
	Expected string `json:"expectedOtp"`
}

type verifyOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyOTP implements CheckoutUsecase's OTPVerifier port.
func (c *PaymentClient) VerifyOTP(ctx context.Context, bearerToken, entered, expected string) (bool, string, error) {
	req := verifyOTPRequest{OTP: strings.TrimSpace(entered), Expected: expected}

	var res verifyOTPResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/verify-otp", bearerToken, req, &res); err != nil {
		return false, "", err
	}
	return res.Success, res.Message, nil
}
