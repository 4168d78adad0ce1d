// internal/adapters/out/mail/otp_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const otpSubject = "BankCard OTP"

// OTPMailer relays the server-issued OTP to the account holder. It
// implements the checkout usecase's OTPMailer port on top of
// EmailClient.
type OTPMailer struct {
	client      EmailClient
	fromAddress string
}

func NewOTPMailer(client EmailClient, fromAddress string) *OTPMailer {
	return &OTPMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
	}
}

// SendOTP sends the one-time code for a card purchase. The amount is
// rendered with two decimal places, matching the order total shown at
// checkout.
func (m *OTPMailer) SendOTP(ctx context.Context, toEmail, otp, cardHolder string, amount decimal.Decimal) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("otp mailer is not configured")
	}
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("otp mail recipient is empty")
	}

	body := fmt.Sprintf(
		"Dear Customer, Your OTP for an online purchase of Rs. %s at MilkMaster (Holder: %s) is %s. Please do not share this OTP with anyone.",
		amount.StringFixed(2),
		strings.TrimSpace(cardHolder),
		otp,
	)

	return m.client.Send(ctx, m.fromAddress, toEmail, otpSubject, body)
}
