// internal/application/usecase/verification_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	checkoutdom "milkmaster/internal/domain/checkout"
)

// Card/OTP verification sub-flow. This is a mocked payment channel:
// the verify-card endpoint issues the OTP and the client relays it to
// the account holder by transactional mail, then echoes the entered
// code back for comparison. Not a production payment processor.

// VerifyCard runs card verification for the session. The returned
// message is the inline status line; a declined card or failed relay
// is a message, not an error. Re-running from awaiting-otp acts as
// "resend" and reissues the OTP.
func (uc *CheckoutUsecase) VerifyCard(ctx context.Context, sess *checkoutdom.Session) (string, error) {
	if sess == nil {
		return "", ErrCheckoutSessionNil
	}
	if sess.PaymentMethod != checkoutdom.PaymentCard {
		return "", &checkoutdom.ValidationError{Message: "Card verification applies to card payments only"}
	}
	if !sess.Card.Complete() {
		return "", &checkoutdom.ValidationError{Message: "Please fill in all card details before verifying"}
	}

	if err := sess.Verification.Begin(); err != nil {
		return "", err
	}

	resp, err := uc.cards.VerifyCard(ctx, uc.ids.BearerToken(ctx), sess.Card)
	if err != nil {
		log.Printf("[checkout_uc] WARN: card verification call failed: %v", err)
		if derr := sess.Verification.CardDeclined("Error verifying card. Please try again."); derr != nil {
			return "", derr
		}
		return "Error verifying card. Please try again.", nil
	}

	if !resp.Success {
		reason := resp.Message
		if reason == "" {
			reason = "Card verification failed"
		}
		if derr := sess.Verification.CardDeclined(reason); derr != nil {
			return "", derr
		}
		return reason, nil
	}

	toEmail := sess.Delivery.Email
	if toEmail == "" {
		toEmail = sess.Identity.Email
	}

	mailSent := false
	if resp.OTP != "" && uc.mailer != nil {
		if mailErr := uc.mailer.SendOTP(ctx, toEmail, resp.OTP, sess.Card.HolderName, uc.cartTotalOrZero(ctx)); mailErr != nil {
			log.Printf("[checkout_uc] WARN: otp mail relay failed: %v", mailErr)
		} else {
			mailSent = true
		}
	}

	if aerr := sess.Verification.CardApproved(resp.OTP, mailSent); aerr != nil {
		return "", aerr
	}

	if resp.OTP != "" && !mailSent {
		return "Card verified but failed to send OTP email. Please try again.", nil
	}
	return "Card verified successfully! Please check your email for OTP.", nil
}

// VerifyOTP compares the entered code against the issued one via the
// verify endpoint. A mismatch keeps the sub-flow awaiting entry;
// retry and resend stay available.
func (uc *CheckoutUsecase) VerifyOTP(ctx context.Context, sess *checkoutdom.Session, entered string) (string, error) {
	if sess == nil {
		return "", ErrCheckoutSessionNil
	}
	if sess.Verification.Phase() != checkoutdom.VerificationAwaitingOTP {
		return "", checkoutdom.ErrVerificationTransition
	}

	if err := checkoutdom.CheckOTPInput(entered); err != nil {
		if errors.Is(err, checkoutdom.ErrOTPTooShort) {
			return "", &checkoutdom.ValidationError{Message: "Invalid OTP: Please enter a valid 6-digit OTP"}
		}
		return "", err
	}

	ok, message, err := uc.otps.VerifyOTP(ctx, uc.ids.BearerToken(ctx), entered, sess.Verification.IssuedOTP())
	if err != nil {
		log.Printf("[checkout_uc] WARN: otp verification call failed: %v", err)
		return "Error verifying OTP. Please try again.", nil
	}

	if !ok {
		if message == "" {
			message = "Invalid OTP. Please check and try again."
		}
		return message, nil
	}

	if cerr := sess.Verification.ConfirmOTP(); cerr != nil {
		return "", cerr
	}
	return "OTP verified successfully! Your payment will be marked as 'Paid' when you place the order.", nil
}

func (uc *CheckoutUsecase) cartTotalOrZero(ctx context.Context) decimal.Decimal {
	t, err := uc.carts.GetCartTotal(ctx)
	if err != nil {
		log.Printf("[checkout_uc] WARN: cart total unavailable for otp mail: %v", err)
		return decimal.Zero
	}
	return t
}
