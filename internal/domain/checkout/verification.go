// internal/domain/checkout/verification.go
package checkout

import "errors"

var (
	ErrVerificationTransition = errors.New("checkout: invalid verification transition")
	ErrOTPTooShort            = errors.New("checkout: otp shorter than 6 characters")
)

// VerificationPhase tags the card-verification sub-flow state.
type VerificationPhase string

const (
	VerificationIdle        VerificationPhase = "idle"
	VerificationVerifying   VerificationPhase = "verifying"
	VerificationAwaitingOTP VerificationPhase = "awaiting_otp"
	VerificationOTPVerified VerificationPhase = "otp_verified"
	VerificationFailed      VerificationPhase = "failed"
)

// Verification is the card-verification sub-flow, entered only when
// the payment method is card. One tagged value instead of independent
// flags, so an issued OTP exists only while awaiting entry and a
// failure reason only after a decline.
//
//	idle -> verifying -> {awaiting_otp, failed}
//	awaiting_otp -> otp_verified (exact match via verify endpoint)
//	awaiting_otp -> verifying    (resend: re-runs card verification)
//	failed       -> verifying    (retry)
type Verification struct {
	phase     VerificationPhase
	issuedOTP string
	mailSent  bool
	reason    string
}

// NewVerification starts at idle.
func NewVerification() Verification {
	return Verification{phase: VerificationIdle}
}

func (v Verification) Phase() VerificationPhase { return v.phase }

// IssuedOTP is the server-issued code, set while awaiting entry.
func (v Verification) IssuedOTP() string { return v.issuedOTP }

// MailSent reports whether the OTP relay succeeded. A failed relay
// does not block retry; the user may re-run verification.
func (v Verification) MailSent() bool { return v.mailSent }

// FailureReason is set only in the failed phase.
func (v Verification) FailureReason() string { return v.reason }

// Verified reports whether the sub-flow reached otp_verified.
func (v Verification) Verified() bool { return v.phase == VerificationOTPVerified }

// Begin enters verifying. Permitted from idle, failed, or
// awaiting_otp (resend reissues the OTP); once verified the sub-flow
// is terminal.
func (v *Verification) Begin() error {
	switch v.phase {
	case VerificationIdle, VerificationFailed, VerificationAwaitingOTP:
		*v = Verification{phase: VerificationVerifying}
		return nil
	default:
		return ErrVerificationTransition
	}
}

// CardApproved records a server-approved card and the issued OTP.
func (v *Verification) CardApproved(otp string, mailSent bool) error {
	if v.phase != VerificationVerifying {
		return ErrVerificationTransition
	}
	*v = Verification{phase: VerificationAwaitingOTP, issuedOTP: otp, mailSent: mailSent}
	return nil
}

// CardDeclined records a server decline.
func (v *Verification) CardDeclined(reason string) error {
	if v.phase != VerificationVerifying {
		return ErrVerificationTransition
	}
	*v = Verification{phase: VerificationFailed, reason: reason}
	return nil
}

// CheckOTPInput is the local pre-check before the verify endpoint is
// consulted: the entered code must be at least 6 characters.
func CheckOTPInput(entered string) error {
	if len(entered) < 6 {
		return ErrOTPTooShort
	}
	return nil
}

// ConfirmOTP marks the sub-flow verified after the endpoint reported
// an exact match. A mismatch is not a transition: the phase stays
// awaiting_otp and the user may retry or resend.
func (v *Verification) ConfirmOTP() error {
	if v.phase != VerificationAwaitingOTP {
		return ErrVerificationTransition
	}
	*v = Verification{phase: VerificationOTPVerified}
	return nil
}
