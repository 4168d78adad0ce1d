// internal/domain/checkout/session.go
package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"milkmaster/internal/domain/identity"
)

var (
	ErrNotAuthenticated = errors.New("checkout: identity required")
)

// ValidationError is a user-correctable guard failure: the attempted
// transition is blocked, state is unchanged, and Message is rendered
// inline.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Step is the checkout wizard position. Transitions are forward/back
// only; no skipping.
type Step int

const (
	StepAddress Step = iota
	StepSummary
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepSummary:
		return "summary"
	case StepPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// PaymentMethod selection on the Payment step.
type PaymentMethod string

const (
	PaymentUnset          PaymentMethod = ""
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DeliveryForm holds the delivery address fields, prefilled from the
// profile endpoint with a cached-profile fallback.
type DeliveryForm struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

// MissingFields lists empty required fields in form order.
func (f DeliveryForm) MissingFields() []string {
	var missing []string
	for _, fv := range []struct {
		name  string
		value string
	}{
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"pincode", f.Pincode},
	} {
		if strings.TrimSpace(fv.value) == "" {
			missing = append(missing, fv.name)
		}
	}
	return missing
}

// Validate gates Address -> Summary: all fields present, email
// well-formed.
func (f DeliveryForm) Validate() error {
	if missing := f.MissingFields(); len(missing) > 0 {
		return &ValidationError{
			Message: fmt.Sprintf("Please fill all required fields: %s", strings.Join(missing, ", ")),
		}
	}
	if !emailPattern.MatchString(f.Email) {
		return &ValidationError{Message: "Please enter a valid email address"}
	}
	return nil
}

// FullName joins first and last name for the order's delivery address.
func (f DeliveryForm) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// CardForm holds raw card input. The CVV never leaves the session; it
// is used for the verification call only and is excluded from the
// order payload.
type CardForm struct {
	Number     string `json:"cardNumber"`
	Expiry     string `json:"cardExpiry"`
	CVV        string `json:"cardCvv"`
	HolderName string `json:"cardName"`
}

// Complete reports whether every card field is filled.
func (c CardForm) Complete() bool {
	return strings.TrimSpace(c.Number) != "" &&
		strings.TrimSpace(c.Expiry) != "" &&
		strings.TrimSpace(c.CVV) != "" &&
		strings.TrimSpace(c.HolderName) != ""
}

// FetchStatus reports how the delivery form was prefilled.
type FetchStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Session is one checkout wizard mount. Ephemeral: created on entry
// (identity required), discarded on successful submission or
// navigation away; never persisted across reloads.
type Session struct {
	ID       string
	Identity identity.Identity

	Step          Step
	Delivery      DeliveryForm
	PaymentMethod PaymentMethod
	Card          CardForm
	Verification  Verification

	FetchStatus FetchStatus

	// Submission bookkeeping.
	RetryCount            int
	StockRefreshSuggested bool
}

// NewSession starts a wizard at the Address step.
func NewSession(id string, ident identity.Identity) (*Session, error) {
	if ident.IsAnonymous() {
		return nil, ErrNotAuthenticated
	}
	return &Session{
		ID:           id,
		Identity:     ident,
		Step:         StepAddress,
		Verification: NewVerification(),
	}, nil
}

// Next advances one step, enforcing the entry guard for the step
// being left. cartEmpty is supplied by the Cart Store; the session
// has no private knowledge of storage.
func (s *Session) Next(cartEmpty bool) error {
	switch s.Step {
	case StepAddress:
		if err := s.Delivery.Validate(); err != nil {
			return err
		}
		s.Step = StepSummary
		return nil
	case StepSummary:
		if cartEmpty {
			return &ValidationError{Message: "Your cart is empty. Please add items to your cart before checkout."}
		}
		s.Step = StepPayment
		return nil
	default:
		return &ValidationError{Message: "You are already at the payment step."}
	}
}

// Back is always permitted and clears no form data.
func (s *Session) Back() {
	if s.Step > StepAddress {
		s.Step--
	}
}
