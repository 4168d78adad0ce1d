// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	checkoutdom "milkmaster/internal/domain/checkout"
	"milkmaster/internal/domain/identity"
	orderdom "milkmaster/internal/domain/order"
)

var (
	ErrCheckoutSessionNil   = errors.New("checkout_usecase: session is nil")
	ErrSubmissionInProgress = errors.New("checkout_usecase: submission already in progress")
)

// ========================================
// Outbound ports (implemented in adapters/out)
// ========================================

// ProfileFetcher reads GET /api/user/profile for delivery prefill.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, bearerToken string) (checkoutdom.DeliveryForm, error)
}

// ProfileCache reads the locally cached profile record, the fallback
// when the profile endpoint is unreachable.
type ProfileCache interface {
	CachedDeliveryProfile(ctx context.Context) (checkoutdom.DeliveryForm, bool)
}

// StockRequest is one {productId, quantity} pair for server-side
// stock validation.
type StockRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// InvalidStockItem is one server-reported discrepancy.
type InvalidStockItem struct {
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockConflictError carries the itemized discrepancies from the
// validate-stock endpoint. The advisory recovery path is a full
// reload; there is no partial re-sync.
type StockConflictError struct {
	Items   []InvalidStockItem
	Message string
}

func (e *StockConflictError) Error() string {
	if len(e.Items) > 0 {
		parts := make([]string, 0, len(e.Items))
		for _, it := range e.Items {
			name := it.Name
			if name == "" {
				name = "Product"
			}
			parts = append(parts, fmt.Sprintf("%s: Requested %d, only %d in stock", name, it.Requested, it.Available))
		}
		return "Stock validation failed: " + strings.Join(parts, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return "Stock validation failed"
}

// StockValidator calls POST /api/products/validate-stock. A conflict
// surfaces as *StockConflictError; transport problems as normalized
// errors.
type StockValidator interface {
	ValidateStock(ctx context.Context, bearerToken string, items []StockRequest) error
}

// OrderSubmitter calls POST /api/orders.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, bearerToken string, o orderdom.Order) (orderdom.Confirmation, error)
}

// CardVerification is the verify-card endpoint outcome. On success
// the server issues an OTP which the client relays by mail.
type CardVerification struct {
	Success bool   `json:"success"`
	OTP     string `json:"otp"`
	Message string `json:"message"`
}

// CardVerifier calls POST /api/verify-card.
type CardVerifier interface {
	VerifyCard(ctx context.Context, bearerToken string, card checkoutdom.CardForm) (CardVerification, error)
}

// OTPVerifier calls POST /api/verify-otp, comparing the entered code
// against the server-issued one.
type OTPVerifier interface {
	VerifyOTP(ctx context.Context, bearerToken, entered, expected string) (bool, string, error)
}

// OTPMailer relays the issued OTP to the account holder over the
/// transactional-mail channel. Fire-and-forget: failure is reported
// but never fatal.
type OTPMailer interface {
	SendOTP(ctx context.Context, toEmail, otp, cardHolder string, amount decimal.Decimal) error
}

// ========================================
// Usecase
// ========================================

// CheckoutUsecase drives the 3-step wizard (Address -> Summary ->
// Payment), the card/OTP verification sub-flow and the terminal order
// submission. It reads the Cart Store only through CartUsecase's
// public contract.
type CheckoutUsecase struct {
	carts    *CartUsecase
	ids      identity.Resolver
	profiles ProfileFetcher
	cache    ProfileCache
	stock    StockValidator
	orders   OrderSubmitter
	cards    CardVerifier
	otps     OTPVerifier
	mailer   OTPMailer

	newID func() string

	mu   sync.Mutex
	busy map[string]bool
}

type CheckoutDeps struct {
	Carts    *CartUsecase
	Identity identity.Resolver
	Profiles ProfileFetcher
	Cache    ProfileCache
	Stock    StockValidator
	Orders   OrderSubmitter
	Cards    CardVerifier
	OTPs     OTPVerifier
	Mailer   OTPMailer

	// NewID mints session ids (uuid in the container).
	NewID func() string
}

func NewCheckoutUsecase(deps CheckoutDeps) *CheckoutUsecase {
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return "" }
	}
	return &CheckoutUsecase{
		carts:    deps.Carts,
		ids:      deps.Identity,
		profiles: deps.Profiles,
		cache:    deps.Cache,
		stock:    deps.Stock,
		orders:   deps.Orders,
		cards:    deps.Cards,
		otps:     deps.OTPs,
		mailer:   deps.Mailer,
		newID:    newID,
		busy:     map[string]bool{},
	}
}

// Start mounts a wizard for the current identity and prefills the
// delivery form: profile endpoint first, cached profile on failure,
// token email as the last resort. Anonymous callers get
// checkout.ErrNotAuthenticated (the shell redirects to login; no
// checkout state survives that redirect).
func (uc *CheckoutUsecase) Start(ctx context.Context) (*checkoutdom.Session, error) {
	ident := uc.ids.Resolve(ctx)

	sess, err := checkoutdom.NewSession(uc.newID(), ident)
	if err != nil {
		return nil, err
	}

	cached, _ := uc.cachedProfile(ctx)

	fetched, fetchErr := uc.profiles.FetchProfile(ctx, uc.ids.BearerToken(ctx))
	if fetchErr != nil {
		log.Printf("[checkout_uc] WARN: profile fetch failed, using cached data: %v", fetchErr)
		sess.Delivery = cached
		sess.FetchStatus = checkoutdom.FetchStatus{
			Success: false,
			Message: fmt.Sprintf("Could not load data from backend: %v. Using locally stored data instead.", fetchErr),
		}
	} else {
		sess.Delivery = mergeProfiles(fetched, cached)
		sess.FetchStatus = checkoutdom.FetchStatus{
			Success: true,
			Message: "Successfully loaded user data from backend",
		}
	}

	if sess.Delivery.Email == "" {
		sess.Delivery.Email = ident.Email
	}

	return sess, nil
}

// Next advances the wizard one step, consulting the Cart Store for
// the Summary guard.
func (uc *CheckoutUsecase) Next(ctx context.Context, sess *checkoutdom.Session) error {
	if sess == nil {
		return ErrCheckoutSessionNil
	}

	cartEmpty := false
	if sess.Step == checkoutdom.StepSummary {
		count, err := uc.carts.GetCartCount(ctx)
		if err != nil {
			return err
		}
		cartEmpty = count == 0
	}

	return sess.Next(cartEmpty)
}

// Back moves one step back; always permitted, clears no form data.
func (uc *CheckoutUsecase) Back(sess *checkoutdom.Session) error {
	if sess == nil {
		return ErrCheckoutSessionNil
	}
	sess.Back()
	return nil
}

// SelectPaymentMethod records the choice on the Payment step.
func (uc *CheckoutUsecase) SelectPaymentMethod(sess *checkoutdom.Session, method checkoutdom.PaymentMethod) error {
	if sess == nil {
		return ErrCheckoutSessionNil
	}
	switch method {
	case checkoutdom.PaymentCashOnDelivery, checkoutdom.PaymentCard:
		sess.PaymentMethod = method
		return nil
	default:
		return &checkoutdom.ValidationError{Message: "Please select a payment method to continue"}
	}
}

func (uc *CheckoutUsecase) cachedProfile(ctx context.Context) (checkoutdom.DeliveryForm, bool) {
	if uc.cache == nil {
		return checkoutdom.DeliveryForm{}, false
	}
	return uc.cache.CachedDeliveryProfile(ctx)
}

// mergeProfiles overlays the fetched profile on the cached one,
// field by field; fetched data wins where present.
func mergeProfiles(fetched, cached checkoutdom.DeliveryForm) checkoutdom.DeliveryForm {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	return checkoutdom.DeliveryForm{
		FirstName: pick(fetched.FirstName, cached.FirstName),
		LastName:  pick(fetched.LastName, cached.LastName),
		Email:     pick(fetched.Email, cached.Email),
		Phone:     pick(fetched.Phone, cached.Phone),
		Address:   pick(fetched.Address, cached.Address),
		City:      pick(fetched.City, cached.City),
		State:     pick(fetched.State, cached.State),
		Pincode:   pick(fetched.Pincode, cached.Pincode),
	}
}
