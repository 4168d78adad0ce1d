// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ========================================
// Errors
// ========================================

var (
	ErrInvalidUserID        = errors.New("order: invalid userId")
	ErrInvalidItems         = errors.New("order: invalid items")
	ErrInvalidPaymentMethod = errors.New("order: invalid paymentMethod")
)

// ========================================
// Snapshot structs (transmitted in Order)
// ========================================

// Item is a cart-line snapshot at submission time.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

// DeliveryAddress is the delivery-form snapshot.
type DeliveryAddress struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// PaymentDetails is the reduced card snapshot sent with card orders.
// The raw CVV is never part of this struct, so it cannot reach the
// order endpoint.
type PaymentDetails struct {
	CardNumber string `json:"cardNumber"`
	LastFour   string `json:"lastFour"`
	ExpiryDate string `json:"expiryDate"`
	CardName   string `json:"cardName"`
	Verified   bool   `json:"verified"`
}

// SanitizeCard reduces raw card input to the transmitted form:
// digits-only number, last four digits, expiry and holder name.
func SanitizeCard(number, expiry, holder string, verified bool) PaymentDetails {
	digits := digitsOnly(number)
	lastFour := "****"
	if len(digits) >= 4 {
		lastFour = digits[len(digits)-4:]
	}
	return PaymentDetails{
		CardNumber: digits,
		LastFour:   lastFour,
		ExpiryDate: strings.TrimSpace(expiry),
		CardName:   strings.TrimSpace(holder),
		Verified:   verified,
	}
}

// PaymentStatus accompanies the submission: card payments are marked
// Paid (the mock verification completed), everything else Pending.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
)

// ========================================
// Entity
// ========================================

// Order is the submission payload for POST /api/orders.
type Order struct {
	UserID          string          `json:"userId"`
	Items           []Item          `json:"items"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentDetails  *PaymentDetails `json:"paymentDetails,omitempty"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
}

// New builds and validates a submission payload.
func New(
	userID string,
	items []Item,
	total decimal.Decimal,
	addr DeliveryAddress,
	paymentMethod string,
	details *PaymentDetails,
	status PaymentStatus,
) (Order, error) {
	o := Order{
		UserID:          strings.TrimSpace(userID),
		Items:           items,
		Total:           total,
		DeliveryAddress: addr,
		PaymentMethod:   strings.TrimSpace(paymentMethod),
		PaymentDetails:  details,
		PaymentStatus:   status,
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (o Order) validate() error {
	if o.UserID == "" {
		return ErrInvalidUserID
	}
	if len(o.Items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range o.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity <= 0 {
			return ErrInvalidItems
		}
	}
	if o.PaymentMethod == "" {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// ========================================
// Response
// ========================================

// StockUpdate is the post-order stock figure an order response may
// carry per product.
type StockUpdate struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

// Confirmation is handed off to the confirmation page on success.
type Confirmation struct {
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	Status        string        `json:"status"`
	PaymentMethod string        `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	StockUpdates  []StockUpdate `json:"stockUpdates,omitempty"`
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
