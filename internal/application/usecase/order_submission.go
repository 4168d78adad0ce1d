// internal/application/usecase/order_submission.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	cartdom "milkmaster/internal/domain/cart"
	checkoutdom "milkmaster/internal/domain/checkout"
	orderdom "milkmaster/internal/domain/order"
)

// Submit is the terminal checkout action, performed only from the
// Payment step on explicit submit:
//
//  1. local quantity-vs-stock re-check (itemized, no network call on
//     violation)
//  2. server-side stock validation
//  3. card path requires the verification sub-flow at otp-verified,
//     payment details reduced before transmission (raw CVV never
//     transmitted)
//  4. order submission
//  5. on success: cart cleared, confirmation handed off
//
// A busy flag rejects re-entrant submits for the same session; there
// is no server-side idempotency key, so a lost response followed by a
// manual retry can still double-submit (known gap).
func (uc *CheckoutUsecase) Submit(ctx context.Context, sess *checkoutdom.Session) (orderdom.Confirmation, error) {
	if sess == nil {
		return orderdom.Confirmation{}, ErrCheckoutSessionNil
	}
	if err := uc.beginSubmit(sess.ID); err != nil {
		return orderdom.Confirmation{}, err
	}
	defer uc.endSubmit(sess.ID)

	if sess.Step != checkoutdom.StepPayment {
		return orderdom.Confirmation{}, &checkoutdom.ValidationError{Message: "Complete the checkout steps before placing an order."}
	}

	sess.StockRefreshSuggested = false
	sess.RetryCount = 0

	items, err := uc.carts.GetUserCartItems(ctx)
	if err != nil {
		return orderdom.Confirmation{}, err
	}
	if len(items) == 0 {
		return orderdom.Confirmation{}, &checkoutdom.ValidationError{Message: "Your cart is empty. Please add items to your cart before placing an order."}
	}

	if sess.PaymentMethod == checkoutdom.PaymentUnset {
		return orderdom.Confirmation{}, &checkoutdom.ValidationError{Message: "Please select a payment method before placing an order."}
	}

	var details *orderdom.PaymentDetails
	status := orderdom.PaymentStatusPending
	if sess.PaymentMethod == checkoutdom.PaymentCard {
		if !sess.Card.Complete() {
			return orderdom.Confirmation{}, &checkoutdom.ValidationError{Message: "Please fill in all card details before placing an order."}
		}
		if !sess.Verification.Verified() {
			return orderdom.Confirmation{}, &checkoutdom.ValidationError{Message: "Please verify your card payment before placing the order."}
		}
		d := orderdom.SanitizeCard(sess.Card.Number, sess.Card.Expiry, sess.Card.HolderName, true)
		details = &d
		status = orderdom.PaymentStatusPaid
	}

	// 1) local re-check: no network call when the cart itself is stale.
	if err := localStockCheck(items); err != nil {
		return orderdom.Confirmation{}, err
	}

	// 2) server-side validation.
	if err := uc.stock.ValidateStock(ctx, uc.ids.BearerToken(ctx), stockRequests(items)); err != nil {
		sess.StockRefreshSuggested = true
		return orderdom.Confirmation{}, err
	}

	total, err := uc.carts.GetCartTotal(ctx)
	if err != nil {
		return orderdom.Confirmation{}, err
	}

	o, err := orderdom.New(
		sess.Identity.ID,
		orderItems(items),
		total,
		orderdom.DeliveryAddress{
			Name:    sess.Delivery.FullName(),
			Email:   sess.Delivery.Email,
			Phone:   sess.Delivery.Phone,
			Address: sess.Delivery.Address,
			City:    sess.Delivery.City,
			State:   sess.Delivery.State,
			Pincode: sess.Delivery.Pincode,
		},
		string(sess.PaymentMethod),
		details,
		status,
	)
	if err != nil {
		return orderdom.Confirmation{}, err
	}

	conf, err := uc.orders.SubmitOrder(ctx, uc.ids.BearerToken(ctx), o)
	if err != nil {
		// Stale-stock advisory when the server's message points at
		// stock or validation problems.
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "stock") || strings.Contains(msg, "validation") {
			sess.StockRefreshSuggested = true
		}
		return orderdom.Confirmation{}, err
	}

	if clearErr := uc.carts.ClearCart(ctx); clearErr != nil {
		log.Printf("[checkout_uc] WARN: cart clear after order failed orderId=%s: %v", conf.OrderID, clearErr)
	}

	log.Printf("[checkout_uc] OK: order submitted orderId=%s orderNumber=%s paymentStatus=%s",
		conf.OrderID, conf.OrderNumber, conf.PaymentStatus,
	)

	return conf, nil
}

// RetryValidation re-runs server-side stock validation only, on
// explicit user action. Each call increments the surfaced retry
// counter; there is no automatic or backoff retry.
func (uc *CheckoutUsecase) RetryValidation(ctx context.Context, sess *checkoutdom.Session) error {
	if sess == nil {
		return ErrCheckoutSessionNil
	}

	sess.RetryCount++

	items, err := uc.carts.GetUserCartItems(ctx)
	if err != nil {
		return err
	}

	if err := uc.stock.ValidateStock(ctx, uc.ids.BearerToken(ctx), stockRequests(items)); err != nil {
		sess.StockRefreshSuggested = true
		return err
	}

	sess.StockRefreshSuggested = false
	return nil
}

func (uc *CheckoutUsecase) beginSubmit(sessionID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.busy[sessionID] {
		return ErrSubmissionInProgress
	}
	uc.busy[sessionID] = true
	return nil
}

func (uc *CheckoutUsecase) endSubmit(sessionID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.busy, sessionID)
}

func localStockCheck(items []cartdom.Line) error {
	var parts []string
	for _, it := range items {
		if it.Quantity > it.Stock {
			name := it.Name
			if name == "" {
				name = "Product"
			}
			parts = append(parts, fmt.Sprintf("%s: Requested %d, only %d in stock", name, it.Quantity, it.Stock))
		}
	}
	if len(parts) > 0 {
		return &checkoutdom.ValidationError{
			Message: "Insufficient stock for the following items: " + strings.Join(parts, "; "),
		}
	}
	return nil
}

func stockRequests(items []cartdom.Line) []StockRequest {
	reqs := make([]StockRequest, 0, len(items))
	for _, it := range items {
		reqs = append(reqs, StockRequest{ProductID: it.ProductRef, Quantity: it.Quantity})
	}
	return reqs
}

func orderItems(items []cartdom.Line) []orderdom.Item {
	out := make([]orderdom.Item, 0, len(items))
	for _, it := range items {
		out = append(out, orderdom.Item{
			ProductID: it.ProductRef,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	return out
}
