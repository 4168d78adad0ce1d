// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	cartdom "milkmaster/internal/domain/cart"
	"milkmaster/internal/domain/identity"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// Result is the structured outcome of a Cart Store mutation. Stock
// and quantity rejections are reported here, never as errors, so
// callers can render the message inline; errors are reserved for
// storage faults.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CartUsecase is the Cart Store: the authoritative representation of
// queued purchase intent, scoped per identity.
//
// Every mutating call re-resolves the current identity (a login
// during an anonymous session switches partitions mid-session) and
// persists only that identity's partition before returning, so
// mutations within one session apply in call order.
type CartUsecase struct {
	repo cartdom.Repository
	ids  identity.Resolver

	mu       sync.Mutex
	cartOpen bool
}

func NewCartUsecase(repo cartdom.Repository, ids identity.Resolver) *CartUsecase {
	return &CartUsecase{repo: repo, ids: ids}
}

// AddToCart upserts item into the current identity's partition.
// item.Quantity is the requested quantity (<= 0 means 1). A request
// that would exceed item.Stock is rejected with the partition
// unchanged.
func (uc *CartUsecase) AddToCart(ctx context.Context, item cartdom.Line) (Result, error) {
	if strings.TrimSpace(item.ProductRef) == "" {
		return Result{}, ErrCartInvalidArgument
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ident := uc.ids.Resolve(ctx)
	item.Identity = ident.ID

	state, err := uc.repo.LoadPartition(ctx, ident.ID)
	if err != nil {
		return Result{}, err
	}

	if err := state.Add(item, item.Quantity); err != nil {
		if res, ok := resultFromCartErr(err); ok {
			return res, nil
		}
		return Result{}, err
	}

	if err := uc.repo.SavePartition(ctx, ident.ID, state); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: "Item added to cart successfully"}, nil
}

// RemoveFromCart deletes (productRef, current identity). Removing a
// missing line is a no-op success.
func (uc *CartUsecase) RemoveFromCart(ctx context.Context, productRef string) (Result, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.removeLocked(ctx, productRef)
}

func (uc *CartUsecase) removeLocked(ctx context.Context, productRef string) (Result, error) {
	ident := uc.ids.Resolve(ctx)

	state, err := uc.repo.LoadPartition(ctx, ident.ID)
	if err != nil {
		return Result{}, err
	}

	state.Remove(ident.ID, productRef)

	if err := uc.repo.SavePartition(ctx, ident.ID, state); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: "Item removed from cart"}, nil
}

// UpdateQuantity sets the line's quantity. Negative quantities are
// rejected; zero delegates to RemoveFromCart; a quantity above the
// line's stock snapshot is rejected with the partition unchanged.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, productRef string, qty int) (Result, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if qty < 0 {
		return Result{Success: false, Message: "Quantity cannot be negative"}, nil
	}
	if qty == 0 {
		return uc.removeLocked(ctx, productRef)
	}

	ident := uc.ids.Resolve(ctx)

	state, err := uc.repo.LoadPartition(ctx, ident.ID)
	if err != nil {
		return Result{}, err
	}

	if err := state.SetQuantity(ident.ID, productRef, qty); err != nil {
		if res, ok := resultFromCartErr(err); ok {
			return res, nil
		}
		return Result{}, err
	}

	if err := uc.repo.SavePartition(ctx, ident.ID, state); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: "Quantity updated successfully"}, nil
}

// ClearCart removes the current identity's partition only; other
// identities' partitions are untouched.
func (uc *CartUsecase) ClearCart(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ident := uc.ids.Resolve(ctx)
	return uc.repo.DeletePartition(ctx, ident.ID)
}

// GetUserCartItems returns the current identity's lines in insertion
// order. Anonymous callers see only anonymous lines.
func (uc *CartUsecase) GetUserCartItems(ctx context.Context) ([]cartdom.Line, error) {
	ident := uc.ids.Resolve(ctx)

	state, err := uc.repo.LoadPartition(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	return state.LinesFor(ident.ID), nil
}

// GetCartCount sums quantities over the current identity's lines.
func (uc *CartUsecase) GetCartCount(ctx context.Context) (int, error) {
	ident := uc.ids.Resolve(ctx)

	state, err := uc.repo.LoadPartition(ctx, ident.ID)
	if err != nil {
		return 0, err
	}
	return state.CountFor(ident.ID), nil
}

// GetCartTotal sums price * quantity over the current identity's
// lines.
func (uc *CartUsecase) GetCartTotal(ctx context.Context) (decimal.Decimal, error) {
	ident := uc.ids.Resolve(ctx)

	state, err := uc.repo.LoadPartition(ctx, ident.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return state.TotalFor(ident.ID), nil
}

// ToggleCart flips the drawer-visibility flag and returns the new
// value. Pure UI state, no business invariant.
func (uc *CartUsecase) ToggleCart() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.cartOpen = !uc.cartOpen
	return uc.cartOpen
}

// IsCartOpen reports the drawer-visibility flag.
func (uc *CartUsecase) IsCartOpen() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.cartOpen
}

// resultFromCartErr converts the domain's rejection errors into
// inline-renderable results. Anything else stays an error.
func resultFromCartErr(err error) (Result, bool) {
	var stockErr *cartdom.InsufficientStockError
	if errors.As(err, &stockErr) {
		name := stockErr.Name
		if name == "" {
			name = "Product"
		}
		return Result{
			Success: false,
			Message: fmt.Sprintf("%s: Requested %d, only %d in stock", name, stockErr.Requested, stockErr.Available),
		}, true
	}
	if errors.Is(err, cartdom.ErrNegativeQuantity) {
		return Result{Success: false, Message: "Quantity cannot be negative"}, true
	}
	return Result{}, false
}
