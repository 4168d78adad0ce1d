// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeQuantity = errors.New("cart: quantity cannot be negative")
)

// InsufficientStockError rejects a mutation that would push a line's
// quantity past its stock snapshot. The mutation is a no-op; prior
// state is retained unchanged.
type InsufficientStockError struct {
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = "Product"
	}
	return fmt.Sprintf("cart: %s: Requested %d, only %d in stock", name, e.Requested, e.Available)
}

// Line represents one product queued for purchase by one identity.
//   - ProductRef is the catalog join key; NOT unique across identities.
//   - Identity is empty for anonymous lines.
//   - Price is an add-time snapshot; the storefront API may deliver it
//     as a JSON string, which decimal handles on both paths.
//   - Stock is a local bound-check snapshot, not authoritative.
type Line struct {
	ProductRef     string          `json:"productId"`
	Identity       string          `json:"userId,omitempty"`
	Name           string          `json:"name"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Stock          int             `json:"stock"`
	RemainingStock int             `json:"remainingStock"`
}

// Subtotal is Price * Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is one persisted cart partition. A partition normally holds a
// single identity's lines, but operations still match on
// (ProductRef, Identity) so a blob carrying foreign lines (legacy or
// tampered storage) never leaks across identities.
type State struct {
	Lines []Line `json:"lines"`
}

// NewState returns an empty partition.
func NewState() *State {
	return &State{Lines: []Line{}}
}

// Add upserts a line for (item.ProductRef, item.Identity).
//   - existing line: newQty = existing.Quantity + requestedQty; rejected
//     when newQty exceeds item.Stock, otherwise quantity and
//     RemainingStock are recomputed on the existing line.
//   - no existing line: rejected when requestedQty exceeds item.Stock,
//     otherwise appended (insertion order is the display order).
func (s *State) Add(item Line, requestedQty int) error {
	if s == nil {
		return errors.New("cart: nil state")
	}
	if requestedQty <= 0 {
		requestedQty = 1
	}

	ref := strings.TrimSpace(item.ProductRef)
	if ref == "" {
		return errors.New("cart: productRef is empty")
	}
	item.ProductRef = ref

	idx := findLineIndex(s.Lines, ref, item.Identity)
	if idx >= 0 {
		newQty := s.Lines[idx].Quantity + requestedQty
		if newQty > item.Stock {
			return &InsufficientStockError{Name: item.Name, Requested: newQty, Available: item.Stock}
		}
		s.Lines[idx].Quantity = newQty
		s.Lines[idx].Stock = item.Stock
		s.Lines[idx].RemainingStock = item.Stock - newQty
		return nil
	}

	if requestedQty > item.Stock {
		return &InsufficientStockError{Name: item.Name, Requested: requestedQty, Available: item.Stock}
	}

	item.Quantity = requestedQty
	item.RemainingStock = item.Stock - requestedQty
	s.Lines = append(s.Lines, item)
	return nil
}

// SetQuantity sets the quantity for (productRef, identity).
//   - qty < 0 is rejected.
//   - qty == 0 removes the line.
//   - missing line is a no-op.
//   - qty above the line's stock snapshot is rejected, state unchanged.
func (s *State) SetQuantity(identityID, productRef string, qty int) error {
	if s == nil {
		return errors.New("cart: nil state")
	}
	if qty < 0 {
		return ErrNegativeQuantity
	}
	if qty == 0 {
		s.Remove(identityID, productRef)
		return nil
	}

	idx := findLineIndex(s.Lines, productRef, identityID)
	if idx < 0 {
		return nil
	}

	line := s.Lines[idx]
	if qty > line.Stock {
		return &InsufficientStockError{Name: line.Name, Requested: qty, Available: line.Stock}
	}

	s.Lines[idx].Quantity = qty
	s.Lines[idx].RemainingStock = line.Stock - qty
	return nil
}

// Remove deletes the line matching (productRef, identity).
// Removing a missing line is a no-op.
func (s *State) Remove(identityID, productRef string) {
	if s == nil {
		return
	}
	idx := findLineIndex(s.Lines, productRef, identityID)
	if idx >= 0 {
		s.Lines = removeIndex(s.Lines, idx)
	}
}

// RemoveIdentity drops every line owned by identityID (empty =
// anonymous lines), leaving other identities' lines untouched.
func (s *State) RemoveIdentity(identityID string) {
	if s == nil {
		return
	}
	kept := s.Lines[:0]
	for _, l := range s.Lines {
		if l.Identity != identityID {
			kept = append(kept, l)
		}
	}
	s.Lines = kept
}

// LinesFor returns identityID's lines in insertion order. The empty
// identity selects only anonymous lines, never identified ones.
func (s *State) LinesFor(identityID string) []Line {
	if s == nil {
		return []Line{}
	}
	out := make([]Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.Identity == identityID {
			out = append(out, l)
		}
	}
	return out
}

// CountFor sums quantities over identityID's lines.
func (s *State) CountFor(identityID string) int {
	total := 0
	for _, l := range s.LinesFor(identityID) {
		total += l.Quantity
	}
	return total
}

// TotalFor sums Price * Quantity over identityID's lines.
func (s *State) TotalFor(identityID string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.LinesFor(identityID) {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Normalize repairs a partition hydrated from storage: drops lines
// without a product ref or with non-positive quantity, merges
// duplicate (ProductRef, Identity) pairs into the first occurrence,
// and clamps quantities to the stock snapshot. First-seen order is
// kept because the partition order is the display order.
func (s *State) Normalize() {
	if s == nil || len(s.Lines) == 0 {
		return
	}

	type key struct {
		ref string
		id  string
	}
	seen := map[key]int{}
	out := make([]Line, 0, len(s.Lines))

	for _, l := range s.Lines {
		ref := strings.TrimSpace(l.ProductRef)
		if ref == "" || l.Quantity <= 0 {
			continue
		}
		l.ProductRef = ref

		k := key{ref: ref, id: l.Identity}
		if at, ok := seen[k]; ok {
			out[at].Quantity += l.Quantity
			if out[at].Stock > 0 && out[at].Quantity > out[at].Stock {
				out[at].Quantity = out[at].Stock
			}
			out[at].RemainingStock = out[at].Stock - out[at].Quantity
			continue
		}

		if l.Stock > 0 && l.Quantity > l.Stock {
			l.Quantity = l.Stock
		}
		l.RemainingStock = l.Stock - l.Quantity
		seen[k] = len(out)
		out = append(out, l)
	}

	s.Lines = out
}

// ----------------------------
// Helpers
// ----------------------------

func findLineIndex(lines []Line, productRef, identityID string) int {
	for i := range lines {
		if lines[i].ProductRef == productRef && lines[i].Identity == identityID {
			return i
		}
	}
	return -1
}

func removeIndex(lines []Line, idx int) []Line {
	if idx < 0 || idx >= len(lines) {
		return lines
	}
	// preserve order
	return append(lines[:idx], lines[idx+1:]...)
}
