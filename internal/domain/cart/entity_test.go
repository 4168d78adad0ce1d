// internal/domain/cart/entity_test.go
package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(ref, ident string, price string, qty, stock int) Line {
	return Line{
		ProductRef: ref,
		Identity:   ident,
		Name:       "Milk " + ref,
		Price:      decimal.RequireFromString(price),
		Quantity:   qty,
		Stock:      stock,
	}
}

func TestAddMergesQuantityForSameProductAndIdentity(t *testing.T) {
	s := NewState()

	require.NoError(t, s.Add(line("p1", "u1", "55", 0, 10), 2))
	require.NoError(t, s.Add(line("p1", "u1", "55", 0, 10), 3))

	lines := s.LinesFor("u1")
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 5, lines[0].RemainingStock)
}

func TestAddRejectsWhenMergedQuantityExceedsStock(t *testing.T) {
	s := NewState()

	require.NoError(t, s.Add(line("p1", "u1", "55", 0, 5), 4))
	err := s.Add(line("p1", "u1", "55", 0, 5), 2)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	// prior state retained unchanged
	lines := s.LinesFor("u1")
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestAddDefaultsRequestedQuantityToOne(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Add(line("p1", "", "30", 0, 3), 0))
	require.Len(t, s.LinesFor(""), 1)
	assert.Equal(t, 1, s.LinesFor("")[0].Quantity)
}

func TestSameProductDifferentIdentitiesStaysSeparate(t *testing.T) {
	s := NewState()

	require.NoError(t, s.Add(line("p1", "u1", "55", 0, 10), 1))
	require.NoError(t, s.Add(line("p1", "u2", "55", 0, 10), 2))
	require.NoError(t, s.Add(line("p1", "", "55", 0, 10), 3))

	assert.Len(t, s.LinesFor("u1"), 1)
	assert.Len(t, s.LinesFor("u2"), 1)
	assert.Len(t, s.LinesFor(""), 1)
	assert.Equal(t, 2, s.LinesFor("u2")[0].Quantity)
	assert.Equal(t, 3, s.CountFor(""))
}

func TestSetQuantitySemantics(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Add(line("p1", "u1", "55", 0, 10), 2))

	require.ErrorIs(t, s.SetQuantity("u1", "p1", -1), ErrNegativeQuantity)

	// missing line is a no-op
	require.NoError(t, s.SetQuantity("u1", "ghost", 3))
	require.Len(t, s.LinesFor("u1"), 1)

	// over stock is rejected, state unchanged
	var stockErr *InsufficientStockError
	require.ErrorAs(t, s.SetQuantity("u1", "p1", 11), &stockErr)
	assert.Equal(t, 2, s.LinesFor("u1")[0].Quantity)

	require.NoError(t, s.SetQuantity("u1", "p1", 7))
	assert.Equal(t, 7, s.LinesFor("u1")[0].Quantity)
	assert.Equal(t, 3, s.LinesFor("u1")[0].RemainingStock)

	// zero removes
	require.NoError(t, s.SetQuantity("u1", "p1", 0))
	assert.Empty(t, s.LinesFor("u1"))
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Add(line("p1", "u1", "55", 0, 10), 1))

	s.Remove("u1", "p1")
	s.Remove("u1", "p1")
	assert.Empty(t, s.LinesFor("u1"))
}

func TestLinesForKeepsInsertionOrder(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Add(line("p1", "u1", "10", 0, 5), 1))
	require.NoError(t, s.Add(line("p2", "u1", "20", 0, 5), 1))
	require.NoError(t, s.Add(line("p3", "u1", "30", 0, 5), 1))

	lines := s.LinesFor("u1")
	require.Len(t, lines, 3)
	assert.Equal(t, "p1", lines[0].ProductRef)
	assert.Equal(t, "p2", lines[1].ProductRef)
	assert.Equal(t, "p3", lines[2].ProductRef)
}

func TestRemoveIdentityLeavesOtherPartitionsUntouched(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Add(line("p1", "u1", "10", 0, 5), 1))
	require.NoError(t, s.Add(line("p1", "", "10", 0, 5), 1))

	s.RemoveIdentity("u1")
	assert.Empty(t, s.LinesFor("u1"))
	assert.Len(t, s.LinesFor(""), 1)
}

func TestTotalForUsesDecimalArithmetic(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Add(line("p1", "u1", "55.50", 0, 10), 3))
	require.NoError(t, s.Add(line("p2", "u1", "12.25", 0, 10), 2))

	assert.True(t, s.TotalFor("u1").Equal(decimal.RequireFromString("191.00")),
		"got %s", s.TotalFor("u1"))
}

func TestPriceAcceptsStringAndNumericJSON(t *testing.T) {
	var a, b Line
	require.NoError(t, json.Unmarshal([]byte(`{"productId":"p1","price":"55.50","quantity":1,"stock":5}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"productId":"p1","price":55.5,"quantity":1,"stock":5}`), &b))
	assert.True(t, a.Price.Equal(b.Price))
}

func TestNormalizeMergesDuplicatesAndClamps(t *testing.T) {
	s := &State{Lines: []Line{
		{ProductRef: "p1", Identity: "u1", Quantity: 2, Stock: 5},
		{ProductRef: "p2", Identity: "u1", Quantity: 9, Stock: 4},
		{ProductRef: "p1", Identity: "u1", Quantity: 4, Stock: 5},
		{ProductRef: "", Identity: "u1", Quantity: 1, Stock: 5},
		{ProductRef: "p3", Identity: "u1", Quantity: 0, Stock: 5},
	}}

	s.Normalize()

	require.Len(t, s.Lines, 2)
	// first-seen order kept, duplicate merged into the first slot and
	// clamped to stock
	assert.Equal(t, "p1", s.Lines[0].ProductRef)
	assert.Equal(t, 5, s.Lines[0].Quantity)
	assert.Equal(t, 0, s.Lines[0].RemainingStock)
	assert.Equal(t, "p2", s.Lines[1].ProductRef)
	assert.Equal(t, 4, s.Lines[1].Quantity)
}
