package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func cartWithItem(price float64, quantity int) *Cart {
	cart := NewCart(primitive.NewObjectID())
	cart.AddItem(primitive.NewObjectID(), quantity, ProductSnapshot{
		Name:  "Test Product",
		Price: price,
		SKU:   "TEST-001",
	}, nil, price)
	return cart
}

func TestCalculateTotalsPercentageDiscount(t *testing.T) {
	cart := cartWithItem(40, 2)
	require.NoError(t, cart.ApplyDiscount("SAVE10"))

	assert.Equal(t, 80.0, cart.Subtotal)
	assert.Equal(t, 8.0, cart.DiscountAmount)
	assert.Equal(t, 6.12, cart.Tax)
	assert.Equal(t, 0.0, cart.Shipping)
	assert.Equal(t, 78.12, cart.Total)
}

func TestCalculateTotalsFixedDiscount(t *testing.T) {
	cart := cartWithItem(40, 2)
	require.NoError(t, cart.ApplyDiscount("WELCOME20"))

	assert.Equal(t, 80.0, cart.Subtotal)
	assert.Equal(t, 20.0, cart.DiscountAmount)
	assert.Equal(t, 5.10, cart.Tax)
	assert.Equal(t, 0.0, cart.Shipping)
	assert.Equal(t, 65.10, cart.Total)
}

func TestCalculateTotalsBelowShippingThreshold(t *testing.T) {
	cart := cartWithItem(20, 1)

	assert.Equal(t, 20.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.DiscountAmount)
	assert.Equal(t, 1.70, cart.Tax)
	assert.Equal(t, 5.99, cart.Shipping)
	assert.Equal(t, 27.69, cart.Total)
}

func TestShippingFreeExactlyAtThreshold(t *testing.T) {
	cart := cartWithItem(35, 1)
	assert.Equal(t, 0.0, cart.Shipping)

	cart = cartWithItem(34.99, 1)
	assert.Equal(t, 5.99, cart.Shipping)
}

func TestShippingDiscountCapsFeeAtZero(t *testing.T) {
	cart := cartWithItem(10, 1)
	require.NoError(t, cart.ApplyDiscount("FREESHIP"))

	// The fee is capped, never negative, and the subtotal is untouched.
	assert.Equal(t, 10.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.DiscountAmount)
	assert.Equal(t, 0.0, cart.Shipping)
	assert.Equal(t, 10.85, cart.Total)
}

func TestDiscountStacking(t *testing.T) {
	cart := cartWithItem(50, 2)
	require.NoError(t, cart.ApplyDiscount("SAVE10"))
	require.NoError(t, cart.ApplyDiscount("WELCOME20"))

	// 100 - (10 + 20) = 70 discounted base.
	assert.Equal(t, 30.0, cart.DiscountAmount)
	assert.Equal(t, 5.95, cart.Tax)
	assert.Equal(t, 0.0, cart.Shipping)
	assert.Equal(t, 75.95, cart.Total)
}

func TestTotalIdentityHolds(t *testing.T) {
	cases := []struct {
		price    float64
		quantity int
		codes    []string
	}{
		{12.49, 3, nil},
		{99.99, 1, []string{"SAVE10"}},
		{7.77, 5, []string{"WELCOME20", "FREESHIP"}},
		{34.99, 1, []string{"FREESHIP"}},
		{0.99, 100, []string{"SAVE10", "WELCOME20"}},
	}
	for _, tc := range cases {
		cart := cartWithItem(tc.price, tc.quantity)
		for _, code := range tc.codes {
			require.NoError(t, cart.ApplyDiscount(code))
		}
		sum := cart.Subtotal - cart.DiscountAmount + cart.Tax + cart.Shipping
		assert.InDelta(t, cart.Total, sum, 0.005,
			"total identity for price=%v qty=%d codes=%v", tc.price, tc.quantity, tc.codes)
	}
}

func TestApplyDiscountUnknownCode(t *testing.T) {
	cart := cartWithItem(40, 1)
	err := cart.ApplyDiscount("BOGUS50")
	assert.ErrorIs(t, err, ErrInvalidDiscountCode)
	assert.Empty(t, cart.Discounts)
}

func TestApplyDiscountDuplicate(t *testing.T) {
	cart := cartWithItem(40, 1)
	require.NoError(t, cart.ApplyDiscount("SAVE10"))
	err := cart.ApplyDiscount("save10")
	assert.ErrorIs(t, err, ErrDiscountAlreadyApplied)
	assert.Len(t, cart.Discounts, 1)
}

func TestRemoveDiscountNotAppliedIsNoop(t *testing.T) {
	cart := cartWithItem(40, 2)
	require.NoError(t, cart.ApplyDiscount("SAVE10"))
	before := cart.Total

	cart.RemoveDiscount("WELCOME20")

	assert.Len(t, cart.Discounts, 1)
	assert.Equal(t, before, cart.Total)
}

func TestRemoveDiscountRestoresTotals(t *testing.T) {
	cart := cartWithItem(40, 2)
	require.NoError(t, cart.ApplyDiscount("SAVE10"))
	cart.RemoveDiscount("SAVE10")

	assert.Empty(t, cart.Discounts)
	assert.Equal(t, 0.0, cart.DiscountAmount)
	assert.Equal(t, 86.80, cart.Total)
}

func TestAddItemMergesMatchingLines(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	productID := primitive.NewObjectID()
	snapshot := ProductSnapshot{Name: "Tee", Price: 19.99, SKU: "EW-TS-014"}
	variants := []SelectedVariant{{Name: "Size", Value: "M", Price: 0}}

	cart.AddItem(productID, 1, snapshot, variants, 19.99)
	cart.AddItem(productID, 2, snapshot, variants, 19.99)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 3, cart.ItemCount())
}

func TestAddItemDifferentVariantsSeparateLines(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	productID := primitive.NewObjectID()
	snapshot := ProductSnapshot{Name: "Tee", Price: 19.99, SKU: "EW-TS-014"}

	cart.AddItem(productID, 1, snapshot, []SelectedVariant{{Name: "Size", Value: "M"}}, 19.99)
	cart.AddItem(productID, 1, snapshot, []SelectedVariant{{Name: "Size", Value: "L", Price: 2}}, 21.99)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 41.98, cart.Subtotal)
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	cart := cartWithItem(25, 2)
	itemID := cart.Items[0].ID

	require.NoError(t, cart.UpdateItemQuantity(itemID, 0))

	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.Total)
}

func TestUpdateItemQuantityUnknownItem(t *testing.T) {
	cart := cartWithItem(25, 2)
	err := cart.UpdateItemQuantity(primitive.NewObjectID(), 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItemRecomputesTotals(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	cart.AddItem(primitive.NewObjectID(), 1, ProductSnapshot{Name: "A"}, nil, 40)
	cart.AddItem(primitive.NewObjectID(), 1, ProductSnapshot{Name: "B"}, nil, 15)
	require.Equal(t, 55.0, cart.Subtotal)

	require.NoError(t, cart.RemoveItem(cart.Items[0].ID))

	assert.Equal(t, 15.0, cart.Subtotal)
	assert.Equal(t, 5.99, cart.Shipping)
}

func TestEmptyCartOwesNothing(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	cart.CalculateTotals()

	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.Tax)
	assert.Equal(t, 0.0, cart.Shipping)
	assert.Equal(t, 0.0, cart.Total)
}

func TestClearResetsEverything(t *testing.T) {
	cart := cartWithItem(40, 2)
	require.NoError(t, cart.ApplyDiscount("SAVE10"))

	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.Empty(t, cart.Discounts)
	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.DiscountAmount)
	assert.Equal(t, 0.0, cart.Tax)
	assert.Equal(t, 0.0, cart.Shipping)
	assert.Equal(t, 0.0, cart.Total)
}

func TestVariantDeltaIncludedInSubtotal(t *testing.T) {
	cart := NewCart(primitive.NewObjectID())
	// Base price 129.99 plus a 10 dollar variant delta.
	cart.AddItem(primitive.NewObjectID(), 2,
		ProductSnapshot{Name: "Headphones", Price: 129.99, SKU: "AM-WH-001"},
		[]SelectedVariant{{Name: "Color", Value: "Silver", Price: 10}},
		139.99)

	assert.Equal(t, 279.98, cart.Subtotal)
}
