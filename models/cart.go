package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// TaxRate is the flat sales tax applied to the discounted subtotal.
	TaxRate = 0.085
	// FreeShippingThreshold is the discounted subtotal at which shipping
	// becomes free.
	FreeShippingThreshold = 35.0
	// FlatShippingFee applies below the free shipping threshold.
	FlatShippingFee = 5.99
	// CartTTL is how long an untouched cart survives before the TTL index
	// reaps it.
	CartTTL = 30 * 24 * time.Hour
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
	DiscountShipping   = "shipping"
)

var (
	ErrInvalidDiscountCode   = errors.New("invalid discount code")
	ErrDiscountAlreadyApplied = errors.New("discount code already applied")
	ErrItemNotFound          = errors.New("item not found in cart")
)

// discountCodes is the fixed allow-list of redeemable codes.
var discountCodes = map[string]Discount{
	"SAVE10":    {Code: "SAVE10", Type: DiscountPercentage, Value: 10, Description: "10% off your order"},
	"WELCOME20": {Code: "WELCOME20", Type: DiscountFixed, Value: 20, Description: "$20 off your order"},
	"FREESHIP":  {Code: "FREESHIP", Type: DiscountShipping, Value: 999, Description: "Free shipping"},
}

type Discount struct {
	Code        string  `bson:"code" json:"code"`
	Type        string  `bson:"type" json:"type"`
	Value       float64 `bson:"value" json:"value"`
	Description string  `bson:"description" json:"description"`
}

// ProductSnapshot freezes the catalog fields of a product at the moment it
// enters a cart or order, so later catalog edits never rewrite history.
type ProductSnapshot struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
	Image string  `bson:"image,omitempty" json:"image,omitempty"`
	SKU   string  `bson:"sku" json:"sku"`
}

type SelectedVariant struct {
	Name  string  `bson:"name" json:"name"`
	Value string  `bson:"value" json:"value"`
	Price float64 `bson:"price" json:"price"`
}

type CartItem struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Product          primitive.ObjectID `bson:"product" json:"product"`
	Quantity         int                `bson:"quantity" json:"quantity"`
	ProductSnapshot  ProductSnapshot    `bson:"productSnapshot" json:"productSnapshot"`
	SelectedVariants []SelectedVariant  `bson:"selectedVariants" json:"selectedVariants"`
	// ItemPrice is the unit price including variant deltas.
	ItemPrice float64   `bson:"itemPrice" json:"itemPrice"`
	AddedAt   time.Time `bson:"addedAt" json:"addedAt"`
}

type Cart struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	Items          []CartItem         `bson:"items" json:"items"`
	Subtotal       float64            `bson:"subtotal" json:"subtotal"`
	Tax            float64            `bson:"tax" json:"tax"`
	Shipping       float64            `bson:"shipping" json:"shipping"`
	Discounts      []Discount         `bson:"discounts" json:"discounts"`
	DiscountAmount float64            `bson:"discountAmount" json:"discountAmount"`
	Total          float64            `bson:"total" json:"total"`
	ExpiresAt      time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewCart(userID primitive.ObjectID) *Cart {
	now := time.Now()
	return &Cart{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Items:     []CartItem{},
		Discounts: []Discount{},
		ExpiresAt: now.Add(CartTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// CalculateTotals rederives every aggregate field from the line items and
// applied discounts. It is a full recompute, never an incremental patch, so
// add/remove/quantity/discount mutations cannot drift.
func (c *Cart) CalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(
			decimal.NewFromFloat(item.ItemPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discountAmount := decimal.Zero
	for _, d := range c.Discounts {
		switch d.Type {
		case DiscountPercentage:
			discountAmount = discountAmount.Add(
				subtotal.Mul(decimal.NewFromFloat(d.Value)).Div(decimal.NewFromInt(100)))
		case DiscountFixed:
			discountAmount = discountAmount.Add(decimal.NewFromFloat(d.Value))
		}
		// Shipping discounts cap the fee below; they never reduce the subtotal.
	}

	discounted := subtotal.Sub(discountAmount)
	tax := discounted.Mul(decimal.NewFromFloat(TaxRate))

	// An empty cart ships nothing and owes nothing.
	shipping := decimal.Zero
	if len(c.Items) > 0 && discounted.LessThan(decimal.NewFromFloat(FreeShippingThreshold)) {
		shipping = decimal.NewFromFloat(FlatShippingFee)
	}
	for _, d := range c.Discounts {
		if d.Type == DiscountShipping {
			shipping = shipping.Sub(decimal.NewFromFloat(d.Value))
			if shipping.IsNegative() {
				shipping = decimal.Zero
			}
		}
	}

	c.Subtotal = round2(subtotal)
	c.DiscountAmount = round2(discountAmount)
	c.Tax = round2(tax)
	c.Shipping = round2(shipping)
	c.Total = round2(subtotal.Round(2).
		Sub(discountAmount.Round(2)).
		Add(tax.Round(2)).
		Add(shipping.Round(2)))
}

func sameVariants(a, b []SelectedVariant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AddItem appends a line item, merging quantity into an existing line when
// the product and variant selection match.
func (c *Cart) AddItem(productID primitive.ObjectID, quantity int, snapshot ProductSnapshot, variants []SelectedVariant, itemPrice float64) {
	for i := range c.Items {
		if c.Items[i].Product == productID && sameVariants(c.Items[i].SelectedVariants, variants) {
			c.Items[i].Quantity += quantity
			c.CalculateTotals()
			return
		}
	}
	if variants == nil {
		variants = []SelectedVariant{}
	}
	c.Items = append(c.Items, CartItem{
		ID:               primitive.NewObjectID(),
		Product:          productID,
		Quantity:         quantity,
		ProductSnapshot:  snapshot,
		SelectedVariants: variants,
		ItemPrice:        itemPrice,
		AddedAt:          time.Now(),
	})
	c.CalculateTotals()
}

// FindItem returns the line item with the given id, or nil.
func (c *Cart) FindItem(itemID primitive.ObjectID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) RemoveItem(itemID primitive.ObjectID) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.CalculateTotals()
			return nil
		}
	}
	return ErrItemNotFound
}

// UpdateItemQuantity sets a line's quantity; zero or less removes the line.
func (c *Cart) UpdateItemQuantity(itemID primitive.ObjectID, quantity int) error {
	item := c.FindItem(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	if quantity <= 0 {
		return c.RemoveItem(itemID)
	}
	item.Quantity = quantity
	c.CalculateTotals()
	return nil
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Discounts = []Discount{}
	c.CalculateTotals()
}

// ApplyDiscount validates a code against the allow-list and applies it.
// Unknown codes and duplicate applications are rejected.
func (c *Cart) ApplyDiscount(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	discount, ok := discountCodes[code]
	if !ok {
		return ErrInvalidDiscountCode
	}
	for _, d := range c.Discounts {
		if d.Code == code {
			return ErrDiscountAlreadyApplied
		}
	}
	c.Discounts = append(c.Discounts, discount)
	c.CalculateTotals()
	return nil
}

// RemoveDiscount drops an applied code. Removing a code that was never
// applied is a no-op.
func (c *Cart) RemoveDiscount(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	kept := c.Discounts[:0]
	for _, d := range c.Discounts {
		if d.Code != code {
			kept = append(kept, d)
		}
	}
	c.Discounts = kept
	c.CalculateTotals()
}

// ItemCount is the total quantity across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Touch pushes the TTL expiry forward; call before every save.
func (c *Cart) Touch() {
	now := time.Now()
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(CartTTL)
}
