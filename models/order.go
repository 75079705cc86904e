package models

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusPacked     OrderStatus = "packed"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
)

// ReturnWindow is how long after delivery a return stays possible.
const ReturnWindow = 30 * 24 * time.Hour

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("order cannot be cancelled at this stage")
	ErrNotReturnable     = errors.New("order cannot be returned")
)

// statusTransitions is the forward-only lifecycle. Terminal states map to
// an empty set.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusPacked},
	StatusPacked:     {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

func IsValidStatus(s OrderStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

type StatusEntry struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
}

type OrderItem struct {
	Product          primitive.ObjectID `bson:"product" json:"product"`
	Quantity         int                `bson:"quantity" json:"quantity"`
	ProductSnapshot  ProductSnapshot    `bson:"productSnapshot" json:"productSnapshot"`
	Category         string             `bson:"category,omitempty" json:"category,omitempty"`
	SelectedVariants []SelectedVariant  `bson:"selectedVariants" json:"selectedVariants"`
	ItemPrice        float64            `bson:"itemPrice" json:"itemPrice"`
	TotalPrice       float64            `bson:"totalPrice" json:"totalPrice"`
}

type PaymentMethod struct {
	Type  string `bson:"type" json:"type"`
	Last4 string `bson:"last4,omitempty" json:"last4,omitempty"`
	Brand string `bson:"brand,omitempty" json:"brand,omitempty"`
}

var PaymentMethodTypes = []string{"credit_card", "debit_card", "paypal", "apple_pay", "google_pay"}

func IsValidPaymentMethod(t string) bool {
	for _, m := range PaymentMethodTypes {
		if m == t {
			return true
		}
	}
	return false
}

type OrderAddress struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	ZipCode   string `bson:"zipCode" json:"zipCode"`
	Country   string `bson:"country" json:"country"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber        string             `bson:"orderNumber" json:"orderNumber"`
	User               primitive.ObjectID `bson:"user" json:"user"`
	Items              []OrderItem        `bson:"items" json:"items"`
	Subtotal           float64            `bson:"subtotal" json:"subtotal"`
	Tax                float64            `bson:"tax" json:"tax"`
	Shipping           float64            `bson:"shipping" json:"shipping"`
	DiscountAmount     float64            `bson:"discountAmount" json:"discountAmount"`
	Total              float64            `bson:"total" json:"total"`
	Discounts          []Discount         `bson:"discounts" json:"discounts"`
	ShippingAddress    OrderAddress       `bson:"shippingAddress" json:"shippingAddress"`
	BillingAddress     OrderAddress       `bson:"billingAddress" json:"billingAddress"`
	PaymentMethod      PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Status             OrderStatus        `bson:"status" json:"status"`
	StatusHistory      []StatusEntry      `bson:"statusHistory" json:"statusHistory"`
	RewardPointsEarned int                `bson:"rewardPointsEarned" json:"rewardPointsEarned"`
	RewardPointsUsed   int                `bson:"rewardPointsUsed" json:"rewardPointsUsed"`
	CustomerNotes      string             `bson:"customerNotes,omitempty" json:"customerNotes,omitempty"`
	OrderDate          time.Time          `bson:"orderDate" json:"orderDate"`
	ShippedDate        *time.Time         `bson:"shippedDate,omitempty" json:"shippedDate,omitempty"`
	DeliveredDate      *time.Time         `bson:"deliveredDate,omitempty" json:"deliveredDate,omitempty"`
	ReturnRequested    bool               `bson:"returnRequested" json:"returnRequested"`
	ReturnReason       string             `bson:"returnReason,omitempty" json:"returnReason,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewOrderNumber builds a human-readable order number: "SW", the last eight
// digits of the millisecond timestamp, and a three-digit random suffix.
func NewOrderNumber() string {
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}
	return fmt.Sprintf("SW%s%03d", ts, rand.Intn(1000))
}

// CanTransitionTo reports whether the lifecycle permits moving to next from
// the current status.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	for _, s := range statusTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// UpdateStatus moves the order forward and appends a history entry. Prior
// history entries are never rewritten. Shipment and delivery stamp their
// date fields.
func (o *Order) UpdateStatus(next OrderStatus, note string) error {
	if !o.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	now := time.Now()
	o.Status = next
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    next,
		Timestamp: now,
		Note:      note,
	})
	switch next {
	case StatusShipped:
		o.ShippedDate = &now
	case StatusDelivered:
		o.DeliveredDate = &now
	}
	o.UpdatedAt = now
	return nil
}

// CanBeCancelled permits cancellation only before fulfillment starts.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// CanBeReturned permits returns only for delivered orders inside the
// return window, measured from the delivery timestamp.
func (o *Order) CanBeReturned() bool {
	if o.Status != StatusDelivered || o.DeliveredDate == nil {
		return false
	}
	return time.Since(*o.DeliveredDate) <= ReturnWindow
}

// CalculateRewardPoints returns the points earned: one per whole currency
// unit of the total.
func (o *Order) CalculateRewardPoints() int {
	return int(decimal.NewFromFloat(o.Total).Floor().IntPart())
}

// ItemCount is the total quantity across all lines.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
