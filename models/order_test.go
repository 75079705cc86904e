package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderInStatus(status OrderStatus) *Order {
	return &Order{
		Status: status,
		StatusHistory: []StatusEntry{
			{Status: StatusPending, Timestamp: time.Now().Add(-time.Hour), Note: "Order created"},
		},
	}
}

func TestStatusLifecycleHappyPath(t *testing.T) {
	order := orderInStatus(StatusPending)
	steps := []OrderStatus{
		StatusConfirmed, StatusProcessing, StatusPacked, StatusShipped, StatusDelivered,
	}
	for _, next := range steps {
		require.NoError(t, order.UpdateStatus(next, ""), "transition to %s", next)
	}

	assert.Equal(t, StatusDelivered, order.Status)
	assert.Len(t, order.StatusHistory, 6)
	assert.NotNil(t, order.ShippedDate)
	assert.NotNil(t, order.DeliveredDate)

	// History stays in the order the transitions happened.
	assert.Equal(t, StatusPending, order.StatusHistory[0].Status)
	assert.Equal(t, StatusDelivered, order.StatusHistory[5].Status)
}

func TestStatusCannotSkipAhead(t *testing.T) {
	order := orderInStatus(StatusPending)
	err := order.UpdateStatus(StatusShipped, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPending, order.Status)
	assert.Len(t, order.StatusHistory, 1)
}

func TestStatusCannotMoveBackward(t *testing.T) {
	order := orderInStatus(StatusShipped)
	err := order.UpdateStatus(StatusProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTerminalStatusesAreFinal(t *testing.T) {
	for _, terminal := range []OrderStatus{StatusCancelled, StatusReturned} {
		order := orderInStatus(terminal)
		for _, next := range []OrderStatus{
			StatusPending, StatusConfirmed, StatusProcessing,
			StatusPacked, StatusShipped, StatusDelivered,
		} {
			assert.False(t, order.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, orderInStatus(StatusPending).CanBeCancelled())
	assert.True(t, orderInStatus(StatusConfirmed).CanBeCancelled())
	assert.False(t, orderInStatus(StatusProcessing).CanBeCancelled())
	assert.False(t, orderInStatus(StatusShipped).CanBeCancelled())
	assert.False(t, orderInStatus(StatusDelivered).CanBeCancelled())
	assert.False(t, orderInStatus(StatusCancelled).CanBeCancelled())
}

func TestCanBeReturnedInsideWindow(t *testing.T) {
	delivered := time.Now().Add(-10 * 24 * time.Hour)
	order := orderInStatus(StatusDelivered)
	order.DeliveredDate = &delivered
	assert.True(t, order.CanBeReturned())
}

func TestCanBeReturnedOutsideWindow(t *testing.T) {
	delivered := time.Now().Add(-31 * 24 * time.Hour)
	order := orderInStatus(StatusDelivered)
	order.DeliveredDate = &delivered
	assert.False(t, order.CanBeReturned())
}

func TestCanBeReturnedRequiresDelivery(t *testing.T) {
	order := orderInStatus(StatusShipped)
	assert.False(t, order.CanBeReturned())

	// Delivered status without a delivery timestamp is not returnable either.
	order = orderInStatus(StatusDelivered)
	assert.False(t, order.CanBeReturned())
}

func TestUpdateStatusRecordsNote(t *testing.T) {
	order := orderInStatus(StatusPending)
	require.NoError(t, order.UpdateStatus(StatusCancelled, "Cancelled by customer"))

	last := order.StatusHistory[len(order.StatusHistory)-1]
	assert.Equal(t, StatusCancelled, last.Status)
	assert.Equal(t, "Cancelled by customer", last.Note)
}

func TestCalculateRewardPointsFloorsTotal(t *testing.T) {
	cases := []struct {
		total  float64
		points int
	}{
		{78.12, 78},
		{65.10, 65},
		{27.69, 27},
		{0.99, 0},
		{100, 100},
	}
	for _, tc := range cases {
		order := &Order{Total: tc.total}
		assert.Equal(t, tc.points, order.CalculateRewardPoints(), "total %v", tc.total)
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^SW\d{11}$`)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		n := NewOrderNumber()
		assert.Regexp(t, pattern, n)
		seen[n] = true
	}
	// The random suffix makes collisions within a burst unlikely.
	assert.Greater(t, len(seen), 1)
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		StatusPending, StatusConfirmed, StatusProcessing, StatusPacked,
		StatusShipped, StatusDelivered, StatusCancelled, StatusReturned,
	} {
		assert.True(t, IsValidStatus(s), string(s))
	}
	assert.False(t, IsValidStatus("out_for_delivery"))
	assert.False(t, IsValidStatus(""))
}

func TestIsValidPaymentMethod(t *testing.T) {
	assert.True(t, IsValidPaymentMethod("credit_card"))
	assert.True(t, IsValidPaymentMethod("paypal"))
	assert.False(t, IsValidPaymentMethod("cheque"))
}

func TestOrderItemCount(t *testing.T) {
	order := &Order{Items: []OrderItem{{Quantity: 2}, {Quantity: 3}}}
	assert.Equal(t, 5, order.ItemCount())
}
