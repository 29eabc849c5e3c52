package domain

import (
	"errors"
	"testing"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPaid, OrderShipped, true},
		{OrderPaid, OrderRefunded, true},
		{OrderPaid, OrderPending, false},
		{OrderShipped, OrderDelivered, true},
		{OrderDelivered, OrderRefunded, false},
		{OrderCancelled, OrderPaid, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if s, err := ParseOrderStatus("shipped"); err != nil || s != OrderShipped {
		t.Fatalf("unexpected: %v %v", s, err)
	}
	if _, err := ParseOrderStatus("lost"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOrder_Subtotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{UnitPriceCents: 2500, Quantity: 2},
		{UnitPriceCents: 999, Quantity: 1},
	}}
	if got := o.Subtotal(); got != 5999 {
		t.Fatalf("expected 5999, got %d", got)
	}
}
