package models

import (
	"testing"
	"time"
)

func TestApplyStatusAppendsOneTimelineEntry(t *testing.T) {
	order := Order{}
	now := time.Now()

	order.ApplyStatus(StatusPending, now)
	order.ApplyStatus(StatusConfirmed, now.Add(time.Minute))

	if len(order.Timeline) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(order.Timeline))
	}
	if order.Timeline[1].Status != StatusConfirmed {
		t.Fatalf("expected last timeline status %q, got %q", StatusConfirmed, order.Timeline[1].Status)
	}
	if order.Status != StatusConfirmed {
		t.Fatalf("expected order status %q, got %q", StatusConfirmed, order.Status)
	}
	if order.DeliveredDate != nil {
		t.Fatal("delivered date must not be set before delivery")
	}
}

func TestApplyStatusDeliveredStampsDate(t *testing.T) {
	order := Order{Status: StatusShipped}
	now := time.Now()

	order.ApplyStatus(StatusDelivered, now)

	if order.DeliveredDate == nil {
		t.Fatal("expected delivered date to be stamped")
	}
	if !order.DeliveredDate.Equal(now) {
		t.Fatalf("expected delivered date %v, got %v", now, *order.DeliveredDate)
	}
}

func TestCanCancel(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusPacked, false},
		{StatusShipped, false},
		{StatusOutForDelivery, false},
		{StatusDelivered, false},
		{StatusCancelled, false},
		{StatusReturned, false},
	}

	for _, tc := range cases {
		order := Order{Status: tc.status}
		if got := order.CanCancel(); got != tc.want {
			t.Errorf("CanCancel from %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestReturnWindowOpen(t *testing.T) {
	now := time.Now()
	delivered := now.AddDate(0, 0, -7)
	order := Order{Status: StatusDelivered, DeliveredDate: &delivered}

	if !order.ReturnWindowOpen(now) {
		t.Fatal("expected return window open on day 7")
	}

	delivered = now.AddDate(0, 0, -8)
	order.DeliveredDate = &delivered
	if order.ReturnWindowOpen(now) {
		t.Fatal("expected return window closed on day 8")
	}
}

func TestReturnWindowRequiresDelivery(t *testing.T) {
	now := time.Now()
	order := Order{Status: StatusShipped}
	if order.ReturnWindowOpen(now) {
		t.Fatal("return window must be closed before delivery")
	}

	order.Status = StatusDelivered
	if order.ReturnWindowOpen(now) {
		t.Fatal("return window must be closed without a delivery date")
	}
}

func TestIsOrderStatus(t *testing.T) {
	if !IsOrderStatus(StatusOutForDelivery) {
		t.Fatalf("expected %q to be a known status", StatusOutForDelivery)
	}
	if IsOrderStatus("lost") {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestIsPaymentMethod(t *testing.T) {
	for _, method := range []string{"Card", "UPI", "Wallet", "NetBanking", "COD"} {
		if !IsPaymentMethod(method) {
			t.Errorf("expected %q to be a supported payment method", method)
		}
	}
	if IsPaymentMethod("Cheque") {
		t.Fatal("expected unsupported method to be rejected")
	}
}
