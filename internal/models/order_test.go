package models

import "testing"

func TestCanTransitionAllowedEdges(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Fatalf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}
}

func TestCanTransitionRejectsIllegalEdges(t *testing.T) {
	illegal := []struct{ from, to string }{
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusShipped, OrderStatusPending},
		{OrderStatusPending, OrderStatusPending},
	}
	for _, tt := range illegal {
		if CanTransition(tt.from, tt.to) {
			t.Fatalf("expected %s -> %s to be rejected", tt.from, tt.to)
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	for _, terminal := range []string{OrderStatusDelivered, OrderStatusCancelled} {
		for _, to := range []string{
			OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
			OrderStatusDelivered, OrderStatusCancelled,
		} {
			if CanTransition(terminal, to) {
				t.Fatalf("expected no transition out of %s, found %s", terminal, to)
			}
		}
	}
}

func TestIsValidPaymentMethod(t *testing.T) {
	for _, method := range []string{PaymentMethodMock, PaymentMethodRazorpay, PaymentMethodStripe, PaymentMethodCOD} {
		if !IsValidPaymentMethod(method) {
			t.Fatalf("expected %s to be valid", method)
		}
	}
	if IsValidPaymentMethod("paypal") {
		t.Fatal("expected unknown method to be invalid")
	}
}

func TestIsValidCategory(t *testing.T) {
	if !IsValidCategory("Books") {
		t.Fatal("expected Books to be a known category")
	}
	if IsValidCategory("books") {
		t.Fatal("expected category matching to be exact")
	}
	if IsValidCategory("Groceries") {
		t.Fatal("expected unknown category to be rejected")
	}
}
