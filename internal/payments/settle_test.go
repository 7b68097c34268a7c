package payments

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestPaidFilterOnlyMatchesPendingUnpaidOrder(t *testing.T) {
	orderID := primitive.NewObjectID()
	filter := paidFilter(orderID)

	if filter["_id"] != orderID {
		t.Fatalf("expected filter to target order %s", orderID.Hex())
	}
	if filter["isPaid"] != false {
		t.Fatal("expected filter to require isPaid=false so a second settlement cannot match")
	}
	if filter["status"] != models.OrderStatusPending {
		t.Fatal("expected filter to require status=pending so a cancelled or shipped order cannot be settled")
	}
}

// A cancelled unpaid order must never be pulled back to processing by a
// settlement, because the status machine has no edge out of cancelled.
func TestPaidFilterAgreesWithTransitionTable(t *testing.T) {
	for _, status := range []string{
		models.OrderStatusCancelled,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		if models.CanTransition(status, models.OrderStatusProcessing) {
			t.Fatalf("expected no %s -> processing edge", status)
		}
		if status == paidFilter(primitive.NewObjectID())["status"] {
			t.Fatalf("expected paidFilter to exclude status %s", status)
		}
	}
}

func TestFailedFilterOnlyMatchesUnpaidOrder(t *testing.T) {
	orderID := primitive.NewObjectID()
	filter := failedFilter(orderID)

	if filter["_id"] != orderID {
		t.Fatalf("expected filter to target order %s", orderID.Hex())
	}
	if filter["isPaid"] != false {
		t.Fatal("expected filter to require isPaid=false so a failed record cannot overwrite a completed payment")
	}
}

func TestPaidUpdateSetsPaidStateAndStatus(t *testing.T) {
	now := time.Now()
	result := models.PaymentResult{ID: "pay_123", Status: StatusCompleted, UpdateTime: now}

	update := paidUpdate(result, now)
	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatal("expected a $set update document")
	}

	if set["isPaid"] != true {
		t.Fatal("expected isPaid=true")
	}
	if set["status"] != models.OrderStatusProcessing {
		t.Fatalf("expected status %q, got %v", models.OrderStatusProcessing, set["status"])
	}
	if set["paidAt"] != now {
		t.Fatal("expected paidAt to be stamped")
	}
	if got, ok := set["paymentResult"].(models.PaymentResult); !ok || got.ID != "pay_123" {
		t.Fatalf("expected payment result to carry the transaction id, got %v", set["paymentResult"])
	}
}

func TestRegistrySelectsGatewayByMethod(t *testing.T) {
	registry := NewRegistry(
		NewMockGateway(0),
		NewRazorpayGateway("key", "secret"),
		NewStripeGateway("sk_test", "whsec"),
	)

	for _, method := range []string{
		models.PaymentMethodMock,
		models.PaymentMethodRazorpay,
		models.PaymentMethodStripe,
	} {
		gw, ok := registry.ForMethod(method)
		if !ok {
			t.Fatalf("expected a gateway for method %q", method)
		}
		if gw.Method() != method {
			t.Fatalf("expected gateway method %q, got %q", method, gw.Method())
		}
	}

	if _, ok := registry.ForMethod(models.PaymentMethodCOD); ok {
		t.Fatal("expected no gateway for cash on delivery")
	}
}
