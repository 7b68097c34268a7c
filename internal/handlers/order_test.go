package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func validCreateOrderRequest() createOrderRequest {
	return createOrderRequest{
		Items: []createOrderItemRequest{
			{ProductID: "6568a1f0a1b2c3d4e5f60718", Quantity: 2},
		},
		ShippingAddress: models.ShippingAddress{
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
			Phone:      "555-0100",
		},
		PaymentMethod: models.PaymentMethodMock,
		TaxPrice:      1.5,
		ShippingPrice: 4.0,
	}
}

func TestValidateCreateOrderRequestAcceptsValid(t *testing.T) {
	if err := validateCreateOrderRequest(validCreateOrderRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCreateOrderRequestRejectsEmptyCart(t *testing.T) {
	req := validCreateOrderRequest()
	req.Items = nil
	if err := validateCreateOrderRequest(req); err == nil {
		t.Fatal("expected error for empty line-item set")
	}
}

func TestValidateCreateOrderRequestRejectsZeroQuantity(t *testing.T) {
	req := validCreateOrderRequest()
	req.Items[0].Quantity = 0
	if err := validateCreateOrderRequest(req); err == nil {
		t.Fatal("expected error for quantity below 1")
	}
}

func TestValidateCreateOrderRequestRejectsUnknownPaymentMethod(t *testing.T) {
	req := validCreateOrderRequest()
	req.PaymentMethod = "paypal"
	if err := validateCreateOrderRequest(req); err == nil {
		t.Fatal("expected error for unknown payment method")
	}
}

func TestValidateCreateOrderRequestRejectsIncompleteAddress(t *testing.T) {
	req := validCreateOrderRequest()
	req.ShippingAddress.City = ""
	if err := validateCreateOrderRequest(req); err == nil {
		t.Fatal("expected error for incomplete shipping address")
	}
}

func TestStatusUpdateFilterPinsCurrentStatus(t *testing.T) {
	id := primitive.NewObjectID()
	filter := statusUpdateFilter(id, models.OrderStatusPending)

	if filter["_id"] != id {
		t.Fatalf("expected filter to target order %s", id.Hex())
	}
	if filter["status"] != models.OrderStatusPending {
		t.Fatal("expected filter to require the status the transition was checked against")
	}
}

func TestValidateCreateOrderRequestRejectsNegativePrices(t *testing.T) {
	req := validCreateOrderRequest()
	req.TaxPrice = -0.01
	if err := validateCreateOrderRequest(req); err == nil {
		t.Fatal("expected error for negative tax price")
	}
}
