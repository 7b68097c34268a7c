package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// RazorpayGateway verifies gateway-signed payments. The gateway signs
// "<gatewayOrderID>|<gatewayPaymentID>" with the shared key secret; we
// recompute the HMAC locally and compare in constant time.
type RazorpayGateway struct {
	keySecret string
	client    *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keySecret: keySecret,
		client:    razorpay.NewClient(keyID, keySecret),
	}
}

func (g *RazorpayGateway) Method() string {
	return models.PaymentMethodRazorpay
}

// CreateGatewayOrder registers the amount with Razorpay ahead of client-side
// checkout. Amount is converted to the smallest currency unit.
func (g *RazorpayGateway) CreateGatewayOrder(amount float64, currency, receipt string) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   int64(math.Round(amount * 100)),
		"currency": currency,
		"receipt":  receipt,
	}
	return g.client.Order.Create(data, nil)
}

func (g *RazorpayGateway) Settle(ctx context.Context, db *mongo.Database, order *models.Order, ev Evidence) (Result, error) {
	if !VerifySignature(ev.GatewayOrderID, ev.GatewayPaymentID, ev.Signature, g.keySecret) {
		return Result{}, ErrVerificationFailed
	}

	result := models.PaymentResult{
		ID:         ev.GatewayPaymentID,
		Status:     StatusCompleted,
		UpdateTime: time.Now(),
		Email:      ev.PayerEmail,
	}
	if err := MarkOrderPaid(ctx, db, order.ID, result); err != nil {
		return Result{}, err
	}
	return Result{TransactionID: ev.GatewayPaymentID, Status: StatusCompleted}, nil
}

// VerifySignature recomputes the HMAC-SHA256 over "orderID|paymentID" and
// compares it against the supplied signature in constant time.
func VerifySignature(gatewayOrderID, gatewayPaymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", gatewayOrderID, gatewayPaymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
