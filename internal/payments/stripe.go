package payments

import (
	"context"
	"math"
	"time"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// MetadataOrderID is the intent metadata key linking a Stripe payment intent
// back to the order it pays for. The webhook resolves orders by it.
const MetadataOrderID = "order_id"

// StripeGateway settles orders confirmed client-side via payment intents.
// The paid-state write only happens from the signed webhook event.
type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) Method() string {
	return models.PaymentMethodStripe
}

// CreateIntent registers a payment intent carrying the order id in its
// metadata and returns the client secret for client-side confirmation.
func (g *StripeGateway) CreateIntent(amount float64, currency, orderID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(MetadataOrderID, orderID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// VerifyEvent checks the webhook signature before any payload field is
// trusted.
func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
}

func (g *StripeGateway) Settle(ctx context.Context, db *mongo.Database, order *models.Order, ev Evidence) (Result, error) {
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
