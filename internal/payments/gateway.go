// Package payments settles orders. Each supported payment method is a
// Gateway variant sharing one settlement contract; the variant is selected
// by the payment method stored on the order.
package payments

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrAlreadyPaid        = errors.New("order already paid")
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrVerificationFailed = errors.New("payment verification failed")
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Evidence carries the proof of payment a caller supplies for settlement.
// Which fields are required depends on the gateway variant.
type Evidence struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	PayerEmail       string
}

// Result reports the outcome of one settlement attempt. Exactly one of
// completed or failed is recorded on the order per attempt.
type Result struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// Gateway settles payment attempts for a single payment method.
type Gateway interface {
	Method() string
	Settle(ctx context.Context, db *mongo.Database, order *models.Order, ev Evidence) (Result, error)
}

// Registry holds the closed set of gateway variants keyed by payment method.
type Registry map[string]Gateway

func NewRegistry(gateways ...Gateway) Registry {
	r := make(Registry, len(gateways))
	for _, g := range gateways {
		r[g.Method()] = g
	}
	return r
}

func (r Registry) ForMethod(method string) (Gateway, bool) {
	g, ok := r[method]
	return g, ok
}
