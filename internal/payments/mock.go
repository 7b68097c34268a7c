package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// MockGateway settles any pending unpaid order after a simulated delay.
// Demo and testing only.
type MockGateway struct {
	Delay time.Duration
}

func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{Delay: delay}
}

func (g *MockGateway) Method() string {
	return models.PaymentMethodMock
}

func (g *MockGateway) Settle(ctx context.Context, db *mongo.Database, order *models.Order, ev Evidence) (Result, error) {
	time.Sleep(g.Delay)

	txn := "MOCK_" + uuid.NewString()
	result := models.PaymentResult{
		ID:         txn,
		Status:     StatusCompleted,
		UpdateTime: time.Now(),
		Email:      ev.PayerEmail,
	}

	// The write runs on its own context so a caller disconnecting mid-delay
	// never leaves the order half-updated.
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := MarkOrderPaid(writeCtx, db, order.ID, result); err != nil {
		return Result{}, err
	}
	return Result{TransactionID: txn, Status: StatusCompleted}, nil
}

// Fail records a failed transaction on the order without mutating isPaid.
// Companion negative-path variant for the mock gateway.
func (g *MockGateway) Fail(db *mongo.Database, orderID primitive.ObjectID) (Result, error) {
	time.Sleep(g.Delay)

	txn := "FAILED_" + uuid.NewString()
	result := models.PaymentResult{
		ID:         txn,
		Status:     StatusFailed,
		UpdateTime: time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RecordFailedPayment(writeCtx, db, orderID, result); err != nil {
		return Result{}, err
	}
	return Result{TransactionID: txn, Status: StatusFailed}, nil
}
