package payments

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// paidFilter matches the order only while it is pending and unpaid. Of two
// concurrent settlement attempts exactly one can match, and an order that
// already left pending (cancelled, shipped) never does.
func paidFilter(orderID primitive.ObjectID) bson.M {
	return bson.M{
		"_id":    orderID,
		"isPaid": false,
		"status": models.OrderStatusPending,
	}
}

// failedFilter matches the order only while it is unpaid, so a failed
// transaction record can never overwrite a completed one.
func failedFilter(orderID primitive.ObjectID) bson.M {
	return bson.M{"_id": orderID, "isPaid": false}
}

func paidUpdate(result models.PaymentResult, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"isPaid":        true,
		"paidAt":        now,
		"status":        models.OrderStatusProcessing,
		"paymentResult": result,
		"updatedAt":     now,
	}}
}

// MarkOrderPaid applies the paid-state mutation as a single conditional
// write. When nothing matched, a second read tells apart a missing order,
// the loser of a settlement race and an order outside pending.
func MarkOrderPaid(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID, result models.PaymentResult) error {
	res, err := db.Collection("orders").UpdateOne(ctx, paidFilter(orderID), paidUpdate(result, time.Now()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return settleRejection(ctx, db, orderID)
	}
	return nil
}

// RecordFailedPayment attaches a failed transaction record to an unpaid
// order without touching isPaid or the order status.
func RecordFailedPayment(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID, result models.PaymentResult) error {
	res, err := db.Collection("orders").UpdateOne(ctx, failedFilter(orderID), bson.M{"$set": bson.M{
		"paymentResult": result,
		"updatedAt":     time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyPaid
	}
	return nil
}

func settleRejection(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID) error {
	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if order.IsPaid {
		return ErrAlreadyPaid
	}
	return ErrOrderNotPending
}
