package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/payments"
)

type mockPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// loadOwnedOrder fetches the order and enforces owner-or-admin access.
func loadOwnedOrder(c *gin.Context, db *mongo.Database, rawID string) (*models.Order, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return nil, false
	}

	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return nil, false
	}

	if order.UserID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to pay this order"})
		return nil, false
	}

	return &order, true
}

func respondSettlementError(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, payments.ErrOrderNotFound):
		respondWithError(c, http.StatusNotFound, route, "order not found")
	case errors.Is(err, payments.ErrAlreadyPaid):
		respondWithError(c, http.StatusConflict, route, "order already paid")
	case errors.Is(err, payments.ErrOrderNotPending):
		respondWithError(c, http.StatusConflict, route, "order cannot be settled in its current status")
	case errors.Is(err, payments.ErrVerificationFailed):
		respondWithError(c, http.StatusBadRequest, route, "payment verification failed")
	default:
		log.Printf("[%s] settlement error: %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "payment processing failed")
	}
}

// ProcessMockPayment settles any pending unpaid order after a simulated
// delay. Demo and testing only.
func ProcessMockPayment(db *mongo.Database, gateway *payments.MockGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/mock/process"
		defer handlePanic(c, route)

		var req mockPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, ok := loadOwnedOrder(c, db, req.OrderID)
		if !ok {
			return
		}

		user, _ := middleware.CurrentUser(c)
		result, err := gateway.Settle(c.Request.Context(), db, order, payments.Evidence{
			PayerEmail: user.Email,
		})
		if err != nil {
			respondSettlementError(c, route, err)
			return
		}

		log.Println("[PAYMENT] [INFO] mock payment settled for order:", order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "Payment successful (DEMO MODE)",
			"transactionId": result.TransactionID,
			"order": gin.H{
				"id":         order.ID.Hex(),
				"isPaid":     true,
				"totalPrice": order.TotalPrice,
			},
		})
	}
}

// SimulateFailedPayment records a failed transaction without touching the
// paid state. Negative-path testing companion to ProcessMockPayment.
func SimulateFailedPayment(db *mongo.Database, gateway *payments.MockGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/mock/fail"
		defer handlePanic(c, route)

		var req mockPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, ok := loadOwnedOrder(c, db, req.OrderID)
		if !ok {
			return
		}

		result, err := gateway.Fail(db, order.ID)
		if err != nil {
			respondSettlementError(c, route, err)
			return
		}

		log.Println("[PAYMENT] [INFO] mock payment failure recorded for order:", order.ID.Hex())
		c.JSON(http.StatusBadRequest, gin.H{
			"success":       false,
			"message":       "Payment failed (DEMO MODE)",
			"transactionId": result.TransactionID,
		})
	}
}
