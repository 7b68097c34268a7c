package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v81"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/payments"
)

const maxWebhookBodyBytes = int64(65536)

type createStripeIntentRequest struct {
	OrderID  string `json:"orderId" binding:"required"`
	Currency string `json:"currency"`
}

// CreateStripeIntent registers a payment intent for an order and returns
// the client secret for client-side confirmation. The amount is taken from
// the order itself, never from the caller, and the order id rides in the
// intent metadata so the webhook can resolve it later.
func CreateStripeIntent(db *mongo.Database, gateway *payments.StripeGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/stripe/create"
		defer handlePanic(c, route)

		var req createStripeIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, ok := loadOwnedOrder(c, db, req.OrderID)
		if !ok {
			return
		}

		if order.PaymentMethod != models.PaymentMethodStripe {
			respondWithError(c, http.StatusBadRequest, route, "order is not payable via stripe")
			return
		}
		if order.IsPaid {
			respondWithError(c, http.StatusConflict, route, "order already paid")
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = "usd"
		}

		clientSecret, err := gateway.CreateIntent(order.TotalPrice, currency, order.ID.Hex())
		if err != nil {
			log.Println("[PAYMENT] [ERROR] stripe intent creation failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment gateway error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
	}
}

// StripeWebhook receives asynchronous gateway events. The signature is
// verified before any payload field is trusted; a succeeded payment intent
// is resolved to its order via the metadata order id and settled with the
// same conditional paid-state write as every other gateway.
func StripeWebhook(db *mongo.Database, gateway *payments.StripeGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/stripe/webhook"
		defer handlePanic(c, route)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "could not read body")
			return
		}

		event, err := gateway.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			log.Println("[PAYMENT] [ERROR] webhook signature verification failed:", err)
			respondWithError(c, http.StatusBadRequest, route, "webhook signature verification failed")
			return
		}

		if event.Type != "payment_intent.succeeded" {
			log.Println("[PAYMENT] [INFO] unhandled webhook event type:", event.Type)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "malformed event payload")
			return
		}

		rawOrderID := intent.Metadata[payments.MetadataOrderID]
		orderID, err := primitive.ObjectIDFromHex(rawOrderID)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] webhook intent has no usable order id:", intent.ID)
			respondWithError(c, http.StatusBadRequest, route, "event has no order reference")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		_, err = gateway.Settle(ctx, db, &order, payments.Evidence{
			GatewayPaymentID: intent.ID,
			PayerEmail:       intent.ReceiptEmail,
		})
		if err != nil {
			// Gateways retry webhooks; an already-settled order is success.
			if errors.Is(err, payments.ErrAlreadyPaid) {
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
			respondSettlementError(c, route, err)
			return
		}

		log.Println("[PAYMENT] [INFO] stripe payment settled for order:", order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
