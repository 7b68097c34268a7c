package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/payments"
)

type createRazorpayOrderRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency"`
}

type verifyRazorpayRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
	OrderID          string `json:"orderId" binding:"required"`
}

// CreateRazorpayOrder registers the amount with the gateway ahead of
// client-side checkout.
func CreateRazorpayOrder(gateway *payments.RazorpayGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/razorpay/create"
		defer handlePanic(c, route)

		var req createRazorpayOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = "INR"
		}

		receipt := fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
		gatewayOrder, err := gateway.CreateGatewayOrder(req.Amount, currency, receipt)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] razorpay order creation failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment gateway error")
			return
		}

		c.JSON(http.StatusOK, gatewayOrder)
	}
}

// VerifyRazorpayPayment checks the gateway signature and, on success,
// applies the paid-state write. The gateway variant is selected by the
// payment method stored on the order.
func VerifyRazorpayPayment(db *mongo.Database, registry payments.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/razorpay/verify"
		defer handlePanic(c, route)

		var req verifyRazorpayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, ok := loadOwnedOrder(c, db, req.OrderID)
		if !ok {
			return
		}

		if order.PaymentMethod != models.PaymentMethodRazorpay {
			respondWithError(c, http.StatusBadRequest, route, "order is not payable via razorpay")
			return
		}

		gateway, ok := registry.ForMethod(order.PaymentMethod)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "no gateway for payment method")
			return
		}

		user, _ := middleware.CurrentUser(c)
		result, err := gateway.Settle(c.Request.Context(), db, order, payments.Evidence{
			GatewayOrderID:   req.GatewayOrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			Signature:        req.Signature,
			PayerEmail:       user.Email,
		})
		if err != nil {
			respondSettlementError(c, route, err)
			return
		}

		log.Println("[PAYMENT] [INFO] razorpay payment verified for order:", order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "Payment verified successfully",
			"transactionId": result.TransactionID,
		})
	}
}
