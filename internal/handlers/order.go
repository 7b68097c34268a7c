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
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/middleware"
	"storefront/internal/models"
)

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"orderItems"`
	ShippingAddress models.ShippingAddress   `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	TaxPrice        float64                  `json:"taxPrice"`
	ShippingPrice   float64                  `json:"shippingPrice"`
}

func validateCreateOrderRequest(req createOrderRequest) error {
	if len(req.Items) == 0 {
		return errors.New("no order items")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return errors.New("quantity must be at least 1")
		}
	}
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return errors.New("invalid payment method")
	}
	addr := req.ShippingAddress
	if addr.Address == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return errors.New("shipping address is incomplete")
	}
	if req.TaxPrice < 0 || req.ShippingPrice < 0 {
		return errors.New("prices cannot be negative")
	}
	return nil
}

// CreateOrder persists a new order in status pending. Line items are
// snapshots resolved against the products collection, so client-sent names
// and prices are never trusted and later product edits leave historical
// orders untouched.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if err := validateCreateOrderRequest(req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		items := make([]models.OrderItem, 0, len(req.Items))
		itemsTotal := 0.0
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(item.ProductID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid productId")
				return
			}

			var product models.Product
			err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusBadRequest, route, "product not found: "+item.ProductID)
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
				Image:     image,
			})
			itemsTotal += product.Price * float64(item.Quantity)
		}

		now := time.Now()
		order := models.Order{
			UserID:          user.ID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			TaxPrice:        req.TaxPrice,
			ShippingPrice:   req.ShippingPrice,
			TotalPrice:      itemsTotal + req.TaxPrice + req.ShippingPrice,
			IsPaid:          false,
			IsDelivered:     false,
			Status:          models.OrderStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		order.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[ORDER] [INFO] order created for user:", user.ID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

// GetOrderByID returns the order to its owner or to an admin.
func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}

		if order.UserID != user.ID && !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to view this order"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(
			ctx,
			bson.M{"userId": user.ID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "decode error"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(
			ctx,
			bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "decode error"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

type updateOrderStatusRequest struct {
	Status      string `json:"status"`
	IsDelivered *bool  `json:"isDelivered"`
}

// statusUpdateFilter pins the write to the status the legality check saw,
// so two concurrent admin updates cannot compose an illegal transition.
func statusUpdateFilter(id primitive.ObjectID, currentStatus string) bson.M {
	return bson.M{"_id": id, "status": currentStatus}
}

// UpdateOrderStatus is admin-only and enforces the allowed status
// transition table. Setting isDelivered also stamps deliveredAt.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}

		set := bson.M{"updatedAt": time.Now()}

		if req.Status != "" && req.Status != order.Status {
			if !models.IsValidOrderStatus(req.Status) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "unknown status: " + req.Status})
				return
			}
			if !models.CanTransition(order.Status, req.Status) {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "cannot move order from " + order.Status + " to " + req.Status,
				})
				return
			}
			set["status"] = req.Status
		}

		if req.IsDelivered != nil && *req.IsDelivered && !order.IsDelivered {
			set["isDelivered"] = true
			set["deliveredAt"] = time.Now()
		}

		var updated models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			statusUpdateFilter(id, order.Status),
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusConflict, gin.H{"message": "order was modified concurrently, retry"})
			return
		}
		if err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[ORDER] [INFO] order status updated:", id.Hex())
		c.JSON(http.StatusOK, updated)
	}
}
