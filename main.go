package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/mail"
	"storefront/internal/middleware"
	"storefront/internal/payments"
)

func main() {
	config.Load()
	env := config.AppEnv

	client, err := database.Connect(env.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(env.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}

	mailer := mail.New(env.SMTPHost, env.SMTPPort, env.SMTPUser, env.SMTPPass, env.FromEmail, env.FromName)

	mockGateway := payments.NewMockGateway(env.MockPaymentDelay)
	razorpayGateway := payments.NewRazorpayGateway(env.RazorpayKeyID, env.RazorpayKeySecret)
	stripeGateway := payments.NewStripeGateway(env.StripeSecretKey, env.StripeWebhookSecret)
	registry := payments.NewRegistry(mockGateway, razorpayGateway, stripeGateway)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
	})

	authAPI := r.Group("/api/auth")
	{
		authAPI.POST("/register", handlers.Register(db, env))
		authAPI.POST("/login", handlers.Login(db, env))
		authAPI.POST("/refresh", handlers.RefreshToken(db, env))
		authAPI.GET("/me", middleware.Protect(db, env.JWTSecret), handlers.GetMe(db))
		authAPI.POST("/forgot-password", handlers.ForgotPassword(db, mailer, env))
		authAPI.PUT("/reset-password/:token", handlers.ResetPassword(db))
	}

	products := r.Group("/api/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/:id", handlers.GetProductByID(db))

		admin := products.Use(middleware.Protect(db, env.JWTSecret), middleware.AdminOnly())
		admin.POST("", handlers.CreateProduct(db))
		admin.PUT("/:id", handlers.UpdateProduct(db))
		admin.DELETE("/:id", handlers.DeleteProduct(db))
	}

	orders := r.Group("/api/orders")
	orders.Use(middleware.Protect(db, env.JWTSecret))
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("/myorders", handlers.GetMyOrders(db))
		orders.GET("/:id", handlers.GetOrderByID(db))
		orders.GET("", middleware.AdminOnly(), handlers.GetAllOrders(db))
		orders.PUT("/:id/status", middleware.AdminOnly(), handlers.UpdateOrderStatus(db))
	}

	paymentsAPI := r.Group("/api/payments")
	{
		// Webhook is signed by the gateway, not by a bearer token.
		paymentsAPI.POST("/stripe/webhook", handlers.StripeWebhook(db, stripeGateway))

		protected := paymentsAPI.Use(middleware.Protect(db, env.JWTSecret))
		protected.POST("/mock/process", handlers.ProcessMockPayment(db, mockGateway))
		protected.POST("/mock/fail", handlers.SimulateFailedPayment(db, mockGateway))
		protected.POST("/razorpay/create", handlers.CreateRazorpayOrder(razorpayGateway))
		protected.POST("/razorpay/verify", handlers.VerifyRazorpayPayment(db, registry))
		protected.POST("/stripe/create", handlers.CreateStripeIntent(db, stripeGateway))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Println("server shutdown error:", err)
	}
	if err := database.Disconnect(client); err != nil {
		log.Println("mongo disconnect error:", err)
	}
}
