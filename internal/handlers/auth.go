package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/mail"
	"storefront/internal/middleware"
	"storefront/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

func authUserResponse(user models.User, accessToken, refreshToken string) gin.H {
	resp := gin.H{
		"id":    user.ID.Hex(),
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
	if accessToken != "" {
		resp["accessToken"] = accessToken
	}
	if refreshToken != "" {
		resp["refreshToken"] = refreshToken
	}
	return resp
}

func Register(db *mongo.Database, env config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		name := strings.TrimSpace(req.Name)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] register db error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		if count > 0 {
			log.Println("[AUTH] [ERROR] register email exists:", email)
			c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] register password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "password hash failed"})
			return
		}

		now := time.Now()
		user := models.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			// Unique email index may still reject a concurrent duplicate.
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
				return
			}
			log.Println("[AUTH] [ERROR] register insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		accessToken, refreshToken, err := issueTokenPair(user, env)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, authUserResponse(user, accessToken, refreshToken))
	}
}

func Login(db *mongo.Database, env config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Unknown email and wrong password answer identically. A lookup
		// failure that is not a missing user is infrastructure, not a
		// credential problem.
		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			status, message := loginLookupStatus(err)
			if status == http.StatusInternalServerError {
				log.Println("[AUTH] [ERROR] login lookup failed:", err)
			} else {
				log.Println("[AUTH] [ERROR] login invalid credentials")
			}
			c.JSON(status, gin.H{"message": message})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}

		accessToken, refreshToken, err := issueTokenPair(user, env)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, authUserResponse(user, accessToken, refreshToken))
	}
}

// RefreshToken validates the refresh token against its own secret and mints
// a new access token. The refresh token itself is not rotated; a leaked one
// stays valid until natural expiry.
func RefreshToken(db *mongo.Database, env config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "refresh token required"})
			return
		}

		userID, err := auth.ParseToken(req.RefreshToken, env.JWTRefreshSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired refresh token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired refresh token"})
			return
		}

		accessToken, err := auth.IssueAccessToken(user.ID, user.Role, env.JWTSecret, env.AccessTokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] refresh token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
	}
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var full models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": user.ID}).Decode(&full); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}

		c.JSON(http.StatusOK, full)
	}
}

// ForgotPassword issues a reset token: only its hash is stored, the raw
// token goes out by email.
func ForgotPassword(db *mongo.Database, mailer *mail.Mailer, env config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "no user with that email"})
			return
		}

		token, err := auth.GenerateResetToken()
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
			return
		}

		expireAt := time.Now().Add(env.ResetTokenTTL)
		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"resetTokenHash":     auth.HashToken(token),
			"resetTokenExpireAt": expireAt,
			"updatedAt":          time.Now(),
		}})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token store failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		resetURL := fmt.Sprintf("%s/reset-password/%s", env.FrontendURL, token)
		body := fmt.Sprintf(
			"<p>You requested a password reset.</p><p><a href=%q>Reset your password</a> (valid for %d minutes).</p>",
			resetURL, int(env.ResetTokenTTL.Minutes()),
		)

		if err := mailer.Send(user.Email, "Password reset", body); err != nil {
			log.Println("[AUTH] [ERROR] reset email send failed:", err)
			// Invalidate the token we could not deliver.
			_, _ = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$unset": bson.M{
				"resetTokenHash":     "",
				"resetTokenExpireAt": "",
			}})
			c.JSON(http.StatusBadGateway, gin.H{"message": "email could not be sent"})
			return
		}

		log.Println("[AUTH] [INFO] reset email sent:", email)
		c.JSON(http.StatusOK, gin.H{"message": "reset email sent"})
	}
}

func ResetPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		tokenHash := auth.HashToken(strings.TrimSpace(c.Param("token")))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"resetTokenHash":     tokenHash,
			"resetTokenExpireAt": bson.M{"$gt": time.Now()},
		}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid or expired reset token"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "password hash failed"})
			return
		}

		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"passwordHash": string(hash),
				"updatedAt":    time.Now(),
			},
			"$unset": bson.M{
				"resetTokenHash":     "",
				"resetTokenExpireAt": "",
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[AUTH] [INFO] password reset for:", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}

func loginLookupStatus(err error) (int, string) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return http.StatusUnauthorized, "invalid credentials"
	}
	return http.StatusInternalServerError, "db error"
}

func issueTokenPair(user models.User, env config.Config) (string, string, error) {
	accessToken, err := auth.IssueAccessToken(user.ID, user.Role, env.JWTSecret, env.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := auth.IssueRefreshToken(user.ID, env.JWTRefreshSecret, env.RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
