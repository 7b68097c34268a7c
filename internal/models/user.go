package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Address holds an optional default shipping address on the user profile.
type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// User represents the application user account. The password is stored only
// as a bcrypt hash and is never serialized outbound.
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`
	PasswordHash       string             `bson:"passwordHash" json:"-"`
	Role               string             `bson:"role" json:"role"`
	Avatar             string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Phone              string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address            *Address           `bson:"address,omitempty" json:"address,omitempty"`
	ResetTokenHash     string             `bson:"resetTokenHash,omitempty" json:"-"`
	ResetTokenExpireAt *time.Time         `bson:"resetTokenExpireAt,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
