package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	Street     string `json:"street,omitempty" bson:"street,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
}

// User is a stored account. Password always holds the bcrypt hash at rest;
// the service hashes raw passwords before they reach a repository.
type User struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	Email               string             `json:"email" bson:"email"`
	Password            string             `json:"password,omitempty" bson:"password"`
	Phone               string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address             Address            `json:"address,omitempty" bson:"address,omitempty"`
	IsAdmin             bool               `json:"isAdmin" bson:"isAdmin"`
	IsActive            bool               `json:"isActive" bson:"isActive"`
	LastLogin           *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	ResetPasswordToken  string             `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpire *time.Time         `json:"-" bson:"resetPasswordExpire,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func sanitizeUser(u User) User {
	u.Password = ""
	return u
}
