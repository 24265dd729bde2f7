package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OrderID       string             `bson:"order_id" json:"order_id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	ServiceID     primitive.ObjectID `bson:"service_id" json:"service_id"`
	PhoneNumberID primitive.ObjectID `bson:"phone_number_id" json:"phone_number_id"`
	// PhoneNumber is denormalized from the PhoneNumber row at purchase time;
	// the OTP delivery lookup matches on this copy.
	PhoneNumber string      `bson:"phone_number" json:"phone_number"`
	OTP         string      `bson:"otp,omitempty" json:"otp,omitempty"`
	Status      OrderStatus `bson:"status" json:"status"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	CompletedAt *time.Time  `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)
