package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhoneNumber is one unit of inventory. It belongs to exactly one Service
// and flips from unsold to sold when an OTP is delivered for it.
type PhoneNumber struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ServiceID primitive.ObjectID `bson:"service_id" json:"service_id"`
	Number    string             `bson:"phone_number" json:"phone_number"`
	IsSold    bool               `bson:"is_sold" json:"is_sold"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
