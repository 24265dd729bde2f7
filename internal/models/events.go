package models

import "time"

// OrderEvent is the payload pushed to subscribers and published on the
// orders.events exchange whenever an order is created or completed.
type OrderEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	PhoneNumber string      `json:"phone_number"`
	OTP         string      `json:"otp,omitempty"`
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
)
