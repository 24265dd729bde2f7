package models

import "errors"

// Common errors
var (
	ErrNoStock            = errors.New("no numbers available for this service")
	ErrNoPendingOrder     = errors.New("no pending order found for this number")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNumberNotFound     = errors.New("phone number not found")
	ErrNumberSold         = errors.New("phone number already sold")
	ErrServiceNotFound    = errors.New("service not found")
	ErrServiceInactive    = errors.New("service is not active")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
