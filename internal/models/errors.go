package models

import "errors"

// Common errors used throughout the checkout core
var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrItemNotFound         = errors.New("cart item not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrValidationFailed     = errors.New("validation failed")
	ErrNoDeliveryOption     = errors.New("no delivery option selected")
	ErrPostalCodeIncomplete = errors.New("postal code is incomplete")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrCheckoutCompleted    = errors.New("checkout already completed")
	ErrNegativeTotal        = errors.New("order total cannot be negative")
	ErrAuthRequired         = errors.New("authentication required")
	ErrSessionExpired       = errors.New("session expired")
	ErrWidgetNotReady       = errors.New("payment widget not initialized")
	ErrCardDeclined         = errors.New("card declined")
)
