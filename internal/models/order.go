package models

import "errors"

// Order statuses as reported by the backend
const (
	OrderCompleted  = "completed"
	OrderPending    = "pending"
	OrderProcessing = "processing"
)

// OrderResult is the terminal outcome of a successful checkout. It is
// created once by the checkout call and only displayed afterwards.
type OrderResult struct {
	OrderID string `json:"order_id"`
	Total   int    `json:"total"` // in cents
	Status  string `json:"status"`
}

// Validate checks the order result envelope returned by the backend
func (o OrderResult) Validate() error {
	if o.OrderID == "" {
		return errors.New("order id is required")
	}
	if o.Total < 0 {
		return errors.New("order total cannot be negative")
	}
	if o.Status == "" {
		return errors.New("order status is required")
	}
	return nil
}
