package handlers

import (
	"ticket-storefront/internal/models"
	"ticket-storefront/internal/services"
)

// ResultView is the rendered outcome of a checkout session
type ResultView struct {
	State       string             `json:"state"`
	Order       *OrderView         `json:"order,omitempty"`
	Error       string             `json:"error,omitempty"`
	FieldErrors models.FieldErrors `json:"field_errors,omitempty"`
}

// OrderView is the order confirmation payload
type OrderView struct {
	OrderID string `json:"order_id"`
	Total   int    `json:"total"`
	Status  string `json:"status"`
}

// PresentOrder renders a successful order result
func PresentOrder(order *models.OrderResult) ResultView {
	return ResultView{
		State: string(services.StateSucceeded),
		Order: &OrderView{
			OrderID: order.OrderID,
			Total:   order.Total,
			Status:  order.Status,
		},
	}
}

// PresentResult renders the session's current state: the confirmation after
// success, the failure message after a failed attempt, or the field errors
// while collecting.
func PresentResult(s *services.CheckoutSession) ResultView {
	view := ResultView{State: string(s.State())}

	if order := s.Order(); order != nil {
		view.Order = &OrderView{
			OrderID: order.OrderID,
			Total:   order.Total,
			Status:  order.Status,
		}
		return view
	}

	view.Error = s.FailureMessage()
	view.FieldErrors = s.FieldErrors()
	return view
}
