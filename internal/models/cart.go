package models

import (
	"errors"
	"fmt"
)

// Cart represents a shopping cart of selected ticket groups
type Cart struct {
	Items       []CartItem `json:"items"`
	ServiceFee  int        `json:"service_fee"`  // in cents
	DeliveryFee int        `json:"delivery_fee"` // in cents
	Discount    int        `json:"discount"`     // in cents
}

// CartItem represents one ticket group selection in the cart
type CartItem struct {
	TicketGroupID  int    `json:"ticket_group_id"`
	EventID        int    `json:"event_id"`
	EventTitle     string `json:"event_title"`
	EventDate      string `json:"event_date"`
	Venue          string `json:"venue"`
	Section        string `json:"section"`
	Row            string `json:"row"`
	Quantity       int    `json:"quantity"`
	PricePerTicket int    `json:"price_per_ticket"` // in cents
	Format         string `json:"format"`
}

// CartSummary is derived from the cart on every read, never stored
type CartSummary struct {
	Subtotal    int `json:"subtotal"`     // in cents
	ServiceFee  int `json:"service_fee"`  // in cents
	DeliveryFee int `json:"delivery_fee"` // in cents
	Discount    int `json:"discount"`     // in cents
	Total       int `json:"total"`        // in cents
}

// TotalPrice returns the line total for the item
func (i CartItem) TotalPrice() int {
	return i.Quantity * i.PricePerTicket
}

// Validate checks a cart item before it is accepted into the cart
func (i CartItem) Validate() error {
	if i.TicketGroupID <= 0 {
		return errors.New("ticket group id is required")
	}
	if i.EventID <= 0 {
		return errors.New("event id is required")
	}
	if i.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	if i.PricePerTicket <= 0 {
		return errors.New("price per ticket must be positive")
	}
	return nil
}

// Summary recomputes the derived price summary.
// Total = Subtotal + ServiceFee + DeliveryFee - Discount.
func (c Cart) Summary() CartSummary {
	subtotal := 0
	for _, item := range c.Items {
		subtotal += item.TotalPrice()
	}

	return CartSummary{
		Subtotal:    subtotal,
		ServiceFee:  c.ServiceFee,
		DeliveryFee: c.DeliveryFee,
		Discount:    c.Discount,
		Total:       subtotal + c.ServiceFee + c.DeliveryFee - c.Discount,
	}
}

// IsEmpty reports whether the cart holds no items
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// PrimaryItem returns the first line item, which the checkout flow treats as
// the primary item of the order.
func (c Cart) PrimaryItem() (CartItem, bool) {
	if len(c.Items) == 0 {
		return CartItem{}, false
	}
	return c.Items[0], true
}

// AddItem returns a new cart with the item added. If the ticket group is
// already in the cart the quantities are merged. The receiver is never
// mutated; consumers relying on reference equality observe a fresh slice.
func (c Cart) AddItem(item CartItem) (Cart, error) {
	if err := item.Validate(); err != nil {
		return c, fmt.Errorf("invalid cart item: %w", err)
	}

	next := c
	next.Items = make([]CartItem, 0, len(c.Items)+1)

	merged := false
	for _, existing := range c.Items {
		if existing.TicketGroupID == item.TicketGroupID {
			existing.Quantity += item.Quantity
			merged = true
		}
		next.Items = append(next.Items, existing)
	}

	if !merged {
		next.Items = append(next.Items, item)
	}

	return next, nil
}

// UpdateQuantity returns a new cart with the item's quantity replaced.
// A quantity of zero or less removes the item entirely.
func (c Cart) UpdateQuantity(ticketGroupID, quantity int) Cart {
	if quantity <= 0 {
		return c.RemoveItem(ticketGroupID)
	}

	next := c
	next.Items = make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.TicketGroupID == ticketGroupID {
			item.Quantity = quantity
		}
		next.Items = append(next.Items, item)
	}
	return next
}

// RemoveItem returns a new cart without the given ticket group
func (c Cart) RemoveItem(ticketGroupID int) Cart {
	next := c
	next.Items = make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.TicketGroupID == ticketGroupID {
			continue
		}
		next.Items = append(next.Items, item)
	}
	return next
}

// Cleared returns an empty cart
func (c Cart) Cleared() Cart {
	return Cart{}
}
