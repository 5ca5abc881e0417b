package models

import (
	"testing"
)

func sampleCart() Cart {
	return Cart{
		Items: []CartItem{
			{
				TicketGroupID:  42,
				EventID:        7,
				EventTitle:     "The Weeknd",
				Venue:          "Madison Square Garden",
				Section:        "104",
				Row:            "C",
				Quantity:       2,
				PricePerTicket: 5000,
				Format:         "Eticket",
			},
			{
				TicketGroupID:  99,
				EventID:        7,
				EventTitle:     "The Weeknd",
				Venue:          "Madison Square Garden",
				Section:        "200",
				Row:            "A",
				Quantity:       1,
				PricePerTicket: 7500,
				Format:         "Eticket",
			},
		},
	}
}

func TestCart_Summary(t *testing.T) {
	tests := []struct {
		name         string
		cart         Cart
		wantSubtotal int
		wantTotal    int
	}{
		{
			name:         "empty cart",
			cart:         Cart{},
			wantSubtotal: 0,
			wantTotal:    0,
		},
		{
			name:         "subtotal is sum of quantity times price",
			cart:         sampleCart(),
			wantSubtotal: 17500,
			wantTotal:    17500,
		},
		{
			name: "total includes fees and discount",
			cart: Cart{
				Items: []CartItem{
					{TicketGroupID: 1, EventID: 1, Quantity: 2, PricePerTicket: 5000},
				},
				ServiceFee:  1000,
				DeliveryFee: 500,
				Discount:    250,
			},
			wantSubtotal: 10000,
			wantTotal:    11250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := tt.cart.Summary()
			if summary.Subtotal != tt.wantSubtotal {
				t.Errorf("Subtotal = %d, want %d", summary.Subtotal, tt.wantSubtotal)
			}
			if summary.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", summary.Total, tt.wantTotal)
			}
			expected := summary.Subtotal + summary.ServiceFee + summary.DeliveryFee - summary.Discount
			if summary.Total != expected {
				t.Errorf("Total = %d, want Subtotal+ServiceFee+DeliveryFee-Discount = %d", summary.Total, expected)
			}
		})
	}
}

func TestCart_UpdateQuantity(t *testing.T) {
	cart := sampleCart()

	updated := cart.UpdateQuantity(42, 5)
	if got := updated.Items[0].Quantity; got != 5 {
		t.Errorf("quantity = %d, want 5", got)
	}

	// Original cart is untouched
	if got := cart.Items[0].Quantity; got != 2 {
		t.Errorf("original quantity mutated to %d, want 2", got)
	}
}

func TestCart_UpdateQuantityToZeroRemovesItem(t *testing.T) {
	cart := sampleCart()

	updated := cart.UpdateQuantity(42, 0)
	if len(updated.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(updated.Items))
	}
	if updated.Items[0].TicketGroupID != 99 {
		t.Errorf("remaining item = %d, want 99", updated.Items[0].TicketGroupID)
	}

	updated = cart.UpdateQuantity(42, -3)
	if len(updated.Items) != 1 {
		t.Errorf("negative quantity should remove the item, len = %d", len(updated.Items))
	}
}

func TestCart_RemoveItem(t *testing.T) {
	cart := sampleCart()

	updated := cart.RemoveItem(99)
	if len(updated.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(updated.Items))
	}
	if len(cart.Items) != 2 {
		t.Errorf("original cart mutated, len = %d", len(cart.Items))
	}

	// Removing an unknown id leaves the cart intact
	updated = cart.RemoveItem(12345)
	if len(updated.Items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(updated.Items))
	}
}

func TestCart_AddItem(t *testing.T) {
	cart := Cart{}

	cart, err := cart.AddItem(CartItem{TicketGroupID: 42, EventID: 7, Quantity: 2, PricePerTicket: 5000})
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(cart.Items))
	}

	// Same ticket group merges quantities
	cart, err = cart.AddItem(CartItem{TicketGroupID: 42, EventID: 7, Quantity: 1, PricePerTicket: 5000})
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1 after merge", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Errorf("merged quantity = %d, want 3", cart.Items[0].Quantity)
	}
}

func TestCartItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    CartItem
		wantErr bool
	}{
		{
			name:    "valid item",
			item:    CartItem{TicketGroupID: 1, EventID: 1, Quantity: 1, PricePerTicket: 100},
			wantErr: false,
		},
		{
			name:    "missing ticket group",
			item:    CartItem{EventID: 1, Quantity: 1, PricePerTicket: 100},
			wantErr: true,
		},
		{
			name:    "zero quantity",
			item:    CartItem{TicketGroupID: 1, EventID: 1, Quantity: 0, PricePerTicket: 100},
			wantErr: true,
		},
		{
			name:    "free ticket",
			item:    CartItem{TicketGroupID: 1, EventID: 1, Quantity: 1, PricePerTicket: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCart_Cleared(t *testing.T) {
	cart := sampleCart()
	cart.ServiceFee = 100

	cleared := cart.Cleared()
	if !cleared.IsEmpty() {
		t.Error("cleared cart should be empty")
	}
	if cleared.Summary().Total != 0 {
		t.Errorf("cleared total = %d, want 0", cleared.Summary().Total)
	}
}
