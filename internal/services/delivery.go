package services

import (
	"context"
	"fmt"
	"log/slog"

	"ticket-storefront/internal/models"
)

// DeliveryCalculator quotes shipping options and tax for the primary cart
// line item. Callers gate it on a complete postal code so the backend is
// not hit on every keystroke.
type DeliveryCalculator struct {
	api    BackendAPI
	logger *slog.Logger
}

// NewDeliveryCalculator creates a delivery and tax calculator
func NewDeliveryCalculator(api BackendAPI, logger *slog.Logger) *DeliveryCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeliveryCalculator{api: api, logger: logger}
}

// DeliveryQuote is the outcome of one calculation
type DeliveryQuote struct {
	Options  []models.DeliveryOption
	TaxQuote *models.TaxQuote
}

// Calculate requests shipping options and a tax quote. It returns
// models.ErrPostalCodeIncomplete without a network call until the postal
// code reaches its complete 5-digit form.
func (c *DeliveryCalculator) Calculate(ctx context.Context, item models.CartItem, postalCode string, billing *models.BuyerInfo) (*DeliveryQuote, error) {
	if !models.PostalCodeComplete(postalCode) {
		return nil, models.ErrPostalCodeIncomplete
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("invalid line item: %w", err)
	}

	resp, err := c.api.CalculateDelivery(ctx, &CalculateRequest{
		TicketGroupID: item.TicketGroupID,
		Quantity:      item.Quantity,
		UnitPrice:     item.PricePerTicket,
		PostalCode:    postalCode,
		Address:       billing,
	})
	if err != nil {
		c.logger.Warn("delivery calculation failed",
			"ticket_group_id", item.TicketGroupID,
			"error", err,
		)
		return nil, err
	}

	return &DeliveryQuote{
		Options:  resp.ShippingOptions,
		TaxQuote: resp.TaxQuote,
	}, nil
}
