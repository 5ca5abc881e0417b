package services

import (
	"context"
	"fmt"
	"testing"

	"ticket-storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCalculator_GatedOnPostalCode(t *testing.T) {
	api := NewMockBackendAPI()
	calc := NewDeliveryCalculator(api, nil)
	item := models.CartItem{TicketGroupID: 42, EventID: 7, Quantity: 2, PricePerTicket: 5000}

	for _, postal := range []string{"", "1", "1234", "12345678", "abcde"} {
		_, err := calc.Calculate(context.Background(), item, postal, nil)
		assert.ErrorIs(t, err, models.ErrPostalCodeIncomplete, "postal %q", postal)
	}
	assert.Equal(t, 0, api.CalculateCalls, "incomplete postal codes never reach the backend")

	quote, err := calc.Calculate(context.Background(), item, "12345", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, api.CalculateCalls)
	assert.NotEmpty(t, quote.Options)
}

func TestDeliveryCalculator_PassesLineItem(t *testing.T) {
	api := NewMockBackendAPI()
	var captured *CalculateRequest
	api.CalculateFunc = func(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error) {
		captured = req
		return &CalculateResponse{
			ShippingOptions: []models.DeliveryOption{{Type: models.DeliveryFedEx, Cost: 500}},
			TaxQuote:        &models.TaxQuote{TaxAmount: 800, Signature: "sig-1"},
		}, nil
	}
	calc := NewDeliveryCalculator(api, nil)

	buyer := models.BuyerInfo{Address: "1 Main St", City: "New York", State: "NY"}
	quote, err := calc.Calculate(context.Background(),
		models.CartItem{TicketGroupID: 42, EventID: 7, Quantity: 2, PricePerTicket: 5000},
		"10001", &buyer)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, 42, captured.TicketGroupID)
	assert.Equal(t, 2, captured.Quantity)
	assert.Equal(t, 5000, captured.UnitPrice)
	assert.Equal(t, "10001", captured.PostalCode)
	require.NotNil(t, captured.Address)
	assert.Equal(t, "New York", captured.Address.City)

	require.NotNil(t, quote.TaxQuote)
	assert.Equal(t, 800, quote.TaxQuote.TaxAmount)
}

func TestDeliveryCalculator_PropagatesBackendFailure(t *testing.T) {
	api := NewMockBackendAPI()
	api.CalculateFunc = func(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error) {
		return nil, fmt.Errorf("backend unavailable")
	}
	calc := NewDeliveryCalculator(api, nil)

	_, err := calc.Calculate(context.Background(),
		models.CartItem{TicketGroupID: 42, EventID: 7, Quantity: 1, PricePerTicket: 100},
		"10001", nil)
	assert.Error(t, err)
}

func TestDeliveryCalculator_RejectsInvalidItem(t *testing.T) {
	api := NewMockBackendAPI()
	calc := NewDeliveryCalculator(api, nil)

	_, err := calc.Calculate(context.Background(), models.CartItem{}, "10001", nil)
	assert.Error(t, err)
	assert.Equal(t, 0, api.CalculateCalls)
}
