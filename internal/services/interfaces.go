package services

import (
	"context"

	"ticket-storefront/internal/models"
)

// BackendAPI is the marketplace backend consumed by the checkout core.
// Browsing and order persistence live behind it; the storefront only issues
// the four checkout calls.
type BackendAPI interface {
	CalculateDelivery(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error)
	CreateClient(ctx context.Context, buyer models.BuyerInfo) (string, error)
	MintClientToken(ctx context.Context, clientID string) (string, error)
	ProcessCheckout(ctx context.Context, req *models.CheckoutRequest, bearerToken string) (*models.OrderResult, error)
}

// TokenBroker caches short-lived payment client tokens per client id
type TokenBroker interface {
	RefreshClientToken(ctx context.Context, clientID string) (string, error)
	Invalidate(clientID string)
}

// CardDetails are the raw card fields for the direct-tokenization variant
type CardDetails struct {
	Number         string `json:"number"`
	ExpMonth       string `json:"exp_month"`
	ExpYear        string `json:"exp_year"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

// CardGateway exchanges raw card fields for a single-use token at submit
// time; it holds no pre-fetched state.
type CardGateway interface {
	Tokenize(ctx context.Context, card CardDetails) (string, error)
}

// DropinGateway models the hosted payment widget as an external resource
// with explicit acquire/release. Mount requires a client token; the handle
// must be disposed on teardown or token change.
type DropinGateway interface {
	Mount(ctx context.Context, clientToken string) (DropinHandle, error)
}

// DropinHandle is one mounted widget instance
type DropinHandle interface {
	PaymentCredential(ctx context.Context) (string, error)
	Dispose()
}

// CalculateRequest asks the backend for shipping options and a tax quote
// for the primary cart line item.
type CalculateRequest struct {
	TicketGroupID int               `json:"ticket_group_id"`
	Quantity      int               `json:"quantity"`
	UnitPrice     int               `json:"unit_price"` // in cents
	PostalCode    string            `json:"postal_code"`
	Address       *models.BuyerInfo `json:"address,omitempty"`
}

// CalculateResponse carries the backend's delivery and tax quote
type CalculateResponse struct {
	ShippingOptions []models.DeliveryOption `json:"shipping_options"`
	TaxQuote        *models.TaxQuote        `json:"tax_quote,omitempty"`
}
