package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticket-storefront/internal/config"
	"ticket-storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *BackendClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewBackendClient(config.BackendConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, nil)
}

func TestBackendClient_CalculateDelivery(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checkout/calculate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req CalculateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 42, req.TicketGroupID)

		json.NewEncoder(w).Encode(CalculateResponse{
			ShippingOptions: []models.DeliveryOption{
				{Type: models.DeliveryFedEx, Cost: 500, Description: "FedEx 2-day"},
			},
			TaxQuote: &models.TaxQuote{TaxAmount: 800, Signature: "sig-1"},
		})
	})

	resp, err := client.CalculateDelivery(context.Background(), &CalculateRequest{
		TicketGroupID: 42, Quantity: 2, UnitPrice: 5000, PostalCode: "10001",
	})
	require.NoError(t, err)
	require.Len(t, resp.ShippingOptions, 1)
	assert.Equal(t, models.DeliveryFedEx, resp.ShippingOptions[0].Type)
	require.NotNil(t, resp.TaxQuote)
	assert.Equal(t, "sig-1", resp.TaxQuote.Signature)
}

func TestBackendClient_CreateClient(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checkout/client", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"client_id": "client-9"})
	})

	clientID, err := client.CreateClient(context.Background(), models.BuyerInfo{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "+12125550100",
	})
	require.NoError(t, err)
	assert.Equal(t, "client-9", clientID)
}

func TestBackendClient_CreateClientEmptyID(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := client.CreateClient(context.Background(), models.BuyerInfo{})
	assert.Error(t, err)
}

func TestBackendClient_MintClientToken(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checkout/payments/braintree/client-token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client-9", body["client_id"])

		json.NewEncoder(w).Encode(map[string]string{"client_token": "tok-abc"})
	})

	token, err := client.MintClientToken(context.Background(), "client-9")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestBackendClient_ProcessCheckout(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checkout/process", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(models.OrderResult{
			OrderID: "order-1", Total: 11300, Status: models.OrderCompleted,
		})
	})

	order, err := client.ProcessCheckout(context.Background(), &models.CheckoutRequest{Total: 11300}, "access-token")
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.OrderID)
	assert.Equal(t, 11300, order.Total)
}

func TestBackendClient_ProcessCheckoutAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"unauthorized maps to auth required", http.StatusUnauthorized, models.ErrAuthRequired},
		{"forbidden maps to session expired", http.StatusForbidden, models.ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(map[string]string{"error": "login required"})
			})

			_, err := client.ProcessCheckout(context.Background(), &models.CheckoutRequest{}, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBackendClient_NoBearerHeaderWhenTokenEmpty(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.OrderResult{
			OrderID: "order-1", Total: 100, Status: models.OrderPending,
		})
	})

	_, err := client.ProcessCheckout(context.Background(), &models.CheckoutRequest{}, "")
	require.NoError(t, err)
}

func TestBackendClient_ServerErrorEnvelope(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "database offline"})
	})

	_, err := client.CalculateDelivery(context.Background(), &CalculateRequest{TicketGroupID: 1, Quantity: 1, UnitPrice: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
}

func TestBackendClient_MalformedOrderRejected(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "completed"})
	})

	_, err := client.ProcessCheckout(context.Background(), &models.CheckoutRequest{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed order")
}
