package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ticket-storefront/internal/config"
	"ticket-storefront/internal/models"
)

// BackendClient talks to the marketplace backend REST API
type BackendClient struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewBackendClient creates a client for the configured backend origin
func NewBackendClient(cfg config.BackendConfig, logger *slog.Logger) *BackendClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BackendClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// backendError is an error envelope returned by the backend
type backendError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
}

func (e *backendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error (status %d)", e.StatusCode)
}

// createClientResponse is the envelope of POST /api/checkout/client
type createClientResponse struct {
	ClientID string `json:"client_id"`
}

// clientTokenResponse is the envelope of the client-token mint endpoint
type clientTokenResponse struct {
	ClientToken string `json:"client_token"`
}

// CalculateDelivery requests shipping options and a tax quote for the
// primary cart line item.
func (c *BackendClient) CalculateDelivery(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error) {
	var resp CalculateResponse
	if err := c.post(ctx, "/api/checkout/calculate", req, &resp, ""); err != nil {
		return nil, fmt.Errorf("failed to calculate delivery: %w", err)
	}
	return &resp, nil
}

// CreateClient registers the buyer with the backend and returns a client id
func (c *BackendClient) CreateClient(ctx context.Context, buyer models.BuyerInfo) (string, error) {
	var resp createClientResponse
	if err := c.post(ctx, "/api/checkout/client", buyer, &resp, ""); err != nil {
		return "", fmt.Errorf("failed to create checkout client: %w", err)
	}
	if resp.ClientID == "" {
		return "", fmt.Errorf("backend returned empty client id")
	}
	return resp.ClientID, nil
}

// MintClientToken mints a payment client token for an existing client id
func (c *BackendClient) MintClientToken(ctx context.Context, clientID string) (string, error) {
	body := map[string]string{"client_id": clientID}

	var resp clientTokenResponse
	if err := c.post(ctx, "/api/checkout/payments/braintree/client-token", body, &resp, ""); err != nil {
		return "", fmt.Errorf("failed to mint client token: %w", err)
	}
	if resp.ClientToken == "" {
		return "", fmt.Errorf("backend returned empty client token")
	}
	return resp.ClientToken, nil
}

// ProcessCheckout issues the single authoritative checkout call. The bearer
// token is attached when present; the backend answers 401/403 when order
// persistence requires an authenticated session.
func (c *BackendClient) ProcessCheckout(ctx context.Context, req *models.CheckoutRequest, bearerToken string) (*models.OrderResult, error) {
	var order models.OrderResult
	if err := c.post(ctx, "/api/checkout/process", req, &order, bearerToken); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("backend returned malformed order: %w", err)
	}
	return &order, nil
}

// post sends a JSON request and decodes the JSON response into out
func (c *BackendClient) post(ctx context.Context, path string, body, out interface{}, bearerToken string) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if bearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend request failed",
			"path", path,
			"status", resp.StatusCode,
		)
		return c.handleAPIError(resp.StatusCode, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// handleAPIError maps backend status codes to errors. 401 and 403 carry
// distinct sentinels because the remedy differs from a plain retry.
func (c *BackendClient) handleAPIError(statusCode int, body []byte) error {
	apiErr := &backendError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil {
		apiErr.Message = ""
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", models.ErrAuthRequired, apiErr.Error())
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", models.ErrSessionExpired, apiErr.Error())
	case http.StatusBadRequest:
		return fmt.Errorf("bad request: %s", apiErr.Error())
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("validation error: %s", apiErr.Error())
	default:
		return apiErr
	}
}
