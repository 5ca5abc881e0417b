package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"ticket-storefront/internal/config"
	"ticket-storefront/internal/models"
)

// ProcessorCardGateway implements the direct-tokenization variant against
// the payment processor's tokenization API.
type ProcessorCardGateway struct {
	config  config.ProcessorConfig
	client  *http.Client
	baseURL string
}

// NewProcessorCardGateway creates the direct card tokenization gateway
func NewProcessorCardGateway(cfg config.ProcessorConfig) *ProcessorCardGateway {
	baseURL := "https://api.processor.example.com"
	if cfg.Environment == "sandbox" {
		baseURL = "https://sandbox.processor.example.com"
	}

	return &ProcessorCardGateway{
		config:  cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// tokenizeResponse is the processor's single-use token envelope
type tokenizeResponse struct {
	Token   string `json:"token"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Tokenize exchanges raw card fields for a single-use token. Called at
// submit time only; nothing is pre-fetched or cached.
func (g *ProcessorCardGateway) Tokenize(ctx context.Context, card CardDetails) (string, error) {
	if card.Number == "" || card.ExpMonth == "" || card.ExpYear == "" || card.CVV == "" {
		return "", fmt.Errorf("%w: card fields are incomplete", models.ErrValidationFailed)
	}

	jsonData, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card details: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/tokens", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create tokenize request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.config.PublicKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send tokenize request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read tokenize response: %w", err)
	}

	var tokenResp tokenizeResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode tokenize response: %w", err)
	}

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("%w: %s", models.ErrCardDeclined, tokenResp.Message)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("tokenization failed (status %d): %s", resp.StatusCode, tokenResp.Error)
	}
	if tokenResp.Token == "" {
		return "", fmt.Errorf("processor returned empty card token")
	}

	return tokenResp.Token, nil
}

// HostedDropinGateway implements the hosted drop-in variant. Mounting opens
// a hosted widget session with the processor using a client token; the
// handle exchanges that session for a payment-method nonce at submit time.
type HostedDropinGateway struct {
	config  config.ProcessorConfig
	client  *http.Client
	baseURL string
}

// NewHostedDropinGateway creates the hosted drop-in gateway
func NewHostedDropinGateway(cfg config.ProcessorConfig) *HostedDropinGateway {
	baseURL := "https://api.processor.example.com"
	if cfg.Environment == "sandbox" {
		baseURL = "https://sandbox.processor.example.com"
	}

	return &HostedDropinGateway{
		config:  cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type dropinSessionResponse struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

type paymentMethodResponse struct {
	Nonce   string `json:"nonce"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Mount opens a widget session for the client token and returns a handle.
// The caller owns the handle and must dispose it on teardown or when the
// client token changes.
func (g *HostedDropinGateway) Mount(ctx context.Context, clientToken string) (DropinHandle, error) {
	if clientToken == "" {
		return nil, fmt.Errorf("%w: client token is required", models.ErrWidgetNotReady)
	}

	body := map[string]string{"client_token": clientToken}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/dropin/sessions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open widget session: %w", err)
	}
	defer resp.Body.Close()

	var sessionResp dropinSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sessionResp); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("widget session rejected (status %d): %s", resp.StatusCode, sessionResp.Error)
	}
	if sessionResp.SessionID == "" {
		return nil, fmt.Errorf("processor returned empty widget session id")
	}

	return &hostedDropinHandle{
		gateway:   g,
		sessionID: sessionResp.SessionID,
	}, nil
}

// hostedDropinHandle is one mounted widget session
type hostedDropinHandle struct {
	gateway   *HostedDropinGateway
	sessionID string

	mu       sync.Mutex
	disposed bool
}

// PaymentCredential requests a payment-method nonce from the mounted
// session. A declined or failed collection maps to a card error so the
// orchestrator can refresh the client token before the next attempt.
func (h *hostedDropinHandle) PaymentCredential(ctx context.Context) (string, error) {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return "", models.ErrWidgetNotReady
	}
	h.mu.Unlock()

	url := fmt.Sprintf("%s/v1/dropin/sessions/%s/payment-method", h.gateway.baseURL, h.sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create payment method request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.gateway.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request payment method: %w", err)
	}
	defer resp.Body.Close()

	var methodResp paymentMethodResponse
	if err := json.NewDecoder(resp.Body).Decode(&methodResp); err != nil {
		return "", fmt.Errorf("failed to decode payment method response: %w", err)
	}

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("%w: %s", models.ErrCardDeclined, methodResp.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment method request failed (status %d): %s", resp.StatusCode, methodResp.Error)
	}
	if methodResp.Nonce == "" {
		return "", fmt.Errorf("processor returned empty payment nonce")
	}

	return methodResp.Nonce, nil
}

// Dispose tears the session down. Safe to call more than once; the remote
// delete is best effort.
func (h *hostedDropinHandle) Dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	h.mu.Unlock()

	url := fmt.Sprintf("%s/v1/dropin/sessions/%s", h.gateway.baseURL, h.sessionID)
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return
	}
	if resp, err := h.gateway.client.Do(req); err == nil {
		resp.Body.Close()
	}
}
