package services

import (
	"context"
	"fmt"
	"sync"

	"ticket-storefront/internal/models"
)

// MockBackendAPI is a configurable in-memory backend for tests and local
// development without a running marketplace API.
type MockBackendAPI struct {
	mu sync.Mutex

	CalculateFunc func(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error)
	CreateFunc    func(ctx context.Context, buyer models.BuyerInfo) (string, error)
	MintFunc      func(ctx context.Context, clientID string) (string, error)
	ProcessFunc   func(ctx context.Context, req *models.CheckoutRequest, bearerToken string) (*models.OrderResult, error)

	CalculateCalls int
	CreateCalls    int
	MintCalls      int
	ProcessCalls   int

	LastProcessRequest *models.CheckoutRequest
}

// NewMockBackendAPI returns a mock with sane defaults: one Eticket option,
// no tax, sequential client ids, and completed orders.
func NewMockBackendAPI() *MockBackendAPI {
	return &MockBackendAPI{}
}

func (m *MockBackendAPI) CalculateDelivery(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error) {
	m.mu.Lock()
	m.CalculateCalls++
	fn := m.CalculateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &CalculateResponse{
		ShippingOptions: []models.DeliveryOption{
			{Type: models.DeliveryEticket, Cost: 0, Description: "Instant download"},
		},
	}, nil
}

func (m *MockBackendAPI) CreateClient(ctx context.Context, buyer models.BuyerInfo) (string, error) {
	m.mu.Lock()
	m.CreateCalls++
	n := m.CreateCalls
	fn := m.CreateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, buyer)
	}
	return fmt.Sprintf("client-%d", n), nil
}

func (m *MockBackendAPI) MintClientToken(ctx context.Context, clientID string) (string, error) {
	m.mu.Lock()
	m.MintCalls++
	n := m.MintCalls
	fn := m.MintFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, clientID)
	}
	return fmt.Sprintf("token-%s-%d", clientID, n), nil
}

func (m *MockBackendAPI) ProcessCheckout(ctx context.Context, req *models.CheckoutRequest, bearerToken string) (*models.OrderResult, error) {
	m.mu.Lock()
	m.ProcessCalls++
	m.LastProcessRequest = req
	fn := m.ProcessFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req, bearerToken)
	}
	return &models.OrderResult{
		OrderID: "order-1",
		Total:   req.Total,
		Status:  models.OrderCompleted,
	}, nil
}

// MintCallCount returns how many mints have been issued
func (m *MockBackendAPI) MintCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MintCalls
}

// ProcessCallCount returns how many checkout calls have been issued
func (m *MockBackendAPI) ProcessCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ProcessCalls
}

// MockCardGateway tokenizes cards without a processor
type MockCardGateway struct {
	mu            sync.Mutex
	TokenizeFunc  func(ctx context.Context, card CardDetails) (string, error)
	TokenizeCalls int
}

func (m *MockCardGateway) Tokenize(ctx context.Context, card CardDetails) (string, error) {
	m.mu.Lock()
	m.TokenizeCalls++
	fn := m.TokenizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, card)
	}
	return "card-token-1", nil
}

// MockDropinGateway mounts in-memory widget handles
type MockDropinGateway struct {
	mu             sync.Mutex
	MountFunc      func(ctx context.Context, clientToken string) (DropinHandle, error)
	MountCalls     int
	LastMountToken string
}

func (m *MockDropinGateway) Mount(ctx context.Context, clientToken string) (DropinHandle, error) {
	m.mu.Lock()
	m.MountCalls++
	m.LastMountToken = clientToken
	fn := m.MountFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, clientToken)
	}
	if clientToken == "" {
		return nil, models.ErrWidgetNotReady
	}
	return &MockDropinHandle{Nonce: "nonce-" + clientToken}, nil
}

// MountCallCount returns how many widget mounts have happened
func (m *MockDropinGateway) MountCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MountCalls
}

// MockDropinHandle is one mounted mock widget
type MockDropinHandle struct {
	mu             sync.Mutex
	Nonce          string
	CredentialErr  error
	Disposed       bool
	CredentialUses int
}

func (h *MockDropinHandle) PaymentCredential(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Disposed {
		return "", models.ErrWidgetNotReady
	}
	h.CredentialUses++
	if h.CredentialErr != nil {
		return "", h.CredentialErr
	}
	return h.Nonce, nil
}

func (h *MockDropinHandle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Disposed = true
}

// IsDisposed reports whether Dispose has been called
func (h *MockDropinHandle) IsDisposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Disposed
}
