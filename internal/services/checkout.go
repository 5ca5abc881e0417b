package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ticket-storefront/internal/models"
)

// CheckoutState is the lifecycle of one checkout attempt
type CheckoutState string

const (
	StateCollecting CheckoutState = "collecting"
	StateProcessing CheckoutState = "processing"
	StateSucceeded  CheckoutState = "succeeded"
	StateFailed     CheckoutState = "failed"
)

// clientRecordState tags the backend client creation so re-entrant updates
// cannot create the record twice.
type clientRecordState int

const (
	clientNotStarted clientRecordState = iota
	clientInFlight
	clientCreated
)

// PaymentVariant selects which token flow the session uses
type PaymentVariant string

const (
	VariantCard   PaymentVariant = "card"
	VariantDropin PaymentVariant = "dropin"
)

// CheckoutSession orchestrates one buyer's checkout: client creation, token
// retrieval, delivery selection, validation, and the single authoritative
// process call. All exported methods are safe for concurrent use.
type CheckoutSession struct {
	api        BackendAPI
	broker     TokenBroker
	card       CardGateway
	dropin     DropinGateway
	calculator *DeliveryCalculator
	variant    PaymentVariant
	logger     *slog.Logger

	mu             sync.Mutex
	state          CheckoutState
	clientState    clientRecordState
	clientID       string
	cart           models.Cart
	buyer          models.BuyerInfo
	options        []models.DeliveryOption
	selected       *models.DeliveryOption
	taxQuote       *models.TaxQuote
	fieldErrors    models.FieldErrors
	failureMessage string
	order          *models.OrderResult
	handle         DropinHandle
}

// NewCheckoutSession creates a session in the collecting state for a cart
func NewCheckoutSession(
	api BackendAPI,
	broker TokenBroker,
	card CardGateway,
	dropin DropinGateway,
	calculator *DeliveryCalculator,
	variant PaymentVariant,
	cart models.Cart,
	logger *slog.Logger,
) *CheckoutSession {
	if logger == nil {
		logger = slog.Default()
	}

	return &CheckoutSession{
		api:        api,
		broker:     broker,
		card:       card,
		dropin:     dropin,
		calculator: calculator,
		variant:    variant,
		cart:       cart,
		state:      StateCollecting,
		logger:     logger,
	}
}

// State returns the current lifecycle state
func (s *CheckoutSession) State() CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cart returns the session's current cart
func (s *CheckoutSession) Cart() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// SetCart replaces the cart while collecting. A cart change makes any held
// tax quote stale.
func (s *CheckoutSession) SetCart(cart models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart
	s.taxQuote = nil
}

// FieldErrors returns the last validation errors
func (s *CheckoutSession) FieldErrors() models.FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fieldErrors
}

// FailureMessage returns the user-facing message of the last failed attempt
func (s *CheckoutSession) FailureMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureMessage
}

// Order returns the order result after a successful checkout
func (s *CheckoutSession) Order() *models.OrderResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

// Options returns the currently quoted delivery options
func (s *CheckoutSession) Options() []models.DeliveryOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// Selected returns the selected delivery option, if any
func (s *CheckoutSession) Selected() *models.DeliveryOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// TaxQuote returns the currently held tax quote, if any
func (s *CheckoutSession) TaxQuote() *models.TaxQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taxQuote
}

// ClientID returns the backend client id once created
func (s *CheckoutSession) ClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientID
}

// OrderTotal is the amount submitted to the backend: the cart summary total
// plus the quoted tax amount.
func (s *CheckoutSession) OrderTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderTotalLocked()
}

func (s *CheckoutSession) orderTotalLocked() int {
	total := s.cart.Summary().Total
	if s.taxQuote != nil {
		total += s.taxQuote.TaxAmount
	}
	return total
}

// UpdateBuyer stores the buyer fields and, once the minimum fields (name,
// email, phone) are present, creates the backend client record exactly once
// and prefetches a payment client token for it.
func (s *CheckoutSession) UpdateBuyer(ctx context.Context, buyer models.BuyerInfo) error {
	s.mu.Lock()
	s.buyer = buyer

	if !buyer.HasMinimumFields() || s.clientState != clientNotStarted {
		s.mu.Unlock()
		return nil
	}
	// Claimed before any network await so a rapid second update cannot
	// start a second creation.
	s.clientState = clientInFlight
	s.mu.Unlock()

	clientID, err := s.api.CreateClient(ctx, buyer)

	s.mu.Lock()
	if err != nil {
		s.clientState = clientNotStarted
		s.mu.Unlock()
		s.logger.Warn("checkout client creation failed", "error", err)
		return fmt.Errorf("failed to create checkout client: %w", err)
	}
	s.clientState = clientCreated
	s.clientID = clientID
	s.mu.Unlock()

	if s.variant == VariantDropin {
		if _, err := s.broker.RefreshClientToken(ctx, clientID); err != nil {
			// The widget mount retries at submit time.
			s.logger.Warn("client token prefetch failed", "client_id", clientID, "error", err)
		}
	}

	return nil
}

// RecalculateDelivery refreshes shipping options and the tax quote when the
// postal code is complete. Failures are non-fatal: prior options stay in
// place and checkout remains blocked only by form validation.
func (s *CheckoutSession) RecalculateDelivery(ctx context.Context, postalCode string) error {
	s.mu.Lock()
	primary, ok := s.cart.PrimaryItem()
	buyer := s.buyer
	s.mu.Unlock()
	if !ok {
		return models.ErrCartEmpty
	}

	quote, err := s.calculator.Calculate(ctx, primary, postalCode, &buyer)
	if err != nil {
		if errors.Is(err, models.ErrPostalCodeIncomplete) {
			return err
		}
		s.logger.Warn("delivery recalculation failed; keeping previous options", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.options = quote.Options
	s.taxQuote = quote.TaxQuote

	// Auto-select the first option when nothing is selected yet.
	if s.selected == nil && len(quote.Options) > 0 {
		first := quote.Options[0]
		s.selected = &first
		s.cart.DeliveryFee = first.Cost
	} else if s.selected != nil {
		// Re-resolve the selection against the fresh quote.
		for _, opt := range quote.Options {
			if opt.Type == s.selected.Type {
				opt := opt
				s.selected = &opt
				s.cart.DeliveryFee = opt.Cost
				break
			}
		}
	}

	return nil
}

// SelectDelivery picks a delivery option from the current quote
func (s *CheckoutSession) SelectDelivery(deliveryType models.DeliveryType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, opt := range s.options {
		if opt.Type == deliveryType {
			opt := opt
			s.selected = &opt
			s.cart.DeliveryFee = opt.Cost
			return nil
		}
	}
	return fmt.Errorf("%w: delivery option %q is not available", models.ErrInvalidInput, deliveryType)
}

// Submit runs one checkout attempt. The bearer token is forwarded to the
// backend; card details are required for the direct-tokenization variant
// and ignored by the hosted drop-in variant. While a previous submission is
// still processing the call is rejected without any network activity.
func (s *CheckoutSession) Submit(ctx context.Context, bearerToken string, card *CardDetails) (*models.OrderResult, error) {
	s.mu.Lock()

	switch s.state {
	case StateProcessing:
		s.mu.Unlock()
		return nil, models.ErrCheckoutInProgress
	case StateSucceeded:
		s.mu.Unlock()
		return nil, models.ErrCheckoutCompleted
	}

	if errs := s.validateLocked(); len(errs) > 0 {
		s.fieldErrors = errs
		s.state = StateCollecting
		s.mu.Unlock()
		return nil, models.ErrValidationFailed
	}
	s.fieldErrors = nil

	if s.orderTotalLocked() < 0 {
		s.mu.Unlock()
		return nil, models.ErrNegativeTotal
	}

	s.state = StateProcessing
	req := s.buildRequestLocked()
	clientID := s.clientID
	s.mu.Unlock()

	credential, err := s.paymentCredential(ctx, card)
	if err != nil {
		s.fail(ctx, clientID, err)
		return nil, err
	}
	req.PaymentCredential = credential

	order, err := s.api.ProcessCheckout(ctx, req, bearerToken)
	if err != nil {
		s.fail(ctx, clientID, err)
		return nil, err
	}

	s.mu.Lock()
	s.state = StateSucceeded
	s.order = order
	s.cart = s.cart.Cleared()
	s.taxQuote = nil
	s.failureMessage = ""
	handle := s.handle
	s.handle = nil
	s.mu.Unlock()

	if handle != nil {
		handle.Dispose()
	}

	s.logger.Info("checkout succeeded", "order_id", order.OrderID, "total", order.Total)
	return order, nil
}

// Close releases any mounted widget resources
func (s *CheckoutSession) Close() {
	s.mu.Lock()
	handle := s.handle
	s.handle = nil
	s.mu.Unlock()

	if handle != nil {
		handle.Dispose()
	}
}

func (s *CheckoutSession) validateLocked() models.FieldErrors {
	errs := s.buyer.Validate()
	if s.cart.IsEmpty() {
		errs["cart"] = "Your cart is empty"
	}
	if s.selected == nil {
		errs["delivery"] = "Please select a delivery option"
	}
	return errs
}

func (s *CheckoutSession) buildRequestLocked() *models.CheckoutRequest {
	primary, _ := s.cart.PrimaryItem()

	req := &models.CheckoutRequest{
		ClientID:    s.clientID,
		Items:       s.cart.Items,
		PrimaryItem: primary,
		Buyer:       s.buyer,
		Delivery:    *s.selected,
		Total:       s.orderTotalLocked(),
	}
	if s.taxQuote != nil {
		req.TaxSignature = s.taxQuote.Signature
	}
	return req
}

// paymentCredential obtains the payment credential from the active variant
func (s *CheckoutSession) paymentCredential(ctx context.Context, card *CardDetails) (string, error) {
	if s.variant == VariantCard {
		if card == nil {
			return "", fmt.Errorf("%w: card details are required", models.ErrValidationFailed)
		}
		return s.card.Tokenize(ctx, *card)
	}

	handle, err := s.ensureDropinHandle(ctx)
	if err != nil {
		return "", err
	}
	return handle.PaymentCredential(ctx)
}

// ensureDropinHandle mounts the widget with a fresh client token if it is
// not mounted yet.
func (s *CheckoutSession) ensureDropinHandle(ctx context.Context) (DropinHandle, error) {
	s.mu.Lock()
	if s.handle != nil {
		handle := s.handle
		s.mu.Unlock()
		return handle, nil
	}
	clientID := s.clientID
	created := s.clientState == clientCreated
	s.mu.Unlock()

	if !created {
		return nil, fmt.Errorf("%w: buyer details are incomplete", models.ErrWidgetNotReady)
	}

	token, err := s.broker.RefreshClientToken(ctx, clientID)
	if err != nil {
		return nil, err
	}

	handle, err := s.dropin.Mount(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()
	return handle, nil
}

// fail records a retryable failure. For the hosted variant the client token
// is refreshed and the widget remounted so the next attempt is not blocked
// by a credential the failed attempt may have consumed.
func (s *CheckoutSession) fail(ctx context.Context, clientID string, err error) {
	message := userMessage(err)

	s.mu.Lock()
	s.state = StateFailed
	s.failureMessage = message
	handle := s.handle
	s.handle = nil
	s.mu.Unlock()

	s.logger.Warn("checkout attempt failed", "error", err)

	if handle != nil {
		handle.Dispose()
	}

	if s.variant == VariantDropin && clientID != "" {
		s.broker.Invalidate(clientID)
		token, refreshErr := s.broker.RefreshClientToken(ctx, clientID)
		if refreshErr != nil {
			s.logger.Warn("client token refresh after failure failed", "client_id", clientID, "error", refreshErr)
			return
		}
		if fresh, mountErr := s.dropin.Mount(ctx, token); mountErr == nil {
			s.mu.Lock()
			s.handle = fresh
			s.mu.Unlock()
		}
	}
}

// userMessage maps an attempt error to the message shown to the buyer
func userMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrAuthRequired):
		return "Please log in to complete your purchase."
	case errors.Is(err, models.ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, models.ErrCardDeclined):
		return "Your card was declined. Please try another payment method."
	case errors.Is(err, models.ErrWidgetNotReady):
		return "The payment form is not ready yet. Please try again in a moment."
	case errors.Is(err, models.ErrValidationFailed):
		return "Please correct the highlighted fields and try again."
	default:
		return "We could not complete your payment. Please try again."
	}
}
