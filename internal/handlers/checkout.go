package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"ticket-storefront/internal/models"
	"ticket-storefront/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// SessionFactory builds a checkout session for a cart
type SessionFactory func(cart models.Cart) *services.CheckoutSession

// CheckoutHandler exposes the checkout orchestration over HTTP. One
// CheckoutSession lives per web session, created at checkout start and kept
// until it succeeds or the cart changes.
type CheckoutHandler struct {
	store   sessions.Store
	factory SessionFactory

	mu       sync.Mutex
	sessions map[string]*services.CheckoutSession
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(store sessions.Store, factory SessionFactory) *CheckoutHandler {
	return &CheckoutHandler{
		store:    store,
		factory:  factory,
		sessions: make(map[string]*services.CheckoutSession),
	}
}

// shippingRequest carries the settled postal-code input
type shippingRequest struct {
	PostalCode string `json:"postal_code"`
}

// deliveryRequest selects one quoted delivery option
type deliveryRequest struct {
	Type models.DeliveryType `json:"type"`
}

// submitRequest carries the direct-variant card fields; the hosted variant
// sends an empty body.
type submitRequest struct {
	Card *services.CardDetails `json:"card,omitempty"`
}

// shippingView is the delivery quote response
type shippingView struct {
	Options  []models.DeliveryOption `json:"options"`
	Selected *models.DeliveryOption  `json:"selected,omitempty"`
	TaxQuote *models.TaxQuote        `json:"tax_quote,omitempty"`
	Total    int                     `json:"total"`
}

// StartCheckout creates a checkout session from the current cart
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	cart := readCart(session)
	if cart.IsEmpty() {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	checkoutID := uuid.NewString()
	checkout := h.factory(cart)

	h.mu.Lock()
	// Replace any abandoned session for this browser session.
	if oldID, ok := session.Values["checkout_id"].(string); ok {
		if old, exists := h.sessions[oldID]; exists {
			old.Close()
			delete(h.sessions, oldID)
		}
	}
	h.sessions[checkoutID] = checkout
	h.mu.Unlock()

	session.Values["checkout_id"] = checkoutID
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"checkout_id": checkoutID,
		"state":       string(checkout.State()),
	})
}

// UpdateBuyer stores buyer form fields; once name, email and phone are
// present the backend client record is created and a token prefetched.
func (h *CheckoutHandler) UpdateBuyer(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFromRequest(w, r)
	if !ok {
		return
	}

	var buyer models.BuyerInfo
	if err := json.NewDecoder(r.Body).Decode(&buyer); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := checkout.UpdateBuyer(r.Context(), buyer); err != nil {
		// Client creation retries on the next update; the form itself
		// was accepted.
		writeJSON(w, http.StatusAccepted, map[string]string{
			"state":   string(checkout.State()),
			"warning": "Could not prepare payment yet",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"state": string(checkout.State())})
}

// UpdateShipping recalculates delivery options and tax once the postal code
// is complete. An incomplete postal code is answered without touching the
// backend.
func (h *CheckoutHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFromRequest(w, r)
	if !ok {
		return
	}

	var req shippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := checkout.RecalculateDelivery(r.Context(), req.PostalCode)
	if errors.Is(err, models.ErrPostalCodeIncomplete) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	// Other failures are non-fatal: previous options are kept and
	// returned below.

	writeJSON(w, http.StatusOK, shippingView{
		Options:  checkout.Options(),
		Selected: checkout.Selected(),
		TaxQuote: checkout.TaxQuote(),
		Total:    checkout.OrderTotal(),
	})
}

// SelectDelivery picks a delivery option from the current quote
func (h *CheckoutHandler) SelectDelivery(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFromRequest(w, r)
	if !ok {
		return
	}

	var req deliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := checkout.SelectDelivery(req.Type); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, shippingView{
		Options:  checkout.Options(),
		Selected: checkout.Selected(),
		TaxQuote: checkout.TaxQuote(),
		Total:    checkout.OrderTotal(),
	})
}

// Submit runs the checkout attempt and renders the result
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFromRequest(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	order, err := checkout.Submit(r.Context(), bearerToken(r, session), req.Card)
	if err != nil {
		h.writeSubmitError(w, checkout, err)
		return
	}

	h.removeSession(session)

	// The checkout owns the authoritative cart; clear the session copy too.
	session.Values["cart"] = ""
	delete(session.Values, "checkout_id")
	_ = session.Save(r, w)
	writeJSON(w, http.StatusOK, PresentOrder(order))
}

// Result renders the current outcome of the checkout session
func (h *CheckoutHandler) Result(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PresentResult(checkout))
}

func (h *CheckoutHandler) writeSubmitError(w http.ResponseWriter, checkout *services.CheckoutSession, err error) {
	switch {
	case errors.Is(err, models.ErrCheckoutInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Your order is still being processed"})
	case errors.Is(err, models.ErrCheckoutCompleted):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "This order has already been placed"})
	case errors.Is(err, models.ErrValidationFailed), errors.Is(err, models.ErrNegativeTotal):
		writeJSON(w, http.StatusUnprocessableEntity, PresentResult(checkout))
	case errors.Is(err, models.ErrAuthRequired), errors.Is(err, models.ErrSessionExpired):
		writeJSON(w, http.StatusUnauthorized, PresentResult(checkout))
	default:
		writeJSON(w, http.StatusPaymentRequired, PresentResult(checkout))
	}
}

func (h *CheckoutHandler) checkoutFromRequest(w http.ResponseWriter, r *http.Request) (*services.CheckoutSession, bool) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return nil, false
	}

	checkoutID, ok := session.Values["checkout_id"].(string)
	if !ok || checkoutID == "" {
		http.Error(w, "No active checkout", http.StatusNotFound)
		return nil, false
	}

	h.mu.Lock()
	checkout, exists := h.sessions[checkoutID]
	h.mu.Unlock()
	if !exists {
		http.Error(w, "No active checkout", http.StatusNotFound)
		return nil, false
	}

	return checkout, true
}

func (h *CheckoutHandler) removeSession(session *sessions.Session) {
	checkoutID, ok := session.Values["checkout_id"].(string)
	if !ok {
		return
	}
	h.mu.Lock()
	delete(h.sessions, checkoutID)
	h.mu.Unlock()
}

// bearerToken reads the access token from the Authorization header, falling
// back to the persisted session value. The storefront only consumes the
// token; it never issues one.
func bearerToken(r *http.Request, session *sessions.Session) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, found := strings.CutPrefix(auth, "Bearer "); found {
			return token
		}
	}
	if token, ok := session.Values["access_token"].(string); ok {
		return token
	}
	return ""
}

// readCart decodes the session cart the same way the cart handler stores it
func readCart(session *sessions.Session) models.Cart {
	cartData, ok := session.Values["cart"].(string)
	if !ok || cartData == "" {
		return models.Cart{}
	}
	var cart models.Cart
	if err := json.Unmarshal([]byte(cartData), &cart); err != nil {
		return models.Cart{}
	}
	return cart
}
