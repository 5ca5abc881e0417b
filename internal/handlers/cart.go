package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ticket-storefront/internal/models"

	"github.com/gorilla/sessions"
)

// CartHandler handles shopping cart requests backed by the cookie session
type CartHandler struct {
	store sessions.Store
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store sessions.Store) *CartHandler {
	return &CartHandler{store: store}
}

// cartView is the cart response envelope: items plus the derived summary
type cartView struct {
	Items   []models.CartItem  `json:"items"`
	Summary models.CartSummary `json:"summary"`
}

// ViewCart returns the current cart and its summary
func (h *CartHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	cart := h.getCartFromSession(session)
	writeJSON(w, http.StatusOK, cartView{Items: cart.Items, Summary: cart.Summary()})
}

// AddToCart adds a ticket group selection to the cart
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	cart := h.getCartFromSession(session)
	updated, err := cart.AddItem(item)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.saveCart(w, r, session, updated) {
		return
	}
	writeJSON(w, http.StatusOK, cartView{Items: updated.Items, Summary: updated.Summary()})
}

// UpdateCartItem replaces the quantity of one cart item. A quantity of zero
// removes the item.
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	ticketGroupID, err := strconv.Atoi(r.FormValue("ticket_group_id"))
	if err != nil {
		http.Error(w, "Invalid ticket group ID", http.StatusBadRequest)
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		http.Error(w, "Invalid quantity", http.StatusBadRequest)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	cart := h.getCartFromSession(session)
	updated := cart.UpdateQuantity(ticketGroupID, quantity)

	if !h.saveCart(w, r, session, updated) {
		return
	}
	writeJSON(w, http.StatusOK, cartView{Items: updated.Items, Summary: updated.Summary()})
}

// RemoveCartItem removes one ticket group from the cart
func (h *CartHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	ticketGroupID, err := strconv.Atoi(r.FormValue("ticket_group_id"))
	if err != nil {
		http.Error(w, "Invalid ticket group ID", http.StatusBadRequest)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	cart := h.getCartFromSession(session)
	updated := cart.RemoveItem(ticketGroupID)

	if !h.saveCart(w, r, session, updated) {
		return
	}
	writeJSON(w, http.StatusOK, cartView{Items: updated.Items, Summary: updated.Summary()})
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	cart := h.getCartFromSession(session).Cleared()
	if !h.saveCart(w, r, session, cart) {
		return
	}
	writeJSON(w, http.StatusOK, cartView{Items: cart.Items, Summary: cart.Summary()})
}

func (h *CartHandler) getCartFromSession(session *sessions.Session) models.Cart {
	cartData, ok := session.Values["cart"]
	if !ok {
		return models.Cart{}
	}

	cartJSON, ok := cartData.(string)
	if !ok {
		return models.Cart{}
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(cartJSON), &cart); err != nil {
		return models.Cart{}
	}

	return cart
}

func (h *CartHandler) saveCart(w http.ResponseWriter, r *http.Request, session *sessions.Session, cart models.Cart) bool {
	cartJSON, err := json.Marshal(cart)
	if err != nil {
		http.Error(w, "Failed to encode cart", http.StatusInternalServerError)
		return false
	}
	session.Values["cart"] = string(cartJSON)

	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return false
	}
	return true
}

// writeJSON encodes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already written; nothing left to surface.
		return
	}
}
