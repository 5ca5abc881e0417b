package models

import (
	"regexp"
	"strings"
)

// DeliveryType identifies how tickets are delivered to the buyer
type DeliveryType string

const (
	DeliveryEticket  DeliveryType = "Eticket"
	DeliveryTMMobile DeliveryType = "TMMobile"
	DeliveryFedEx    DeliveryType = "FedEx"
	DeliveryWillCall DeliveryType = "WillCall"
)

// DeliveryOption is one delivery method quoted by the backend
type DeliveryOption struct {
	Type        DeliveryType `json:"type"`
	Cost        int          `json:"cost"` // in cents
	Description string       `json:"description"`
}

// TaxQuote certifies a tax amount for a specific cart and delivery selection.
// The signature is opaque; it must be submitted in the same checkout call
// that produced it and is stale as soon as the cart or delivery changes.
type TaxQuote struct {
	TaxAmount int    `json:"tax_amount"` // in cents
	Signature string `json:"signature"`
}

// BuyerInfo is the buyer identity snapshot sent to the backend
type BuyerInfo struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var postalCodeRegex = regexp.MustCompile(`^\d{5}$`)

// HasMinimumFields reports whether enough of the buyer is known to create a
// backend client record (name, email, phone).
func (b BuyerInfo) HasMinimumFields() bool {
	return strings.TrimSpace(b.FirstName) != "" &&
		strings.TrimSpace(b.LastName) != "" &&
		emailRegex.MatchString(b.Email) &&
		strings.TrimSpace(b.Phone) != ""
}

// FieldErrors maps form field names to validation messages
type FieldErrors map[string]string

// Validate returns field-level errors for the buyer form. An empty map means
// the form is valid.
func (b BuyerInfo) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(b.FirstName) == "" {
		errs["first_name"] = "First name is required"
	}
	if strings.TrimSpace(b.LastName) == "" {
		errs["last_name"] = "Last name is required"
	}
	if strings.TrimSpace(b.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailRegex.MatchString(b.Email) {
		errs["email"] = "Email address is invalid"
	}
	if strings.TrimSpace(b.Phone) == "" {
		errs["phone"] = "Phone number is required"
	}

	return errs
}

// PostalCodeComplete reports whether a postal code is complete enough to
// request a delivery and tax quote (5 digits).
func PostalCodeComplete(postalCode string) bool {
	return postalCodeRegex.MatchString(strings.TrimSpace(postalCode))
}

// CheckoutRequest is the single authoritative submission to the backend
type CheckoutRequest struct {
	PaymentCredential string          `json:"payment_credential"`
	ClientID          string          `json:"client_id,omitempty"`
	Items             []CartItem      `json:"items"`
	PrimaryItem       CartItem        `json:"primary_item"`
	Buyer             BuyerInfo       `json:"buyer"`
	Delivery          DeliveryOption  `json:"delivery"`
	Total             int             `json:"total"` // in cents
	TaxSignature      string          `json:"tax_signature,omitempty"`
}
