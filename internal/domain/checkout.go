package domain

import "strings"

// ShippingAddress is collected in the first checkout step.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

type PaymentType string

const (
	PaymentCard      PaymentType = "card"
	PaymentPayPal    PaymentType = "paypal"
	PaymentApplePay  PaymentType = "apple_pay"
	PaymentGooglePay PaymentType = "google_pay"
)

// Valid reports whether t is one of the supported payment types.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentCard, PaymentPayPal, PaymentApplePay, PaymentGooglePay:
		return true
	}
	return false
}

// PaymentMethod is the single active payment selection of a checkout session.
// Card fields are only meaningful when Type is PaymentCard.
type PaymentMethod struct {
	Type       PaymentType `json:"type"`
	CardNumber string      `json:"cardNumber,omitempty"`
	ExpiryDate string      `json:"expiryDate,omitempty"`
	HolderName string      `json:"holderName,omitempty"`
	IsDefault  bool        `json:"isDefault,omitempty"`
}

// Masked returns a copy safe to keep in snapshots and to persist: the card
// number is reduced to its last four digits.
func (p PaymentMethod) Masked() PaymentMethod {
	out := p
	out.CardNumber = maskCardNumber(p.CardNumber)
	return out
}

func maskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	if len(digits) <= 4 {
		return "****" + digits
	}
	return "****" + digits[len(digits)-4:]
}
