package types

import "strings"

// Address is the shipping/billing snapshot stored on an order. It is persisted
// as jsonb so the order keeps the literal address submitted at checkout.
type Address struct {
	FullName   string `json:"full_name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country,omitempty"`
}

// Normalize trims whitespace and applies the default country.
func (a *Address) Normalize() {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "US"
	}
}

// IsZero reports whether no address fields were provided.
func (a Address) IsZero() bool {
	return a.FullName == "" && a.Line1 == "" && a.City == "" && a.State == "" && a.PostalCode == ""
}
