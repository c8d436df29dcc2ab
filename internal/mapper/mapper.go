package mapper

import (
	"strings"

	"github.com/DanishBukhari/IntegWithGhl/internal/highlevel"
	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
)

// ComposeName joins first and last name with a single space. Empty parts do
// not introduce double spaces.
func ComposeName(first, last string) string {
	parts := make([]string, 0, 2)
	if f := strings.TrimSpace(first); f != "" {
		parts = append(parts, f)
	}
	if l := strings.TrimSpace(last); l != "" {
		parts = append(parts, l)
	}
	return strings.Join(parts, " ")
}

// NormalizeEmail lowercases and trims an email for identity comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToContactPayload maps a field service contact and its owning company onto
// a CRM contact creation payload. A nil company degrades to empty address
// fields rather than failing the mapping.
func ToContactPayload(contact servicem8.Contact, company *servicem8.Company) highlevel.ContactPayload {
	payload := highlevel.ContactPayload{
		FirstName: strings.TrimSpace(contact.FirstName),
		LastName:  strings.TrimSpace(contact.LastName),
		Name:      ComposeName(contact.FirstName, contact.LastName),
		Email:     NormalizeEmail(contact.Email),
		Phone:     strings.TrimSpace(contact.Mobile),
	}
	if company != nil {
		payload.Address1 = strings.TrimSpace(company.AddressStreet)
		payload.City = strings.TrimSpace(company.AddressCity)
		payload.State = strings.TrimSpace(company.AddressState)
		payload.PostalCode = strings.TrimSpace(company.AddressPostcode)
		payload.Country = strings.TrimSpace(company.AddressCountry)
	}
	return payload
}
