package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
)

func TestComposeName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Jane", "Doe", "Jane Doe"},
		{"Jane", "", "Jane"},
		{"", "Doe", "Doe"},
		{"", "", ""},
		{"  Jane  ", "  Doe  ", "Jane Doe"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ComposeName(tc.first, tc.last))
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestToContactPayload_WithCompanyAddress(t *testing.T) {
	contact := servicem8.Contact{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "Jane@Example.com",
		Mobile:    "0400 000 000",
	}
	company := &servicem8.Company{
		AddressStreet:   "1 Main St",
		AddressCity:     "Brisbane",
		AddressState:    "QLD",
		AddressPostcode: "4000",
		AddressCountry:  "Australia",
	}

	payload := ToContactPayload(contact, company)

	assert.Equal(t, "Jane", payload.FirstName)
	assert.Equal(t, "Doe", payload.LastName)
	assert.Equal(t, "Jane Doe", payload.Name)
	assert.Equal(t, "jane@example.com", payload.Email)
	assert.Equal(t, "0400 000 000", payload.Phone)
	assert.Equal(t, "1 Main St", payload.Address1)
	assert.Equal(t, "Brisbane", payload.City)
	assert.Equal(t, "QLD", payload.State)
	assert.Equal(t, "4000", payload.PostalCode)
	assert.Equal(t, "Australia", payload.Country)
}

func TestToContactPayload_NilCompanyDegrades(t *testing.T) {
	contact := servicem8.Contact{FirstName: "Jane", Email: "jane@example.com"}

	payload := ToContactPayload(contact, nil)

	assert.Equal(t, "Jane", payload.Name)
	assert.Equal(t, "", payload.Address1)
	assert.Equal(t, "", payload.City)
	assert.Equal(t, "", payload.Country)
}
