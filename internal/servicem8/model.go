package servicem8

import (
	"strings"
	"time"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
)

// Contact is a companycontact record: the person attached to a company.
type Contact struct {
	UUID        string `json:"uuid"`
	FirstName   string `json:"first"`
	LastName    string `json:"last"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	CompanyUUID string `json:"company_uuid"`
	Active      int    `json:"active"`
	EditDate    string `json:"edit_date"`
}

// Company is the customer record owning jobs and carrying the site address.
type Company struct {
	UUID            string `json:"uuid"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	AddressStreet   string `json:"address_street"`
	AddressCity     string `json:"address_city"`
	AddressState    string `json:"address_state"`
	AddressPostcode string `json:"address_postcode"`
	AddressCountry  string `json:"address_country"`
	Active          int    `json:"active"`
	EditDate        string `json:"edit_date"`
}

type Job struct {
	UUID           string `json:"uuid"`
	CompanyUUID    string `json:"company_uuid"`
	Status         string `json:"status"`
	JobDescription string `json:"job_description"`
	// Badges is a JSON-encoded array of badge UUIDs, returned verbatim by
	// the API (e.g. `["9b1a..."]`).
	Badges   string `json:"badges"`
	Active   int    `json:"active"`
	EditDate string `json:"edit_date"`
}

type JobActivity struct {
	UUID      string `json:"uuid"`
	JobUUID   string `json:"job_uuid"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Active    int    `json:"active"`
	EditDate  string `json:"edit_date"`
}

type JobPayment struct {
	UUID      string  `json:"uuid"`
	JobUUID   string  `json:"job_uuid"`
	Amount    float64 `json:"amount"`
	Active    int     `json:"active"`
	Timestamp string  `json:"timestamp"`
	EditDate  string  `json:"edit_date"`
}

// HasBadge reports whether the job carries the given badge UUID.
func (j *Job) HasBadge(badgeUUID string) bool {
	if badgeUUID == "" {
		return false
	}
	return strings.Contains(j.Badges, badgeUUID)
}

// ParseEditDate parses an edit_date field. The zero time is returned for
// empty or placeholder values.
func ParseEditDate(value string) time.Time {
	if value == "" || value == constants.PlaceholderTimestamp {
		return time.Time{}
	}
	t, err := time.Parse(constants.EditDateLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatEditDate renders a time in the edit_date filter layout.
func FormatEditDate(t time.Time) string {
	return t.Format(constants.EditDateLayout)
}
