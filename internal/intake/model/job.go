package model

// Photo references one uploaded photo to relay onto the created job.
type Photo struct {
	URL         string `json:"url"`
	FallbackURL string `json:"fallback_url,omitempty"`
}

// JobRequest is the inbound job-creation request. ContactID is the CRM
// contact id supplied by the caller; it is embedded into the job description
// so later payment polls can correlate the records.
type JobRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	AddressStreet   string  `json:"address_street"`
	AddressCity     string  `json:"address_city"`
	AddressState    string  `json:"address_state"`
	AddressPostcode string  `json:"address_postcode"`
	AddressCountry  string  `json:"address_country"`
	Description     string  `json:"description"`
	ContactID       string  `json:"contact_id"`
	Photos          []Photo `json:"photos,omitempty"`
}

// JobResponse carries the server-assigned identifier of the created job.
type JobResponse struct {
	JobUUID     string `json:"job_uuid"`
	CompanyUUID string `json:"company_uuid"`
}
