package constants

const ApiBasePath = "/api/v1"
const JobsApiPath = "/jobs"
const LivenessApiPath = "/health/liveness"
const ReadinessApiPath = "/health/readiness"

// CorrelationMarker introduces the CRM contact id embedded in a job's
// free-text description. It must appear at the start of its own line.
const CorrelationMarker = "GHL Contact ID:"

// EditDateLayout is the timestamp layout of the field service API's
// edit_date filter and response fields.
const EditDateLayout = "2006-01-02 15:04:05"

// PlaceholderTimestamp is the zero date the field service API reports for
// payments that have never been dated.
const PlaceholderTimestamp = "0000-00-00 00:00:00"

// WebhookStatusInvoicePaid is the status marker carried on the payment
// notification webhook.
const WebhookStatusInvoicePaid = "Invoice Paid"

// Entity kinds as used by dedup-set scoping and log fields.
const (
	EntityKindContact = "contact"
	EntityKindPayment = "payment"
)

// Related-object types accepted by the attachment endpoint.
const (
	RelatedObjectJob     = "job"
	RelatedObjectCompany = "company"
)

// AllowedAttachmentContentTypes is the image allow-list for relayed photos.
var AllowedAttachmentContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}
