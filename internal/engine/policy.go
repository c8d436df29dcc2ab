package engine

import (
	"fmt"
	"time"

	"github.com/DanishBukhari/IntegWithGhl/internal/mapper"
	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
)

// PaymentPolicy decides whether a payment is eligible for the webhook side
// effect. The rules vary between deployments (badge-gated or not,
// cutoff-gated or not), so the predicate is pluggable rather than fixed.
//
// Every check is AND-ed; an ineligible payment is skipped without entering
// the dedup set, because it may flip to eligible between polls.
type PaymentPolicy interface {
	// EvaluatePayment applies the checks that need only the payment record.
	EvaluatePayment(payment servicem8.JobPayment) (bool, string)
	// EvaluateJob applies the checks that need the owning job and its
	// activities.
	EvaluateJob(job *servicem8.Job, activities []servicem8.JobActivity) (bool, string)
}

// StandardPaymentPolicy is the configurable production policy.
type StandardPaymentPolicy struct {
	RequireBadge  bool
	BadgeUUID     string
	RequireCutoff bool
	Cutoff        time.Time
}

func (p StandardPaymentPolicy) EvaluatePayment(payment servicem8.JobPayment) (bool, string) {
	if payment.Active != 1 {
		return false, "payment inactive"
	}
	if payment.Amount <= 0 {
		return false, "non-positive amount"
	}
	if payment.Timestamp == "" || payment.Timestamp == constants.PlaceholderTimestamp {
		return false, "placeholder payment timestamp"
	}
	return true, ""
}

func (p StandardPaymentPolicy) EvaluateJob(job *servicem8.Job, activities []servicem8.JobActivity) (bool, string) {
	if p.RequireBadge && !job.HasBadge(p.BadgeUUID) {
		return false, "completion badge missing"
	}
	if p.RequireCutoff {
		completed := CompletionDate(job, activities)
		if completed.Before(p.Cutoff) {
			return false, fmt.Sprintf("completed %s before cutoff %s",
				completed.Format("2006-01-02"), p.Cutoff.Format("2006-01-02"))
		}
	}
	return true, ""
}

// CompletionDate computes a job's completion date as the latest activity end
// date, falling back to the job's own edit time when no dated activities
// exist.
func CompletionDate(job *servicem8.Job, activities []servicem8.JobActivity) time.Time {
	var latest time.Time
	for _, activity := range activities {
		if activity.Active != 1 {
			continue
		}
		if end := servicem8.ParseEditDate(activity.EndDate); end.After(latest) {
			latest = end
		}
	}
	if latest.IsZero() {
		return servicem8.ParseEditDate(job.EditDate)
	}
	return latest
}

// ContactEligible reports whether a contact carries enough identity to be
// synced at all. A contact with neither email nor name can never match or
// create a CRM record, so callers record it as permanently ineligible.
// Identity fields are normalized first; whitespace-only values carry no
// identity.
func ContactEligible(contact servicem8.Contact) bool {
	if mapper.NormalizeEmail(contact.Email) != "" {
		return true
	}
	return mapper.ComposeName(contact.FirstName, contact.LastName) != ""
}
