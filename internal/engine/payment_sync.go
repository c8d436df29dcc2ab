package engine

import (
	"context"
	"fmt"

	"github.com/DanishBukhari/IntegWithGhl/internal/highlevel"
	"github.com/DanishBukhari/IntegWithGhl/internal/mapper"
	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/statestore"
)

// RunPaymentCycle reconciles job payments edited inside the lookback window
// into "Invoice Paid" webhook notifications.
func (e *Engine) RunPaymentCycle(ctx context.Context) (*CycleReport, error) {
	started := e.now()
	report := &CycleReport{Routine: constants.EntityKindPayment}
	logger := log.GetLogger()

	state, err := e.loadState()
	if err != nil {
		return report, err
	}

	payments, err := e.source.ListChangedPayments(ctx, e.window())
	if err != nil {
		return report, fmt.Errorf("%w: %v", errCycleAborted, err)
	}
	report.Fetched = len(payments)

	for _, payment := range payments {
		outcome, keys, err := e.processPayment(ctx, state, payment)
		if err != nil {
			return report, fmt.Errorf("%w: %v", errCycleAborted, err)
		}
		report.tally(outcome)
		if outcome.Record {
			for _, key := range keys {
				state.AddJob(key)
			}
		}
		if outcome.Err != nil {
			logger.Warn("Payment not notified",
				log.String("paymentUuid", payment.UUID),
				log.String("status", outcome.Status.String()),
				log.Error(outcome.Err))
		}
	}

	return e.finishCycle(state, report, started)
}

// processPayment handles one payment end to end. The
// dedup keys, when recorded, are the correlation id (if the job description
// carries one), the company email fallback, and the raw payment UUID.
func (e *Engine) processPayment(ctx context.Context, state *statestore.SyncState, payment servicem8.JobPayment) (Outcome, []string, error) {
	logger := log.GetLogger()

	// Payment-local eligibility checks need no network beyond the list
	// fetch; run them first.
	if ok, reason := e.policy.EvaluatePayment(payment); !ok {
		return Skipped(reason), nil, nil
	}

	// Cheap dedup on the raw UUID before touching the job endpoints.
	if state.HasJob(payment.UUID) {
		return Skipped("already processed"), nil, nil
	}

	job, err := e.source.GetJob(ctx, payment.JobUUID)
	if err != nil {
		if isCycleFatal(err) {
			return Outcome{}, nil, err
		}
		if isPermanent(err) {
			return FailedPermanent(err), []string{payment.UUID}, nil
		}
		return FailedRetryable(err), nil, nil
	}

	activities, err := e.source.ListJobActivities(ctx, payment.JobUUID)
	if err != nil {
		if isCycleFatal(err) {
			return Outcome{}, nil, err
		}
		// Completion date falls back to the job edit time without activity
		// data; a transient listing failure should not mask an ineligible
		// job as eligible, so retry next cycle instead.
		return FailedRetryable(err), nil, nil
	}

	if ok, reason := e.policy.EvaluateJob(job, activities); !ok {
		return Skipped(reason), nil, nil
	}

	// The embedded correlation id is the only link back to the CRM record
	// that originated this job.
	correlationID := mapper.ExtractCorrelationID(job.JobDescription)

	var email string
	if company, err := e.source.GetCompany(ctx, job.CompanyUUID); err != nil {
		if isCycleFatal(err) {
			return Outcome{}, nil, err
		}
		logger.Debug("Company lookup failed; notifying without client email",
			log.String("companyUuid", job.CompanyUUID),
			log.Error(err))
	} else if company != nil {
		email = mapper.NormalizeEmail(company.Email)
	}

	key := paymentDedupKey(correlationID, email, payment.UUID)
	if state.HasJob(key) {
		return Skipped("already processed"), nil, nil
	}

	payload := highlevel.WebhookPayload{
		ContactID: correlationID.String(),
		Email:     email,
		Status:    constants.WebhookStatusInvoicePaid,
	}
	if err := e.target.TriggerWebhook(ctx, payload); err != nil {
		if isCycleFatal(err) {
			return Outcome{}, nil, err
		}
		if isPermanent(err) {
			return FailedPermanent(err), []string{key, payment.UUID}, nil
		}
		return FailedRetryable(err), nil, nil
	}

	return Applied(), []string{key, payment.UUID}, nil
}

// paymentDedupKey picks the strongest available identity for a handled
// payment: correlation id, then client email, then the raw payment UUID.
func paymentDedupKey(correlationID mapper.CorrelationID, email, paymentUUID string) string {
	if correlationID.IsPresent() {
		return correlationID.String()
	}
	if email != "" {
		return email
	}
	return paymentUUID
}
