package engine

import (
	"context"
	"fmt"

	"github.com/DanishBukhari/IntegWithGhl/internal/mapper"
	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/statestore"
)

// RunContactCycle reconciles field service contacts edited inside the
// lookback window into CRM contacts.
func (e *Engine) RunContactCycle(ctx context.Context) (*CycleReport, error) {
	started := e.now()
	report := &CycleReport{Routine: constants.EntityKindContact}
	logger := log.GetLogger()

	state, err := e.loadState()
	if err != nil {
		return report, err
	}

	contacts, err := e.source.ListChangedContacts(ctx, e.window())
	if err != nil {
		// Nothing was mutated yet; the next scheduled tick starts fresh.
		return report, fmt.Errorf("%w: %v", errCycleAborted, err)
	}
	report.Fetched = len(contacts)

	for _, contact := range contacts {
		outcome, err := e.processContact(ctx, state, contact)
		if err != nil {
			// Credential rejection: abort before persisting anything.
			return report, fmt.Errorf("%w: %v", errCycleAborted, err)
		}
		report.tally(outcome)
		if outcome.Record {
			for _, key := range contactDedupKeys(contact) {
				state.AddContact(key)
			}
		}
		if outcome.Err != nil {
			logger.Warn("Contact not synced",
				log.String("contactUuid", contact.UUID),
				log.String("status", outcome.Status.String()),
				log.Error(outcome.Err))
		}
	}

	return e.finishCycle(state, report, started)
}

// contactDedupKeys returns every key under which a handled contact is
// recorded: its UUID always, plus the normalized email when present,
// otherwise the composed name (a lower-confidence identity).
func contactDedupKeys(contact servicem8.Contact) []string {
	keys := []string{contact.UUID}
	if email := mapper.NormalizeEmail(contact.Email); email != "" {
		keys = append(keys, email)
	} else if name := mapper.ComposeName(contact.FirstName, contact.LastName); name != "" {
		keys = append(keys, name)
	}
	return keys
}

// processContact handles one contact end to end. The
// returned error is non-nil only for cycle-fatal failures; everything else
// is folded into the Outcome so one contact can never abort the batch.
func (e *Engine) processContact(ctx context.Context, state *statestore.SyncState, contact servicem8.Contact) (Outcome, error) {
	logger := log.GetLogger()

	// No identity at all can never be synced; record it so later
	// polls stop revisiting it.
	if !ContactEligible(contact) {
		return SkippedForever("contact has neither email nor name"), nil
	}

	// Check every key the contact is known under.
	for _, key := range contactDedupKeys(contact) {
		if state.HasContact(key) {
			return Skipped("already processed"), nil
		}
	}

	email := mapper.NormalizeEmail(contact.Email)
	if email == "" {
		logger.Warn("Contact has no email; falling back to name-based matching",
			log.String("contactUuid", contact.UUID),
			log.String("name", mapper.ComposeName(contact.FirstName, contact.LastName)))
	}

	// The owning company supplies the address; a failed company read
	// degrades to empty address fields rather than dropping the contact.
	var company *servicem8.Company
	if contact.CompanyUUID != "" {
		var err error
		company, err = e.source.GetCompany(ctx, contact.CompanyUUID)
		if err != nil {
			if isCycleFatal(err) {
				return Outcome{}, err
			}
			logger.Debug("Company lookup failed; syncing contact without address",
				log.String("companyUuid", contact.CompanyUUID),
				log.Error(err))
			company = nil
		}
	}
	payload := mapper.ToContactPayload(contact, company)

	// Search before create: an existing CRM match means the work is already
	// done, and creating blind would mint a duplicate record.
	if email != "" {
		existing, err := e.target.LookupContactByEmail(ctx, email)
		if err != nil {
			if isCycleFatal(err) {
				return Outcome{}, err
			}
			return FailedRetryable(err), nil
		}
		if existing != nil {
			return SkippedForever("CRM contact already exists"), nil
		}
	}

	if _, err := e.target.CreateContact(ctx, payload); err != nil {
		if isCycleFatal(err) {
			return Outcome{}, err
		}
		if isPermanent(err) {
			return FailedPermanent(err), nil
		}
		return FailedRetryable(err), nil
	}

	return Applied(), nil
}
