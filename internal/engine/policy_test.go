package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
)

func activePayment() servicem8.JobPayment {
	return servicem8.JobPayment{
		UUID:      "payment-1",
		JobUUID:   "job-1",
		Amount:    150.0,
		Active:    1,
		Timestamp: "2026-03-10 09:30:00",
	}
}

func TestEvaluatePayment_Eligible(t *testing.T) {
	ok, _ := StandardPaymentPolicy{}.EvaluatePayment(activePayment())
	assert.True(t, ok)
}

func TestEvaluatePayment_SingleFailingCheck(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*servicem8.JobPayment)
		reason string
	}{
		{"inactive", func(p *servicem8.JobPayment) { p.Active = 0 }, "payment inactive"},
		{"zero amount", func(p *servicem8.JobPayment) { p.Amount = 0 }, "non-positive amount"},
		{"negative amount", func(p *servicem8.JobPayment) { p.Amount = -10 }, "non-positive amount"},
		{"empty timestamp", func(p *servicem8.JobPayment) { p.Timestamp = "" }, "placeholder payment timestamp"},
		{"placeholder timestamp", func(p *servicem8.JobPayment) { p.Timestamp = "0000-00-00 00:00:00" }, "placeholder payment timestamp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payment := activePayment()
			tc.mutate(&payment)

			ok, reason := StandardPaymentPolicy{}.EvaluatePayment(payment)
			assert.False(t, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestEvaluateJob_BadgeGate(t *testing.T) {
	policy := StandardPaymentPolicy{RequireBadge: true, BadgeUUID: "badge-uuid"}

	ok, reason := policy.EvaluateJob(&servicem8.Job{Badges: `["other-badge"]`}, nil)
	assert.False(t, ok)
	assert.Equal(t, "completion badge missing", reason)

	ok, _ = policy.EvaluateJob(&servicem8.Job{Badges: `["badge-uuid"]`}, nil)
	assert.True(t, ok)
}

func TestEvaluateJob_CutoffGate(t *testing.T) {
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	policy := StandardPaymentPolicy{RequireCutoff: true, Cutoff: cutoff}

	before := &servicem8.Job{EditDate: "2025-12-31 23:00:00"}
	ok, reason := policy.EvaluateJob(before, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "before cutoff")

	after := &servicem8.Job{EditDate: "2026-01-02 08:00:00"}
	ok, _ = policy.EvaluateJob(after, nil)
	assert.True(t, ok)
}

func TestEvaluateJob_NoGatesAlwaysEligible(t *testing.T) {
	ok, _ := StandardPaymentPolicy{}.EvaluateJob(&servicem8.Job{}, nil)
	assert.True(t, ok)
}

func TestCompletionDate_LatestActiveActivityWins(t *testing.T) {
	job := &servicem8.Job{EditDate: "2026-01-01 00:00:00"}
	activities := []servicem8.JobActivity{
		{Active: 1, EndDate: "2026-02-01 10:00:00"},
		{Active: 1, EndDate: "2026-03-01 10:00:00"},
		{Active: 0, EndDate: "2026-04-01 10:00:00"},
	}

	completed := CompletionDate(job, activities)
	assert.Equal(t, servicem8.ParseEditDate("2026-03-01 10:00:00"), completed)
}

func TestCompletionDate_FallsBackToJobEditDate(t *testing.T) {
	job := &servicem8.Job{EditDate: "2026-01-01 00:00:00"}

	completed := CompletionDate(job, nil)
	assert.Equal(t, servicem8.ParseEditDate("2026-01-01 00:00:00"), completed)
}

func TestContactEligible(t *testing.T) {
	assert.True(t, ContactEligible(servicem8.Contact{Email: "a@b.c"}))
	assert.True(t, ContactEligible(servicem8.Contact{FirstName: "Jane"}))
	assert.True(t, ContactEligible(servicem8.Contact{LastName: "Doe"}))
	assert.False(t, ContactEligible(servicem8.Contact{Mobile: "0400"}))
}

func TestContactEligible_WhitespaceOnlyIdentityRejected(t *testing.T) {
	assert.False(t, ContactEligible(servicem8.Contact{Email: "   "}))
	assert.False(t, ContactEligible(servicem8.Contact{Email: " ", FirstName: "  ", LastName: "\t"}))
	assert.True(t, ContactEligible(servicem8.Contact{Email: " ", FirstName: "Jane"}))
}
