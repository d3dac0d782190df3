package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nyashahama/exit-valuation-backend/internal/email"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
)

// Job holds the dependencies for one lead notification.
type Job struct {
	repo       store.Repository
	mailer     email.Sender
	salesInbox string
	logger     *slog.Logger
}

// NewJob constructs a Job. An empty salesInbox skips the sales alert; config
// validation requires it in production.
func NewJob(repo store.Repository, mailer email.Sender, salesInbox string, logger *slog.Logger) *Job {
	return &Job{
		repo:       repo,
		mailer:     mailer,
		salesInbox: salesInbox,
		logger:     logger,
	}
}

var _ Processor = (*Job)(nil)

// Run executes the pipeline for a single lead:
//
//  1. Load the lead; stop if it was already notified.
//  2. Load the result it points at.
//  3. Alert the sales inbox. Failure fails the attempt.
//  4. Mail the lead a summary. Failure is logged only.
//  5. Mark the lead notified.
func (j *Job) Run(ctx context.Context, leadID uuid.UUID) error {
	log := j.logger.With("lead_id", leadID)

	// ── 1. Lead ───────────────────────────────────────────────────────────────
	lead, err := j.repo.GetLead(ctx, leadID)
	if err != nil {
		return fmt.Errorf("job: get lead: %w", err)
	}
	if lead.NotifiedAt != nil {
		log.Debug("job: lead already notified")
		return nil
	}

	// ── 2. Result ─────────────────────────────────────────────────────────────
	alert, summary, err := j.buildParams(ctx, lead)
	if err != nil {
		return err
	}

	// ── 3. Sales alert ────────────────────────────────────────────────────────
	if j.salesInbox == "" {
		log.Warn("job: no sales inbox configured, skipping lead notification")
	} else if err := j.mailer.SendLeadNotification(ctx, alert); err != nil {
		return fmt.Errorf("job: notify sales: %w", err)
	}

	// ── 4. Lead summary ───────────────────────────────────────────────────────
	if err := j.mailer.SendResultSummary(ctx, summary); err != nil {
		log.Error("job: failed to send result summary",
			"to", email.MaskEmail(lead.Email),
			"error", err,
		)
	}

	// ── 5. Done ───────────────────────────────────────────────────────────────
	if err := j.repo.MarkLeadNotified(ctx, leadID); err != nil {
		return fmt.Errorf("job: mark notified: %w", err)
	}
	return nil
}

func (j *Job) buildParams(ctx context.Context, lead store.Lead) (email.LeadNotificationParams, email.ResultSummaryParams, error) {
	alert := email.LeadNotificationParams{
		To:        j.salesInbox,
		LeadName:  lead.FullName(),
		LeadEmail: lead.Email,
		LeadPhone: lead.Phone,
		Website:   lead.CompanyWebsite,
		Segment:   string(lead.Segment),
	}
	summary := email.ResultSummaryParams{
		To:        lead.Email,
		FirstName: lead.FirstName,
	}

	switch lead.CalculatorType {
	case store.CalculatorExpert:
		res, err := j.repo.GetExpertResult(ctx, lead.ExpertResultID.UUID)
		if err != nil {
			return alert, summary, fmt.Errorf("job: get expert result: %w", err)
		}
		alert.Calculator, summary.Calculator = email.CalculatorExpert, email.CalculatorExpert
		alert.ResultID, summary.ResultID = res.ID, res.ID
		alert.ValueLow, alert.ValueHigh = res.CompanyValue, res.CompanyValue
		summary.ValueLow, summary.ValueHigh = res.CompanyValue, res.CompanyValue

	default:
		res, err := j.repo.GetResult(ctx, lead.ResultID.UUID)
		if err != nil {
			return alert, summary, fmt.Errorf("job: get result: %w", err)
		}
		alert.Calculator, summary.Calculator = email.CalculatorStandard, email.CalculatorStandard
		alert.ResultID, summary.ResultID = res.ID, res.ID
		alert.ReadinessScore = res.ReadinessScore
		alert.ScoreLabel, summary.ScoreLabel = res.ScoreLabel, res.ScoreLabel
		alert.ValueLow, alert.ValueHigh = res.ValuationLow, res.ValuationHigh
		summary.ValueLow, summary.ValueHigh = res.ValuationLow, res.ValuationHigh
	}
	return alert, summary, nil
}
