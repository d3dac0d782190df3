// Package store persists calculator results and the sales leads captured with
// them, and groups the multi-step writes that must execute atomically.
//
// Two implementations satisfy Repository: Postgres for production and Memory
// for development and tests.
//
// Dependency rule: store imports scoring for the result types only. It never
// imports api, worker, or email.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrNotFound is returned when a result or lead id does not exist.
var ErrNotFound = errors.New("store: not found")

// ─── RECORDS ─────────────────────────────────────────────────────────────────

// CalculatorType records which calculator produced a lead.
type CalculatorType string

const (
	CalculatorStandard CalculatorType = "standard"
	CalculatorExpert   CalculatorType = "experto"
)

// UnknownField is stored for industry and revenue model when the answer set
// does not contain them.
const UnknownField = "Unbekannt"

// StandardResult is a persisted standard calculator result.
type StandardResult struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	Industry     string    `json:"industry"`
	RevenueModel string    `json:"revenueModel"`
	scoring.ScoreResult
	Answers json.RawMessage `json:"answers"`
}

// ExpertResult is a persisted expert calculator result: the input as
// submitted next to the computed figures.
type ExpertResult struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	scoring.ExpertValuationInput
	scoring.ExpertValuationResult
	Answers json.RawMessage `json:"answers"`
}

// Contact is the validated contact form of a lead.
type Contact struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	CompanyWebsite string
}

// Lead is a sales lead. Exactly one of ResultID and ExpertResultID is set,
// matching CalculatorType.
type Lead struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	FirstName      string          `json:"firstName" db:"first_name"`
	LastName       string          `json:"lastName" db:"last_name"`
	Email          string          `json:"email" db:"email"`
	Phone          string          `json:"phone" db:"phone"`
	CompanyWebsite string          `json:"companyWebsite" db:"company_website"`
	Segment        scoring.Segment `json:"segment" db:"segment"`
	CalculatorType CalculatorType  `json:"calculatorType" db:"calculator_type"`
	ResultID       uuid.NullUUID   `json:"resultId" db:"result_id"`
	ExpertResultID uuid.NullUUID   `json:"expertoResultId" db:"experto_result_id"`
	Contacted      bool            `json:"contacted" db:"contacted"`
	NotifiedAt     *time.Time      `json:"notifiedAt,omitempty" db:"notified_at"`
}

// FullName joins first and last name.
func (l Lead) FullName() string { return l.FirstName + " " + l.LastName }

// ─── INPUT TYPES ─────────────────────────────────────────────────────────────

// StandardSubmission is everything written when a standard questionnaire is
// submitted with contact details.
type StandardSubmission struct {
	Result       scoring.ScoreResult
	Industry     string
	RevenueModel string
	Answers      json.RawMessage
	Contact      Contact
}

// ExpertSubmission is everything written when the expert calculator is
// submitted with contact details. Expert leads are always segment hot.
type ExpertSubmission struct {
	Input   scoring.ExpertValuationInput
	Result  scoring.ExpertValuationResult
	Answers json.RawMessage
	Contact Contact
}

// ListLeadsParams filters ListLeads. Zero values mean "any".
type ListLeadsParams struct {
	Segment   scoring.Segment
	Contacted *bool
	Limit     int // default 50, capped at 500
	Offset    int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (p ListLeadsParams) limit() int {
	switch {
	case p.Limit <= 0:
		return defaultListLimit
	case p.Limit > maxListLimit:
		return maxListLimit
	default:
		return p.Limit
	}
}

func (p ListLeadsParams) matches(l Lead) bool {
	if p.Segment != "" && l.Segment != p.Segment {
		return false
	}
	if p.Contacted != nil && l.Contacted != *p.Contacted {
		return false
	}
	return true
}

// ─── REPOSITORY ──────────────────────────────────────────────────────────────

// Repository is the persistence surface used by the API and the notification
// worker.
type Repository interface {
	// SaveStandardSubmission writes the result and its lead in one transaction.
	SaveStandardSubmission(ctx context.Context, sub StandardSubmission) (StandardResult, Lead, error)
	// SaveExpertSubmission writes the expert result and its hot lead in one
	// transaction.
	SaveExpertSubmission(ctx context.Context, sub ExpertSubmission) (ExpertResult, Lead, error)

	GetResult(ctx context.Context, id uuid.UUID) (StandardResult, error)
	GetExpertResult(ctx context.Context, id uuid.UUID) (ExpertResult, error)
	GetLead(ctx context.Context, id uuid.UUID) (Lead, error)

	// ListLeads returns matching leads, newest first.
	ListLeads(ctx context.Context, p ListLeadsParams) ([]Lead, error)
	MarkLeadContacted(ctx context.Context, id uuid.UUID) (Lead, error)

	// ListUnnotifiedLeads returns up to limit leads whose sales notification
	// has not been sent, oldest first.
	ListUnnotifiedLeads(ctx context.Context, limit int) ([]Lead, error)
	// MarkLeadNotified is idempotent; the first timestamp wins.
	MarkLeadNotified(ctx context.Context, id uuid.UUID) error
}

func newLead(c Contact, seg scoring.Segment, typ CalculatorType) Lead {
	return Lead{
		ID:             uuid.New(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		CompanyWebsite: c.CompanyWebsite,
		Segment:        seg,
		CalculatorType: typ,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownField
	}
	return s
}
