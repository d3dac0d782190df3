// Package email defines the interface for transactional email delivery and
// provides a Resend-backed implementation plus a log-only fallback used when
// no API key is configured.
package email

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Calculator names used in links and subjects.
const (
	CalculatorStandard = "standard"
	CalculatorExpert   = "experto"
)

// LeadNotificationParams is the internal alert sent to the sales inbox when a
// lead is captured.
type LeadNotificationParams struct {
	To         string // sales inbox
	LeadName   string
	LeadEmail  string
	LeadPhone  string
	Website    string
	Segment    string // hot | warm | cold | nurture
	Calculator string // CalculatorStandard | CalculatorExpert
	ResultID   uuid.UUID

	// Standard calculator only.
	ReadinessScore int
	ScoreLabel     string

	// ValueLow == ValueHigh for the expert calculator.
	ValueLow  int64
	ValueHigh int64
}

// ResultSummaryParams is the summary sent to the lead.
type ResultSummaryParams struct {
	To         string
	FirstName  string
	Calculator string
	ResultID   uuid.UUID
	ScoreLabel string // empty for the expert calculator
	ValueLow   int64
	ValueHigh  int64
}

// Sender is the interface the notification worker uses to send email.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// SendLeadNotification alerts sales about a new lead. A failure here
	// fails the notification attempt so it is retried.
	SendLeadNotification(ctx context.Context, p LeadNotificationParams) error

	// SendResultSummary mails the lead their result. Failures are logged by
	// the caller and never retried.
	SendResultSummary(ctx context.Context, p ResultSummaryParams) error
}

// MaskEmail hides the local part of an address for logging:
// "maria@example.com" becomes "m***@example.com".
func MaskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}

// ResultURL is the public link to a stored result.
func ResultURL(baseURL, calculator string, id uuid.UUID) string {
	if calculator == CalculatorExpert {
		return baseURL + "/experto/ergebnis/" + id.String()
	}
	return baseURL + "/ergebnis/" + id.String()
}
