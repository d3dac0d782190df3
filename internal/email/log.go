package email

import (
	"context"
	"log/slog"
)

// logSender writes emails to the logger instead of sending them. Used in
// development when RESEND_API_KEY is empty.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender returns a Sender that only logs.
func NewLogSender(logger *slog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) SendLeadNotification(_ context.Context, p LeadNotificationParams) error {
	s.logger.Info("email: lead notification (not sent)",
		"to", p.To,
		"lead", MaskEmail(p.LeadEmail),
		"segment", p.Segment,
		"calculator", p.Calculator,
		"result_id", p.ResultID,
	)
	return nil
}

func (s *logSender) SendResultSummary(_ context.Context, p ResultSummaryParams) error {
	s.logger.Info("email: result summary (not sent)",
		"to", MaskEmail(p.To),
		"calculator", p.Calculator,
		"result_id", p.ResultID,
	)
	return nil
}
