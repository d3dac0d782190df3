package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultEndpoint is the Resend send-email endpoint.
const DefaultEndpoint = "https://api.resend.com/emails"

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey     string
	fromAddr   string // e.g. "bewertung@exit-rechner.de"
	fromName   string // e.g. "Exit-Rechner"
	baseURL    string // frontend base for result links
	endpoint   string
	httpClient *http.Client
}

// Option customises a Resend client.
type Option func(*resendClient)

// WithEndpoint overrides the Resend API URL. Used by tests.
func WithEndpoint(url string) Option {
	return func(c *resendClient) { c.endpoint = url }
}

// WithHTTPClient replaces the default 15s-timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *resendClient) { c.httpClient = hc }
}

// NewResendClient returns a Sender that delivers email via Resend.
func NewResendClient(apiKey, fromAddr, fromName, baseURL string, opts ...Option) Sender {
	c := &resendClient{
		apiKey:   apiKey,
		fromAddr: fromAddr,
		fromName: fromName,
		baseURL:  baseURL,
		endpoint: DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
	// Resend also reports validation failures at the top level.
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

func (c *resendClient) SendLeadNotification(ctx context.Context, p LeadNotificationParams) error {
	subject := fmt.Sprintf("Neuer %s-Lead: %s", segmentTitle(p.Segment), p.LeadName)
	if p.Calculator == CalculatorExpert {
		subject += " (Experten-Rechner)"
	}
	body := leadNotificationHTML(p, ResultURL(c.baseURL, p.Calculator, p.ResultID))
	return c.send(ctx, resendRequest{To: []string{p.To}, Subject: subject, HTML: body, ReplyTo: p.LeadEmail})
}

func (c *resendClient) SendResultSummary(ctx context.Context, p ResultSummaryParams) error {
	subject := "Ihre Unternehmensbewertung"
	if p.ScoreLabel != "" {
		subject = fmt.Sprintf("Ihre Exit-Readiness: %s", p.ScoreLabel)
	}
	body := resultSummaryHTML(p, ResultURL(c.baseURL, p.Calculator, p.ResultID))
	return c.send(ctx, resendRequest{To: []string{p.To}, Subject: subject, HTML: body})
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

func (c *resendClient) send(ctx context.Context, reqBody resendRequest) error {
	reqBody.From = fmt.Sprintf("%s <%s>", c.fromName, c.fromAddr)

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("email: read response: %w", err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return fmt.Errorf("email: unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != nil {
		return fmt.Errorf("email: Resend error %s: %s", parsed.Error.Name, parsed.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Message != "" {
			return fmt.Errorf("email: Resend error %s (status %d): %s", parsed.Name, resp.StatusCode, parsed.Message)
		}
		return fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return nil
}

// ─── FORMATTING ───────────────────────────────────────────────────────────────

// FormatEUR renders whole euros with German thousands separators, e.g.
// "1.104.000 €".
func FormatEUR(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)

	var b bytes.Buffer
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteString(" €")
	return b.String()
}

func valueRange(low, high int64) string {
	if low == high {
		return FormatEUR(low)
	}
	return FormatEUR(low) + " – " + FormatEUR(high)
}

func segmentTitle(seg string) string {
	switch seg {
	case "hot":
		return "Hot"
	case "warm":
		return "Warm"
	case "cold":
		return "Cold"
	default:
		return "Nurture"
	}
}

// ─── HTML TEMPLATES ───────────────────────────────────────────────────────────

func leadNotificationHTML(p LeadNotificationParams, resultURL string) string {
	score := "-"
	if p.Calculator == CalculatorStandard {
		score = fmt.Sprintf("%d %% (%s)", p.ReadinessScore, html.EscapeString(p.ScoreLabel))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="margin-bottom: 8px;">Neuer Lead (%s)</h2>
  <table style="border-collapse: collapse; font-size: 14px;">
    <tr><td style="padding: 4px 12px 4px 0; color:#6b7280;">Name</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color:#6b7280;">E-Mail</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color:#6b7280;">Telefon</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color:#6b7280;">Website</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color:#6b7280;">Rechner</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color:#6b7280;">Exit-Readiness</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color:#6b7280;">Bewertung</td><td>%s</td></tr>
  </table>
  <p style="margin: 32px 0;"><a href="%s">Ergebnis ansehen</a></p>
</body>
</html>`,
		segmentTitle(p.Segment),
		html.EscapeString(p.LeadName),
		html.EscapeString(p.LeadEmail),
		html.EscapeString(p.LeadPhone),
		html.EscapeString(p.Website),
		html.EscapeString(p.Calculator),
		score,
		valueRange(p.ValueLow, p.ValueHigh),
		resultURL,
	)
}

func resultSummaryHTML(p ResultSummaryParams, resultURL string) string {
	intro := "vielen Dank für Ihre Angaben. Auf Basis Ihrer Zahlen schätzen wir den Unternehmenswert auf"
	if p.ScoreLabel != "" {
		intro = fmt.Sprintf("Ihre Exit-Readiness lautet <strong>%s</strong>. Den aktuellen Unternehmenswert schätzen wir auf",
			html.EscapeString(p.ScoreLabel))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <p>Hallo %s,</p>
  <p>%s <strong>%s</strong>.</p>
  <p style="margin: 32px 0;">
    <a href="%s"
       style="background: #0f172a; color: #ffffff; padding: 12px 24px;
              border-radius: 6px; text-decoration: none; font-weight: 600;">
      Ergebnis ansehen
    </a>
  </p>
  <p style="color: #6b7280; font-size: 14px;">
    Ein Berater meldet sich in Kürze bei Ihnen.
  </p>
</body>
</html>`,
		html.EscapeString(p.FirstName),
		intro,
		valueRange(p.ValueLow, p.ValueHigh),
		resultURL,
	)
}
