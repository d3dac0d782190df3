// Package schema validates request payloads against the JSON Schemas embedded
// under schemas/ before they are decoded into domain types.
package schema

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrInvalidLead is returned when the contact form fails validation.
var ErrInvalidLead = errors.New("schema: invalid lead data")

// FieldError is one validation failure. Field is a dotted path into the
// payload; "(root)" refers to the payload itself.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failure of one payload. It unwraps to the
// domain sentinel of the payload kind, so callers can branch with errors.Is.
type ValidationError struct {
	Kind   error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// ─── VALIDATOR ────────────────────────────────────────────────────────────────

// Validator holds the compiled schemas. It is safe for concurrent use.
type Validator struct {
	answers *gojsonschema.Schema
	expert  *gojsonschema.Schema
	lead    *gojsonschema.Schema
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	answers, err := load("schemas/answers.json")
	if err != nil {
		return nil, err
	}
	expert, err := load("schemas/expert_input.json")
	if err != nil {
		return nil, err
	}
	lead, err := load("schemas/lead.json")
	if err != nil {
		return nil, err
	}
	return &Validator{answers: answers, expert: expert, lead: lead}, nil
}

// MustNew is New for package-level initialisation in tests and the CLI.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func load(name string) (*gojsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema: compile %s: %w", name, err)
	}
	return s, nil
}

// Answers validates and decodes a standard questionnaire answer set.
func (v *Validator) Answers(raw json.RawMessage) (scoring.AnswerSet, error) {
	if err := validate(v.answers, raw, scoring.ErrInvalidAnswerSet, nil); err != nil {
		return nil, err
	}
	var set scoring.AnswerSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrInvalidAnswerSet, err)
	}
	return set, nil
}

// ExpertInput validates and decodes the expert calculator payload.
func (v *Validator) ExpertInput(raw json.RawMessage) (scoring.ExpertValuationInput, error) {
	var in scoring.ExpertValuationInput
	if err := validate(v.expert, raw, scoring.ErrInvalidExpertInput, nil); err != nil {
		return in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("%w: %v", scoring.ErrInvalidExpertInput, err)
	}
	return in, in.Validate()
}

// ─── LEADS ────────────────────────────────────────────────────────────────────

// LeadForm is the validated contact form. CompanyWebsite is normalised to an
// absolute http(s) URL.
type LeadForm struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CompanyWebsite string `json:"companyWebsite"`
	Privacy        bool   `json:"privacy"`
}

// leadMessages are the user-facing messages shown next to each form field.
var leadMessages = map[string]string{
	"firstName":      "Vorname ist erforderlich",
	"lastName":       "Nachname ist erforderlich",
	"email":          "Eine gültige E-Mail-Adresse ist erforderlich",
	"phone":          "WhatsApp Nummer ist erforderlich",
	"companyWebsite": "Bitte geben Sie eine Website-Adresse ein",
	"privacy":        "Bitte akzeptiere die Datenschutzerklärung",
}

// Lead validates and decodes the contact form.
func (v *Validator) Lead(raw json.RawMessage) (LeadForm, error) {
	var form LeadForm
	if err := validate(v.lead, raw, ErrInvalidLead, leadMessages); err != nil {
		return form, err
	}
	if err := json.Unmarshal(raw, &form); err != nil {
		return form, fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}

	site, err := NormalizeWebsite(form.CompanyWebsite)
	if err != nil {
		return form, &ValidationError{
			Kind:   ErrInvalidLead,
			Fields: []FieldError{{Field: "companyWebsite", Message: "Eine gültige Website-Adresse ist erforderlich"}},
		}
	}
	form.CompanyWebsite = site
	return form, nil
}

var schemePrefix = regexp.MustCompile(`^https?://`)

// NormalizeWebsite prefixes "https://" when no http(s) scheme is present and
// checks that the result parses with a host.
func NormalizeWebsite(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !schemePrefix.MatchString(s) {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("website %q has no host", s)
	}
	return s, nil
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

func validate(s *gojsonschema.Schema, raw json.RawMessage, kind error, messages map[string]string) error {
	if len(raw) == 0 {
		return &ValidationError{Kind: kind, Fields: []FieldError{{Field: "(root)", Message: "missing"}}}
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// Not parseable as JSON at all.
		return &ValidationError{Kind: kind, Fields: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	seen := make(map[string]bool)
	for _, desc := range result.Errors() {
		field := fieldOf(desc)
		if seen[field] {
			continue
		}
		seen[field] = true

		msg := desc.Description()
		if m, ok := messages[topLevel(field)]; ok {
			msg = m
		}
		fields = append(fields, FieldError{Field: field, Message: msg})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Kind: kind, Fields: fields}
}

// fieldOf reports the missing property itself for "required" failures, which
// gojsonschema attributes to the parent object.
func fieldOf(desc gojsonschema.ResultError) string {
	if desc.Type() == "required" {
		if p, ok := desc.Details()["property"].(string); ok {
			if parent := desc.Field(); parent != "(root)" {
				return parent + "." + p
			}
			return p
		}
	}
	return desc.Field()
}

func topLevel(field string) string {
	head, _, _ := strings.Cut(field, ".")
	return head
}
