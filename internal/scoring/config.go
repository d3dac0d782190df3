// Package scoring implements the exit readiness score and both valuation
// methods. It is intentionally dependency-free: it imports nothing from
// internal/ and performs no I/O, so every function here is deterministic for a
// given document and answer set.
package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// QuestionType is the discriminator that selects a scoring strategy. Values
// outside the declared set are kept as-is and scored neutrally.
type QuestionType string

const (
	TypeNumber       QuestionType = "number"
	TypeSingleChoice QuestionType = "single-choice"
	TypeScale        QuestionType = "scale"
	TypeMultiChoice  QuestionType = "multi-choice"
	TypeDropdown     QuestionType = "dropdown"
)

// Defaults applied when a question or document omits the field.
const (
	DefaultScoreWeight      = 1.0
	DefaultScaleMin         = 1.0
	DefaultScaleMax         = 5.0
	DefaultFallbackIndustry = "Andere"
)

// ─── OPTIONS ──────────────────────────────────────────────────────────────────

// Option is one selectable answer. The JSON documents mix two shapes:
//
//	"options": ["Ja", "Nein"]                        // plain labels
//	"options": [{"label": "Sofort", "value": 4}]    // labelled values
//
// A plain label has no Value and counts as 1 when the maximum option value of
// a single-choice question is computed.
type Option struct {
	Label string
	Value *float64
}

// UnmarshalJSON accepts either a JSON string or a {label, value} object.
// Value may be a number or a numeric string.
func (o *Option) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*o = Option{Label: label}
		return nil
	}

	var obj struct {
		Label string          `json:"label"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("option: expected string or object: %w", err)
	}

	opt := Option{Label: obj.Label}
	if len(obj.Value) > 0 && string(obj.Value) != "null" {
		v, err := parseOptionValue(obj.Value)
		if err != nil {
			return fmt.Errorf("option %q: %w", obj.Label, err)
		}
		opt.Value = &v
	}
	*o = opt
	return nil
}

// MarshalJSON writes the same shape the option was read from.
func (o Option) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return json.Marshal(o.Label)
	}
	return json.Marshal(struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}{o.Label, *o.Value})
}

func parseOptionValue(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("value must be a number or numeric string")
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not numeric", s)
	}
	return n, nil
}

// ─── QUESTIONS ────────────────────────────────────────────────────────────────

// Question is one entry of the questionnaire document.
//
// Pointer fields distinguish "absent" from an explicit zero so that defaults
// apply only when the document leaves the field out.
type Question struct {
	ID          string            `json:"id"`
	Text        string            `json:"text,omitempty"`
	Type        QuestionType      `json:"type"`
	Options     []Option          `json:"options,omitempty"`
	ScoreWeight *float64          `json:"score_weight,omitempty"`
	ScaleMin    *float64          `json:"scale_min,omitempty"`
	ScaleMax    *float64          `json:"scale_max,omitempty"`
	InvertScore bool              `json:"invert_score,omitempty"`
	Urgency     map[string]string `json:"urgency,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// Weight returns the question's relative influence on the aggregate.
func (q Question) Weight() float64 {
	if q.ScoreWeight == nil {
		return DefaultScoreWeight
	}
	return *q.ScoreWeight
}

// ScaleBounds returns (min, max) for scale questions.
func (q Question) ScaleBounds() (float64, float64) {
	lo, hi := DefaultScaleMin, DefaultScaleMax
	if q.ScaleMin != nil {
		lo = *q.ScaleMin
	}
	if q.ScaleMax != nil {
		hi = *q.ScaleMax
	}
	return lo, hi
}

// ─── DOCUMENT ─────────────────────────────────────────────────────────────────

// Multiples is the EBITDA multiple pair for one industry.
type Multiples struct {
	Base    float64 `json:"base"`
	Premium float64 `json:"premium"`
}

// ValuationFields names the answer ids the standard valuation reads.
type ValuationFields struct {
	Industry              string `json:"industry"`
	EBITDA                string `json:"ebitda"`
	ExecutiveComp         string `json:"executive_comp"`
	ExecutiveCompIncluded string `json:"executive_comp_included"`
	RevenueModel          string `json:"revenue_model"`
}

// DefaultValuationFields matches the ids used by the shipped questionnaire.
func DefaultValuationFields() ValuationFields {
	return ValuationFields{
		Industry:              "q1",
		EBITDA:                "q3",
		ExecutiveComp:         "q3b",
		ExecutiveCompIncluded: "q3c",
		RevenueModel:          "q5",
	}
}

func (f ValuationFields) withDefaults() ValuationFields {
	d := DefaultValuationFields()
	if f.Industry == "" {
		f.Industry = d.Industry
	}
	if f.EBITDA == "" {
		f.EBITDA = d.EBITDA
	}
	if f.ExecutiveComp == "" {
		f.ExecutiveComp = d.ExecutiveComp
	}
	if f.ExecutiveCompIncluded == "" {
		f.ExecutiveCompIncluded = d.ExecutiveCompIncluded
	}
	if f.RevenueModel == "" {
		f.RevenueModel = d.RevenueModel
	}
	return f
}

// Document is the standard questionnaire configuration. It is read-only once
// parsed; ParseDocument is the only constructor that applies defaults.
type Document struct {
	Questions          []Question           `json:"questions"`
	ScoreRanges        ScoreRanges          `json:"score_ranges"`
	ValuationMultiples map[string]Multiples `json:"valuation_multiples"`
	MotivationProfiles map[string]string    `json:"motivation_profiles,omitempty"`
	ValuationFields    ValuationFields      `json:"valuation_fields"`
	FallbackIndustry   string               `json:"fallback_industry,omitempty"`

	raw json.RawMessage
}

// ParseDocument unmarshals and validates a questionnaire document. The raw
// bytes are retained so the document can be served verbatim to the frontend.
func ParseDocument(raw []byte) (*Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("questionnaire document: empty JSON")
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("questionnaire document: %w", err)
	}
	doc.ValuationFields = doc.ValuationFields.withDefaults()
	if doc.FallbackIndustry == "" {
		doc.FallbackIndustry = DefaultFallbackIndustry
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.raw = append(json.RawMessage(nil), raw...)
	return &doc, nil
}

// Raw returns the document bytes it was parsed from.
func (d *Document) Raw() json.RawMessage { return d.raw }

// MultiplesFor returns the multiples for industry, falling back to the
// configured fallback entry. ok is false only if neither exists.
func (d *Document) MultiplesFor(industry string) (Multiples, bool) {
	if m, ok := d.ValuationMultiples[industry]; ok {
		return m, true
	}
	m, ok := d.ValuationMultiples[d.FallbackIndustry]
	return m, ok
}

// Validate checks the properties the scorer relies on. Call it once at load
// time, not on every request. Every problem is reported, not just the first.
func (d *Document) Validate() error {
	var errs []error

	if len(d.Questions) == 0 {
		errs = append(errs, errors.New("questions must not be empty"))
	}

	seen := make(map[string]struct{}, len(d.Questions))
	for i, q := range d.Questions {
		if q.ID == "" {
			errs = append(errs, fmt.Errorf("questions[%d]: id must not be empty", i))
			continue
		}
		if _, dup := seen[q.ID]; dup {
			errs = append(errs, fmt.Errorf("question %q: duplicate id", q.ID))
		}
		seen[q.ID] = struct{}{}

		if w := q.Weight(); w <= 0 {
			errs = append(errs, fmt.Errorf("question %q: score_weight must be > 0, got %g", q.ID, w))
		}
		if q.Type == TypeScale {
			if lo, hi := q.ScaleBounds(); hi <= lo {
				errs = append(errs, fmt.Errorf("question %q: scale_max (%g) must be greater than scale_min (%g)", q.ID, hi, lo))
			}
		}
	}

	for _, r := range d.ScoreRanges {
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("score range %q: min greater than max", r.Key))
		}
	}

	if _, ok := d.ValuationMultiples[d.FallbackIndustry]; !ok {
		errs = append(errs, fmt.Errorf("valuation_multiples: fallback industry %q missing", d.FallbackIndustry))
	}
	for name, m := range d.ValuationMultiples {
		if m.Premium < m.Base {
			errs = append(errs, fmt.Errorf("valuation_multiples %q: premium (%g) below base (%g)", name, m.Premium, m.Base))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("questionnaire document: %w", err)
	}
	return nil
}

// ─── EXPERT DOCUMENT ──────────────────────────────────────────────────────────

// DefaultMultiplierKey is the mandatory fallback entry of ExpertDocument.Multipliers.
const DefaultMultiplierKey = "default"

// QualityFactorOption is one selectable premium or discount.
type QualityFactorOption struct {
	Label      string  `json:"label"`
	Adjustment float64 `json:"adjustment"`
}

// QualityFactorDefinition describes one named quality factor for the UI. The
// calculator never consults it: any factor name supplied by the caller counts.
type QualityFactorDefinition struct {
	ID      string                `json:"id"`
	Label   string                `json:"label"`
	Options []QualityFactorOption `json:"options"`
}

// ExpertDocument is the multiplier-method configuration.
type ExpertDocument struct {
	Multipliers    map[string]float64        `json:"multipliers"`
	QualityFactors []QualityFactorDefinition `json:"quality_factors,omitempty"`

	raw json.RawMessage
}

// ParseExpertDocument unmarshals and validates an expert document.
func ParseExpertDocument(raw []byte) (*ExpertDocument, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("expert document: empty JSON")
	}
	var doc ExpertDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("expert document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.raw = append(json.RawMessage(nil), raw...)
	return &doc, nil
}

// Raw returns the document bytes it was parsed from.
func (d *ExpertDocument) Raw() json.RawMessage { return d.raw }

// Validate checks that the default multiplier exists and factor ids are unique.
func (d *ExpertDocument) Validate() error {
	var errs []error
	if _, ok := d.Multipliers[DefaultMultiplierKey]; !ok {
		errs = append(errs, fmt.Errorf("multipliers: %q entry missing", DefaultMultiplierKey))
	}
	seen := make(map[string]struct{}, len(d.QualityFactors))
	for i, f := range d.QualityFactors {
		if f.ID == "" {
			errs = append(errs, fmt.Errorf("quality_factors[%d]: id must not be empty", i))
			continue
		}
		if _, dup := seen[f.ID]; dup {
			errs = append(errs, fmt.Errorf("quality factor %q: duplicate id", f.ID))
		}
		seen[f.ID] = struct{}{}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("expert document: %w", err)
	}
	return nil
}

// MultiplierFor returns the industry multiplier or the default. A zero entry
// counts as absent.
func (d *ExpertDocument) MultiplierFor(industry string) float64 {
	if m, ok := d.Multipliers[industry]; ok && m != 0 {
		return m
	}
	return d.Multipliers[DefaultMultiplierKey]
}
