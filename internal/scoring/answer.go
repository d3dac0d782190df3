package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAnswerSet is returned when an answer value is not a string, a
// number, a boolean, or an array of strings.
var ErrInvalidAnswerSet = errors.New("scoring: invalid answer set")

// AnswerKind tags the variant held by an AnswerValue.
type AnswerKind uint8

const (
	KindString AnswerKind = iota + 1
	KindNumber
	KindBool
	KindStrings
)

func (k AnswerKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindStrings:
		return "string array"
	default:
		return "invalid"
	}
}

// AnswerValue is a questionnaire answer as the browser sends it. Its shape
// depends on the question, so each scoring strategy coerces it with one of
// the accessor methods below rather than type-asserting.
type AnswerValue struct {
	kind AnswerKind
	str  string
	num  float64
	b    bool
	list []string
}

// StringAnswer wraps a text answer.
func StringAnswer(s string) AnswerValue { return AnswerValue{kind: KindString, str: s} }

// NumberAnswer wraps a numeric answer.
func NumberAnswer(n float64) AnswerValue { return AnswerValue{kind: KindNumber, num: n} }

// BoolAnswer wraps a yes/no answer.
func BoolAnswer(b bool) AnswerValue { return AnswerValue{kind: KindBool, b: b} }

// StringsAnswer wraps a multi-select answer.
func StringsAnswer(items ...string) AnswerValue {
	return AnswerValue{kind: KindStrings, list: append([]string{}, items...)}
}

// Kind reports which variant is held. The zero AnswerValue has no kind.
func (a AnswerValue) Kind() AnswerKind { return a.kind }

// Strings returns the selections of a multi-select answer, or nil.
func (a AnswerValue) Strings() []string {
	if a.kind != KindStrings {
		return nil
	}
	return a.list
}

// UnmarshalJSON accepts the four answer shapes and rejects everything else,
// including null.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty value", ErrInvalidAnswerSet)
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnswerSet, err)
		}
		*a = StringAnswer(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnswerSet, err)
		}
		*a = BoolAnswer(b)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("%w: arrays must contain only strings", ErrInvalidAnswerSet)
		}
		*a = StringsAnswer(items...)
	case 'n':
		return fmt.Errorf("%w: null is not an answer", ErrInvalidAnswerSet)
	case '{':
		return fmt.Errorf("%w: objects are not answers", ErrInvalidAnswerSet)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnswerSet, err)
		}
		*a = NumberAnswer(n)
	}
	return nil
}

// MarshalJSON writes the held variant.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case KindString:
		return json.Marshal(a.str)
	case KindNumber:
		return json.Marshal(a.num)
	case KindBool:
		return json.Marshal(a.b)
	case KindStrings:
		return json.Marshal(a.list)
	default:
		return nil, fmt.Errorf("%w: zero answer value", ErrInvalidAnswerSet)
	}
}

// AnswerSet maps question id to answer. A missing key means "not answered".
type AnswerSet map[string]AnswerValue

// ─── COERCIONS ────────────────────────────────────────────────────────────────

// ChoiceValue extracts the selected option value of a single-choice answer:
// numbers pass through, strings parse their leading integer (default 1), and
// every other shape counts as 1.
func (a AnswerValue) ChoiceValue() float64 {
	switch a.kind {
	case KindNumber:
		return a.num
	case KindString:
		if v, ok := parseIntPrefix(a.str); ok {
			return v
		}
		return 1
	default:
		return 1
	}
}

// ScaleValue extracts a scale position. Same rules as ChoiceValue.
func (a AnswerValue) ScaleValue() float64 { return a.ChoiceValue() }

// NumericValue converts the answer the way a form field's numeric value is
// read: strings parse as floats (blank is 0), booleans are 1 or 0, and a
// single-element array uses its element. Anything unparseable is NaN.
func (a AnswerValue) NumericValue() float64 {
	switch a.kind {
	case KindNumber:
		return a.num
	case KindString:
		return parseFloatLoose(a.str)
	case KindBool:
		if a.b {
			return 1
		}
		return 0
	case KindStrings:
		switch len(a.list) {
		case 0:
			return 0
		case 1:
			return parseFloatLoose(a.list[0])
		}
	}
	return math.NaN()
}

// IntegerField reads a whole-currency amount: numbers truncate toward zero,
// everything else parses the leading integer of its text form, default 0.
func (a AnswerValue) IntegerField() int64 {
	if a.kind == KindNumber {
		if math.IsNaN(a.num) || math.IsInf(a.num, 0) {
			return 0
		}
		return int64(a.num)
	}
	if v, ok := parseIntPrefix(a.Text()); ok {
		return int64(v)
	}
	return 0
}

// Text renders the answer as a plain string, e.g. for use as a lookup key.
func (a AnswerValue) Text() string {
	switch a.kind {
	case KindString:
		return a.str
	case KindNumber:
		return formatNumber(a.num)
	case KindBool:
		return strconv.FormatBool(a.b)
	case KindStrings:
		return strings.Join(a.list, ",")
	default:
		return ""
	}
}

// Truthy reports whether the answer is the boolean true or the string "true".
func (a AnswerValue) Truthy() bool {
	return (a.kind == KindBool && a.b) || (a.kind == KindString && a.str == "true")
}

// parseIntPrefix parses the leading base-10 integer of s after optional
// whitespace and sign, ignoring whatever follows ("3 Jahre" → 3).
func parseIntPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

func parseFloatLoose(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// formatNumber renders n without a trailing ".0", so 2 becomes "2" and 2.5
// stays "2.5". Urgency maps are keyed this way.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
