package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScoreRange is one labelled percentage band, keyed "min-max" (inclusive) in
// the document.
type ScoreRange struct {
	Key     string
	Min     int
	Max     int
	Label   string
	Comment string
}

// ScoreRanges keeps the bands in the order the document declares them. A
// plain Go map would lose that order, and the lookup is first-match-wins.
type ScoreRanges []ScoreRange

// UnmarshalJSON walks the object token by token to preserve key order.
func (r *ScoreRanges) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*r = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("score_ranges: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("score_ranges: expected object, got %v", tok)
	}

	var out ScoreRanges
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("score_ranges: %w", err)
		}
		key, _ := keyTok.(string)

		var body struct {
			Label   string `json:"label"`
			Comment string `json:"comment"`
		}
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("score_ranges %q: %w", key, err)
		}

		lo, hi, err := parseRangeKey(key)
		if err != nil {
			return fmt.Errorf("score_ranges: %w", err)
		}
		out = append(out, ScoreRange{Key: key, Min: lo, Max: hi, Label: body.Label, Comment: body.Comment})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("score_ranges: %w", err)
	}

	*r = out
	return nil
}

// MarshalJSON writes the bands back as an object in declared order.
func (r ScoreRanges) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sr := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sr.Key)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(struct {
			Label   string `json:"label"`
			Comment string `json:"comment"`
		}{sr.Label, sr.Comment})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup returns the first band containing pct. ok is false when no band
// matches; label and comment are then empty.
func (r ScoreRanges) Lookup(pct int) (ScoreRange, bool) {
	for _, sr := range r {
		if pct >= sr.Min && pct <= sr.Max {
			return sr, true
		}
	}
	return ScoreRange{}, false
}

func parseRangeKey(key string) (int, int, error) {
	lo, hi, ok := strings.Cut(key, "-")
	if !ok {
		return 0, 0, fmt.Errorf("range key %q: expected \"min-max\"", key)
	}
	minV, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("range key %q: bad min: %w", key, err)
	}
	maxV, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("range key %q: bad max: %w", key, err)
	}
	return minV, maxV, nil
}
