package scoring

import (
	"errors"
	"math"
	"slices"
)

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

const (
	maxSubscore     = 5.0
	neutralSubscore = 3.0

	// numberAnchor is the answer that scores exactly 1 on the log scale.
	numberAnchor = 10000.0

	// defaultMaxChoice is the divisor for single-choice questions without options.
	defaultMaxChoice = 4.0

	// DefaultUrgency is reported when no single-choice answer sets an urgency.
	DefaultUrgency = "nurture"
)

// ErrNoScorableAnswers is returned when none of the document's questions has
// an answer, so the weighted mean is undefined.
var ErrNoScorableAnswers = errors.New("scoring: no answers match any question")

// ─── PER-QUESTION STRATEGIES ──────────────────────────────────────────────────

// contribution is what one answered question adds to the tally.
type contribution struct {
	subscore float64  // in [0, 5]
	urgency  string   // non-empty overwrites the running urgency
	tags     []string // motivation tags in selection order, may repeat
}

// strategy scores one answered question.
type strategy func(q Question, a AnswerValue) contribution

// strategyFor dispatches on the question type. Unknown types, including
// dropdown, fall through to the neutral midpoint.
func strategyFor(t QuestionType) strategy {
	switch t {
	case TypeNumber:
		return scoreNumber
	case TypeSingleChoice:
		return scoreSingleChoice
	case TypeScale:
		return scoreScale
	case TypeMultiChoice:
		return scoreMultiChoice
	default:
		return scoreNeutral
	}
}

// scoreNumber puts revenue-like figures on a log scale: 10 000 scores 1, each
// factor of ten adds 1, and the curve saturates at 5.
func scoreNumber(_ Question, a AnswerValue) contribution {
	v := a.NumericValue()
	if !(v > 0) {
		return contribution{}
	}
	return contribution{subscore: math.Log10(v/numberAnchor) + 1}
}

func scoreSingleChoice(q Question, a AnswerValue) contribution {
	choice := a.ChoiceValue()

	var c contribution
	if tag := q.Urgency[formatNumber(choice)]; tag != "" {
		c.urgency = tag
	}

	maxChoice := maxOptionValue(q.Options)
	if maxChoice > 0 {
		c.subscore = choice / maxChoice * maxSubscore
	}
	return c
}

func maxOptionValue(opts []Option) float64 {
	if len(opts) == 0 {
		return defaultMaxChoice
	}
	maxV := math.Inf(-1)
	for _, o := range opts {
		v := 1.0
		if o.Value != nil {
			v = *o.Value
		}
		maxV = max(maxV, v)
	}
	return maxV
}

func scoreScale(q Question, a AnswerValue) contribution {
	lo, hi := q.ScaleBounds()
	if hi == lo {
		return contribution{}
	}
	s := (a.ScaleValue() - lo) / (hi - lo) * maxSubscore
	if q.InvertScore {
		s = maxSubscore - s
	}
	return contribution{subscore: s}
}

// scoreMultiChoice rewards breadth of motivation: the share of the declared
// tags that were selected. A non-array answer or a question without tags
// scores 0 but still carries its weight.
func scoreMultiChoice(q Question, a AnswerValue) contribution {
	selected := a.Strings()
	if a.Kind() != KindStrings || len(q.Tags) == 0 {
		return contribution{}
	}

	c := contribution{
		subscore: float64(len(selected)) / float64(len(q.Tags)) * maxSubscore,
	}
	for _, opt := range selected {
		if tag := q.Tags[opt]; tag != "" {
			c.tags = append(c.tags, tag)
		}
	}
	return c
}

func scoreNeutral(Question, AnswerValue) contribution {
	return contribution{subscore: neutralSubscore}
}

// ─── FOLD ─────────────────────────────────────────────────────────────────────

// Tally is the running state of the left fold over the question list. Each
// call to Add returns a new Tally; the receiver is never modified.
type Tally struct {
	TotalScore     float64
	TotalWeight    float64
	Urgency        string
	MotivationTags []string
	Answered       int
}

// NewTally returns the fold's initial state.
func NewTally() Tally {
	return Tally{Urgency: DefaultUrgency, MotivationTags: []string{}}
}

// Add folds one answered question into the tally.
func (t Tally) Add(q Question, a AnswerValue) Tally {
	c := strategyFor(q.Type)(q, a)
	w := q.Weight()

	next := t
	next.TotalScore += clampSubscore(c.subscore) * w
	next.TotalWeight += w
	next.Answered++
	if c.urgency != "" {
		next.Urgency = c.urgency
	}
	if len(c.tags) > 0 {
		next.MotivationTags = mergeTags(t.MotivationTags, c.tags)
	}
	return next
}

// Percentage is the weighted mean as a rounded 0–100 figure.
func (t Tally) Percentage() (int, error) {
	if t.TotalWeight == 0 {
		return 0, ErrNoScorableAnswers
	}
	return int(roundHalfUp(t.TotalScore / (t.TotalWeight * maxSubscore) * 100)), nil
}

// Fold runs every question with an answer through the tally in document order.
// Answers keyed by unknown question ids are ignored.
func Fold(questions []Question, answers AnswerSet) Tally {
	t := NewTally()
	for _, q := range questions {
		a, ok := answers[q.ID]
		if !ok {
			continue
		}
		t = t.Add(q, a)
	}
	return t
}

// mergeTags appends the unseen tags to a copy of existing, keeping
// first-seen order.
func mergeTags(existing, incoming []string) []string {
	out := slices.Clone(existing)
	for _, tag := range incoming {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// clampSubscore bounds a subscore to [0, 5]. NaN scores as 0.
func clampSubscore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return min(s, maxSubscore)
}

// roundHalfUp rounds to the nearest integer with halves going toward +∞,
// so -2.5 → -2 and 2.5 → 3.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
