package scoring

import "fmt"

// ScoreResult is the output of the standard calculator. Field names match the
// JSON the frontend already consumes.
type ScoreResult struct {
	ReadinessScore    int      `json:"readinessScore"`
	ScoreLabel        string   `json:"scoreLabel"`
	ScoreComment      string   `json:"scoreComment"`
	ValuationLow      int64    `json:"valuationLow"`
	ValuationHigh     int64    `json:"valuationHigh"`
	PotentialIncrease int64    `json:"potentialIncrease"`
	Urgency           string   `json:"urgency"`
	Segment           Segment  `json:"segment"`
	MotivationTags    []string `json:"motivationTags"`
}

// ComputeReadinessScore is the standard calculator:
//
//  1. Fold every answered question into a weighted tally.
//  2. Turn the tally into a 0–100 percentage.
//  3. Look up the label band for the percentage.
//  4. Classify the lead from percentage and urgency.
//  5. Value the business from the EBITDA answer and the percentage.
//
// Returns ErrNoScorableAnswers if no question was answered.
func ComputeReadinessScore(answers AnswerSet, doc *Document) (ScoreResult, error) {
	tally := Fold(doc.Questions, answers)

	pct, err := tally.Percentage()
	if err != nil {
		return ScoreResult{}, fmt.Errorf("ComputeReadinessScore: %w", err)
	}

	band, _ := doc.ScoreRanges.Lookup(pct)
	valuation := ComputeStandardValuation(ValuationInputFromAnswers(answers, doc.ValuationFields), pct, doc)

	return ScoreResult{
		ReadinessScore:    pct,
		ScoreLabel:        band.Label,
		ScoreComment:      band.Comment,
		ValuationLow:      valuation.Low,
		ValuationHigh:     valuation.High,
		PotentialIncrease: valuation.PotentialIncrease,
		Urgency:           tally.Urgency,
		Segment:           Classify(pct, tally.Urgency),
		MotivationTags:    tally.MotivationTags,
	}, nil
}
