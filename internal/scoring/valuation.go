package scoring

// StandardValuationInput is what the standard calculator reads from the
// answer set.
type StandardValuationInput struct {
	Industry              string
	EBITDA                int64
	ExecutiveComp         int64
	ExecutiveCompIncluded bool
}

// StandardValuation is the valuation range at the current readiness and the
// upside left on the table at 100 %.
type StandardValuation struct {
	Low               int64
	High              int64
	PotentialIncrease int64
}

// ValuationInputFromAnswers pulls the valuation fields named by the document.
// Absent fields read as zero values.
func ValuationInputFromAnswers(answers AnswerSet, fields ValuationFields) StandardValuationInput {
	return StandardValuationInput{
		Industry:              answers[fields.Industry].Text(),
		EBITDA:                answers[fields.EBITDA].IntegerField(),
		ExecutiveComp:         answers[fields.ExecutiveComp].IntegerField(),
		ExecutiveCompIncluded: answers[fields.ExecutiveCompIncluded].Truthy(),
	}
}

// AdjustedEBITDA adds back the owner's compensation when the owner also runs
// the company and the amount is positive.
func (in StandardValuationInput) AdjustedEBITDA() int64 {
	if in.ExecutiveCompIncluded && in.ExecutiveComp > 0 {
		return in.EBITDA + in.ExecutiveComp
	}
	return in.EBITDA
}

// ComputeStandardValuation interpolates linearly between the industry's base
// and premium multiple by the readiness percentage. A non-positive EBITDA or
// a missing industry yields an all-zero valuation, not an error.
func ComputeStandardValuation(in StandardValuationInput, pct int, doc *Document) StandardValuation {
	ebitda := float64(in.AdjustedEBITDA())
	if ebitda <= 0 || in.Industry == "" {
		return StandardValuation{}
	}

	m, ok := doc.MultiplesFor(in.Industry)
	if !ok {
		return StandardValuation{}
	}

	current := m.Base + (m.Premium-m.Base)*(float64(pct)/100)
	high := int64(roundHalfUp(ebitda * current))

	return StandardValuation{
		Low:               int64(roundHalfUp(ebitda * m.Base)),
		High:              high,
		PotentialIncrease: int64(roundHalfUp(ebitda*m.Premium)) - high,
	}
}
