package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidExpertInput is returned by ExpertValuationInput.Validate.
var ErrInvalidExpertInput = errors.New("scoring: invalid expert valuation input")

// profitYears is the number of trailing years the multiplier method averages.
const profitYears = 3

// ExpertValuationInput is the payload of the expert calculator. YearlyRevenue
// does not enter the formula; it is stored with the result.
type ExpertValuationInput struct {
	Industry             string             `json:"industry"`
	YearlyRevenue        float64            `json:"yearlyRevenue"`
	LastThreeYearsProfit []float64          `json:"lastThreeYearsProfit"`
	ExecutiveSalary      float64            `json:"executiveSalary"`
	Debt                 float64            `json:"debt"`
	NonOperationalAssets float64            `json:"nonOperationalAssets"`
	QualityFactors       map[string]float64 `json:"qualityFactors"`
}

// Validate enforces the field contract the HTTP boundary guarantees before
// calling ComputeExpertValuation. Type checks happen earlier, at JSON decode.
func (in ExpertValuationInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.Industry) == "" {
		problems = append(problems, "industry must not be empty")
	}
	if len(in.LastThreeYearsProfit) != profitYears {
		problems = append(problems, fmt.Sprintf("lastThreeYearsProfit must have exactly %d entries, got %d", profitYears, len(in.LastThreeYearsProfit)))
	}
	if in.QualityFactors == nil {
		problems = append(problems, "qualityFactors must be an object")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidExpertInput, strings.Join(problems, "; "))
	}
	return nil
}

// ExpertValuationResult carries the company value and the intermediate
// figures shown on the result page.
type ExpertValuationResult struct {
	CompanyValue       int64   `json:"companyValue"`
	IndustryMultiplier float64 `json:"industryMultiplier"`
	QualityAdjustment  float64 `json:"qualityAdjustment"`
	AdjustedMultiplier float64 `json:"adjustedMultiplier"`
	BaseValue          int64   `json:"baseValue"`
	NormalizedEBIT     int64   `json:"normalizedEBIT"`
	AvgProfit          int64   `json:"avgProfit"`
	NetDebtEffect      int64   `json:"netDebtEffect"`
	AdjustedValue      float64 `json:"adjustedValue"`
	EnterpriseValue    float64 `json:"enterpriseValue"`
}

// ComputeExpertValuation applies the multiplier method:
//
//	normalizedEBIT     = mean(profits) + executiveSalary
//	adjustedMultiplier = multiplier × (1 + Σ qualityFactors)
//	companyValue       = normalizedEBIT × adjustedMultiplier − debt + nonOperationalAssets
//
// companyValue, baseValue and netDebtEffect are rounded to whole thousands.
// Negative inputs propagate; the result may be negative.
func ComputeExpertValuation(in ExpertValuationInput, doc *ExpertDocument) ExpertValuationResult {
	multiplier := doc.MultiplierFor(in.Industry)

	avgProfit := mean(in.LastThreeYearsProfit)
	normalizedEBIT := avgProfit + in.ExecutiveSalary
	baseValue := normalizedEBIT * multiplier

	qualityAdjustment := sumFactors(in.QualityFactors)
	adjustedMultiplier := multiplier * (1 + qualityAdjustment)
	adjustedValue := normalizedEBIT * adjustedMultiplier
	enterpriseValue := adjustedValue - in.Debt + in.NonOperationalAssets

	return ExpertValuationResult{
		CompanyValue:       roundThousand(enterpriseValue),
		IndustryMultiplier: multiplier,
		QualityAdjustment:  qualityAdjustment,
		AdjustedMultiplier: adjustedMultiplier,
		BaseValue:          roundThousand(baseValue),
		NormalizedEBIT:     int64(roundHalfUp(normalizedEBIT)),
		AvgProfit:          int64(roundHalfUp(avgProfit)),
		NetDebtEffect:      roundThousand(in.NonOperationalAssets - in.Debt),
		AdjustedValue:      adjustedValue,
		EnterpriseValue:    enterpriseValue,
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sumFactors adds the factors in key order; float addition is not
// associative and map order is random.
func sumFactors(factors map[string]float64) float64 {
	keys := make([]string, 0, len(factors))
	for k := range factors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		sum += factors[k]
	}
	return sum
}

func roundThousand(x float64) int64 {
	return int64(roundHalfUp(x/1000)) * 1000
}
