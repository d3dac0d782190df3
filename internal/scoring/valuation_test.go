package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

// ─── standard valuation ───────────────────────────────────────────────────────

func TestComputeStandardValuation(t *testing.T) {
	doc := mustDoc(t, fixtureDoc)

	tests := []struct {
		name string
		in   scoring.StandardValuationInput
		pct  int
		want scoring.StandardValuation
	}{
		{
			name: "fallback industry at 50 percent",
			in:   scoring.StandardValuationInput{Industry: "Handwerk", EBITDA: 100000},
			pct:  50,
			want: scoring.StandardValuation{Low: 300000, High: 400000, PotentialIncrease: 100000},
		},
		{
			name: "owner pay added back",
			in:   scoring.StandardValuationInput{Industry: "Andere", EBITDA: 100000, ExecutiveComp: 50000, ExecutiveCompIncluded: true},
			pct:  0,
			want: scoring.StandardValuation{Low: 450000, High: 450000, PotentialIncrease: 300000},
		},
		{
			name: "owner pay ignored when not included",
			in:   scoring.StandardValuationInput{Industry: "Andere", EBITDA: 100000, ExecutiveComp: 50000},
			pct:  100,
			want: scoring.StandardValuation{Low: 300000, High: 500000, PotentialIncrease: 0},
		},
		{
			name: "negative owner pay ignored",
			in:   scoring.StandardValuationInput{Industry: "Andere", EBITDA: 100000, ExecutiveComp: -20000, ExecutiveCompIncluded: true},
			pct:  100,
			want: scoring.StandardValuation{Low: 300000, High: 500000, PotentialIncrease: 0},
		},
		{
			name: "zero EBITDA",
			in:   scoring.StandardValuationInput{Industry: "SaaS & IT"},
			pct:  80,
			want: scoring.StandardValuation{},
		},
		{
			name: "negative EBITDA",
			in:   scoring.StandardValuationInput{Industry: "SaaS & IT", EBITDA: -5000},
			pct:  80,
			want: scoring.StandardValuation{},
		},
		{
			name: "missing industry",
			in:   scoring.StandardValuationInput{EBITDA: 100000},
			pct:  80,
			want: scoring.StandardValuation{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.ComputeStandardValuation(tt.in, tt.pct, doc))
		})
	}
}

func TestComputeStandardValuation_OrderedAcrossAllPercentages(t *testing.T) {
	doc := mustDoc(t, fixtureDoc)
	in := scoring.StandardValuationInput{Industry: "SaaS & IT", EBITDA: 123457}

	for pct := 0; pct <= 100; pct++ {
		v := scoring.ComputeStandardValuation(in, pct, doc)
		assert.LessOrEqual(t, v.Low, v.High, "pct=%d", pct)
		assert.GreaterOrEqual(t, v.PotentialIncrease, int64(0), "pct=%d", pct)
	}
}

func TestComputeStandardValuation_NoFallbackEntry(t *testing.T) {
	doc := &scoring.Document{
		ValuationMultiples: map[string]scoring.Multiples{"Handel": {Base: 2, Premium: 3}},
		FallbackIndustry:   "Andere",
	}
	v := scoring.ComputeStandardValuation(scoring.StandardValuationInput{Industry: "Bau", EBITDA: 1000}, 50, doc)
	assert.Equal(t, scoring.StandardValuation{}, v)
}

func TestValuationInputFromAnswers(t *testing.T) {
	fields := scoring.DefaultValuationFields()

	tests := []struct {
		name    string
		answers scoring.AnswerSet
		want    scoring.StandardValuationInput
	}{
		{
			name: "numbers and boolean",
			answers: scoring.AnswerSet{
				"q1":  scoring.StringAnswer("Handel"),
				"q3":  scoring.NumberAnswer(250000.9),
				"q3b": scoring.NumberAnswer(80000),
				"q3c": scoring.BoolAnswer(true),
			},
			want: scoring.StandardValuationInput{Industry: "Handel", EBITDA: 250000, ExecutiveComp: 80000, ExecutiveCompIncluded: true},
		},
		{
			name: "strings from form fields",
			answers: scoring.AnswerSet{
				"q1":  scoring.StringAnswer("Handel"),
				"q3":  scoring.StringAnswer("250000 EUR"),
				"q3b": scoring.StringAnswer("abc"),
				"q3c": scoring.StringAnswer("true"),
			},
			want: scoring.StandardValuationInput{Industry: "Handel", EBITDA: 250000, ExecutiveComp: 0, ExecutiveCompIncluded: true},
		},
		{
			name:    "absent fields",
			answers: scoring.AnswerSet{"q3c": scoring.StringAnswer("yes")},
			want:    scoring.StandardValuationInput{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.ValuationInputFromAnswers(tt.answers, fields))
		})
	}
}

// ─── expert valuation ─────────────────────────────────────────────────────────

const fixtureExpertDoc = `{
	"multipliers": {"default": 5.0, "SaaS & IT": 6.0, "Gastronomie": 0},
	"quality_factors": [
		{"id": "recurringRevenue", "label": "Wiederkehrende Umsätze",
		 "options": [{"label": "Hoch", "adjustment": 0.1}, {"label": "Niedrig", "adjustment": -0.1}]},
		{"id": "ownerDependency", "label": "Inhaberabhängigkeit",
		 "options": [{"label": "Gering", "adjustment": 0.05}, {"label": "Hoch", "adjustment": -0.15}]}
	]
}`

func mustExpertDoc(t *testing.T) *scoring.ExpertDocument {
	t.Helper()
	doc, err := scoring.ParseExpertDocument([]byte(fixtureExpertDoc))
	require.NoError(t, err)
	return doc
}

func TestComputeExpertValuation_SaaSScenario(t *testing.T) {
	doc := mustExpertDoc(t)
	in := scoring.ExpertValuationInput{
		Industry:             "SaaS & IT",
		YearlyRevenue:        1000000,
		LastThreeYearsProfit: []float64{100000, 120000, 140000},
		ExecutiveSalary:      60000,
		Debt:                 50000,
		NonOperationalAssets: 20000,
		QualityFactors:       map[string]float64{"recurringRevenue": 0.1, "ownerDependency": -0.05},
	}

	res := scoring.ComputeExpertValuation(in, doc)

	assert.Equal(t, 6.0, res.IndustryMultiplier)
	assert.InDelta(t, 0.05, res.QualityAdjustment, 1e-12)
	assert.InDelta(t, 6.3, res.AdjustedMultiplier, 1e-9)
	assert.Equal(t, int64(120000), res.AvgProfit)
	assert.Equal(t, int64(180000), res.NormalizedEBIT)
	assert.Equal(t, int64(1080000), res.BaseValue)
	assert.InDelta(t, 1134000, res.AdjustedValue, 1e-6)
	assert.InDelta(t, 1104000, res.EnterpriseValue, 1e-6)
	assert.Equal(t, int64(-30000), res.NetDebtEffect)
	assert.Equal(t, int64(1104000), res.CompanyValue)
}

func TestComputeExpertValuation_MultiplierFallback(t *testing.T) {
	doc := mustExpertDoc(t)
	base := scoring.ExpertValuationInput{
		LastThreeYearsProfit: []float64{10000, 10000, 10000},
		QualityFactors:       map[string]float64{},
	}

	for _, industry := range []string{"Unbekannt", "Gastronomie"} {
		in := base
		in.Industry = industry
		res := scoring.ComputeExpertValuation(in, doc)
		assert.Equal(t, 5.0, res.IndustryMultiplier, industry)
		assert.Equal(t, int64(50000), res.CompanyValue, industry)
	}
}

func TestComputeExpertValuation_RoundsToThousands(t *testing.T) {
	doc := mustExpertDoc(t)
	profits := [][]float64{
		{12345, 67890, 11111},
		{-5000, 0, 1},
		{999, 1499, 1501},
		{0, 0, 0},
	}
	for _, p := range profits {
		in := scoring.ExpertValuationInput{
			Industry:             "Handel",
			LastThreeYearsProfit: p,
			ExecutiveSalary:      777,
			Debt:                 333,
			QualityFactors:       map[string]float64{"x": 0.07},
		}
		res := scoring.ComputeExpertValuation(in, doc)
		assert.Zero(t, res.CompanyValue%1000, "profits=%v", p)
		assert.Zero(t, res.BaseValue%1000, "profits=%v", p)
		assert.Zero(t, res.NetDebtEffect%1000, "profits=%v", p)
	}
}

func TestComputeExpertValuation_NegativeResultAllowed(t *testing.T) {
	doc := mustExpertDoc(t)
	in := scoring.ExpertValuationInput{
		Industry:             "Handel",
		LastThreeYearsProfit: []float64{-100000, -100000, -100000},
		Debt:                 200000,
		QualityFactors:       map[string]float64{},
	}
	res := scoring.ComputeExpertValuation(in, doc)
	assert.Equal(t, int64(-700000), res.CompanyValue)
}

func TestComputeExpertValuation_UnknownFactorNamesCount(t *testing.T) {
	doc := mustExpertDoc(t)
	in := scoring.ExpertValuationInput{
		Industry:             "default",
		LastThreeYearsProfit: []float64{100000, 100000, 100000},
		QualityFactors:       map[string]float64{"somethingElse": 0.2},
	}
	res := scoring.ComputeExpertValuation(in, doc)
	assert.InDelta(t, 6.0, res.AdjustedMultiplier, 1e-9)
	assert.Equal(t, int64(600000), res.CompanyValue)
}

func TestExpertValuationInput_Validate(t *testing.T) {
	valid := scoring.ExpertValuationInput{
		Industry:             "Handel",
		LastThreeYearsProfit: []float64{1, 2, 3},
		QualityFactors:       map[string]float64{},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*scoring.ExpertValuationInput)
	}{
		{"blank industry", func(in *scoring.ExpertValuationInput) { in.Industry = "  " }},
		{"two profits", func(in *scoring.ExpertValuationInput) { in.LastThreeYearsProfit = []float64{1, 2} }},
		{"four profits", func(in *scoring.ExpertValuationInput) { in.LastThreeYearsProfit = []float64{1, 2, 3, 4} }},
		{"nil factors", func(in *scoring.ExpertValuationInput) { in.QualityFactors = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.ErrorIs(t, in.Validate(), scoring.ErrInvalidExpertInput)
		})
	}
}
