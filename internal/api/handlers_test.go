package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/exit-valuation-backend/internal/api"
	"github.com/nyashahama/exit-valuation-backend/internal/questionnaire"
	"github.com/nyashahama/exit-valuation-backend/internal/schema"
	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

// stubWorker records enqueued leads.
type stubWorker struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
	err      error
}

func (w *stubWorker) Enqueue(_ context.Context, id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enqueued = append(w.enqueued, id)
	return w.err
}

// failingRepo fails every write and result read; the embedded Memory serves
// the rest.
type failingRepo struct {
	*store.Memory
	err error
}

func (f failingRepo) SaveStandardSubmission(context.Context, store.StandardSubmission) (store.StandardResult, store.Lead, error) {
	return store.StandardResult{}, store.Lead{}, f.err
}

func (f failingRepo) SaveExpertSubmission(context.Context, store.ExpertSubmission) (store.ExpertResult, store.Lead, error) {
	return store.ExpertResult{}, store.Lead{}, f.err
}

func (f failingRepo) GetResult(context.Context, uuid.UUID) (store.StandardResult, error) {
	return store.StandardResult{}, f.err
}

// brokenDocs simulates an unreadable configuration file.
type brokenDocs struct{}

func (brokenDocs) Standard(context.Context) (*scoring.Document, error) {
	return nil, questionnaire.ErrConfigurationUnavailable
}

func (brokenDocs) Expert(context.Context) (*scoring.ExpertDocument, error) {
	return nil, questionnaire.ErrConfigurationUnavailable
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

type testDeps struct {
	repo    store.Repository
	memory  *store.Memory
	docs    questionnaire.Provider
	worker  *stubWorker
	cfg     api.Config
	handler http.Handler
}

type option func(*testDeps)

func withConfig(fn func(*api.Config)) option {
	return func(d *testDeps) { fn(&d.cfg) }
}

func withRepo(r store.Repository) option {
	return func(d *testDeps) { d.repo = r }
}

func withDocs(p questionnaire.Provider) option {
	return func(d *testDeps) { d.docs = p }
}

func newTestServer(t *testing.T, opts ...option) *testDeps {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	deps := &testDeps{
		repo:   mem,
		memory: mem,
		docs:   questionnaire.NewFileProvider("../../data/questions.json", "../../data/experto_questions.json", logger),
		worker: &stubWorker{},
		cfg: api.Config{
			Env:            "development",
			AllowedOrigins: []string{"*"},
		},
	}
	for _, o := range opts {
		o(deps)
	}

	deps.handler = api.NewServer(deps.repo, deps.docs, schema.MustNew(), deps.worker, deps.cfg, logger)
	return deps
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool                `json:"success"`
	Result  json.RawMessage     `json:"result"`
	Error   string              `json:"error"`
	Fields  []schema.FieldError `json:"fields"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "raw: %s", rr.Body.String())
	return env
}

// ─── FIXTURES ─────────────────────────────────────────────────────────────────

// standardAnswers scores 73 % with urgency hot against data/questions.json:
// q1 neutral 3×1, q3 log-scale 2.301×1.5, q4 5×2.
func standardAnswers() map[string]any {
	return map[string]any{"q1": "SaaS & IT", "q3": 200000, "q4": 4}
}

func leadData() map[string]any {
	return map[string]any{
		"firstName":      "Maria",
		"lastName":       "Schulz",
		"email":          "maria@example.com",
		"phone":          "+49 170 1234567",
		"companyWebsite": "schulz-gmbh.de",
		"privacy":        true,
	}
}

func expertAnswers() map[string]any {
	return map[string]any{
		"industry":             "SaaS & IT",
		"yearlyRevenue":        1000000,
		"lastThreeYearsProfit": []float64{100000, 120000, 140000},
		"executiveSalary":      60000,
		"debt":                 50000,
		"nonOperationalAssets": 20000,
		"qualityFactors":       map[string]float64{},
	}
}

// ─── HEALTH AND METRICS ───────────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMetrics_ExposesCalculatorCounters(t *testing.T) {
	deps := newTestServer(t)
	doRequest(t, deps.handler, http.MethodPost, "/api/calculate", map[string]any{"answers": standardAnswers()}, nil)

	rr := doRequest(t, deps.handler, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `exitcalc_calculations_total{calculator="standard",outcome="ok"}`)
	assert.Contains(t, rr.Body.String(), "exitcalc_http_request_duration_seconds")
}

func TestCORS_Preflight(t *testing.T) {
	deps := newTestServer(t, withConfig(func(c *api.Config) { c.AllowedOrigins = []string{"https://exit-rechner.de"} }))
	rr := doRequest(t, deps.handler, http.MethodOptions, "/api/questionnaire/submit", nil, map[string]string{
		"Origin":                        "https://exit-rechner.de",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, "https://exit-rechner.de", rr.Header().Get("Access-Control-Allow-Origin"))
}

// ─── GET /api/questionnaire ───────────────────────────────────────────────────

func TestGetQuestionnaire_ReturnsDocument(t *testing.T) {
	deps := newTestServer(t)
	for _, path := range []string{"/api/questionnaire", "/api/experto/questionnaire"} {
		t.Run(path, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodGet, path, nil, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			var doc map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
			assert.NotEmpty(t, doc)
		})
	}
}

func TestGetQuestionnaire_ConfigUnavailable(t *testing.T) {
	deps := newTestServer(t, withDocs(brokenDocs{}))
	for _, path := range []string{"/api/questionnaire", "/api/experto/questionnaire"} {
		rr := doRequest(t, deps.handler, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusInternalServerError, rr.Code, path)
		env := decodeEnvelope(t, rr)
		assert.False(t, env.Success)
		assert.Equal(t, "Could not load questionnaire data", env.Error)
	}
}

// ─── POST /api/calculate ──────────────────────────────────────────────────────

func TestCalculate_BothRoutes(t *testing.T) {
	deps := newTestServer(t)
	for _, path := range []string{"/api/calculate", "/api/questionnaire/calculate"} {
		t.Run(path, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodPost, path, map[string]any{"answers": standardAnswers()}, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			env := decodeEnvelope(t, rr)
			require.True(t, env.Success)
			var res scoring.ScoreResult
			require.NoError(t, json.Unmarshal(env.Result, &res))
			assert.Equal(t, 73, res.ReadinessScore)
			assert.Equal(t, "Auf gutem Weg", res.ScoreLabel)
			assert.Equal(t, "hot", res.Urgency)
			assert.Equal(t, scoring.SegmentWarm, res.Segment)
			assert.Equal(t, int64(800000), res.ValuationLow)
			assert.Equal(t, int64(1384000), res.ValuationHigh)
			assert.Equal(t, int64(216000), res.PotentialIncrease)
			assert.Equal(t, []string{}, res.MotivationTags)
		})
	}
	assert.Empty(t, deps.worker.enqueued, "calculate never creates a lead")
}

func TestCalculate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"no answers", map[string]any{}, "Keine Antworten übermittelt"},
		{"null answers", `{"answers":null}`, "Keine Antworten übermittelt"},
		{"object answer", map[string]any{"answers": map[string]any{"q1": map[string]any{"x": 1}}}, "Ungültige Fragebogenantworten"},
		{"no known question", map[string]any{"answers": map[string]any{"zzz": "x"}}, "Keine der Antworten passt zu einer Frage des Fragebogens"},
	}
	deps := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodPost, "/api/calculate", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			env := decodeEnvelope(t, rr)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMsg, env.Error)
		})
	}
}

func TestCalculate_InvalidAnswersCarryFieldErrors(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/calculate",
		map[string]any{"answers": map[string]any{"q1": "SaaS & IT", "q4": []int{1, 2}}}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr)
	require.NotEmpty(t, env.Fields)
	assert.Equal(t, "q4", env.Fields[0].Field)
}

func TestCalculate_UnknownFieldsReturns400(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/calculate",
		map[string]any{"answers": standardAnswers(), "extra": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculate_InvalidJSONReturns400(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/calculate", `{bad json`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ─── POST /api/questionnaire/submit ───────────────────────────────────────────

func TestSubmit_StoresResultAndLead(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit",
		map[string]any{"answers": standardAnswers(), "leadData": leadData()}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	env := decodeEnvelope(t, rr)
	require.True(t, env.Success)
	var res store.StandardResult
	require.NoError(t, json.Unmarshal(env.Result, &res))
	assert.NotEqual(t, uuid.Nil, res.ID)
	assert.Equal(t, 73, res.ReadinessScore)
	assert.Equal(t, "SaaS & IT", res.Industry)
	assert.Equal(t, store.UnknownField, res.RevenueModel, "q5 not answered")

	leads, err := deps.memory.ListLeads(context.Background(), store.ListLeadsParams{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	lead := leads[0]
	assert.Equal(t, scoring.SegmentWarm, lead.Segment)
	assert.Equal(t, store.CalculatorStandard, lead.CalculatorType)
	assert.Equal(t, res.ID, lead.ResultID.UUID)
	assert.Equal(t, "https://schulz-gmbh.de", lead.CompanyWebsite)
	assert.Equal(t, []uuid.UUID{lead.ID}, deps.worker.enqueued)

	// The stored result is readable on both routes.
	for _, path := range []string{"/api/result/", "/api/questionnaire/result/"} {
		rr := doRequest(t, deps.handler, http.MethodGet, path+res.ID.String(), nil, nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		var got store.StandardResult
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Result, &got))
		assert.Equal(t, res.ID, got.ID)
		assert.JSONEq(t, `{"q1":"SaaS & IT","q3":200000,"q4":4}`, string(got.Answers))
	}
}

func TestSubmit_InvalidLead(t *testing.T) {
	deps := newTestServer(t)
	lead := leadData()
	lead["email"] = "not-an-email"
	delete(lead, "privacy")

	rr := doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit",
		map[string]any{"answers": standardAnswers(), "leadData": lead}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Ungültige Kontaktdaten", env.Error)
	fields := map[string]string{}
	for _, f := range env.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "Eine gültige E-Mail-Adresse ist erforderlich", fields["email"])
	assert.Equal(t, "Bitte akzeptiere die Datenschutzerklärung", fields["privacy"])

	leads, _ := deps.memory.ListLeads(context.Background(), store.ListLeadsParams{})
	assert.Empty(t, leads)
	assert.Empty(t, deps.worker.enqueued)
}

func TestSubmit_MissingLeadData(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit",
		map[string]any{"answers": standardAnswers()}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Ungültige Kontaktdaten", decodeEnvelope(t, rr).Error)
}

func TestSubmit_StorageFailure(t *testing.T) {
	deps := newTestServer(t, withRepo(failingRepo{Memory: store.NewMemory(), err: errors.New("connection refused")}))
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit",
		map[string]any{"answers": standardAnswers(), "leadData": leadData()}, nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Fehler beim Speichern der Daten", env.Error)
	assert.NotContains(t, rr.Body.String(), "connection refused")
	assert.Empty(t, deps.worker.enqueued)
}

func TestSubmit_EnqueueFailureStillSucceeds(t *testing.T) {
	deps := newTestServer(t)
	deps.worker.err = errors.New("queue full")

	rr := doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit",
		map[string]any{"answers": standardAnswers(), "leadData": leadData()}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, deps.worker.enqueued, 1)
}

func TestSubmit_RateLimited(t *testing.T) {
	deps := newTestServer(t, withConfig(func(c *api.Config) {
		c.SubmitRatePerMinute = 1
		c.SubmitBurst = 1
	}))
	body := map[string]any{"answers": standardAnswers(), "leadData": leadData()}

	first := doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit", body, nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit", body, nil)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	// Calculation is not limited.
	calc := doRequest(t, deps.handler, http.MethodPost, "/api/calculate", map[string]any{"answers": standardAnswers()}, nil)
	assert.Equal(t, http.StatusOK, calc.Code)
}

// ─── GET /api/result/{id} ─────────────────────────────────────────────────────

func TestGetResult_Errors(t *testing.T) {
	tests := []struct {
		name     string
		deps     *testDeps
		id       string
		wantCode int
		wantMsg  string
	}{
		{"invalid id", newTestServer(t), "42", http.StatusBadRequest, "Ungültige Result-ID"},
		{"unknown id", newTestServer(t), uuid.NewString(), http.StatusNotFound, "Ergebnis nicht gefunden"},
		{"storage failure", newTestServer(t, withRepo(failingRepo{Memory: store.NewMemory(), err: errors.New("timeout")})),
			uuid.NewString(), http.StatusInternalServerError, "Fehler beim Abrufen des Ergebnisses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, tt.deps.handler, http.MethodGet, "/api/result/"+tt.id, nil, nil)
			require.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantMsg, decodeEnvelope(t, rr).Error)
		})
	}
}

// ─── EXPERTO ──────────────────────────────────────────────────────────────────

func TestExpertCalculate(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/experto/calculate",
		map[string]any{"answers": expertAnswers()}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res scoring.ExpertValuationResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Result, &res))
	assert.Equal(t, 6.0, res.IndustryMultiplier)
	assert.Equal(t, int64(180000), res.NormalizedEBIT)
	assert.Equal(t, int64(1080000), res.BaseValue)
	assert.Equal(t, int64(1050000), res.CompanyValue)
}

func TestExpertCalculate_Rejections(t *testing.T) {
	short := expertAnswers()
	short["lastThreeYearsProfit"] = []float64{1, 2}
	blank := expertAnswers()
	blank["industry"] = "  "
	missing := expertAnswers()
	delete(missing, "qualityFactors")

	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"no answers", map[string]any{}, "Keine Antworten übermittelt"},
		{"two profits", map[string]any{"answers": short}, "Ungültige oder unvollständige Daten"},
		{"blank industry", map[string]any{"answers": blank}, "Ungültige oder unvollständige Daten"},
		{"no quality factors", map[string]any{"answers": missing}, "Ungültige oder unvollständige Daten"},
	}
	deps := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodPost, "/api/experto/calculate", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantMsg, decodeEnvelope(t, rr).Error)
		})
	}
}

func TestExpertSubmit_CreatesHotLead(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/experto/submit",
		map[string]any{"answers": expertAnswers(), "leadData": leadData()}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res store.ExpertResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Result, &res))
	assert.Equal(t, int64(1050000), res.CompanyValue)
	assert.Equal(t, float64(1000000), res.YearlyRevenue)

	leads, _ := deps.memory.ListLeads(context.Background(), store.ListLeadsParams{})
	require.Len(t, leads, 1)
	assert.Equal(t, scoring.SegmentHot, leads[0].Segment)
	assert.Equal(t, store.CalculatorExpert, leads[0].CalculatorType)
	assert.Equal(t, res.ID, leads[0].ExpertResultID.UUID)
	assert.Len(t, deps.worker.enqueued, 1)

	get := doRequest(t, deps.handler, http.MethodGet, "/api/experto/result/"+res.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, get.Code)

	missing := doRequest(t, deps.handler, http.MethodGet, "/api/experto/result/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

// ─── ADMIN ────────────────────────────────────────────────────────────────────

const adminToken = "s3cret"

func adminServer(t *testing.T) *testDeps {
	return newTestServer(t, withConfig(func(c *api.Config) { c.AdminToken = adminToken }))
}

func TestAdmin_NotMountedWithoutToken(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodGet, "/api/admin/leads", nil, map[string]string{"X-Admin-Token": ""})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdmin_Auth(t *testing.T) {
	deps := adminServer(t)

	rr := doRequest(t, deps.handler, http.MethodGet, "/api/admin/leads", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, deps.handler, http.MethodGet, "/api/admin/leads", nil, map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdmin_ListAndMarkContacted(t *testing.T) {
	deps := adminServer(t)
	auth := map[string]string{"X-Admin-Token": adminToken}

	doRequest(t, deps.handler, http.MethodPost, "/api/questionnaire/submit",
		map[string]any{"answers": standardAnswers(), "leadData": leadData()}, nil)
	doRequest(t, deps.handler, http.MethodPost, "/api/experto/submit",
		map[string]any{"answers": expertAnswers(), "leadData": leadData()}, nil)

	rr := doRequest(t, deps.handler, http.MethodGet, "/api/admin/leads?segment=hot", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var hot []store.Lead
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Result, &hot))
	require.Len(t, hot, 1)
	assert.Equal(t, store.CalculatorExpert, hot[0].CalculatorType)

	rr = doRequest(t, deps.handler, http.MethodPost, "/api/admin/leads/"+hot[0].ID.String()+"/contacted", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, deps.handler, http.MethodGet, "/api/admin/leads?contacted=false", nil, auth)
	var open []store.Lead
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Result, &open))
	require.Len(t, open, 1)
	assert.Equal(t, scoring.SegmentWarm, open[0].Segment)

	rr = doRequest(t, deps.handler, http.MethodGet, "/api/admin/leads/"+hot[0].ID.String(), nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	var got store.Lead
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Result, &got))
	assert.True(t, got.Contacted)
}

func TestAdmin_BadRequests(t *testing.T) {
	deps := adminServer(t)
	auth := map[string]string{"X-Admin-Token": adminToken}

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/admin/leads?segment=lukewarm", http.StatusBadRequest},
		{http.MethodGet, "/api/admin/leads?contacted=maybe", http.StatusBadRequest},
		{http.MethodGet, "/api/admin/leads?limit=-1", http.StatusBadRequest},
		{http.MethodGet, "/api/admin/leads/xyz", http.StatusBadRequest},
		{http.MethodGet, "/api/admin/leads/" + uuid.NewString(), http.StatusNotFound},
		{http.MethodPost, "/api/admin/leads/" + uuid.NewString() + "/contacted", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := doRequest(t, deps.handler, tt.method, tt.path, nil, auth)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}
