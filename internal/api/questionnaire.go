package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nyashahama/exit-valuation-backend/internal/email"
	"github.com/nyashahama/exit-valuation-backend/internal/metrics"
	"github.com/nyashahama/exit-valuation-backend/internal/schema"
	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
)

// User-facing messages.
const (
	msgNoAnswers         = "Keine Antworten übermittelt"
	msgInvalidAnswers    = "Ungültige Fragebogenantworten"
	msgNoScorableAnswers = "Keine der Antworten passt zu einer Frage des Fragebogens"
	msgInvalidContact    = "Ungültige Kontaktdaten"
	msgCalculationFailed = "Fehler bei der Berechnung"
	msgSaveFailed        = "Fehler beim Speichern der Daten"
	msgConfigUnavailable = "Could not load questionnaire data"
	msgInvalidResultID   = "Ungültige Result-ID"
	msgResultNotFound    = "Ergebnis nicht gefunden"
	msgResultFetchFailed = "Fehler beim Abrufen des Ergebnisses"
)

// Metric label values.
const (
	calculatorLabelStd    = string(store.CalculatorStandard)
	calculatorLabelExpert = string(store.CalculatorExpert)
)

type calculateRequest struct {
	Answers json.RawMessage `json:"answers"`
}

type submitRequest struct {
	Answers  json.RawMessage `json:"answers"`
	LeadData json.RawMessage `json:"leadData"`
}

// ─── GET /api/questionnaire ───────────────────────────────────────────────────

// handleGetQuestionnaire returns the document exactly as configured; the
// frontend renders its questions from it.
func (s *Server) handleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Standard(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, msgConfigUnavailable, err)
		return
	}
	respondRaw(w, doc.Raw())
}

// ─── POST /api/calculate, /api/questionnaire/calculate ────────────────────────

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !decode(w, r, &req) {
		return
	}

	result, _, _, ok := s.score(w, r, req.Answers)
	if !ok {
		return
	}
	respondOK(w, result)
}

// score validates raw answers and runs the standard calculator. On failure it
// writes the response and returns ok=false.
func (s *Server) score(w http.ResponseWriter, r *http.Request, raw json.RawMessage) (scoring.ScoreResult, scoring.AnswerSet, *scoring.Document, bool) {
	if isAbsent(raw) {
		metrics.Calculations.WithLabelValues(calculatorLabelStd, metrics.OutcomeRejected).Inc()
		respondErr(w, http.StatusBadRequest, msgNoAnswers)
		return scoring.ScoreResult{}, nil, nil, false
	}

	answers, err := s.validate.Answers(raw)
	if err != nil {
		metrics.Calculations.WithLabelValues(calculatorLabelStd, metrics.OutcomeRejected).Inc()
		s.logger.Info("calculate: invalid answers", "error", err, logField(r))
		respondInvalid(w, msgInvalidAnswers, err)
		return scoring.ScoreResult{}, nil, nil, false
	}

	doc, err := s.docs.Standard(r.Context())
	if err != nil {
		metrics.Calculations.WithLabelValues(calculatorLabelStd, metrics.OutcomeError).Inc()
		s.respondInternalErr(w, r, msgConfigUnavailable, err)
		return scoring.ScoreResult{}, nil, nil, false
	}

	result, err := scoring.ComputeReadinessScore(answers, doc)
	switch {
	case errors.Is(err, scoring.ErrNoScorableAnswers):
		metrics.Calculations.WithLabelValues(calculatorLabelStd, metrics.OutcomeRejected).Inc()
		respondErr(w, http.StatusBadRequest, msgNoScorableAnswers)
		return scoring.ScoreResult{}, nil, nil, false
	case err != nil:
		metrics.Calculations.WithLabelValues(calculatorLabelStd, metrics.OutcomeError).Inc()
		s.respondInternalErr(w, r, msgCalculationFailed, err)
		return scoring.ScoreResult{}, nil, nil, false
	}

	metrics.Calculations.WithLabelValues(calculatorLabelStd, metrics.OutcomeOK).Inc()
	metrics.ReadinessScores.Observe(float64(result.ReadinessScore))
	s.logger.Debug("calculate: scored",
		"readiness_score", result.ReadinessScore,
		"segment", result.Segment,
		logField(r),
	)
	return result, answers, doc, true
}

// ─── POST /api/questionnaire/submit ───────────────────────────────────────────

// handleSubmit validates the contact form, scores the answers, stores result
// and lead together, and queues the sales notification.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}

	form, err := s.validate.Lead(req.LeadData)
	if err != nil {
		s.logger.Info("submit: invalid lead data", "error", err, logField(r))
		respondInvalid(w, msgInvalidContact, err)
		return
	}

	result, answers, doc, ok := s.score(w, r, req.Answers)
	if !ok {
		return
	}

	res, lead, err := s.repo.SaveStandardSubmission(r.Context(), store.StandardSubmission{
		Result:       result,
		Industry:     answers[doc.ValuationFields.Industry].Text(),
		RevenueModel: answers[doc.ValuationFields.RevenueModel].Text(),
		Answers:      req.Answers,
		Contact:      contactFrom(form),
	})
	if err != nil {
		s.respondInternalErr(w, r, msgSaveFailed, fmt.Errorf("save standard submission: %w", err))
		return
	}

	s.leadCaptured(r, lead)
	respondOK(w, res)
}

// leadCaptured records and queues a freshly stored lead. Enqueue failures are
// logged only; the worker's poller picks the lead up later.
func (s *Server) leadCaptured(r *http.Request, lead store.Lead) {
	metrics.LeadsCaptured.WithLabelValues(string(lead.CalculatorType), string(lead.Segment)).Inc()
	s.logger.Info("lead saved",
		"lead_id", lead.ID,
		"email", email.MaskEmail(lead.Email),
		"segment", lead.Segment,
		"calculator", lead.CalculatorType,
		logField(r),
	)

	if err := s.worker.Enqueue(r.Context(), lead.ID); err != nil {
		s.logger.Warn("lead notification not queued", "lead_id", lead.ID, "error", err, logField(r))
	}
}

// ─── GET /api/result/{id}, /api/questionnaire/result/{id} ─────────────────────

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidResultID)
	if !ok {
		return
	}

	res, err := s.repo.GetResult(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, msgResultNotFound)
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, msgResultFetchFailed, fmt.Errorf("get result: %w", err))
		return
	}
	respondOK(w, res)
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

// pathID parses the {id} URL parameter. Writes 400 with message on failure.
func pathID(w http.ResponseWriter, r *http.Request, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, message)
		return uuid.Nil, false
	}
	return id, true
}

// respondRaw writes an already-encoded JSON document.
func respondRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func isAbsent(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func contactFrom(f schema.LeadForm) store.Contact {
	return store.Contact{
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		Email:          f.Email,
		Phone:          f.Phone,
		CompanyWebsite: f.CompanyWebsite,
	}
}
