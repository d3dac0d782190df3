package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nyashahama/exit-valuation-backend/internal/metrics"
	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
)

const msgInvalidExpertInput = "Ungültige oder unvollständige Daten"

// ─── GET /api/experto/questionnaire ───────────────────────────────────────────

func (s *Server) handleGetExpertQuestionnaire(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Expert(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, msgConfigUnavailable, err)
		return
	}
	respondRaw(w, doc.Raw())
}

// ─── POST /api/experto/calculate ──────────────────────────────────────────────

func (s *Server) handleExpertCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !decode(w, r, &req) {
		return
	}

	_, result, ok := s.valueExpert(w, r, req.Answers)
	if !ok {
		return
	}
	respondOK(w, result)
}

// valueExpert validates the expert payload and computes the company value.
// On failure it writes the response and returns ok=false.
func (s *Server) valueExpert(w http.ResponseWriter, r *http.Request, raw json.RawMessage) (scoring.ExpertValuationInput, scoring.ExpertValuationResult, bool) {
	if isAbsent(raw) {
		metrics.Calculations.WithLabelValues(calculatorLabelExpert, metrics.OutcomeRejected).Inc()
		respondErr(w, http.StatusBadRequest, msgNoAnswers)
		return scoring.ExpertValuationInput{}, scoring.ExpertValuationResult{}, false
	}

	in, err := s.validate.ExpertInput(raw)
	if err != nil {
		metrics.Calculations.WithLabelValues(calculatorLabelExpert, metrics.OutcomeRejected).Inc()
		s.logger.Info("experto: invalid input", "error", err, logField(r))
		respondInvalid(w, msgInvalidExpertInput, err)
		return in, scoring.ExpertValuationResult{}, false
	}

	doc, err := s.docs.Expert(r.Context())
	if err != nil {
		metrics.Calculations.WithLabelValues(calculatorLabelExpert, metrics.OutcomeError).Inc()
		s.respondInternalErr(w, r, msgConfigUnavailable, err)
		return in, scoring.ExpertValuationResult{}, false
	}

	result := scoring.ComputeExpertValuation(in, doc)
	metrics.Calculations.WithLabelValues(calculatorLabelExpert, metrics.OutcomeOK).Inc()
	s.logger.Debug("experto: valued",
		"industry", in.Industry,
		"company_value", result.CompanyValue,
		logField(r),
	)
	return in, result, true
}

// ─── POST /api/experto/submit ─────────────────────────────────────────────────

// handleExpertSubmit stores the expert result with a lead. Expert leads are
// always hot.
func (s *Server) handleExpertSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}

	form, err := s.validate.Lead(req.LeadData)
	if err != nil {
		s.logger.Info("experto submit: invalid lead data", "error", err, logField(r))
		respondInvalid(w, msgInvalidContact, err)
		return
	}

	in, result, ok := s.valueExpert(w, r, req.Answers)
	if !ok {
		return
	}

	res, lead, err := s.repo.SaveExpertSubmission(r.Context(), store.ExpertSubmission{
		Input:   in,
		Result:  result,
		Answers: req.Answers,
		Contact: contactFrom(form),
	})
	if err != nil {
		s.respondInternalErr(w, r, msgSaveFailed, fmt.Errorf("save expert submission: %w", err))
		return
	}

	s.leadCaptured(r, lead)
	respondOK(w, res)
}

// ─── GET /api/experto/result/{id} ─────────────────────────────────────────────

func (s *Server) handleGetExpertResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidResultID)
	if !ok {
		return
	}

	res, err := s.repo.GetExpertResult(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, msgResultNotFound)
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, msgResultFetchFailed, fmt.Errorf("get expert result: %w", err))
		return
	}
	respondOK(w, res)
}
