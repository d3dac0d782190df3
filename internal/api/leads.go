package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
)

// ─── GET /api/admin/leads ─────────────────────────────────────────────────────

// handleListLeads lists leads newest first. Query parameters: segment,
// contacted (true|false), limit, offset.
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	params, err := parseListLeads(r)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	leads, err := s.repo.ListLeads(r.Context(), params)
	if err != nil {
		s.respondInternalErr(w, r, "Fehler beim Abrufen der Leads", fmt.Errorf("list leads: %w", err))
		return
	}
	respondOK(w, leads)
}

func parseListLeads(r *http.Request) (store.ListLeadsParams, error) {
	q := r.URL.Query()
	var p store.ListLeadsParams

	if v := q.Get("segment"); v != "" {
		seg := scoring.Segment(v)
		if !seg.Valid() {
			return p, fmt.Errorf("invalid segment %q", v)
		}
		p.Segment = seg
	}
	if v := q.Get("contacted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("invalid contacted %q", v)
		}
		p.Contacted = &b
	}
	for name, dst := range map[string]*int{"limit": &p.Limit, "offset": &p.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, fmt.Errorf("invalid %s %q", name, v)
		}
		*dst = n
	}
	return p, nil
}

// ─── GET /api/admin/leads/{id} ────────────────────────────────────────────────

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Ungültige Lead-ID")
	if !ok {
		return
	}

	lead, err := s.repo.GetLead(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "Lead nicht gefunden")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, "Fehler beim Abrufen des Leads", fmt.Errorf("get lead: %w", err))
		return
	}
	respondOK(w, lead)
}

// ─── POST /api/admin/leads/{id}/contacted ─────────────────────────────────────

func (s *Server) handleMarkContacted(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Ungültige Lead-ID")
	if !ok {
		return
	}

	lead, err := s.repo.MarkLeadContacted(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "Lead nicht gefunden")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, "Fehler beim Speichern der Daten", fmt.Errorf("mark contacted: %w", err))
		return
	}
	s.logger.Info("lead marked contacted", "lead_id", id, logField(r))
	respondOK(w, lead)
}
