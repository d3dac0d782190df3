package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

// Memory is a Repository held in process memory. Data is lost on restart.
type Memory struct {
	mu        sync.RWMutex
	now       func() time.Time
	results   map[uuid.UUID]StandardResult
	experts   map[uuid.UUID]ExpertResult
	leads     map[uuid.UUID]Lead
	leadOrder []uuid.UUID // insertion order
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		now:     time.Now,
		results: make(map[uuid.UUID]StandardResult),
		experts: make(map[uuid.UUID]ExpertResult),
		leads:   make(map[uuid.UUID]Lead),
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) SaveStandardSubmission(ctx context.Context, sub StandardSubmission) (StandardResult, Lead, error) {
	if err := ctx.Err(); err != nil {
		return StandardResult{}, Lead{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	res := StandardResult{
		ID:           uuid.New(),
		CreatedAt:    now,
		Industry:     orUnknown(sub.Industry),
		RevenueModel: orUnknown(sub.RevenueModel),
		ScoreResult:  sub.Result,
		Answers:      slices.Clone(sub.Answers),
	}
	res.MotivationTags = slices.Clone(sub.Result.MotivationTags)

	lead := newLead(sub.Contact, sub.Result.Segment, CalculatorStandard)
	lead.CreatedAt = now
	lead.ResultID = uuid.NullUUID{UUID: res.ID, Valid: true}

	m.results[res.ID] = res
	m.insertLead(lead)
	return res, lead, nil
}

func (m *Memory) SaveExpertSubmission(ctx context.Context, sub ExpertSubmission) (ExpertResult, Lead, error) {
	if err := ctx.Err(); err != nil {
		return ExpertResult{}, Lead{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	res := ExpertResult{
		ID:                    uuid.New(),
		CreatedAt:             now,
		ExpertValuationInput:  sub.Input,
		ExpertValuationResult: sub.Result,
		Answers:               slices.Clone(sub.Answers),
	}

	lead := newLead(sub.Contact, scoring.SegmentHot, CalculatorExpert)
	lead.CreatedAt = now
	lead.ExpertResultID = uuid.NullUUID{UUID: res.ID, Valid: true}

	m.experts[res.ID] = res
	m.insertLead(lead)
	return res, lead, nil
}

func (m *Memory) insertLead(l Lead) {
	m.leads[l.ID] = l
	m.leadOrder = append(m.leadOrder, l.ID)
}

func (m *Memory) GetResult(_ context.Context, id uuid.UUID) (StandardResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return StandardResult{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) GetExpertResult(_ context.Context, id uuid.UUID) (ExpertResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.experts[id]
	if !ok {
		return ExpertResult{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) GetLead(_ context.Context, id uuid.UUID) (Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

func (m *Memory) ListLeads(_ context.Context, p ListLeadsParams) ([]Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Lead{}
	skipped := 0
	for i := len(m.leadOrder) - 1; i >= 0 && len(out) < p.limit(); i-- {
		l := m.leads[m.leadOrder[i]]
		if !p.matches(l) {
			continue
		}
		if skipped < p.Offset {
			skipped++
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *Memory) MarkLeadContacted(_ context.Context, id uuid.UUID) (Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	l.Contacted = true
	m.leads[id] = l
	return l, nil
}

func (m *Memory) ListUnnotifiedLeads(_ context.Context, limit int) ([]Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Lead{}
	for _, id := range m.leadOrder {
		if limit > 0 && len(out) >= limit {
			break
		}
		if l := m.leads[id]; l.NotifiedAt == nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Memory) MarkLeadNotified(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return ErrNotFound
	}
	if l.NotifiedAt == nil {
		t := m.now().UTC()
		l.NotifiedAt = &t
		m.leads[id] = l
	}
	return nil
}
