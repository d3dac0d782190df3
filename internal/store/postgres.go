package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

//go:embed schema.sql
var schemaSQL string

// Postgres is the production Repository.
type Postgres struct {
	db *sqlx.DB
}

var _ Repository = (*Postgres)(nil)

// Open opens and verifies a connection pool for dsn.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return db, nil
}

// NewPostgres wraps an open pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies schema.sql.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Ping checks the pool is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// ─── TRANSACTIONS ────────────────────────────────────────────────────────────

// txFunc receives a transaction. Returning a non-nil error causes withTx to
// roll back automatically.
type txFunc func(ctx context.Context, tx *sqlx.Tx) error

// withTx begins a serializable transaction, passes it to fn, and commits on
// success or rolls back on any error (including panics).
func (p *Postgres) withTx(ctx context.Context, fn txFunc) error {
	tx, err := p.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	// Roll back on panic so the connection is never left in a broken state.
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: fn error: %w; rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

// ─── ROWS ────────────────────────────────────────────────────────────────────

type standardRow struct {
	ID                uuid.UUID             `db:"id"`
	CreatedAt         time.Time             `db:"created_at"`
	Industry          string                `db:"industry"`
	RevenueModel      string                `db:"revenue_model"`
	ReadinessScore    int                   `db:"readiness_score"`
	ScoreLabel        string                `db:"score_label"`
	ScoreComment      string                `db:"score_comment"`
	ValuationLow      int64                 `db:"valuation_low"`
	ValuationHigh     int64                 `db:"valuation_high"`
	PotentialIncrease int64                 `db:"potential_increase"`
	Urgency           string                `db:"urgency"`
	Segment           string                `db:"segment"`
	MotivationTags    pq.StringArray        `db:"motivation_tags"`
	Answers           pqtype.NullRawMessage `db:"answers"`
}

func (r standardRow) toResult() StandardResult {
	tags := []string(r.MotivationTags)
	if tags == nil {
		tags = []string{}
	}
	return StandardResult{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Industry:     r.Industry,
		RevenueModel: r.RevenueModel,
		ScoreResult: scoring.ScoreResult{
			ReadinessScore:    r.ReadinessScore,
			ScoreLabel:        r.ScoreLabel,
			ScoreComment:      r.ScoreComment,
			ValuationLow:      r.ValuationLow,
			ValuationHigh:     r.ValuationHigh,
			PotentialIncrease: r.PotentialIncrease,
			Urgency:           r.Urgency,
			Segment:           scoring.Segment(r.Segment),
			MotivationTags:    tags,
		},
		Answers: rawOrNil(r.Answers),
	}
}

type expertRow struct {
	ID                   uuid.UUID             `db:"id"`
	CreatedAt            time.Time             `db:"created_at"`
	Industry             string                `db:"industry"`
	YearlyRevenue        float64               `db:"yearly_revenue"`
	LastThreeYearsProfit pq.Float64Array       `db:"last_three_years_profit"`
	ExecutiveSalary      float64               `db:"executive_salary"`
	Debt                 float64               `db:"debt"`
	NonOperationalAssets float64               `db:"non_operational_assets"`
	QualityFactors       pqtype.NullRawMessage `db:"quality_factors"`
	CompanyValue         int64                 `db:"company_value"`
	IndustryMultiplier   float64               `db:"industry_multiplier"`
	QualityAdjustment    float64               `db:"quality_adjustment"`
	AdjustedMultiplier   float64               `db:"adjusted_multiplier"`
	BaseValue            int64                 `db:"base_value"`
	NormalizedEBIT       int64                 `db:"normalized_ebit"`
	AvgProfit            int64                 `db:"avg_profit"`
	NetDebtEffect        int64                 `db:"net_debt_effect"`
	AdjustedValue        float64               `db:"adjusted_value"`
	EnterpriseValue      float64               `db:"enterprise_value"`
	Answers              pqtype.NullRawMessage `db:"answers"`
}

func (r expertRow) toResult() (ExpertResult, error) {
	factors := map[string]float64{}
	if r.QualityFactors.Valid {
		if err := json.Unmarshal(r.QualityFactors.RawMessage, &factors); err != nil {
			return ExpertResult{}, fmt.Errorf("store: decode quality_factors: %w", err)
		}
	}
	return ExpertResult{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		ExpertValuationInput: scoring.ExpertValuationInput{
			Industry:             r.Industry,
			YearlyRevenue:        r.YearlyRevenue,
			LastThreeYearsProfit: []float64(r.LastThreeYearsProfit),
			ExecutiveSalary:      r.ExecutiveSalary,
			Debt:                 r.Debt,
			NonOperationalAssets: r.NonOperationalAssets,
			QualityFactors:       factors,
		},
		ExpertValuationResult: scoring.ExpertValuationResult{
			CompanyValue:       r.CompanyValue,
			IndustryMultiplier: r.IndustryMultiplier,
			QualityAdjustment:  r.QualityAdjustment,
			AdjustedMultiplier: r.AdjustedMultiplier,
			BaseValue:          r.BaseValue,
			NormalizedEBIT:     r.NormalizedEBIT,
			AvgProfit:          r.AvgProfit,
			NetDebtEffect:      r.NetDebtEffect,
			AdjustedValue:      r.AdjustedValue,
			EnterpriseValue:    r.EnterpriseValue,
		},
		Answers: rawOrNil(r.Answers),
	}, nil
}

func nullRaw(b json.RawMessage) pqtype.NullRawMessage {
	return pqtype.NullRawMessage{RawMessage: b, Valid: len(b) > 0}
}

func rawOrNil(n pqtype.NullRawMessage) json.RawMessage {
	if !n.Valid {
		return nil
	}
	return n.RawMessage
}

// ─── QUERIES ─────────────────────────────────────────────────────────────────

const standardColumns = `id, created_at, industry, revenue_model, readiness_score, score_label,
	score_comment, valuation_low, valuation_high, potential_increase, urgency, segment,
	motivation_tags, answers`

const expertColumns = `id, created_at, industry, yearly_revenue, last_three_years_profit,
	executive_salary, debt, non_operational_assets, quality_factors, company_value,
	industry_multiplier, quality_adjustment, adjusted_multiplier, base_value, normalized_ebit,
	avg_profit, net_debt_effect, adjusted_value, enterprise_value, answers`

const leadColumns = `id, created_at, first_name, last_name, email, phone, company_website,
	segment, calculator_type, result_id, experto_result_id, contacted, notified_at`

const insertStandardResult = `INSERT INTO exit_calculator_results (
	id, industry, revenue_model, readiness_score, score_label, score_comment,
	valuation_low, valuation_high, potential_increase, urgency, segment,
	motivation_tags, answers
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING created_at`

const insertExpertResult = `INSERT INTO experto_calculator_results (
	id, industry, yearly_revenue, last_three_years_profit, executive_salary, debt,
	non_operational_assets, quality_factors, company_value, industry_multiplier,
	quality_adjustment, adjusted_multiplier, base_value, normalized_ebit, avg_profit,
	net_debt_effect, adjusted_value, enterprise_value, answers
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
RETURNING created_at`

const insertLead = `INSERT INTO leads (
	id, first_name, last_name, email, phone, company_website, segment,
	calculator_type, result_id, experto_result_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at`

// ─── WRITES ──────────────────────────────────────────────────────────────────

func (p *Postgres) SaveStandardSubmission(ctx context.Context, sub StandardSubmission) (StandardResult, Lead, error) {
	res := StandardResult{
		ID:           uuid.New(),
		Industry:     orUnknown(sub.Industry),
		RevenueModel: orUnknown(sub.RevenueModel),
		ScoreResult:  sub.Result,
		Answers:      sub.Answers,
	}
	lead := newLead(sub.Contact, sub.Result.Segment, CalculatorStandard)
	lead.ResultID = uuid.NullUUID{UUID: res.ID, Valid: true}

	r := sub.Result
	tags := r.MotivationTags
	if tags == nil {
		tags = []string{}
	}
	err := p.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &res.CreatedAt, insertStandardResult,
			res.ID, res.Industry, res.RevenueModel, r.ReadinessScore, r.ScoreLabel, r.ScoreComment,
			r.ValuationLow, r.ValuationHigh, r.PotentialIncrease, r.Urgency, string(r.Segment),
			pq.Array(tags), nullRaw(sub.Answers),
		)
		if err != nil {
			return fmt.Errorf("SaveStandardSubmission: insert result: %w", err)
		}
		if err := createLead(ctx, tx, &lead); err != nil {
			return fmt.Errorf("SaveStandardSubmission: %w", err)
		}
		return nil
	})
	if err != nil {
		return StandardResult{}, Lead{}, err
	}
	return res, lead, nil
}

func (p *Postgres) SaveExpertSubmission(ctx context.Context, sub ExpertSubmission) (ExpertResult, Lead, error) {
	factors, err := json.Marshal(sub.Input.QualityFactors)
	if err != nil {
		return ExpertResult{}, Lead{}, fmt.Errorf("SaveExpertSubmission: encode quality factors: %w", err)
	}

	res := ExpertResult{
		ID:                    uuid.New(),
		ExpertValuationInput:  sub.Input,
		ExpertValuationResult: sub.Result,
		Answers:               sub.Answers,
	}
	lead := newLead(sub.Contact, scoring.SegmentHot, CalculatorExpert)
	lead.ExpertResultID = uuid.NullUUID{UUID: res.ID, Valid: true}

	in, r := sub.Input, sub.Result
	err = p.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &res.CreatedAt, insertExpertResult,
			res.ID, in.Industry, in.YearlyRevenue, pq.Array(in.LastThreeYearsProfit), in.ExecutiveSalary,
			in.Debt, in.NonOperationalAssets, nullRaw(factors), r.CompanyValue, r.IndustryMultiplier,
			r.QualityAdjustment, r.AdjustedMultiplier, r.BaseValue, r.NormalizedEBIT, r.AvgProfit,
			r.NetDebtEffect, r.AdjustedValue, r.EnterpriseValue, nullRaw(sub.Answers),
		)
		if err != nil {
			return fmt.Errorf("SaveExpertSubmission: insert result: %w", err)
		}
		if err := createLead(ctx, tx, &lead); err != nil {
			return fmt.Errorf("SaveExpertSubmission: %w", err)
		}
		return nil
	})
	if err != nil {
		return ExpertResult{}, Lead{}, err
	}
	return res, lead, nil
}

func createLead(ctx context.Context, tx *sqlx.Tx, l *Lead) error {
	err := tx.GetContext(ctx, &l.CreatedAt, insertLead,
		l.ID, l.FirstName, l.LastName, l.Email, l.Phone, l.CompanyWebsite,
		string(l.Segment), string(l.CalculatorType), l.ResultID, l.ExpertResultID,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// ─── READS ───────────────────────────────────────────────────────────────────

func (p *Postgres) GetResult(ctx context.Context, id uuid.UUID) (StandardResult, error) {
	var row standardRow
	err := p.db.GetContext(ctx, &row, `SELECT `+standardColumns+` FROM exit_calculator_results WHERE id = $1`, id)
	if err != nil {
		return StandardResult{}, notFound("GetResult", err)
	}
	return row.toResult(), nil
}

func (p *Postgres) GetExpertResult(ctx context.Context, id uuid.UUID) (ExpertResult, error) {
	var row expertRow
	err := p.db.GetContext(ctx, &row, `SELECT `+expertColumns+` FROM experto_calculator_results WHERE id = $1`, id)
	if err != nil {
		return ExpertResult{}, notFound("GetExpertResult", err)
	}
	return row.toResult()
}

func (p *Postgres) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	var l Lead
	if err := p.db.GetContext(ctx, &l, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id); err != nil {
		return Lead{}, notFound("GetLead", err)
	}
	return l, nil
}

func (p *Postgres) ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, error) {
	var (
		conds []string
		args  []any
	)
	if params.Segment != "" {
		args = append(args, string(params.Segment))
		conds = append(conds, fmt.Sprintf("segment = $%d", len(args)))
	}
	if params.Contacted != nil {
		args = append(args, *params.Contacted)
		conds = append(conds, fmt.Sprintf("contacted = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, params.limit(), max(params.Offset, 0))
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	leads := []Lead{}
	if err := p.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("ListLeads: %w", err)
	}
	return leads, nil
}

func (p *Postgres) MarkLeadContacted(ctx context.Context, id uuid.UUID) (Lead, error) {
	var l Lead
	err := p.db.GetContext(ctx, &l, `UPDATE leads SET contacted = true WHERE id = $1 RETURNING `+leadColumns, id)
	if err != nil {
		return Lead{}, notFound("MarkLeadContacted", err)
	}
	return l, nil
}

func (p *Postgres) ListUnnotifiedLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	leads := []Lead{}
	err := p.db.SelectContext(ctx, &leads,
		`SELECT `+leadColumns+` FROM leads WHERE notified_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListUnnotifiedLeads: %w", err)
	}
	return leads, nil
}

func (p *Postgres) MarkLeadNotified(ctx context.Context, id uuid.UUID) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE leads SET notified_at = COALESCE(notified_at, now()) WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("MarkLeadNotified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkLeadNotified: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
