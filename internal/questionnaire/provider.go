// Package questionnaire loads the two JSON configuration documents the
// calculators run on.
package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

// ErrConfigurationUnavailable is returned when a document cannot be read,
// parsed, or validated.
var ErrConfigurationUnavailable = errors.New("questionnaire: configuration unavailable")

// Provider hands out parsed documents. Implementations must be safe for
// concurrent use.
type Provider interface {
	Standard(ctx context.Context) (*scoring.Document, error)
	Expert(ctx context.Context) (*scoring.ExpertDocument, error)
}

// ─── FILE PROVIDER ────────────────────────────────────────────────────────────

// FileProvider re-reads both files on every call, so edits to the JSON take
// effect without a restart.
type FileProvider struct {
	StandardPath string
	ExpertPath   string
	log          *slog.Logger
}

// NewFileProvider returns a FileProvider for the two paths.
func NewFileProvider(standardPath, expertPath string, log *slog.Logger) *FileProvider {
	return &FileProvider{StandardPath: standardPath, ExpertPath: expertPath, log: log}
}

func (p *FileProvider) Standard(ctx context.Context) (*scoring.Document, error) {
	raw, err := p.read(ctx, p.StandardPath)
	if err != nil {
		return nil, err
	}
	doc, err := scoring.ParseDocument(raw)
	if err != nil {
		p.log.Error("questionnaire: invalid document", "path", p.StandardPath, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigurationUnavailable, p.StandardPath, err)
	}
	return doc, nil
}

func (p *FileProvider) Expert(ctx context.Context) (*scoring.ExpertDocument, error) {
	raw, err := p.read(ctx, p.ExpertPath)
	if err != nil {
		return nil, err
	}
	doc, err := scoring.ParseExpertDocument(raw)
	if err != nil {
		p.log.Error("questionnaire: invalid document", "path", p.ExpertPath, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigurationUnavailable, p.ExpertPath, err)
	}
	return doc, nil
}

func (p *FileProvider) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		p.log.Error("questionnaire: read failed", "path", path, "err", err)
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfigurationUnavailable, path, err)
	}
	return raw, nil
}

// ─── CACHED PROVIDER ──────────────────────────────────────────────────────────

// CachedProvider memoizes the first successful load of each document.
// Failures are not cached; the next call retries.
type CachedProvider struct {
	next Provider

	mu       sync.Mutex
	standard *scoring.Document
	expert   *scoring.ExpertDocument
}

// NewCachedProvider wraps next.
func NewCachedProvider(next Provider) *CachedProvider {
	return &CachedProvider{next: next}
}

func (c *CachedProvider) Standard(ctx context.Context) (*scoring.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.standard != nil {
		return c.standard, nil
	}
	doc, err := c.next.Standard(ctx)
	if err != nil {
		return nil, err
	}
	c.standard = doc
	return doc, nil
}

func (c *CachedProvider) Expert(ctx context.Context) (*scoring.ExpertDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expert != nil {
		return c.expert, nil
	}
	doc, err := c.next.Expert(ctx)
	if err != nil {
		return nil, err
	}
	c.expert = doc
	return doc, nil
}

// Preload loads both documents once so a broken deployment fails at start-up
// instead of on the first request.
func Preload(ctx context.Context, p Provider) error {
	if _, err := p.Standard(ctx); err != nil {
		return err
	}
	if _, err := p.Expert(ctx); err != nil {
		return err
	}
	return nil
}
