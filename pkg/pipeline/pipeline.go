package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/chrismah84/ai-competitive-intel/pkg/aggregate"
	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/ledger.go -pkg mocks -skip-ensure -fmt goimports . Ledger
//go:generate moq -out mocks/renderer.go -pkg mocks -skip-ensure -fmt goimports . Renderer

// Fetcher retrieves raw content for a source
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]byte, error)
}

// Extractor turns raw content into posts
type Extractor interface {
	Extract(src domain.Source, raw []byte) ([]domain.Post, error)
}

// Ledger is the durable seen-posts set used for deduplication across runs
type Ledger interface {
	Load(ctx context.Context) (map[domain.PostKey]time.Time, error)
	Add(ctx context.Context, keys []domain.PostKey, firstSeen time.Time) error
}

// Renderer formats the aggregated posts into a report document
type Renderer interface {
	Render(sections []domain.Section, degraded []domain.DegradedSource, generatedAt time.Time) (text, filename string)
}

// Pipeline runs one scrape-normalize-deduplicate-render pass over the
// configured sources. Sources are processed sequentially in configuration
// order, which keeps the per-host politeness guarantee trivially correct.
type Pipeline struct {
	sources   []domain.Source
	fetcher   Fetcher
	extractor Extractor
	ledger    Ledger
	renderer  Renderer

	now func() time.Time // injectable for tests
}

// New creates a pipeline over the given sources and collaborators
func New(sources []domain.Source, fetcher Fetcher, extractor Extractor, ledger Ledger, renderer Renderer) *Pipeline {
	return &Pipeline{
		sources:   sources,
		fetcher:   fetcher,
		extractor: extractor,
		ledger:    ledger,
		renderer:  renderer,
		now:       time.Now,
	}
}

// Run executes a single pipeline pass. Per-source failures degrade coverage
// and show up in the report's issues section; a ledger failure is fatal and
// aborts the run without producing a report, dedup correctness cannot be
// guaranteed otherwise. The ledger is read once at the start and appended
// once at the end, so an interrupted run never leaves it half updated.
func (p *Pipeline) Run(ctx context.Context) (*domain.Report, error) {
	started := p.now()
	lgr.Printf("[INFO] starting run over %d sources", len(p.sources))

	seen, err := p.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	lgr.Printf("[DEBUG] ledger holds %d seen posts", len(seen))

	results := make([]aggregate.Result, 0, len(p.sources))
	for _, src := range p.sources {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("run interrupted: %w", ctx.Err())
		}
		results = append(results, p.collect(ctx, src))
	}

	sections, newKeys, degraded := aggregate.Aggregate(results, seen)
	for _, d := range degraded {
		lgr.Printf("[WARN] source %s degraded: %s", d.Source, d.Reason)
	}

	generatedAt := p.now()
	text, filename := p.renderer.Render(sections, degraded, generatedAt)

	if err := p.ledger.Add(ctx, newKeys, generatedAt); err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}

	report := &domain.Report{
		Text:        text,
		Filename:    filename,
		Sections:    sections,
		Degraded:    degraded,
		GeneratedAt: generatedAt,
	}
	lgr.Printf("[INFO] run completed in %v: %d new posts, %d degraded sources",
		p.now().Sub(started).Round(time.Millisecond), report.NewPostCount(), len(degraded))

	return report, nil
}

// collect fetches and extracts one source, containing its failures
func (p *Pipeline) collect(ctx context.Context, src domain.Source) aggregate.Result {
	lgr.Printf("[DEBUG] scraping %s (%s)", src.Name, src.URL)

	raw, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		lgr.Printf("[WARN] fetch failed for %s: %v", src.Name, err)
		return aggregate.Result{Source: src, Err: err}
	}

	posts, err := p.extractor.Extract(src, raw)
	if err != nil {
		lgr.Printf("[WARN] extraction failed for %s: %v", src.Name, err)
		return aggregate.Result{Source: src, Err: err}
	}

	return aggregate.Result{Source: src, Posts: posts}
}
