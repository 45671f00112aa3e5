package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/karimelghouat/techstack-reality-check/internal/cache"
	"github.com/karimelghouat/techstack-reality-check/internal/evidence"
	"github.com/karimelghouat/techstack-reality-check/internal/extract"
	"github.com/karimelghouat/techstack-reality-check/internal/github"
	"github.com/karimelghouat/techstack-reality-check/internal/judge"
	"github.com/karimelghouat/techstack-reality-check/internal/llm"
	"github.com/karimelghouat/techstack-reality-check/internal/model"
	"github.com/karimelghouat/techstack-reality-check/internal/segment"
	"github.com/karimelghouat/techstack-reality-check/internal/worker"
)

// ToolVersion is stamped into report metadata
const ToolVersion = "v0.1.0"

// ErrNoClaims signals that no verified claims survived extraction across
// all audited sections. It is not a failure: callers stop gracefully and
// must not conflate it with a broken run.
var ErrNoClaims = errors.New("no verified claims extracted")

// Pipeline orchestrates the complete audit: ingestion, segmentation,
// claim extraction, and judgment. Sections and claims are processed
// sequentially in document order.
type Pipeline struct {
	client     *github.Client
	segmenter  *segment.Segmenter
	normalizer *evidence.Normalizer
	extractor  *extract.ClaimExtractor
	aggregator *judge.Aggregator
	cfg        *model.Config
	logOut     io.Writer
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	return NewPipelineWithProvider(cfg, provider), nil
}

// NewPipelineWithProvider creates a pipeline with an explicit provider.
// Tests use this with the deterministic stub.
func NewPipelineWithProvider(cfg *model.Config, provider llm.Provider) *Pipeline {
	logOut := io.Discard
	if cfg.Output.Verbose {
		logOut = os.Stderr
	}

	var opts []github.Option
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = defaultCacheDir()
		}
		opts = append(opts, github.WithCache(
			cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL),
			cfg.Cache.TTL,
		))
	}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		opts = append(opts, github.WithLimiter(
			worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		))
	}

	return &Pipeline{
		client:     github.NewClient(cfg.GitHub, opts...),
		segmenter:  segment.NewSegmenter(),
		normalizer: evidence.NewNormalizer(),
		extractor:  extract.NewClaimExtractor(provider, logOut),
		aggregator: judge.NewAggregator(provider),
		cfg:        cfg,
		logOut:     logOut,
	}
}

// Audit runs the full reality check for one repository
func (p *Pipeline) Audit(ctx context.Context, repo, useCase string) (*model.Report, error) {
	// 1. Ingestion
	readme, err := p.client.FetchReadme(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	rawIssues, err := p.client.FetchOpenIssues(ctx, repo, p.cfg.GitHub.MaxIssues)
	if err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	now := time.Now().UTC()
	issues, err := p.normalizer.NormalizeAll(rawIssues, now)
	if err != nil {
		return nil, fmt.Errorf("normalize evidence: %w", err)
	}

	fmt.Fprintf(p.logOut, "fetched README (SHA %.7s) and %d issues for %s\n", readme.SHA, len(issues), repo)

	// 2. Segmentation and claim extraction
	sections := p.segmenter.Segment(readme.Content)
	targets := segment.TargetSections(sections)

	var claims []model.Claim
	rejected := 0
	failed := 0
	for _, key := range targets {
		fmt.Fprintf(p.logOut, "analyzing section: %s\n", key)
		sectionClaims, stats := p.extractor.Extract(ctx, sections.Sections[key], key)
		claims = append(claims, sectionClaims...)
		rejected += stats.Rejected
		if stats.Failed {
			failed++
			fmt.Fprintf(os.Stderr, "warning: claim extraction failed for section %q\n", key)
		}
	}

	if len(claims) == 0 {
		// "Nothing found" and "something broke" are different outcomes:
		// a clean no-claims stop requires that no extraction call failed.
		if failed > 0 {
			return nil, fmt.Errorf("%s: claim extraction failed for %d of %d sections", repo, failed, len(targets))
		}
		return nil, fmt.Errorf("%s: %w", repo, ErrNoClaims)
	}
	fmt.Fprintf(p.logOut, "extracted %d verified claims (%d rejected)\n", len(claims), rejected)

	// 3. Judgment. The base penalty is claim-independent: computed once
	// and shared read-only across all claims in this run.
	basePenalty := p.aggregator.BasePenalty(issues)

	report := &model.Report{
		Meta: model.ReportMeta{
			ToolVersion:     ToolVersion,
			Repo:            repo,
			UseCase:         useCase,
			Timestamp:       now,
			ReadmeSHA:       readme.SHA,
			IssuesAnalyzed:  len(issues),
			SectionsAudited: targets,
		},
	}

	for _, claim := range claims {
		fmt.Fprintf(p.logOut, "judging claim: %.50q\n", claim.Text)
		judgment, err := p.aggregator.Judge(ctx, claim, issues, useCase, basePenalty)
		if err != nil {
			// Fatal for this claim's judgment; surfaced to the caller
			return nil, fmt.Errorf("judgment: %w", err)
		}
		report.Results = append(report.Results, *judgment)
	}

	report.Meta.RejectedClaims = rejected
	report.Meta.FailedSections = failed
	report.Summarize()

	return report, nil
}

// defaultCacheDir picks a per-user cache location
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".realitycheck-cache"
	}
	return home + "/.realitycheck/cache"
}
