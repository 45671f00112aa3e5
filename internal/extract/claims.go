package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/karimelghouat/techstack-reality-check/internal/llm"
	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// ClaimExtractor extracts verified claims from document sections. It
// delegates classification to an LLM provider and independently enforces
// the verbatim-quote invariant on every candidate. The extractor holds no
// per-run state, so one instance is safe across concurrent audits.
type ClaimExtractor struct {
	provider llm.Provider
	logOut   io.Writer
}

// Stats reports what happened during extraction for one section. Drops
// are never surfaced as errors, but they must stay observable.
type Stats struct {
	// Rejected counts candidates dropped by the verbatim-quote check
	Rejected int

	// Failed is true when the provider call itself failed. The claim
	// result is empty either way: callers treat "no claims" and "call
	// failed" identically at this layer.
	Failed bool
}

// NewClaimExtractor creates a new claim extractor. logOut receives
// rejection notices; pass io.Discard to silence them.
func NewClaimExtractor(provider llm.Provider, logOut io.Writer) *ClaimExtractor {
	if logOut == nil {
		logOut = io.Discard
	}
	return &ClaimExtractor{
		provider: provider,
		logOut:   logOut,
	}
}

// Extract returns the verified claims for one section. A candidate whose
// quote is not a literal substring of sectionText is discarded, not
// corrected or retried. A provider failure degrades to an empty result.
func (e *ClaimExtractor) Extract(ctx context.Context, sectionText, sectionName string) ([]model.Claim, Stats) {
	var stats Stats

	candidates, err := e.provider.ExtractClaims(ctx, llm.ExtractRequest{
		SectionText: sectionText,
		SectionName: sectionName,
	})
	if err != nil {
		stats.Failed = true
		fmt.Fprintf(e.logOut, "claim extraction failed for section %q: %v\n", sectionName, err)
		return nil, stats
	}

	var verified []model.Claim
	for _, candidate := range candidates {
		// An empty quote trivially satisfies Contains; treat it as unverified
		if candidate.Quote == "" || !strings.Contains(sectionText, candidate.Quote) {
			stats.Rejected++
			fmt.Fprintf(e.logOut, "hallucination detected: discarding claim, quote not found verbatim: %q\n", candidate.Quote)
			continue
		}
		candidate.SourceSection = sectionName
		verified = append(verified, candidate)
	}

	return verified, stats
}
