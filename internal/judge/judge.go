package judge

import (
	"context"
	"fmt"

	"github.com/karimelghouat/techstack-reality-check/internal/llm"
	"github.com/karimelghouat/techstack-reality-check/internal/model"
	"github.com/karimelghouat/techstack-reality-check/internal/score"
)

// Semantic bonus per verdict. Fixed policy, not model output.
const (
	contradictedBonus = 40
	unprovenBonus     = 10
	supportedBonus    = 0

	// FinalCap bounds the combined penalty score
	FinalCap = 100
)

// Aggregator combines the deterministic rule engine with a semantic
// verdict into one bounded, reproducible judgment per claim.
type Aggregator struct {
	provider llm.Provider
	rules    *score.RuleEngine
}

// NewAggregator creates a new judgment aggregator
func NewAggregator(provider llm.Provider) *Aggregator {
	return &Aggregator{
		provider: provider,
		rules:    score.NewRuleEngine(),
	}
}

// BasePenalty exposes the rule engine's score for the evidence set. It is
// claim-independent: compute it once per run and share it read-only.
func (a *Aggregator) BasePenalty(issues []model.Issue) int {
	return a.rules.BasePenalty(issues)
}

// Judge produces the final judgment for one claim. The provider call is
// fatal for this claim: no local recovery, no retries. claim_text and
// category always come from the caller's claim, never the model's echo.
func (a *Aggregator) Judge(ctx context.Context, claim model.Claim, issues []model.Issue, useCase string, basePenalty int) (*model.Judgment, error) {
	draft, err := a.provider.JudgeClaim(ctx, llm.JudgeRequest{
		Claim:          claim,
		UseCase:        useCase,
		EvidenceDigest: llm.BuildEvidenceDigest(issues),
	})
	if err != nil {
		return nil, fmt.Errorf("semantic verdict for claim %q: %w", claim.Text, err)
	}

	final := basePenalty + SemanticBonus(draft.Verdict)
	if final > FinalCap {
		final = FinalCap
	}

	return &model.Judgment{
		ClaimText:    claim.Text,
		Category:     claim.Category,
		Verdict:      draft.Verdict,
		Confidence:   draft.Confidence,
		Reasoning:    draft.Reasoning,
		EvidenceRefs: draft.EvidenceRefs,
		PenaltyScore: final,
	}, nil
}

// SemanticBonus maps a verdict to its penalty contribution
func SemanticBonus(v model.Verdict) int {
	switch v {
	case model.VerdictContradicted:
		return contradictedBonus
	case model.VerdictUnproven:
		return unprovenBonus
	default:
		return supportedBonus
	}
}
