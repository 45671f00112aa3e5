package llm

import (
	"context"
	"strings"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// StubProvider is a deterministic Provider for tests and offline dry runs.
// With no fields set it derives one claim per section (quoting the first
// non-empty line, so the quote always passes verbatim verification) and
// judges every claim unproven. Tests override the fields to script exact
// responses or failures.
type StubProvider struct {
	// Claims, when non-nil, is returned from every ExtractClaims call
	Claims []model.Claim

	// Draft, when non-nil, is returned from every JudgeClaim call
	Draft *DraftJudgment

	// ExtractErr and JudgeErr force the respective call to fail
	ExtractErr error
	JudgeErr   error

	// ExtractCalls and JudgeCalls count invocations
	ExtractCalls int
	JudgeCalls   int
}

// NewStubProvider creates a stub provider with default deterministic behavior
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

// Name returns the provider name
func (p *StubProvider) Name() string {
	return "stub"
}

// IsAvailable always succeeds
func (p *StubProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// ExtractClaims returns the scripted claims, or derives one claim quoting
// the first non-empty line of the section.
func (p *StubProvider) ExtractClaims(ctx context.Context, req ExtractRequest) ([]model.Claim, error) {
	p.ExtractCalls++
	if p.ExtractErr != nil {
		return nil, p.ExtractErr
	}
	if p.Claims != nil {
		return p.Claims, nil
	}

	for _, line := range strings.Split(req.SectionText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return []model.Claim{{
			Text:               "Documentation asserts: " + line,
			Category:           model.CategoryReliability,
			Tone:               model.ToneSuggestive,
			ImpliedCommitments: []string{"the documented behavior holds in practice"},
			SourceSection:      req.SectionName,
			Quote:              line,
		}}, nil
	}
	return nil, nil
}

// JudgeClaim returns the scripted draft, or a deterministic unproven verdict
func (p *StubProvider) JudgeClaim(ctx context.Context, req JudgeRequest) (*DraftJudgment, error) {
	p.JudgeCalls++
	if p.JudgeErr != nil {
		return nil, p.JudgeErr
	}
	if p.Draft != nil {
		return p.Draft, nil
	}
	return &DraftJudgment{
		Verdict:    model.VerdictUnproven,
		Confidence: model.ConfidenceLow,
		Reasoning:  "stub provider: no semantic analysis performed",
	}, nil
}
