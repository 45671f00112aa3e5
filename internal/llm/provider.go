package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// Provider defines the interface for LLM-backed collaborators.
// Two calls: constrained claim extraction and semantic verdicts.
// Implementations are synchronous; callers wanting timeouts wrap ctx.
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractClaims returns candidate claims for one document section.
	// Candidates are unverified: the caller still enforces the
	// verbatim-quote invariant.
	ExtractClaims(ctx context.Context, req ExtractRequest) ([]model.Claim, error)

	// JudgeClaim returns a draft semantic verdict for one claim against
	// the evidence digest. The caller recomputes the penalty score.
	JudgeClaim(ctx context.Context, req JudgeRequest) (*DraftJudgment, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest is the input for claim extraction
type ExtractRequest struct {
	SectionText string
	SectionName string
}

// JudgeRequest is the input for a semantic verdict
type JudgeRequest struct {
	Claim          model.Claim
	UseCase        string
	EvidenceDigest string
}

// DraftJudgment is the model's semantic verdict before aggregation.
// Penalty scoring is not part of the draft: fixed policy computes it.
type DraftJudgment struct {
	Verdict      model.Verdict    `json:"verdict"`
	Confidence   model.Confidence `json:"confidence"`
	Reasoning    string           `json:"reasoning"`
	EvidenceRefs []string         `json:"evidence_refs"`
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "stub"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests in seconds
	Timeout int

	// MaxTokens limits response length
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}

// extractSystemPrompt constrains the model to verifiable technical claims
// with verbatim quotes. An empty result is explicitly permitted.
const extractSystemPrompt = `You are a senior technical auditor. Your job is to extract specific, verifiable claims from software documentation.
Follow these rules strictly:
1. Only extract claims that are technical promises.
2. Every claim MUST have a 'quote' which is a substring present VERBATIM in the text.
3. Do not paraphrase the quote.
4. If no claims are found, return an empty list.`

// judgeSystemPrompt frames the semantic feasibility check
const judgeSystemPrompt = `You are a senior systems architect performing a technical feasibility check. You are provided with a claim about a software library and a list of open issues. Determine if the issues semantically contradict or invalidate the claim, specifically considering the user's use case.

Verdict definitions:
- 'supported': no issues found that undermine the claim.
- 'contradicted': issues clearly show the claim is false or unreliable in practice.
- 'unproven': some issues exist but don't directly negate the claim, or evidence is weak.

Confidence mapping:
- 'high': direct, clear evidence or total lack of issues.
- 'medium': indirect evidence or mixed signals.
- 'low': speculative connection or very noisy data.`

// buildExtractPrompt constructs the user prompt for claim extraction
func buildExtractPrompt(req ExtractRequest) string {
	return fmt.Sprintf("Extract claims from the following '%s' section:\n\n%s", req.SectionName, req.SectionText)
}

// buildJudgePrompt constructs the user prompt for a semantic verdict
func buildJudgePrompt(req JudgeRequest) string {
	return fmt.Sprintf("Use Case: %s\nClaim: %s\nCategory: %s\n\nOpen Issues:\n%s",
		req.UseCase, req.Claim.Text, req.Claim.Category, req.EvidenceDigest)
}

// digestBodyLimit bounds the per-issue body excerpt in the evidence digest
const digestBodyLimit = 200

// BuildEvidenceDigest renders a bounded textual digest of the evidence set:
// one line per issue with its identifier, title, and truncated body excerpt.
func BuildEvidenceDigest(issues []model.Issue) string {
	if len(issues) == 0 {
		return "(no open issues)"
	}
	var b strings.Builder
	for i := range issues {
		body := issues[i].Body
		if len(body) > digestBodyLimit {
			// Back off to a rune boundary so the excerpt stays valid UTF-8
			cut := digestBodyLimit
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
			body = body[:cut] + "..."
		}
		fmt.Fprintf(&b, "- [Issue #%d]: %s. Content: %s\n", issues[i].Number, issues[i].Title, body)
	}
	return b.String()
}

// claimList is the wire shape for extraction responses
type claimList struct {
	Claims []model.Claim `json:"claims"`
}

// validateDraft checks the enumerated fields of a draft judgment
func validateDraft(d *DraftJudgment) error {
	if !model.ValidVerdict(d.Verdict) {
		return fmt.Errorf("invalid verdict %q", d.Verdict)
	}
	switch d.Confidence {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
	default:
		return fmt.Errorf("invalid confidence %q", d.Confidence)
	}
	return nil
}
