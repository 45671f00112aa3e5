package model

import "time"

// Verdict is the outcome of judging a claim against the evidence set
type Verdict string

const (
	VerdictSupported    Verdict = "supported"    // No issues undermine the claim
	VerdictContradicted Verdict = "contradicted" // Issues show the claim is false or unreliable in practice
	VerdictUnproven     Verdict = "unproven"     // Issues exist but don't directly negate the claim
)

// ValidVerdict reports whether v is a known verdict
func ValidVerdict(v Verdict) bool {
	return v == VerdictSupported || v == VerdictContradicted || v == VerdictUnproven
}

// Confidence is the certainty of a verdict
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"   // Direct, clear evidence or total lack of issues
	ConfidenceMedium Confidence = "medium" // Indirect evidence or mixed signals
	ConfidenceLow    Confidence = "low"    // Speculative connection or very noisy data
)

// Judgment is the final verdict on a single claim. PenaltyScore is always
// recomputed by the aggregator, never trusted verbatim from the model.
type Judgment struct {
	ClaimText    string        `json:"claim_text"`
	Category     ClaimCategory `json:"category"`
	Verdict      Verdict       `json:"verdict"`
	Confidence   Confidence    `json:"confidence"`
	Reasoning    string        `json:"reasoning"`
	EvidenceRefs []string      `json:"evidence_refs"` // Issue IDs or titles cited as evidence
	PenaltyScore int           `json:"penalty_score"` // 0-100
}

// ReportMeta describes one audit run
type ReportMeta struct {
	ToolVersion     string    `json:"tool_version"`
	Repo            string    `json:"repo"`
	UseCase         string    `json:"use_case"`
	Timestamp       time.Time `json:"timestamp"`
	ReadmeSHA       string    `json:"readme_sha"`
	IssuesAnalyzed  int       `json:"issues_analyzed"`
	SectionsAudited []string  `json:"sections_audited"`
	RejectedClaims  int       `json:"rejected_claims"` // Candidates dropped by the verbatim-quote check
	FailedSections  int       `json:"failed_sections"` // Sections whose extraction call failed outright
}

// Summary counts judgments per verdict
type Summary struct {
	Supported    int `json:"supported"`
	Contradicted int `json:"contradicted"`
	Unproven     int `json:"unproven"`
}

// Report is the complete audit report for one repository
type Report struct {
	Meta    ReportMeta `json:"metadata"`
	Results []Judgment `json:"results"`
	Summary Summary    `json:"summary"`
}

// Summarize tallies verdict counts from the results
func (r *Report) Summarize() {
	s := Summary{}
	for _, j := range r.Results {
		switch j.Verdict {
		case VerdictSupported:
			s.Supported++
		case VerdictContradicted:
			s.Contradicted++
		case VerdictUnproven:
			s.Unproven++
		}
	}
	r.Summary = s
}
