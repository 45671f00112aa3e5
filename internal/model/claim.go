package model

// ClaimCategory is the technical domain a claim belongs to
type ClaimCategory string

const (
	CategoryPerformance ClaimCategory = "Performance"
	CategoryConcurrency ClaimCategory = "Concurrency & Scale"
	CategoryReliability ClaimCategory = "Reliability"
	CategoryAbstraction ClaimCategory = "Abstraction"
	CategorySecurity    ClaimCategory = "Security"
)

// ValidCategory reports whether c is one of the known technical domains
func ValidCategory(c ClaimCategory) bool {
	switch c {
	case CategoryPerformance, CategoryConcurrency, CategoryReliability,
		CategoryAbstraction, CategorySecurity:
		return true
	}
	return false
}

// ConfidenceTone classifies the strength of a claim's language
type ConfidenceTone string

const (
	ToneAssertive    ConfidenceTone = "assertive"    // guarantees, must, always
	ToneSuggestive   ConfidenceTone = "suggestive"   // supports, allows, can
	ToneAspirational ConfidenceTone = "aspirational" // aims to, experimental, roadmap
)

// Claim represents a single verifiable claim extracted from documentation.
// Quote is an exact substring of the section text it was extracted from;
// candidates failing that check never become a Claim.
type Claim struct {
	Text               string         `json:"claim_text"`          // Concise summary of the claim
	Category           ClaimCategory  `json:"category"`            // Technical domain
	Tone               ConfidenceTone `json:"confidence_tone"`     // Strength of the claim's language
	ImpliedCommitments []string       `json:"implied_commitments"` // Expectations the claim creates for a developer
	SourceSection      string         `json:"source_section"`      // Section key the claim was found in
	Quote              string         `json:"quote"`               // Verbatim supporting substring
}
