package segment

import (
	"strings"
	"unicode"
)

// IntroductionKey is the reserved key for text preceding the first heading
const IntroductionKey = "introduction"

// Segmenter splits a document into sections at heading boundaries.
// The accepted heading grammar lives in isHeading so it can be extended
// without touching the accumulation logic.
type Segmenter struct{}

// NewSegmenter creates a new segmenter
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Result holds the segmented document. Keys preserves first-occurrence
// document order; Sections maps key to trimmed body text.
type Result struct {
	Keys     []string
	Sections map[string]string
}

// Segment splits document into sections keyed by normalized heading text.
// Text before the first heading becomes the "introduction" section (omitted
// when blank). A heading that normalizes to an empty key is discarded along
// with its body. Duplicate keys overwrite: last occurrence wins.
func (s *Segmenter) Segment(document string) *Result {
	result := &Result{Sections: make(map[string]string)}

	lines := strings.Split(document, "\n")

	// Two states: accumulating the current section body, or starting a new
	// one when a heading line appears.
	currentKey := IntroductionKey
	leading := true // current body is untitled leading text, not a heading's
	var body []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if currentKey == "" {
			// Heading normalized to nothing: body is dropped, not merged
			return
		}
		// Only the untitled leading text is omitted when blank. A real
		// "# Introduction" heading always produces a section, even empty.
		if leading && text == "" {
			return
		}
		if _, seen := result.Sections[currentKey]; !seen {
			result.Keys = append(result.Keys, currentKey)
		}
		result.Sections[currentKey] = text
	}

	for _, line := range lines {
		if heading, ok := isHeading(line); ok {
			flush()
			currentKey = NormalizeKey(heading)
			leading = false
			continue
		}
		body = append(body, line)
	}
	flush()

	return result
}

// isHeading reports whether line is a heading and returns its raw text.
// A heading is 1-6 leading '#' markers followed by whitespace and text.
func isHeading(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return "", false
	}
	if i >= len(line) || (line[i] != ' ' && line[i] != '\t') {
		return "", false
	}
	text := strings.TrimSpace(line[i:])
	if text == "" {
		return "", false
	}
	return text, true
}

// NormalizeKey converts heading text into a section key: drop everything
// that is not alphanumeric, whitespace, or hyphen (emojis, punctuation),
// lowercase, collapse whitespace/hyphen runs to single underscores, and
// trim leading/trailing underscores.
func NormalizeKey(heading string) string {
	var b strings.Builder
	for _, r := range heading {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-':
			b.WriteRune('_')
		}
	}

	// Collapse underscore runs
	var out strings.Builder
	prev := false
	for _, r := range b.String() {
		if r == '_' {
			if !prev {
				out.WriteRune('_')
			}
			prev = true
			continue
		}
		prev = false
		out.WriteRune(r)
	}

	return strings.Trim(out.String(), "_")
}

// auditKeywords marks section keys worth auditing beyond the introduction
var auditKeywords = []string{"concurrency", "scale", "performance", "features", "capabilities"}

// TargetSections selects which sections to audit: the introduction (or the
// first section when no introduction exists) plus any section whose key
// contains a capability keyword. Document order is preserved.
func TargetSections(r *Result) []string {
	var targets []string
	seen := make(map[string]bool)
	add := func(key string) {
		if key != "" && !seen[key] {
			seen[key] = true
			targets = append(targets, key)
		}
	}

	if _, ok := r.Sections[IntroductionKey]; ok {
		add(IntroductionKey)
	} else if len(r.Keys) > 0 {
		add(r.Keys[0])
	}

	for _, key := range r.Keys {
		for _, kw := range auditKeywords {
			if strings.Contains(key, kw) {
				add(key)
				break
			}
		}
	}

	return targets
}
