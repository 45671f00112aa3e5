package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// Renderer persists audit reports and prints run summaries
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a new renderer. out receives the stdout summary.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// ReportPath derives the report file name for a repository:
// "owner/repo" becomes "<dir>/owner_repo_report.json".
func ReportPath(dir, repo string) string {
	slug := strings.ReplaceAll(repo, "/", "_")
	return filepath.Join(dir, slug+"_report.json")
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Reality Check: %s\n\n", report.Meta.Repo)
	fmt.Fprintf(&b, "- Use case: %s\n", report.Meta.UseCase)
	fmt.Fprintf(&b, "- README commit: `%s`\n", report.Meta.ReadmeSHA)
	fmt.Fprintf(&b, "- Issues analyzed: %d\n", report.Meta.IssuesAnalyzed)
	fmt.Fprintf(&b, "- Sections audited: %s\n", strings.Join(report.Meta.SectionsAudited, ", "))
	fmt.Fprintf(&b, "- Generated: %s by %s\n\n", report.Meta.Timestamp.Format("2006-01-02 15:04 UTC"), report.Meta.ToolVersion)

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Verdict | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| supported | %d |\n", report.Summary.Supported)
	fmt.Fprintf(&b, "| contradicted | %d |\n", report.Summary.Contradicted)
	fmt.Fprintf(&b, "| unproven | %d |\n\n", report.Summary.Unproven)

	fmt.Fprintf(&b, "## Claims\n\n")
	for i, j := range report.Results {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, j.ClaimText)
		fmt.Fprintf(&b, "- Category: %s\n", j.Category)
		fmt.Fprintf(&b, "- Verdict: **%s** (%s confidence)\n", j.Verdict, j.Confidence)
		fmt.Fprintf(&b, "- Penalty score: %d/100\n", j.PenaltyScore)
		if j.Reasoning != "" {
			fmt.Fprintf(&b, "- Reasoning: %s\n", j.Reasoning)
		}
		if len(j.EvidenceRefs) > 0 {
			fmt.Fprintf(&b, "- Evidence: %s\n", strings.Join(j.EvidenceRefs, "; "))
		}
		fmt.Fprintf(&b, "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// RenderSummary prints the verdict tallies to the renderer's writer
func (r *Renderer) RenderSummary(report *model.Report, jsonPath string) {
	fmt.Fprintf(r.out, "\n%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(r.out, "Analysis complete: %s\n", report.Meta.Repo)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", 40))
	if jsonPath != "" {
		fmt.Fprintf(r.out, "Report saved: %s\n", jsonPath)
	}
	fmt.Fprintf(r.out, "%d claims analyzed\n", len(report.Results))
	fmt.Fprintf(r.out, "  - %d supported\n", report.Summary.Supported)
	fmt.Fprintf(r.out, "  - %d contradicted\n", report.Summary.Contradicted)
	fmt.Fprintf(r.out, "  - %d unproven\n", report.Summary.Unproven)
	if report.Meta.RejectedClaims > 0 {
		fmt.Fprintf(r.out, "  (%d candidate claims rejected by quote verification)\n", report.Meta.RejectedClaims)
	}
	if report.Meta.FailedSections > 0 {
		fmt.Fprintf(r.out, "  (!) claim extraction failed for %d sections\n", report.Meta.FailedSections)
	}
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", 40))
}
