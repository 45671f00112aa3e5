package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

func sampleReport() *model.Report {
	r := &model.Report{
		Meta: model.ReportMeta{
			ToolVersion:     ToolVersion,
			Repo:            "acme/queue",
			UseCase:         "event bus",
			Timestamp:       time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			ReadmeSHA:       "deadbeef",
			IssuesAnalyzed:  3,
			SectionsAudited: []string{"introduction", "performance"},
			RejectedClaims:  1,
		},
		Results: []model.Judgment{
			{
				ClaimText:    "Sustains 50k messages per second",
				Category:     model.CategoryPerformance,
				Verdict:      model.VerdictContradicted,
				Confidence:   model.ConfidenceHigh,
				Reasoning:    "issue #11 shows hangs at lower rates",
				EvidenceRefs: []string{"#11"},
				PenaltyScore: 90,
			},
			{
				ClaimText:    "Zero-configuration setup",
				Category:     model.CategoryAbstraction,
				Verdict:      model.VerdictUnproven,
				Confidence:   model.ConfidenceLow,
				PenaltyScore: 60,
			},
		},
	}
	r.Summarize()
	return r
}

func TestReportPath(t *testing.T) {
	got := ReportPath("reports", "acme/queue")
	want := filepath.Join("reports", "acme_queue_report.json")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderer_RenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	r := NewRenderer(nil)

	if err := r.RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded.Meta.Repo != "acme/queue" {
		t.Errorf("Expected repo round-tripped, got %q", decoded.Meta.Repo)
	}
	if decoded.Summary.Contradicted != 1 || decoded.Summary.Unproven != 1 {
		t.Errorf("Expected summary preserved, got %+v", decoded.Summary)
	}
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	r := NewRenderer(nil)

	if err := r.RenderMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Reality Check: acme/queue",
		"Sustains 50k messages per second",
		"**contradicted** (high confidence)",
		"Penalty score: 90/100",
		"| contradicted | 1 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestRenderer_RenderSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RenderSummary(sampleReport(), "reports/acme_queue_report.json")

	out := buf.String()
	for _, want := range []string{
		"Analysis complete: acme/queue",
		"Report saved: reports/acme_queue_report.json",
		"2 claims analyzed",
		"1 contradicted",
		"(1 candidate claims rejected by quote verification)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, out)
		}
	}
}
