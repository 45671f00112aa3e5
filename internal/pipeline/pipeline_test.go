package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/karimelghouat/techstack-reality-check/internal/llm"
	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

const testReadme = `A small queue library.

## Performance
Processes 50k messages per second on a single core.

## License
MIT.
`

// auditServer fakes the two GitHub endpoints the pipeline touches
func auditServer(t *testing.T, issues []map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/queue/readme":
			json.NewEncoder(w).Encode(map[string]string{
				"sha":      "deadbeef",
				"content":  base64.StdEncoding.EncodeToString([]byte(testReadme)),
				"encoding": "base64",
			})
		case "/repos/acme/queue/issues":
			w.Header().Set("X-RateLimit-Remaining", "100")
			if r.URL.Query().Get("page") != "1" {
				json.NewEncoder(w).Encode([]map[string]any{})
				return
			}
			json.NewEncoder(w).Encode(issues)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func testPipelineConfig(baseURL string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.GitHub.BaseURL = baseURL
	cfg.GitHub.Timeout = 5 * time.Second
	cfg.Cache.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 0
	return cfg
}

func recentTimestamp() string {
	return time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
}

func staleTimestamp() string {
	return time.Now().UTC().Add(-90 * 24 * time.Hour).Format(time.RFC3339)
}

func TestPipeline_Audit_EndToEnd(t *testing.T) {
	// One zombie silent-failure issue: base penalty 30+20 = 50
	srv := auditServer(t, []map[string]any{
		{
			"id": 1, "number": 11, "title": "Consumer hangs under sustained load",
			"state": "open", "created_at": staleTimestamp(), "updated_at": staleTimestamp(),
			"labels": []map[string]string{{"name": "bug"}},
			"body":   "Reproducible at 40k msg/s.",
		},
	})
	defer srv.Close()

	stub := llm.NewStubProvider()
	stub.Claims = []model.Claim{{
		Text:          "Sustains 50k messages per second",
		Category:      model.CategoryPerformance,
		Tone:          model.ToneAssertive,
		SourceSection: "performance",
		Quote:         "Processes 50k messages per second",
	}}
	stub.Draft = &llm.DraftJudgment{
		Verdict:      model.VerdictContradicted,
		Confidence:   model.ConfidenceHigh,
		Reasoning:    "issue #11 shows hangs below the claimed rate",
		EvidenceRefs: []string{"#11"},
	}

	p := NewPipelineWithProvider(testPipelineConfig(srv.URL), stub)

	report, err := p.Audit(context.Background(), "acme/queue", "high-throughput event bus")
	if err != nil {
		t.Fatalf("Expected audit to succeed, got %v", err)
	}

	if report.Meta.Repo != "acme/queue" || report.Meta.ReadmeSHA != "deadbeef" {
		t.Errorf("Expected metadata populated, got %+v", report.Meta)
	}
	if report.Meta.IssuesAnalyzed != 1 {
		t.Errorf("Expected 1 issue analyzed, got %d", report.Meta.IssuesAnalyzed)
	}

	// Only introduction and the performance section qualify for audit
	want := []string{"introduction", "performance"}
	if len(report.Meta.SectionsAudited) != len(want) {
		t.Fatalf("Expected sections %v, got %v", want, report.Meta.SectionsAudited)
	}
	for i, key := range want {
		if report.Meta.SectionsAudited[i] != key {
			t.Errorf("Expected section %q at %d, got %q", key, i, report.Meta.SectionsAudited[i])
		}
	}

	// The scripted quote only matches the performance section; the same
	// candidate is rejected in the introduction. Judged contradicted: 50+40.
	if len(report.Results) != 1 {
		t.Fatalf("Expected 1 judgment, got %d", len(report.Results))
	}
	j := report.Results[0]
	if j.PenaltyScore != 90 {
		t.Errorf("Expected penalty 90, got %d", j.PenaltyScore)
	}
	if j.ClaimText != "Sustains 50k messages per second" {
		t.Errorf("Expected caller claim text, got %q", j.ClaimText)
	}
	if report.Meta.RejectedClaims != 1 {
		t.Errorf("Expected 1 rejected candidate, got %d", report.Meta.RejectedClaims)
	}
	if report.Summary.Contradicted != 1 {
		t.Errorf("Expected summary to tally contradicted verdicts, got %+v", report.Summary)
	}
}

func TestPipeline_Audit_NoClaims(t *testing.T) {
	srv := auditServer(t, []map[string]any{})
	defer srv.Close()

	stub := llm.NewStubProvider()
	stub.Claims = []model.Claim{} // non-nil empty: scripted "no claims found"

	p := NewPipelineWithProvider(testPipelineConfig(srv.URL), stub)

	_, err := p.Audit(context.Background(), "acme/queue", "anything")
	if !errors.Is(err, ErrNoClaims) {
		t.Fatalf("Expected ErrNoClaims, got %v", err)
	}
}

func TestPipeline_Audit_HallucinatedClaimsCounted(t *testing.T) {
	srv := auditServer(t, []map[string]any{
		{
			"id": 1, "number": 5, "title": "Minor docs typo",
			"state": "open", "created_at": recentTimestamp(), "updated_at": recentTimestamp(),
		},
	})
	defer srv.Close()

	stub := llm.NewStubProvider()
	stub.Claims = []model.Claim{
		{Text: "Real", Category: model.CategoryPerformance, Quote: "50k messages per second"},
		{Text: "Invented", Category: model.CategoryPerformance, Quote: "guaranteed zero message loss"},
	}

	p := NewPipelineWithProvider(testPipelineConfig(srv.URL), stub)

	report, err := p.Audit(context.Background(), "acme/queue", "event bus")
	if err != nil {
		t.Fatalf("Expected audit to succeed, got %v", err)
	}

	// Both candidates fail in the introduction, the invented one also fails
	// in the performance section
	if report.Meta.RejectedClaims != 3 {
		t.Errorf("Expected 3 rejected candidates recorded, got %d", report.Meta.RejectedClaims)
	}
	for _, j := range report.Results {
		if j.ClaimText == "Invented" {
			t.Error("Expected hallucinated claim to never reach judgment")
		}
	}
}

func TestPipeline_Audit_ExtractionFailureIsNotNoClaims(t *testing.T) {
	srv := auditServer(t, []map[string]any{})
	defer srv.Close()

	stub := llm.NewStubProvider()
	stub.ExtractErr = errors.New("provider unreachable")

	p := NewPipelineWithProvider(testPipelineConfig(srv.URL), stub)

	_, err := p.Audit(context.Background(), "acme/queue", "event bus")
	if err == nil {
		t.Fatal("Expected failed extraction to surface as an error")
	}
	if errors.Is(err, ErrNoClaims) {
		t.Error("Expected a broken run to be distinct from a clean no-claims stop")
	}
}

// sectionFailProvider fails extraction for one section and defers the rest
// to the embedded stub
type sectionFailProvider struct {
	*llm.StubProvider
	failSection string
}

func (p *sectionFailProvider) ExtractClaims(ctx context.Context, req llm.ExtractRequest) ([]model.Claim, error) {
	if req.SectionName == p.failSection {
		return nil, errors.New("provider unreachable")
	}
	return p.StubProvider.ExtractClaims(ctx, req)
}

func TestPipeline_Audit_PartialExtractionFailureRecorded(t *testing.T) {
	srv := auditServer(t, []map[string]any{})
	defer srv.Close()

	stub := llm.NewStubProvider()
	stub.Claims = []model.Claim{{
		Text:     "Sustains 50k messages per second",
		Category: model.CategoryPerformance,
		Quote:    "Processes 50k messages per second",
	}}
	provider := &sectionFailProvider{StubProvider: stub, failSection: "introduction"}

	p := NewPipelineWithProvider(testPipelineConfig(srv.URL), provider)

	report, err := p.Audit(context.Background(), "acme/queue", "event bus")
	if err != nil {
		t.Fatalf("Expected partial failure to still produce a report, got %v", err)
	}
	if report.Meta.FailedSections != 1 {
		t.Errorf("Expected 1 failed section recorded, got %d", report.Meta.FailedSections)
	}
	if len(report.Results) != 1 {
		t.Errorf("Expected the surviving section's claim judged, got %d results", len(report.Results))
	}
}

func TestPipeline_Audit_JudgeFailureIsFatal(t *testing.T) {
	srv := auditServer(t, []map[string]any{})
	defer srv.Close()

	stub := llm.NewStubProvider()
	stub.Claims = []model.Claim{{Text: "X", Quote: "queue library"}}
	stub.JudgeErr = errors.New("provider down")

	p := NewPipelineWithProvider(testPipelineConfig(srv.URL), stub)

	_, err := p.Audit(context.Background(), "acme/queue", "event bus")
	if err == nil {
		t.Fatal("Expected judgment failure to abort the audit")
	}
	if errors.Is(err, ErrNoClaims) {
		t.Error("Expected a real failure, not a no-claims stop")
	}
}

func TestPipeline_Audit_MalformedIssueTimestampIsFatal(t *testing.T) {
	srv := auditServer(t, []map[string]any{
		{"id": 1, "number": 1, "title": "Bug", "state": "open",
			"created_at": "not-a-timestamp", "updated_at": recentTimestamp()},
	})
	defer srv.Close()

	p := NewPipelineWithProvider(testPipelineConfig(srv.URL), llm.NewStubProvider())

	_, err := p.Audit(context.Background(), "acme/queue", "event bus")
	if err == nil {
		t.Fatal("Expected malformed evidence to abort the audit")
	}
}
