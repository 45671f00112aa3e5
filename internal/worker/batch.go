package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// Auditor defines the interface for auditing a single repository
type Auditor interface {
	Audit(ctx context.Context, repo, useCase string) (*model.Report, error)
}

// Target is one repository to audit
type Target struct {
	Repo    string // owner/repo
	UseCase string // Intended use case context
}

// AuditJob represents one repository audit
type AuditJob struct {
	Target  Target
	Auditor Auditor
}

// Execute runs the audit job
func (j *AuditJob) Execute(ctx context.Context) Result {
	report, err := j.Auditor.Audit(ctx, j.Target.Repo, j.Target.UseCase)
	return &AuditResult{
		Target: j.Target,
		Report: report,
		Error:  err,
	}
}

// AuditResult represents the result of an audit job
type AuditResult struct {
	Target Target
	Report *model.Report
	Error  error
}

// GetError returns the error from the audit result
func (r *AuditResult) GetError() error {
	return r.Error
}

// BatchProcessor audits multiple repositories concurrently. Claims within
// one audit are still judged sequentially; only whole audits run in
// parallel.
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(auditor Auditor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		auditor:     auditor,
		concurrency: concurrency,
	}
}

// ProcessTargets audits multiple repositories concurrently
func (b *BatchProcessor) ProcessTargets(ctx context.Context, targets []Target) []*AuditResult {
	if len(targets) == 0 {
		return []*AuditResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, target := range targets {
		pool.Submit(&AuditJob{
			Target:  target,
			Auditor: b.auditor,
		})
	}

	results := pool.Wait()

	auditResults := make([]*AuditResult, len(results))
	for i, result := range results {
		auditResults[i] = result.(*AuditResult)
	}

	return auditResults
}

// ProcessFile reads targets from a file and audits them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath, defaultUseCase string) ([]*AuditResult, error) {
	targets, err := ReadTargetsFromFile(filePath, defaultUseCase)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	return b.ProcessTargets(ctx, targets), nil
}

// ReadTargetsFromFile reads audit targets from a file, one per line:
//
//	owner/repo
//	owner/repo | use case text
//
// Empty lines and lines starting with '#' are skipped. Lines without a
// use case fall back to defaultUseCase.
func ReadTargetsFromFile(filePath, defaultUseCase string) ([]Target, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var targets []Target
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		repo := line
		useCase := defaultUseCase
		if idx := strings.Index(line, "|"); idx >= 0 {
			repo = strings.TrimSpace(line[:idx])
			useCase = strings.TrimSpace(line[idx+1:])
		}

		if repo == "" || seen[repo] {
			continue
		}
		seen[repo] = true
		targets = append(targets, Target{Repo: repo, UseCase: useCase})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return targets, nil
}
