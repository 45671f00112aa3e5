package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/karimelghouat/techstack-reality-check/internal/pipeline"
	"github.com/karimelghouat/techstack-reality-check/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Audit multiple repositories from a file in parallel",
	Long: `Batch audits multiple repositories concurrently:
- Read targets from an input file (one per line: "owner/repo" or "owner/repo | use case")
- Audit repositories in parallel with a configurable worker count
- Generate an individual report per repository

Claims within a single audit are still judged sequentially.

Example:
  realitycheck batch repos.txt --use-case "Production API backend"
  realitycheck batch repos.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringVar(&useCase, "use-case", "", "default use case for targets without one (required)")
	_ = batchCmd.MarkFlagRequired("use-case")

	batchCmd.Flags().IntVar(&maxIssues, "issues", 50, "max issues to analyze per repository")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama, stub)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
	batchCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM API base URL override")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if cmd.Flags().Changed("output-dir") || cfg.Output.Dir == "" {
		cfg.Output.Dir = outputDir
	}
	workers := cfg.Concurrency.Workers
	reportDir := cfg.Output.Dir

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Batch audit: %s (%d workers)\n\n", file, workers)

	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessFile(ctx, file, useCase)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(os.Stdout)
	successCount := 0
	emptyCount := 0
	failureCount := 0

	for _, result := range results {
		if errors.Is(result.Error, pipeline.ErrNoClaims) {
			emptyCount++
			fmt.Fprintf(os.Stderr, "- %s: no verified claims\n", result.Target.Repo)
			continue
		}
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "x %s: %v\n", result.Target.Repo, result.Error)
			continue
		}

		jsonPath := pipeline.ReportPath(reportDir, result.Target.Repo)
		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "x %s: failed to write report: %v\n", result.Target.Repo, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "+ %s: %d claims (%d contradicted)\n",
			result.Target.Repo, len(result.Report.Results), result.Report.Summary.Contradicted)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d audited, %d empty, %d failed (reports in %s)\n",
		successCount, emptyCount, failureCount, reportDir)

	return nil
}
