package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/karimelghouat/techstack-reality-check/internal/model"
	"github.com/karimelghouat/techstack-reality-check/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	useCase      string
	maxIssues    int
	checkTimeout time.Duration
	outJSON      string
	outMD        string
	noCache      bool
	llmProvider  string
	llmModel     string
	llmBaseURL   string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <owner/repo>",
	Short: "Audit a repository's README claims against its open issues",
	Long: `Check fetches a repository's README and open issues, extracts
verifiable technical claims from the documentation, and judges each claim
against the issue-tracker evidence for your stated use case.

Example:
  realitycheck check langchain-ai/langchain --use-case "Medical chatbot"
  realitycheck check owner/repo --use-case "..." --issues 100 --md report.md
  realitycheck check owner/repo --use-case "..." --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&useCase, "use-case", "", "intended use case context (required)")
	_ = checkCmd.MarkFlagRequired("use-case")

	checkCmd.Flags().IntVar(&maxIssues, "issues", 50, "max issues to analyze")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Minute, "overall audit timeout")
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: reports/<owner>_<repo>_report.json)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")

	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama, stub)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
	checkCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM API base URL override")
}

func runCheck(cmd *cobra.Command, args []string) error {
	repo := args[0]
	if !strings.Contains(repo, "/") {
		return fmt.Errorf("repository must be in owner/repo format, got %q", repo)
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Auditing %s (use case: %s)\n", repo, useCase)
	}

	report, err := p.Audit(ctx, repo, useCase)
	if errors.Is(err, pipeline.ErrNoClaims) {
		// Zero claims is a clean stop, not a failure
		fmt.Fprintf(os.Stderr, "No verified claims extracted from the README. Stopping.\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	jsonPath := outJSON
	if jsonPath == "" {
		jsonPath = pipeline.ReportPath(cfg.Output.Dir, repo)
	}

	renderer := pipeline.NewRenderer(os.Stdout)
	if err := renderer.RenderJSON(report, jsonPath); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	renderer.RenderSummary(report, jsonPath)

	return nil
}

// buildConfig merges defaults, config file, environment, and flags, in
// ascending priority: explicitly set flags win over configured values,
// which win over defaults.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()

	// Config file and REALITYCHECK_* values land on top of the defaults
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("issues") || cfg.GitHub.MaxIssues <= 0 {
		cfg.GitHub.MaxIssues = maxIssues
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("llm-provider") || cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") || cfg.LLM.Model == "" {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("llm-base-url") {
		cfg.LLM.BaseURL = llmBaseURL
	}

	// Credentials come from the environment only, never the config file
	cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	cfg.Output.Verbose = verbose || viper.GetBool("verbose")

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
