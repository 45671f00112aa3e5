package model

import "time"

// Config holds the complete tool configuration
type Config struct {
	GitHub      GitHubConfig      `yaml:"github"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Output      OutputConfig      `yaml:"output"`
}

// GitHubConfig controls the document and evidence sources
type GitHubConfig struct {
	BaseURL   string        `yaml:"base_url"`   // API base, override for GitHub Enterprise
	Token     string        `yaml:"-"`          // From GITHUB_TOKEN, never persisted
	Timeout   time.Duration `yaml:"timeout"`    // Per-request timeout
	UserAgent string        `yaml:"user_agent"` // HTTP User-Agent
	MaxIssues int           `yaml:"max_issues"` // Upper bound on fetched issues
	PerPage   int           `yaml:"per_page"`   // Issues per API page

	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
	NoProxy    string `yaml:"no_proxy"`
}

// LLMConfig controls the classification and verdict collaborators
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", "stub"
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // From OPENAI_API_KEY, never persisted
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// CacheConfig controls API response caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"` // Disk layer location
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"` // Parallel repo audits in batch mode
}

// RateLimitConfig controls outbound request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Dir     string `yaml:"dir"` // Report output directory
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			BaseURL:   "https://api.github.com",
			Timeout:   30 * time.Second,
			UserAgent: "realitycheck/0.1 (+https://github.com/karimelghouat/techstack-reality-check)",
			MaxIssues: 50,
			PerPage:   50,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "",
			TTL:     15 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Output: OutputConfig{
			Dir: "reports",
		},
	}
}
