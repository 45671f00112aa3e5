package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/karimelghouat/techstack-reality-check/internal/cache"
	"github.com/karimelghouat/techstack-reality-check/internal/model"
	"github.com/karimelghouat/techstack-reality-check/internal/util"
	"github.com/karimelghouat/techstack-reality-check/internal/worker"
)

// maxBodyBytes bounds API response reads
const maxBodyBytes = 10_000_000

// Client fetches READMEs and issues from the GitHub REST API. It is the
// document source and evidence source for the audit pipeline; the core
// consumes its output through the segmenter and the normalizer.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	perPage    int
	httpClient *http.Client
	cache      cache.Cache // nil disables caching
	cacheTTL   time.Duration
	limiter    *worker.Limiter // nil disables rate limiting
}

// Option configures a Client
type Option func(*Client)

// WithCache enables response caching
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithLimiter enables outbound request pacing
func WithLimiter(l *worker.Limiter) Option {
	return func(cl *Client) {
		cl.limiter = l
	}
}

// NewClient creates a new GitHub API client. An empty token means
// unauthenticated requests (60/hour instead of 5000/hour).
func NewClient(cfg model.GitHubConfig, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	perPage := cfg.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 50
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}

	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		perPage:   perPage,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Readme is the fetched document: decoded text plus its commit marker
type Readme struct {
	SHA     string
	Content string
}

// readmeResponse mirrors the /repos/{repo}/readme payload
type readmeResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchReadme retrieves and decodes the README for a repository
func (c *Client) FetchReadme(ctx context.Context, repo string) (*Readme, error) {
	url := fmt.Sprintf("%s/repos/%s/readme", c.baseURL, repo)

	body, _, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch readme: %w", err)
	}

	var resp readmeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode readme response: %w", err)
	}

	if resp.Encoding != "" && resp.Encoding != "base64" {
		return nil, fmt.Errorf("unexpected readme encoding %q", resp.Encoding)
	}

	// GitHub folds long base64 content with newlines
	encoded := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, resp.Content)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode readme content: %w", err)
	}

	return &Readme{
		SHA:     resp.SHA,
		Content: string(decoded),
	}, nil
}

// FetchOpenIssues retrieves up to maxIssues open issues, paginating as
// needed. Pull requests (the issues endpoint mixes them in) are skipped
// here and do not count toward the bound; the evidence normalizer skips
// them again regardless.
func (c *Client) FetchOpenIssues(ctx context.Context, repo string, maxIssues int) ([]model.RawIssue, error) {
	if maxIssues <= 0 {
		return nil, nil
	}

	var collected []model.RawIssue
	page := 1

	for len(collected) < maxIssues {
		url := fmt.Sprintf("%s/repos/%s/issues?state=open&per_page=%d&page=%d",
			c.baseURL, repo, c.perPage, page)

		body, headers, err := c.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch issues page %d: %w", page, err)
		}

		var pageIssues []model.RawIssue
		if err := json.Unmarshal(body, &pageIssues); err != nil {
			return nil, fmt.Errorf("decode issues page %d: %w", page, err)
		}

		if len(pageIssues) == 0 {
			break
		}

		for i := range pageIssues {
			if pageIssues[i].IsPullRequest() {
				continue
			}
			collected = append(collected, pageIssues[i])
			if len(collected) >= maxIssues {
				break
			}
		}

		// Stop before exhausting the API quota
		if headers.Get("X-RateLimit-Remaining") == "0" {
			fmt.Fprintf(os.Stderr, "warning: GitHub API rate limit reached, stopping fetch\n")
			break
		}

		page++
	}

	return collected, nil
}

// get performs one cached, rate-limited GET request
func (c *Client) get(ctx context.Context, url string) ([]byte, http.Header, error) {
	if c.cache != nil {
		if body, found := c.cache.Get(cache.Key(url)); found {
			return body, http.Header{}, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return nil, nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	if c.cache != nil {
		_ = c.cache.Set(cache.Key(url), body, c.cacheTTL)
	}

	return body, resp.Header, nil
}
