package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// OllamaProvider implements the Provider interface for Ollama local models
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second // Local models can be slow
	}

	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if the Ollama server is reachable
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ExtractClaims generates candidate claims via the Ollama generate API.
// Local models don't honor a response schema, so the expected shape is
// spelled out in the prompt and the JSON is dug out of the response.
func (p *OllamaProvider) ExtractClaims(ctx context.Context, req ExtractRequest) ([]model.Claim, error) {
	prompt := buildExtractPrompt(req) + `

Respond with ONLY a JSON object of the form:
{"claims": [{"claim_text": "...", "category": "Performance|Concurrency & Scale|Reliability|Abstraction|Security", "confidence_tone": "assertive|suggestive|aspirational", "implied_commitments": ["..."], "source_section": "...", "quote": "..."}]}`

	content, err := p.generate(ctx, extractSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	raw := ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in Ollama response")
	}

	var list claimList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode claim list: %w", err)
	}
	return list.Claims, nil
}

// JudgeClaim generates a semantic verdict via the Ollama generate API
func (p *OllamaProvider) JudgeClaim(ctx context.Context, req JudgeRequest) (*DraftJudgment, error) {
	prompt := buildJudgePrompt(req) + `

Respond with ONLY a JSON object of the form:
{"verdict": "supported|contradicted|unproven", "confidence": "high|medium|low", "reasoning": "...", "evidence_refs": ["..."]}`

	content, err := p.generate(ctx, judgeSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	raw := ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in Ollama response")
	}

	var draft DraftJudgment
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("decode judgment: %w", err)
	}
	if err := validateDraft(&draft); err != nil {
		return nil, fmt.Errorf("judgment: %w", err)
	}
	return &draft, nil
}

// generate makes one non-streaming generate call
func (p *OllamaProvider) generate(ctx context.Context, system, prompt string) (string, error) {
	mdl := p.config.Model
	if mdl == "" {
		mdl = "llama3.1"
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	reqBody := ollamaRequest{
		Model:  mdl,
		Prompt: prompt,
		System: system,
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			Temperature: 0.2,
			NumPredict:  maxTokens,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("Ollama API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("Ollama API error: status %d", resp.StatusCode)
	}

	var genResp ollamaResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(genResp.Response), nil
}
