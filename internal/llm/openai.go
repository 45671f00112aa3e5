package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error so users can diagnose API key issues
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// claimListSchema constrains extraction output to the claim shape with
// enumerated category and tone values.
var claimListSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "claims": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "claim_text": {"type": "string", "description": "A concise summary of the claim being made."},
          "category": {"type": "string", "enum": ["Performance", "Concurrency & Scale", "Reliability", "Abstraction", "Security"]},
          "confidence_tone": {"type": "string", "enum": ["assertive", "suggestive", "aspirational"]},
          "implied_commitments": {"type": "array", "items": {"type": "string"}},
          "source_section": {"type": "string"},
          "quote": {"type": "string", "description": "The EXACT, VERBATIM string from the original text that supports this claim."}
        },
        "required": ["claim_text", "category", "confidence_tone", "implied_commitments", "source_section", "quote"],
        "additionalProperties": false
      }
    }
  },
  "required": ["claims"],
  "additionalProperties": false
}`)

// draftJudgmentSchema constrains verdict output to the enumerated values
var draftJudgmentSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "verdict": {"type": "string", "enum": ["supported", "contradicted", "unproven"]},
    "confidence": {"type": "string", "enum": ["high", "medium", "low"]},
    "reasoning": {"type": "string", "description": "Technical explanation for the verdict."},
    "evidence_refs": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["verdict", "confidence", "reasoning", "evidence_refs"],
  "additionalProperties": false
}`)

// ExtractClaims calls the Chat Completions API with a JSON schema response
// format and decodes the candidate claim list.
func (p *OpenAIProvider) ExtractClaims(ctx context.Context, req ExtractRequest) ([]model.Claim, error) {
	content, err := p.complete(ctx, extractSystemPrompt, buildExtractPrompt(req), "claim_list", claimListSchema)
	if err != nil {
		return nil, err
	}

	var list claimList
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, fmt.Errorf("decode claim list: %w", err)
	}
	return list.Claims, nil
}

// JudgeClaim calls the Chat Completions API for a semantic verdict
func (p *OpenAIProvider) JudgeClaim(ctx context.Context, req JudgeRequest) (*DraftJudgment, error) {
	content, err := p.complete(ctx, judgeSystemPrompt, buildJudgePrompt(req), "claim_judgment", draftJudgmentSchema)
	if err != nil {
		return nil, err
	}

	var draft DraftJudgment
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("decode judgment: %w", err)
	}
	if err := validateDraft(&draft); err != nil {
		return nil, fmt.Errorf("judgment: %w", err)
	}
	return &draft, nil
}

// complete makes one structured chat completion call
func (p *OpenAIProvider) complete(ctx context.Context, system, user, schemaName string, schema json.RawMessage) (string, error) {
	mdl := p.config.Model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: mdl,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2, // Low temperature for focused, auditable output
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
