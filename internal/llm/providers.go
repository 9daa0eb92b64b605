package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Default base URLs. Every supported provider speaks the OpenAI
// chat-completions protocol, so one client type covers all of them.
const (
	ollamaDefaultBaseURL = "http://localhost:11434/v1"
	groqBaseURL          = "https://api.groq.com/openai/v1"
	openRouterBaseURL    = "https://openrouter.ai/api/v1"
	githubBaseURL        = "https://models.github.ai/inference"
	openAIBaseURL        = "https://api.openai.com/v1"
	xaiBaseURL           = "https://api.x.ai/v1"
	deepSeekBaseURL      = "https://api.deepseek.com/v1"
)

// Default models per provider, chosen for free tiers / local testing.
var defaultModels = map[string]string{
	"ollama":     "deepseek-r1:8b",
	"groq":       "llama-3.3-70b-versatile",
	"openrouter": "meta-llama/llama-3.3-70b-instruct:free",
	"github":     "openai/gpt-4o",
	"openai":     "gpt-4o-mini",
	"claude":     "meta-llama/llama-3.3-70b-instruct:free",
	"gemini":     "google/gemini-2.0-flash-exp:free",
	"grok":       "grok-2-latest",
	"deepseek":   "deepseek-chat",
}

// ProviderConfig holds the per-provider credentials and overrides used to
// build the fallback chain. Each key field may carry several keys; every
// key becomes one attempt in the chain.
type ProviderConfig struct {
	GroqAPIKeys       []string
	OpenRouterAPIKeys []string
	GitHubAPIKeys     []string
	OpenAIAPIKeys     []string
	XAIAPIKeys        []string
	DeepSeekAPIKeys   []string

	// Local Ollama endpoint; enabled by presence, no key needed.
	OllamaBaseURL string

	// Optional overrides applied to every provider.
	Model   string
	BaseURL string

	// When true only Ollama is used, cloud providers are skipped.
	UseLocalOnly bool
}

// ClientsFromConfig builds the provider chain in fixed priority order:
// ollama, groq, openrouter, github, openai, claude, gemini, grok, deepseek.
// Claude and Gemini ride on OpenRouter keys.
func ClientsFromConfig(cfg ProviderConfig) []Client {
	var out []Client

	if url := strings.TrimSpace(cfg.OllamaBaseURL); url != "" {
		base := strings.TrimRight(url, "/")
		if !strings.HasSuffix(base, "/v1") {
			base += "/v1"
		}
		out = append(out, newOpenAICompatClient("ollama", "ollama", base, cfg.modelFor("ollama")))
	}

	if cfg.UseLocalOnly {
		return out
	}

	chain := []struct {
		name    string
		keys    []string
		baseURL string
	}{
		{"groq", cfg.GroqAPIKeys, groqBaseURL},
		{"openrouter", cfg.OpenRouterAPIKeys, openRouterBaseURL},
		{"github", cfg.GitHubAPIKeys, githubBaseURL},
		{"openai", cfg.OpenAIAPIKeys, openAIBaseURL},
		{"claude", cfg.OpenRouterAPIKeys, openRouterBaseURL},
		{"gemini", cfg.OpenRouterAPIKeys, openRouterBaseURL},
		{"grok", cfg.XAIAPIKeys, xaiBaseURL},
		{"deepseek", cfg.DeepSeekAPIKeys, deepSeekBaseURL},
	}

	for _, p := range chain {
		baseURL := p.baseURL
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		for _, key := range p.keys {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			out = append(out, newOpenAICompatClient(p.name, key, baseURL, cfg.modelFor(p.name)))
		}
	}

	return out
}

func (cfg ProviderConfig) modelFor(provider string) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return "gpt-4o-mini"
}

// openAICompatClient implements Client for any OpenAI-compatible endpoint.
type openAICompatClient struct {
	name   string
	model  string
	client *openai.Client
}

func newOpenAICompatClient(name, apiKey, baseURL, model string) *openAICompatClient {
	cc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cc.BaseURL = baseURL
	}
	return &openAICompatClient{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(cc),
	}
}

func (c *openAICompatClient) Name() string { return c.name }

func (c *openAICompatClient) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	chatMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMsgs = append(chatMsgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMsgs,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
