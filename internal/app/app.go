package app

import (
	"log"
	"net/http"

	"github.com/decoyops/honeytrap/internal/agent"
	"github.com/decoyops/honeytrap/internal/callback"
	"github.com/decoyops/honeytrap/internal/detect"
	"github.com/decoyops/honeytrap/internal/httpapi"
	"github.com/decoyops/honeytrap/internal/intel"
	"github.com/decoyops/honeytrap/internal/llm"
)

// App wires the request pipeline together. All components are built once
// at startup from the immutable config; there is no shared mutable state
// between requests.
type App struct {
	cfg     Config
	logger  *log.Logger
	handler http.Handler
}

func New(cfg Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var extraKeywords []string
	if cfg.ScamKeywordsFile != "" {
		kws, err := detect.LoadExtraKeywords(cfg.ScamKeywordsFile)
		if err != nil {
			logger.Printf("warning: scam keywords file not loaded: %v", err)
		} else {
			extraKeywords = kws
			logger.Printf("loaded %d extra scam keywords", len(kws))
		}
	}

	clients := llm.ClientsFromConfig(llm.ProviderConfig{
		GroqAPIKeys:       cfg.GroqAPIKeys,
		OpenRouterAPIKeys: cfg.OpenRouterAPIKeys,
		GitHubAPIKeys:     cfg.GitHubAPIKeys,
		OpenAIAPIKeys:     cfg.OpenAIAPIKeys,
		XAIAPIKeys:        cfg.XAIAPIKeys,
		DeepSeekAPIKeys:   cfg.DeepSeekAPIKeys,
		OllamaBaseURL:     cfg.OllamaBaseURL,
		Model:             cfg.LLMModel,
		BaseURL:           cfg.LLMBaseURL,
		UseLocalOnly:      cfg.UseLocalOnly,
	})
	if len(clients) == 0 {
		logger.Printf("warning: no LLM provider configured; replies will use the fallback utterance")
	}
	gateway := llm.NewGateway(clients, cfg.LLMTimeout, logger)

	extractor := intel.NewExtractor(extraKeywords)

	engine := detect.NewEngine(detect.Config{
		Threshold:      cfg.ScamThreshold,
		ConfirmWindow:  cfg.ScamConfirmWindow,
		DisableConfirm: cfg.DisableLLMConfirm,
		ExtraKeywords:  extraKeywords,
	}, gateway, logger)

	persona := agent.DefaultPersona()
	if cfg.PersonaFile != "" {
		p, err := agent.LoadPersona(cfg.PersonaFile)
		if err != nil {
			logger.Printf("warning: persona file not loaded, using defaults: %v", err)
		} else {
			persona = p
		}
	}
	honeypotAgent := agent.New(persona, gateway, logger)

	reporter := callback.NewReporter(cfg.CallbackURL, cfg.CallbackTimeout, logger)

	handler := httpapi.NewRouter(
		httpapi.RouterConfig{APISecretKey: cfg.APISecretKey},
		logger, extractor, engine, honeypotAgent, reporter,
	)

	return &App{cfg: cfg, logger: logger, handler: handler}, nil
}

func (a *App) Router() http.Handler {
	return a.handler
}
