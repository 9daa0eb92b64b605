package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultCallbackURL is the fixed evaluation endpoint results are
// reported to unless overridden.
const defaultCallbackURL = "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"

// placeholderSecret is the .env.example value that must never reach
// production.
const placeholderSecret = "change-me-in-production"

type Config struct {
	HTTPAddr     string
	APISecretKey string
	CallbackURL  string
	SentryDSN    string

	// LLM providers: comma-separated key lists, tried in priority order.
	GroqAPIKeys       []string
	OpenRouterAPIKeys []string
	GitHubAPIKeys     []string
	OpenAIAPIKeys     []string
	XAIAPIKeys        []string
	DeepSeekAPIKeys   []string

	// Local Ollama endpoint; no key needed. Set for dev without cloud keys.
	OllamaBaseURL string
	LLMModel      string
	LLMBaseURL    string
	UseLocalOnly  bool

	// Detection tuning
	ScamThreshold     float64
	ScamConfirmWindow float64
	DisableLLMConfirm bool
	ScamKeywordsFile  string

	// Agent persona override (YAML), optional.
	PersonaFile string

	// Timeouts
	LLMTimeout      time.Duration
	CallbackTimeout time.Duration
}

func LoadConfigFromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		APISecretKey: os.Getenv("API_SECRET_KEY"), // Required - no fallback for security
		CallbackURL:  getenv("CALLBACK_URL", defaultCallbackURL),
		SentryDSN:    getenv("SENTRY_DSN", ""),

		GroqAPIKeys:       splitCSV(os.Getenv("GROQ_API_KEYS")),
		OpenRouterAPIKeys: splitCSV(os.Getenv("OPENROUTER_API_KEYS")),
		GitHubAPIKeys:     splitCSV(os.Getenv("GITHUB_API_KEYS")),
		OpenAIAPIKeys:     splitCSV(os.Getenv("OPENAI_API_KEYS")),
		XAIAPIKeys:        splitCSV(os.Getenv("XAI_API_KEYS")),
		DeepSeekAPIKeys:   splitCSV(os.Getenv("DEEPSEEK_API_KEYS")),

		OllamaBaseURL: getenv("OLLAMA_BASE_URL", ""),
		LLMModel:      getenv("LLM_MODEL", ""),
		LLMBaseURL:    getenv("LLM_BASE_URL", ""),
		UseLocalOnly:  getenvBool("USE_LOCAL_LLM_ONLY", false),

		ScamThreshold:     getenvFloat("SCAM_THRESHOLD", 0.33),
		ScamConfirmWindow: getenvFloat("SCAM_CONFIRM_WINDOW", 0.2),
		DisableLLMConfirm: getenvBool("DISABLE_SCAM_LLM_CONFIRM", false),
		ScamKeywordsFile:  getenv("SCAM_KEYWORDS_FILE", ""),

		PersonaFile: getenv("PERSONA_FILE", ""),

		LLMTimeout:      getenvDuration("LLM_TIMEOUT", 30*time.Second),
		CallbackTimeout: getenvDuration("CALLBACK_TIMEOUT", 15*time.Second),
	}
}

// Validate checks the invariants that must hold before serving traffic.
func (c Config) Validate() error {
	if c.APISecretKey == "" || c.APISecretKey == placeholderSecret {
		return errors.New("API_SECRET_KEY must be set and must not be the default placeholder")
	}
	return nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
