package detect

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/decoyops/honeytrap/internal/llm"
)

// Verdict is the per-request scam decision. Derived fresh on every
// request, never stored.
type Verdict struct {
	IsScam     bool
	Confidence float64
}

// Config holds the detection tuning knobs. Immutable after startup.
type Config struct {
	// Threshold is the heuristic score at or above which a message is
	// flagged as scam.
	Threshold float64

	// ConfirmWindow bounds how far from Threshold a score may fall and
	// still trigger the LLM confirmation call. Scores outside the window
	// trust the heuristic outright, saving the extra latency.
	ConfirmWindow float64

	// DisableConfirm makes the heuristic verdict final (heuristics only).
	DisableConfirm bool

	// ExtraKeywords extends the pattern table; hits from the word list
	// are capped so patterns still dominate the score.
	ExtraKeywords []string
}

// DefaultConfig returns the detection defaults. Three distinct signals
// push the score to 1.0.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.33,
		ConfirmWindow: 0.2,
	}
}

// maxExtraKeywordHits caps word-list contributions to the score.
const maxExtraKeywordHits = 2

// scoreNormalizer maps hit counts to [0,1]: 3+ distinct signals -> 1.0.
const scoreNormalizer = 3.0

// Engine combines the heuristic scorer with optional LLM confirmation.
type Engine struct {
	cfg     Config
	gateway llm.TextGenerator
	logger  *log.Logger
}

// NewEngine creates a decision engine. gateway may be nil; confirmation
// is then skipped and heuristic verdicts are final.
func NewEngine(cfg Config, gateway llm.TextGenerator, logger *log.Logger) *Engine {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.ConfirmWindow < 0 {
		cfg.ConfirmWindow = 0
	}
	return &Engine{cfg: cfg, gateway: gateway, logger: logger}
}

// Score computes the heuristic scam-likelihood for the given text.
// Deterministic and side-effect-free; no network calls.
func (e *Engine) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	hits := 0
	for _, p := range scamPatterns {
		if p.MatchString(text) {
			hits++
		}
	}

	lower := strings.ToLower(text)
	keywordHits := 0
	for _, k := range e.cfg.ExtraKeywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			keywordHits++
		}
	}
	if keywordHits > maxExtraKeywordHits {
		keywordHits = maxExtraKeywordHits
	}
	hits += keywordHits

	return math.Min(1.0, float64(hits)/scoreNormalizer)
}

// Decide produces the final verdict for the full conversation text.
// The heuristic verdict stands unless the score lands inside the confirm
// window and a provider answers YES or NO; confirmation errors are
// recovered locally and never surfaced to the caller.
func (e *Engine) Decide(ctx context.Context, text string) Verdict {
	score := e.Score(text)
	isScam := score >= e.cfg.Threshold

	if e.cfg.DisableConfirm || e.gateway == nil || !e.gateway.Configured() {
		return Verdict{IsScam: isScam, Confidence: score}
	}
	if math.Abs(score-e.cfg.Threshold) > e.cfg.ConfirmWindow {
		// Far from the threshold the heuristic is trusted outright.
		return Verdict{IsScam: isScam, Confidence: score}
	}

	confirmed, err := e.confirm(ctx, text)
	if err != nil {
		e.logger.Printf("detect: confirmation failed, keeping heuristic verdict: %v", err)
		return Verdict{IsScam: isScam, Confidence: score}
	}

	switch {
	case isScam && !confirmed:
		// LLM disagrees with a borderline flag: lower the confidence too.
		return Verdict{IsScam: false, Confidence: math.Min(score, 0.25)}
	case !isScam && confirmed:
		return Verdict{IsScam: true, Confidence: math.Max(score, e.cfg.Threshold)}
	default:
		return Verdict{IsScam: isScam, Confidence: score}
	}
}

// maxConfirmChars bounds how much conversation text is sent for confirmation.
const maxConfirmChars = 2000

// confirm asks the configured LLM chain for a strict YES/NO judgement.
func (e *Engine) confirm(ctx context.Context, text string) (bool, error) {
	if len(text) > maxConfirmChars {
		text = text[:maxConfirmChars]
	}

	raw, err := e.gateway.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: llm.ConfirmSystemPrompt},
		{Role: llm.RoleUser, Content: text},
	}, llm.Options{MaxTokens: 10})
	if err != nil {
		return false, err
	}

	answer := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(answer, "YES"):
		return true, nil
	case strings.Contains(answer, "NO"):
		return false, nil
	default:
		return false, fmt.Errorf("ambiguous confirmation reply %q", raw)
	}
}
