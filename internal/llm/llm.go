package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrProviderUnavailable is returned when no provider is configured or
// every configured provider failed for a call.
var ErrProviderUnavailable = errors.New("llm: no provider available")

// Message represents a conversation message. Role framing is forwarded
// to providers exactly as given; the gateway never rewrites it.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Options controls a single generation call.
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Client defines the interface for a single LLM provider.
type Client interface {
	// Name identifies the provider in logs.
	Name() string

	// Generate produces one completion for the given messages.
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}

// TextGenerator is the capability consumed by callers of the gateway.
type TextGenerator interface {
	Configured() bool
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Gateway tries a statically ordered list of providers until one succeeds.
// A failed provider is never retried within the same call; control falls
// through to the next one in the list.
type Gateway struct {
	clients []Client
	timeout time.Duration
	logger  *log.Logger
}

// NewGateway creates a gateway over the given clients, tried in order.
// timeout bounds each individual provider attempt.
func NewGateway(clients []Client, timeout time.Duration, logger *log.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		clients: clients,
		timeout: timeout,
		logger:  logger,
	}
}

// Configured returns true if at least one provider is available.
func (g *Gateway) Configured() bool {
	return len(g.clients) > 0
}

// Generate tries each provider in order and returns the first non-empty
// completion. Returns ErrProviderUnavailable when the chain is exhausted.
func (g *Gateway) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(g.clients) == 0 {
		return "", ErrProviderUnavailable
	}

	var lastErr error
	for _, c := range g.clients {
		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := c.Generate(attemptCtx, messages, opts)
		cancel()

		if err != nil {
			lastErr = err
			g.logger.Printf("llm: provider %s failed: %v", c.Name(), err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			lastErr = fmt.Errorf("provider %s returned empty completion", c.Name())
			g.logger.Printf("llm: %v", lastErr)
			continue
		}
		return text, nil
	}

	g.logger.Printf("llm: all %d providers failed, last error: %v", len(g.clients), lastErr)
	return "", fmt.Errorf("%w (last: %v)", ErrProviderUnavailable, lastErr)
}
