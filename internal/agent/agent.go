package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/decoyops/honeytrap/internal/intel"
	"github.com/decoyops/honeytrap/internal/llm"
)

// Turn is one caller-supplied conversation turn.
type Turn struct {
	Sender    string
	Text      string
	Timestamp int64
}

// SenderScammer marks turns sent by the suspected scammer; everything
// else is treated as our side of the conversation.
const SenderScammer = "scammer"

// fallbackNotes is the deterministic callback note used when no provider
// can generate a summary.
const fallbackNotes = "Scam intent detected; agent engaged with human-like responses."

// maxReplyChars caps a sanitized reply so a confused model can't dump
// paragraphs (or its instructions) into the chat.
const maxReplyChars = 400

// maxNotesChars caps the callback note length.
const maxNotesChars = 500

// Agent generates human-like replies and behavior summaries via the LLM
// gateway. Only invoked once scam intent is established.
type Agent struct {
	persona Persona
	gateway llm.TextGenerator
	logger  *log.Logger
}

// New creates an agent with the given persona.
func New(persona Persona, gateway llm.TextGenerator, logger *log.Logger) *Agent {
	return &Agent{persona: persona, gateway: gateway, logger: logger}
}

// Reply produces one short, in-character reply to the current message.
// It never fails: when every provider is down it returns the persona's
// fixed stalling utterance, which is always non-empty.
func (a *Agent) Reply(ctx context.Context, message Turn, history []Turn) string {
	messages := a.buildMessages(message, history)

	raw, err := a.gateway.Generate(ctx, messages, llm.Options{
		MaxTokens:   a.persona.MaxTokens,
		Temperature: a.persona.Temperature,
	})
	if err != nil {
		a.logger.Printf("agent: reply generation failed, using fallback: %v", err)
		return a.persona.FallbackReply
	}

	reply := sanitizeReply(raw)
	if reply == "" {
		return a.persona.FallbackReply
	}
	return reply
}

// Notes produces the 1-2 sentence scammer-behavior summary for the
// callback. Falls back to a deterministic note when generation fails.
func (a *Agent) Notes(ctx context.Context, message Turn, history []Turn, set intel.IndicatorSet) string {
	if !a.gateway.Configured() {
		return fallbackNotes
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scammer (latest): %s\n", message.Text)
	for _, t := range history {
		fmt.Fprintf(&b, "%s: %s\n", t.Sender, t.Text)
	}
	b.WriteString("\nExtracted details:\n")
	b.WriteString(intelSummary(set))
	b.WriteString("\n\nWrite the 1-2 sentence summary:")

	raw, err := a.gateway.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: llm.NotesSystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}, llm.Options{MaxTokens: 120, Temperature: 0.3})
	if err != nil {
		a.logger.Printf("agent: notes generation failed, using fallback: %v", err)
		return fallbackNotes
	}

	note := strings.TrimSpace(strings.ReplaceAll(raw, "\n", " "))
	if note == "" {
		return fallbackNotes
	}
	if len(note) > maxNotesChars {
		note = note[:maxNotesChars]
	}
	return note
}

// buildMessages maps the caller-supplied history onto chat roles: scammer
// turns become user messages (quote-framed), our turns become assistant
// messages. The current message goes last.
func (a *Agent) buildMessages(message Turn, history []Turn) []llm.Message {
	out := make([]llm.Message, 0, len(history)+2)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: a.persona.SystemPrompt})

	for _, t := range history {
		if t.Sender == SenderScammer {
			out = append(out, llm.Message{Role: llm.RoleUser, Content: llm.ScammerQuotePrefix + t.Text})
		} else {
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: t.Text})
		}
	}

	out = append(out, llm.Message{Role: llm.RoleUser, Content: llm.ScammerQuotePrefix + message.Text})
	return out
}

func intelSummary(set intel.IndicatorSet) string {
	var parts []string
	if len(set.BankAccounts) > 0 {
		parts = append(parts, fmt.Sprintf("bank_accounts: %v", set.BankAccounts))
	}
	if len(set.UPIIDs) > 0 {
		parts = append(parts, fmt.Sprintf("upi_ids: %v", set.UPIIDs))
	}
	if len(set.PhishingLinks) > 0 {
		parts = append(parts, fmt.Sprintf("phishing_links: %v", set.PhishingLinks))
	}
	if len(set.PhoneNumbers) > 0 {
		parts = append(parts, fmt.Sprintf("phone_numbers: %v", set.PhoneNumbers))
	}
	if len(set.SuspiciousKeywords) > 0 {
		parts = append(parts, fmt.Sprintf("suspicious_keywords: %v", set.SuspiciousKeywords))
	}
	if len(parts) == 0 {
		return "None extracted yet."
	}
	return strings.Join(parts, "\n")
}

// leakPrefixes are common model framing leaks stripped from replies.
var leakPrefixes = []string{
	"Reply:", "My reply:", "Response:", "Here's my reply:", "Here is my reply:",
}

// sanitizeReply strips framing leaks and caps length so the reply reads
// like a person texting, not a model output.
func sanitizeReply(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	for _, prefix := range leakPrefixes {
		if len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 1 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[1 : len(lines)-1]
		} else {
			lines = lines[1:]
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	if len(text) > maxReplyChars {
		// Keep the first paragraph, then cut at a word boundary.
		if idx := strings.Index(text, "\n\n"); idx > 0 && idx <= maxReplyChars {
			text = text[:idx]
		} else {
			text = text[:maxReplyChars]
			if idx := strings.LastIndex(text, " "); idx > 0 {
				text = text[:idx]
			}
		}
	}

	return strings.TrimSpace(text)
}
