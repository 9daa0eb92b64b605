package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decoyops/honeytrap/internal/llm"
)

// Persona is the configurable identity of the honeypot agent. The prompt
// content lives here as data rather than hard-coded branches so synthetic
// fixtures can swap it out in tests.
type Persona struct {
	SystemPrompt  string  `yaml:"system_prompt"`
	Temperature   float32 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
	FallbackReply string  `yaml:"fallback_reply"`
}

// DefaultPersona returns the built-in persona: an ordinary chat user who
// never reveals the automated nature of the agent.
func DefaultPersona() Persona {
	return Persona{
		SystemPrompt:  llm.PersonaSystemPrompt,
		Temperature:   0.7,
		MaxTokens:     150,
		FallbackReply: "Sorry, I was away from my phone for a bit. Can you tell me again what this is about?",
	}
}

// LoadPersona reads a persona spec from a YAML file. Fields left empty in
// the file keep their built-in defaults.
func LoadPersona(path string) (Persona, error) {
	def := DefaultPersona()

	b, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("read persona file: %w", err)
	}

	var p Persona
	if err := yaml.Unmarshal(b, &p); err != nil {
		return def, fmt.Errorf("parse persona file: %w", err)
	}

	if p.SystemPrompt == "" {
		p.SystemPrompt = def.SystemPrompt
	}
	if p.Temperature <= 0 {
		p.Temperature = def.Temperature
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = def.MaxTokens
	}
	if p.FallbackReply == "" {
		p.FallbackReply = def.FallbackReply
	}
	return p, nil
}
