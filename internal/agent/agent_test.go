package agent

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decoyops/honeytrap/internal/intel"
	"github.com/decoyops/honeytrap/internal/llm"
)

type stubGateway struct {
	reply      string
	err        error
	configured bool
	gotMsgs    []llm.Message
	gotOpts    llm.Options
}

func (s *stubGateway) Configured() bool { return s.configured }

func (s *stubGateway) Generate(_ context.Context, msgs []llm.Message, opts llm.Options) (string, error) {
	s.gotMsgs = msgs
	s.gotOpts = opts
	return s.reply, s.err
}

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestReply(t *testing.T) {
	message := Turn{Sender: SenderScammer, Text: "Your account is blocked, verify now"}

	t.Run("returns sanitized completion", func(t *testing.T) {
		gw := &stubGateway{configured: true, reply: "Reply: Oh no, what happened?"}
		a := New(DefaultPersona(), gw, testLogger())

		got := a.Reply(context.Background(), message, nil)
		if got != "Oh no, what happened?" {
			t.Errorf("Reply = %q, want sanitized text", got)
		}
	})

	t.Run("fallback when every provider fails", func(t *testing.T) {
		gw := &stubGateway{configured: true, err: llm.ErrProviderUnavailable}
		a := New(DefaultPersona(), gw, testLogger())

		got := a.Reply(context.Background(), message, nil)
		if got == "" {
			t.Fatal("Reply must be non-empty even when all providers fail")
		}
		if got != DefaultPersona().FallbackReply {
			t.Errorf("Reply = %q, want the persona fallback", got)
		}
	})

	t.Run("fallback when sanitizer leaves nothing", func(t *testing.T) {
		gw := &stubGateway{configured: true, reply: "   "}
		a := New(DefaultPersona(), gw, testLogger())

		if got := a.Reply(context.Background(), message, nil); got == "" {
			t.Error("Reply must be non-empty")
		}
	})

	t.Run("uses persona generation options", func(t *testing.T) {
		p := DefaultPersona()
		p.MaxTokens = 77
		p.Temperature = 0.4
		gw := &stubGateway{configured: true, reply: "ok"}
		a := New(p, gw, testLogger())

		a.Reply(context.Background(), message, nil)
		if gw.gotOpts.MaxTokens != 77 {
			t.Errorf("MaxTokens = %d, want 77", gw.gotOpts.MaxTokens)
		}
		if gw.gotOpts.Temperature != 0.4 {
			t.Errorf("Temperature = %v, want 0.4", gw.gotOpts.Temperature)
		}
	})
}

func TestBuildMessages(t *testing.T) {
	a := New(DefaultPersona(), &stubGateway{}, testLogger())

	history := []Turn{
		{Sender: SenderScammer, Text: "your account is blocked"},
		{Sender: "user", Text: "oh? which account?"},
	}
	message := Turn{Sender: SenderScammer, Text: "share your OTP to unblock"}

	msgs := a.buildMessages(message, history)

	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem {
		t.Errorf("msgs[0].Role = %q, want system", msgs[0].Role)
	}
	if msgs[1].Role != llm.RoleUser || !strings.HasPrefix(msgs[1].Content, llm.ScammerQuotePrefix) {
		t.Errorf("scammer turn should be a quote-framed user message, got %+v", msgs[1])
	}
	if msgs[2].Role != llm.RoleAssistant || msgs[2].Content != "oh? which account?" {
		t.Errorf("our turn should be an unframed assistant message, got %+v", msgs[2])
	}
	if msgs[3].Role != llm.RoleUser || !strings.HasSuffix(msgs[3].Content, "share your OTP to unblock") {
		t.Errorf("current message should come last, got %+v", msgs[3])
	}
}

func TestNotes(t *testing.T) {
	message := Turn{Sender: SenderScammer, Text: "pay to fraud@ybl"}
	set := intel.IndicatorSet{UPIIDs: []string{"fraud@ybl"}}

	t.Run("returns generated summary on one line", func(t *testing.T) {
		gw := &stubGateway{configured: true, reply: "Scammer used urgency\nand asked for UPI payment."}
		a := New(DefaultPersona(), gw, testLogger())

		got := a.Notes(context.Background(), message, nil, set)
		if strings.Contains(got, "\n") {
			t.Errorf("Notes = %q, want single line", got)
		}
		if !strings.Contains(got, "urgency") {
			t.Errorf("Notes = %q, want generated content", got)
		}
	})

	t.Run("includes extracted details in the prompt", func(t *testing.T) {
		gw := &stubGateway{configured: true, reply: "summary"}
		a := New(DefaultPersona(), gw, testLogger())

		a.Notes(context.Background(), message, nil, set)
		if len(gw.gotMsgs) != 2 {
			t.Fatalf("got %d prompt messages, want 2", len(gw.gotMsgs))
		}
		if !strings.Contains(gw.gotMsgs[1].Content, "fraud@ybl") {
			t.Errorf("prompt should mention extracted UPI id, got %q", gw.gotMsgs[1].Content)
		}
	})

	t.Run("deterministic fallback when unconfigured", func(t *testing.T) {
		gw := &stubGateway{configured: false}
		a := New(DefaultPersona(), gw, testLogger())

		if got := a.Notes(context.Background(), message, nil, set); got != fallbackNotes {
			t.Errorf("Notes = %q, want %q", got, fallbackNotes)
		}
	})

	t.Run("deterministic fallback on provider failure", func(t *testing.T) {
		gw := &stubGateway{configured: true, err: errors.New("down")}
		a := New(DefaultPersona(), gw, testLogger())

		if got := a.Notes(context.Background(), message, nil, set); got != fallbackNotes {
			t.Errorf("Notes = %q, want %q", got, fallbackNotes)
		}
	})
}

func TestSanitizeReply(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "Sounds odd, which bank is this?", "Sounds odd, which bank is this?"},
		{"reply prefix stripped", "Reply: sure, tell me more", "sure, tell me more"},
		{"response prefix stripped case-insensitively", "response: okay", "okay"},
		{"code fence unwrapped", "```\nhello there\n```", "hello there"},
		{"empty input", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeReply(tt.input); got != tt.want {
				t.Errorf("sanitizeReply(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("long output capped", func(t *testing.T) {
		long := strings.Repeat("word ", 200)
		got := sanitizeReply(long)
		if len(got) > maxReplyChars {
			t.Errorf("len = %d, want <= %d", len(got), maxReplyChars)
		}
	})

	t.Run("keeps first paragraph of a dump", func(t *testing.T) {
		input := "short answer\n\n" + strings.Repeat("leaked instructions ", 40)
		if got := sanitizeReply(input); got != "short answer" {
			t.Errorf("got %q, want first paragraph only", got)
		}
	})
}

func TestPersona(t *testing.T) {
	t.Run("defaults are usable", func(t *testing.T) {
		p := DefaultPersona()
		if p.SystemPrompt == "" || p.FallbackReply == "" {
			t.Error("default persona must have prompt and fallback reply")
		}
		if p.MaxTokens <= 0 || p.Temperature <= 0 {
			t.Errorf("default generation options invalid: %+v", p)
		}
	})

	t.Run("partial YAML override keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "persona.yaml")
		content := "system_prompt: You are Ravi, a retired teacher.\nmax_tokens: 99\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		p, err := LoadPersona(path)
		if err != nil {
			t.Fatalf("LoadPersona: %v", err)
		}
		if p.SystemPrompt != "You are Ravi, a retired teacher." {
			t.Errorf("SystemPrompt = %q", p.SystemPrompt)
		}
		if p.MaxTokens != 99 {
			t.Errorf("MaxTokens = %d, want 99", p.MaxTokens)
		}
		if p.FallbackReply != DefaultPersona().FallbackReply {
			t.Errorf("FallbackReply = %q, want default", p.FallbackReply)
		}
	})

	t.Run("missing file returns defaults and an error", func(t *testing.T) {
		p, err := LoadPersona(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Error("expected error for missing file")
		}
		if p.SystemPrompt == "" {
			t.Error("should still return usable defaults")
		}
	})
}
