package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/decoyops/honeytrap/internal/agent"
	"github.com/decoyops/honeytrap/internal/callback"
)

// handleHoneypot is the per-request orchestrator: extract indicators,
// decide scam intent, and when scam intent is found generate a reply and
// report intelligence to the callback endpoint. Each sub-step owns its
// own fallback; nothing is retried here.
func (rt *Router) handleHoneypot(w http.ResponseWriter, req *http.Request) {
	var in HoneypotRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if in.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing sessionId"})
		return
	}
	if strings.TrimSpace(in.Message.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing message text"})
		return
	}

	rt.logger.Printf("session %s: message received (%d chars, %d history turns)",
		in.SessionID, len(in.Message.Text), len(in.ConversationHistory))

	fullText := conversationText(in.Message, in.ConversationHistory)
	set := rt.extractor.Extract(fullText)

	verdict := rt.engine.Decide(req.Context(), fullText)
	rt.logger.Printf("session %s: verdict isScam=%t confidence=%.4f",
		in.SessionID, verdict.IsScam, verdict.Confidence)

	if !verdict.IsScam {
		writeJSON(w, http.StatusOK, AgentOutput{Status: "success", Reply: ""})
		return
	}

	message, history := toTurns(in.Message, in.ConversationHistory)
	reply := rt.agent.Reply(req.Context(), message, history)

	notes := rt.agent.Notes(req.Context(), message, history, set)

	totalMessages := len(in.ConversationHistory) + 1
	if rt.reporter.Enabled() {
		ok := rt.reporter.Send(req.Context(), callback.Payload{
			SessionID:              in.SessionID,
			ScamDetected:           true,
			TotalMessagesExchanged: totalMessages,
			ExtractedIntelligence:  set,
			AgentNotes:             notes,
		})
		if !ok {
			captureError(req, errors.New("callback delivery failed"), "session "+in.SessionID)
		}
	}

	writeJSON(w, http.StatusOK, AgentOutput{Status: "success", Reply: reply})
}

// conversationText concatenates the current message and history into the
// single blob both the extractor and the scorer operate on.
func conversationText(message ConversationTurn, history []ConversationTurn) string {
	var b strings.Builder
	b.WriteString(message.Text)
	for _, t := range history {
		b.WriteString(" ")
		b.WriteString(t.Text)
	}
	return b.String()
}

func toTurns(message ConversationTurn, history []ConversationTurn) (agent.Turn, []agent.Turn) {
	out := make([]agent.Turn, 0, len(history))
	for _, t := range history {
		out = append(out, agent.Turn{Sender: t.Sender, Text: t.Text, Timestamp: t.Timestamp})
	}
	return agent.Turn{Sender: message.Sender, Text: message.Text, Timestamp: message.Timestamp}, out
}
