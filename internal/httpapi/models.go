package httpapi

// ConversationTurn is one chat message as supplied by the caller.
// Immutable; the service never stores it.
type ConversationTurn struct {
	Sender    string `json:"sender"` // "scammer" or "user"
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}

// RequestMetadata is optional channel/language context.
type RequestMetadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// HoneypotRequest is the inbound API body. conversationHistory is
// chronological and does not include message; all conversation state
// travels with the request.
type HoneypotRequest struct {
	SessionID           string             `json:"sessionId"`
	Message             ConversationTurn   `json:"message"`
	ConversationHistory []ConversationTurn `json:"conversationHistory"`
	Metadata            *RequestMetadata   `json:"metadata,omitempty"`
}

// AgentOutput is the API response. reply is empty when no scam intent
// was detected.
type AgentOutput struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}
