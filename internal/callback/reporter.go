package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/decoyops/honeytrap/internal/intel"
)

// Payload is the final-result body POSTed to the evaluation endpoint.
type Payload struct {
	SessionID              string             `json:"sessionId"`
	ScamDetected           bool               `json:"scamDetected"`
	TotalMessagesExchanged int                `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intel.IndicatorSet `json:"extractedIntelligence"`
	AgentNotes             string             `json:"agentNotes"`
}

// Reporter delivers final results to the configured callback URL. The
// callback is a side channel: delivery is best-effort, one attempt with a
// bounded timeout, and failures are logged but never surface to the
// caller of the primary API.
type Reporter struct {
	url    string
	logger *log.Logger
	client *http.Client
}

// NewReporter creates a reporter. If url is empty, sends are silently
// skipped.
func NewReporter(url string, timeout time.Duration, logger *log.Logger) *Reporter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Reporter{
		url:    url,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled returns true if a callback URL is configured.
func (r *Reporter) Enabled() bool {
	return r.url != ""
}

// Send POSTs the payload once. Returns true on a 2xx response.
func (r *Reporter) Send(ctx context.Context, p Payload) bool {
	if !r.Enabled() {
		return false
	}

	body, err := json.Marshal(p)
	if err != nil {
		r.logger.Printf("callback: failed to marshal payload: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		r.logger.Printf("callback: failed to create request: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Printf("callback: delivery failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		r.logger.Printf("callback: endpoint returned %d: %s", resp.StatusCode, preview)
		return false
	}

	r.logger.Printf("callback: sent for session %s (%d messages)", p.SessionID, p.TotalMessagesExchanged)
	return true
}
