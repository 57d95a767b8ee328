package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// APIError is a fatal upstream failure: a non-200 response that did not
// qualify for the quota wait policy, or one that exhausted its retries.
type APIError struct {
	Endpoint EndpointKind
	Status   int
	Reason   string
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube API %s: %d %s", e.Endpoint, e.Status, e.Body)
}

// WaitState is the observable countdown published while the gateway blocks on
// a quota-exhausted upstream. At most one wait is in flight at a time.
type WaitState struct {
	RemainingSec int          `json:"remaining_sec"`
	Reason       string       `json:"reason"`
	Endpoint     EndpointKind `json:"endpoint"`
}

// Gateway issues YouTube Data API calls, charges the quota ledger, and
// recovers locally from quota/rate exhaustion by bounded wait-and-retry.
type Gateway struct {
	base   string
	http   *http.Client
	ledger *Ledger

	waitMu sync.Mutex
	wait   *WaitState
}

func NewGateway(ledger *Ledger) *Gateway {
	return &Gateway{base: cfg.APIBase, http: cfg.HTTPClient, ledger: ledger}
}

// Wait returns the current wait state, if the gateway is blocked on quota.
func (g *Gateway) Wait() (WaitState, bool) {
	g.waitMu.Lock()
	defer g.waitMu.Unlock()
	if g.wait == nil {
		return WaitState{}, false
	}
	return *g.wait, true
}

func (g *Gateway) setWait(ws *WaitState) {
	g.waitMu.Lock()
	g.wait = ws
	g.waitMu.Unlock()
}

// quotaReasonTokens mark an error reason as quota/rate exhaustion.
var quotaReasonTokens = []string{"quota", "daily", "rate", "exceed"}

func isQuotaReason(reason string) bool {
	r := strings.ToLower(reason)
	for _, tok := range quotaReasonTokens {
		if strings.Contains(r, tok) {
			return true
		}
	}
	return false
}

type apiErrorBody struct {
	Error struct {
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
		Message string `json:"message"`
	} `json:"error"`
}

// extractReason pulls the most specific error reason from a structured error
// body: first sub-error reason, then top-level message, then the raw text.
func extractReason(body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Error.Errors) > 0 && parsed.Error.Errors[0].Reason != "" {
			return parsed.Error.Errors[0].Reason
		}
		if parsed.Error.Message != "" {
			return parsed.Error.Message
		}
	}
	return string(body)
}

// Call issues one GET against the endpoint kind with the given parameters.
// On success it charges the ledger exactly once and returns the raw body.
// A 403/429 whose reason mentions quota exhaustion triggers a blocking wait of
// waitMinutes (whole seconds, one-second ticks) and a retry, up to maxRetries
// times; waitMinutes <= 0 disables the policy. Anything else is an *APIError.
func (g *Gateway) Call(ctx context.Context, kind EndpointKind, params url.Values, key string, waitMinutes float64, maxRetries int) ([]byte, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	target := fmt.Sprintf("%s/%s?%s", g.base, kind, q.Encode())
	q.Set("key", key)
	callURL := fmt.Sprintf("%s/%s?%s", g.base, kind, q.Encode())

	tries := 0
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, callURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build %s request: %w", kind, err)
		}
		resp, err := g.http.Do(req)
		if err != nil {
			// Network and timeout failures are fatal for the call; only the
			// quota policy below retries.
			return nil, fmt.Errorf("%s request: %w", kind, err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read %s response: %w", kind, readErr)
		}

		if resp.StatusCode == http.StatusOK {
			g.ledger.Record(kind, target)
			return body, nil
		}

		tries++
		reason := extractReason(body)
		if (resp.StatusCode == 403 || resp.StatusCode == 429) && isQuotaReason(reason) && waitMinutes > 0 && tries <= maxRetries {
			if err := g.waitForQuota(ctx, int(waitMinutes*60), reason, kind); err != nil {
				return nil, err
			}
			continue
		}

		return nil, &APIError{Endpoint: kind, Status: resp.StatusCode, Reason: reason, Body: string(body)}
	}
}

// waitForQuota blocks for waitSec seconds, updating the published countdown
// each tick. Context cancellation ends the wait early.
func (g *Gateway) waitForQuota(ctx context.Context, waitSec int, reason string, kind EndpointKind) error {
	slog.Warn("quota exhausted, waiting",
		slog.String("endpoint", string(kind)),
		slog.String("reason", reason),
		slog.Int("seconds", waitSec))
	defer g.setWait(nil)
	for s := waitSec; s > 0; s-- {
		g.setWait(&WaitState{RemainingSec: s, Reason: reason, Endpoint: kind})
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
