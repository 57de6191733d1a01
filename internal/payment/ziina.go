// Package payment wraps the Ziina payment-intent API. Only the lookup used
// by verification lives here; checkout session creation happens client-side.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IntentStatus is the gateway-side state of a payment intent.
type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentCompleted IntentStatus = "completed"
	IntentFailed    IntentStatus = "failed"
	IntentCanceled  IntentStatus = "canceled"
)

// Intent is the subset of the gateway payment-intent object the service
// needs for reconciliation.
type Intent struct {
	ID        string       `json:"id"`
	Status    IntentStatus `json:"status"`
	Amount    int          `json:"amount"` // minor units
	Currency  string       `json:"currency_code"`
	Reference string       `json:"reference"` // course id, set at checkout
}

// Gateway looks up payment intents.
type Gateway interface {
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
}

// ZiinaClient is a thin HTTP client for the Ziina payment-intent endpoint.
type ZiinaClient struct {
	baseURL    string
	apiKey     string
	testMode   bool
	httpClient *http.Client
}

type ZiinaConfig struct {
	BaseURL  string
	APIKey   string
	TestMode bool
}

func NewZiinaClient(cfg ZiinaConfig) *ZiinaClient {
	return &ZiinaClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		testMode: cfg.TestMode,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *ZiinaClient) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	url := fmt.Sprintf("%s/payment_intent/%s", c.baseURL, intentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment intent lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("payment intent %s not found", intentID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment intent lookup returned status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}

	return &intent, nil
}
