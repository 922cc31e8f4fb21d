// Package paystack implements the payment provider connector: float balance
// queries, the payout channel catalog, recipient creation and transfer
// initiation. Every call maps transport and provider failures to a kinded
// error before returning, so callers never see a raw HTTP error.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Paystack REST API. The secret key is injected at
// construction, never read from the environment inside call sites.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	logger     *slog.Logger
}

// NewClient builds a provider client. A nil httpClient gets a default with a
// conservative timeout; per-call deadlines are still applied by the caller.
func NewClient(secretKey, baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		logger:     logger.With("component", "paystack"),
	}
}

// Balance returns the provider float balance for the deployment currency.
func (c *Client) Balance(ctx context.Context) (int64, error) {
	var entries []BalanceEntry
	if err := c.call(ctx, http.MethodGet, "/balance", nil, &entries); err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if entry.Currency == Currency {
			return entry.Balance, nil
		}
	}
	if len(entries) > 0 {
		return entries[0].Balance, nil
	}
	return 0, apperrService("provider returned no balance entries")
}

// MobileMoneyChannels lists the provider's mobile money payout networks.
func (c *Client) MobileMoneyChannels(ctx context.Context) ([]ChannelEntry, error) {
	var entries []ChannelEntry
	path := fmt.Sprintf("/bank?currency=%s&type=mobile_money", Currency)
	if err := c.call(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateRecipient registers a payout destination and returns its code.
func (c *Client) CreateRecipient(ctx context.Context, req RecipientRequest) (string, error) {
	if req.Currency == "" {
		req.Currency = Currency
	}
	var data recipientData
	if err := c.call(ctx, http.MethodPost, "/transferrecipient", req, &data); err != nil {
		return "", err
	}
	if data.RecipientCode == "" {
		return "", apperrService("provider response missing recipient code")
	}
	return data.RecipientCode, nil
}

// CreateTransfer initiates a payout. The caller-generated reference makes the
// request idempotent on the provider side.
func (c *Client) CreateTransfer(ctx context.Context, req TransferRequest) (Transfer, error) {
	if req.Source == "" {
		req.Source = "balance"
	}
	if req.Currency == "" {
		req.Currency = Currency
	}
	var transfer Transfer
	if err := c.call(ctx, http.MethodPost, "/transfer", req, &transfer); err != nil {
		return Transfer{}, err
	}
	return transfer, nil
}

// ApproveTransfer approves a transfer held in the pending-approval state.
func (c *Client) ApproveTransfer(ctx context.Context, transferCode string) error {
	return c.call(ctx, http.MethodPost, "/transfer/approve", approveRequest{TransferCode: transferCode}, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrInternal("encode provider request", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperrInternal("build provider request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return wrapKind(kindNetworkTimeout, "provider call timed out", err)
		}
		return wrapKind(kindNetworkError, "provider call failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapKind(kindServiceUnavailable, "read provider response", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("malformed provider response", "path", path, "status", resp.StatusCode)
		return apperrService("malformed provider response")
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("provider 5xx", "path", path, "status", resp.StatusCode, "message", env.Message)
		return apperrService("payment provider is unavailable")
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		return providerError(env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperrService("malformed provider response payload")
		}
	}
	return nil
}
