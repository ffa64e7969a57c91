package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrMissingSecretKey indicates the client was configured without credentials.
var ErrMissingSecretKey = errors.New("gateway: secret key is required")

// Options configures the Stripe-compatible HTTP client.
type Options struct {
	SecretKey      string
	BaseURL        string
	Currency       string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// StripeClient performs form-encoded HTTP calls against the Stripe API.
type StripeClient struct {
	secretKey  string
	baseURL    string
	currency   string
	httpClient *http.Client
	logger     *zerolog.Logger
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewStripeClient constructs a client with sane defaults and injected dependencies.
func NewStripeClient(opts Options) (*StripeClient, error) {
	if strings.TrimSpace(opts.SecretKey) == "" {
		return nil, ErrMissingSecretKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1"
	}
	currency := strings.ToLower(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = "usd"
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &StripeClient{
		secretKey:  strings.TrimSpace(opts.SecretKey),
		baseURL:    baseURL,
		currency:   currency,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CreateCustomer registers the donor's card token and returns the customer id.
func (c *StripeClient) CreateCustomer(ctx context.Context, email, sourceToken string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("source", sourceToken)
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/customers", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Charge captures amountMinor from the customer, routed to the destination
// payout account.
func (c *StripeClient) Charge(ctx context.Context, customerID string, amountMinor int64, destinationToken string) (*ChargeResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", c.currency)
	form.Set("customer", customerID)
	form.Set("destination", destinationToken)
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.post(ctx, "/charges", form, &out); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("charge_id", out.ID).Str("status", out.Status).Msg("gateway: charge captured")
	return &ChargeResult{ChargeID: out.ID, Status: out.Status}, nil
}

// CreateConnectedAccount provisions a custom connected account.
func (c *StripeClient) CreateConnectedAccount(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("country", "US")
	form.Set("type", "custom")
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/accounts", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// AttachExternalAccount binds a bank token to the connected account.
func (c *StripeClient) AttachExternalAccount(ctx context.Context, accountID, sourceToken string) (string, error) {
	form := url.Values{}
	form.Set("external_account", sourceToken)
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/accounts/"+accountID+"/external_accounts", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return ErrGatewayTimeout
		}
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return c.mapError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

func (c *StripeClient) mapError(status int, raw []byte) error {
	var detail apiError
	_ = json.Unmarshal(raw, &detail)
	c.logger.Warn().Int("status", status).Str("code", detail.Error.Code).Str("type", detail.Error.Type).Msg("gateway: request failed")
	switch {
	case detail.Error.Code == "card_declined":
		return ErrCardDeclined
	case detail.Error.Type == "card_error":
		return ErrCardDeclined
	case detail.Error.Code == "invalid_source" || detail.Error.Type == "invalid_request_error":
		return ErrInvalidSource
	case status >= 500:
		return ErrGatewayUnavailable
	}
	if detail.Error.Message != "" {
		return fmt.Errorf("gateway: %s (%s)", detail.Error.Message, detail.Error.Code)
	}
	return fmt.Errorf("gateway: status %d: %s", status, strings.TrimSpace(string(raw)))
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

var _ Client = (*StripeClient)(nil)
