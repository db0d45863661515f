package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"artist-booking/pkg/apperr"

	"go.uber.org/zap"
)

const defaultAPIBase = "https://api.stripe.com/v1"

// StripeClient implements Gateway against Stripe's form-encoded REST API.
type StripeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewStripeClient(apiKey string, timeout time.Duration, log *zap.Logger) *StripeClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &StripeClient{
		apiKey:  apiKey,
		baseURL: defaultAPIBase,
		client:  &http.Client{Timeout: timeout},
		log:     log.With(zap.String("gateway", "stripe")),
	}
}

// WithBaseURL overrides the API base, used by tests.
func (c *StripeClient) WithBaseURL(base string) *StripeClient {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	// Hold the funds until the artist confirms; captured later.
	form.Set("payment_intent_data[capture_method]", "manual")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.Amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.Description)
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
		form.Set(fmt.Sprintf("payment_intent_data[metadata][%s]", key), value)
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/checkout/sessions", form, params.IdempotencyKey, &session); err != nil {
		return nil, err
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (c *StripeClient) CapturePaymentIntent(ctx context.Context, intentID string) (*CaptureResult, error) {
	var intent struct {
		Status         string `json:"status"`
		AmountReceived int64  `json:"amount_received"`
		Currency       string `json:"currency"`
		LatestCharge   string `json:"latest_charge"`
	}
	path := fmt.Sprintf("/payment_intents/%s/capture", intentID)
	if err := c.post(ctx, path, url.Values{}, "", &intent); err != nil {
		return nil, err
	}

	return &CaptureResult{
		Status:         intent.Status,
		AmountReceived: intent.AmountReceived,
		LatestChargeID: intent.LatestCharge,
		Currency:       intent.Currency,
	}, nil
}

func (c *StripeClient) CancelPaymentIntent(ctx context.Context, intentID string) (*CancelResult, error) {
	var intent struct {
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/payment_intents/%s/cancel", intentID)
	if err := c.post(ctx, path, url.Values{}, "", &intent); err != nil {
		return nil, err
	}

	return &CancelResult{Status: intent.Status}, nil
}

func (c *StripeClient) RetrieveChargeFee(ctx context.Context, chargeID string) (int64, error) {
	var charge struct {
		BalanceTransaction struct {
			Fee int64 `json:"fee"`
		} `json:"balance_transaction"`
	}
	path := fmt.Sprintf("/charges/%s?expand[]=balance_transaction", chargeID)
	if err := c.get(ctx, path, &charge); err != nil {
		return 0, err
	}

	return charge.BalanceTransaction.Fee, nil
}

func (c *StripeClient) CreateTransfer(ctx context.Context, params TransferParams) (*Transfer, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	form.Set("destination", params.Destination)
	form.Set("source_transaction", params.SourceChargeID)

	var transfer struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/transfers", form, params.IdempotencyKey, &transfer); err != nil {
		return nil, err
	}

	return &Transfer{ID: transfer.ID}, nil
}

func (c *StripeClient) CreateRefund(ctx context.Context, intentID string, amount int64) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", intentID)
	form.Set("amount", strconv.FormatInt(amount, 10))

	var refund struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	// Refund key derives from the intent; one refund per payment attempt.
	key := fmt.Sprintf("refund:%s", intentID)
	if err := c.post(ctx, "/refunds", form, key, &refund); err != nil {
		return nil, err
	}

	return &Refund{ID: refund.ID, Status: refund.Status}, nil
}

// ==================== HTTP PLUMBING ====================

func (c *StripeClient) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build stripe request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	return c.do(req, out)
}

func (c *StripeClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build stripe request %s: %w", path, err)
	}

	return c.do(req, out)
}

func (c *StripeClient) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeout or transport failure: outcome unknown, caller must not
		// advance local state. Retry is safe via idempotency keys.
		c.log.Error("Stripe request failed",
			zap.Error(err),
			zap.String("path", req.URL.Path),
		)
		return apperr.Externalw(err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Externalw(err, "read payment gateway response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Type    string `json:"type"`
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)

		c.log.Error("Stripe request rejected",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("type", apiErr.Error.Type),
			zap.String("code", apiErr.Error.Code),
		)
		return apperr.Externalf("payment gateway error: %s", apiErr.Error.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Externalw(err, "decode payment gateway response")
	}

	return nil
}
