package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

var errTokenSourceRequired = errors.New("paypal token source is required")

type ClientParams struct {
	HTTPClient HTTPDoer
	Tokens     TokenSource
	Resolve    Resolver
	Timeout    time.Duration
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
}

// Client talks to the Orders v2 API. It never retries.
type Client struct {
	httpClient HTTPDoer
	tokens     TokenSource
	resolve    Resolver
	timeout    time.Duration
	logger     *logger.Logger
	metrics    *metrics.CheckoutMetrics
}

func NewClient(p ClientParams) (*Client, error) {
	if p.Tokens == nil {
		return nil, errTokenSourceRequired
	}
	if p.Resolve == nil {
		return nil, errors.New("paypal credential resolver is required")
	}
	if p.HTTPClient == nil {
		p.HTTPClient = http.DefaultClient
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultRequestTimeout
	}
	return &Client{
		httpClient: p.HTTPClient,
		tokens:     p.Tokens,
		resolve:    p.Resolve,
		timeout:    p.Timeout,
		logger:     p.Logger,
		metrics:    p.Metrics,
	}, nil
}

// CreateOrder opens a CAPTURE-intent order for a single USD purchase unit.
// Token failures surface unchanged as provider auth errors.
func (c *Client) CreateOrder(ctx context.Context, total string) (*OrderCreateResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	payload := CreateOrderRequest{
		Intent: IntentCapture,
		PurchaseUnits: []PurchaseUnitRequest{
			{Amount: Amount{CurrencyCode: CurrencyUSD, Value: total}},
		},
	}
	c.log(ctx, "request", opCreateOrder, map[string]any{"amount": total})

	status, body, err := c.post(ctx, opCreateOrder, token, "/v2/checkout/orders", payload)
	if err != nil {
		c.log(ctx, "error", opCreateOrder, map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeProviderOrderCreate, err, "paypal create order failed")
	}
	if !isSuccess(status) {
		cause := fmt.Errorf("create order returned %d: %s", status, truncate(body, 2048))
		c.log(ctx, "error", opCreateOrder, map[string]any{"status": status, "response_body": truncate(body, 2048), "error": cause.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeProviderOrderCreate, cause, "paypal create order rejected")
	}

	order, err := parseOrderCreateResponse(body)
	if err != nil {
		c.log(ctx, "error", opCreateOrder, map[string]any{"status": status, "error": err.Error()})
		return nil, err
	}
	c.log(ctx, "response", opCreateOrder, map[string]any{"order_id": order.ID, "order_status": order.Status})
	return order, nil
}

// CaptureOrder finalizes an approved order. A decoded response is returned for
// any 2xx, COMPLETED or not; the caller decides what a non-COMPLETED status means.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	c.log(ctx, "request", opCaptureOrder, map[string]any{"order_id": orderID})
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	status, body, err := c.post(ctx, opCaptureOrder, token, path, nil)
	if err != nil {
		c.log(ctx, "error", opCaptureOrder, map[string]any{"order_id": orderID, "error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeProviderCapture, err, "paypal capture order failed")
	}
	if !isSuccess(status) {
		cause := fmt.Errorf("capture order returned %d: %s", status, truncate(body, 2048))
		c.log(ctx, "error", opCaptureOrder, map[string]any{"order_id": orderID, "status": status, "response_body": truncate(body, 2048), "error": cause.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeProviderCapture, cause, "paypal capture order rejected")
	}

	capture, err := parseCaptureResponse(body)
	if err != nil {
		c.log(ctx, "error", opCaptureOrder, map[string]any{"order_id": orderID, "status": status, "error": err.Error()})
		return nil, err
	}
	c.log(ctx, "response", opCaptureOrder, map[string]any{"order_id": orderID, "capture_status": capture.Status})
	return capture, nil
}

func (c *Client) post(ctx context.Context, op, token, path string, payload any) (int, []byte, error) {
	creds := c.resolve()

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var reader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(creds.BaseURL, "/")+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	status, body, err := roundTrip(c.httpClient, req)
	c.metrics.ObserveProviderCall(op, time.Since(started))
	return status, body, err
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paypal %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paypal %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "authorization", "email"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
